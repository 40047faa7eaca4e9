package middleware

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository/memory"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, apiKey string) (*domain.Actor, error) {
	args := m.Called(ctx, apiKey)
	actor, _ := args.Get(0).(*domain.Actor)
	return actor, args.Error(1)
}

func newActor(role domain.Role) *domain.Actor {
	return &domain.Actor{ID: uuid.New(), Name: "test", Role: role, IsActive: true}
}

func authRouter(auth Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(auth, zap.NewNop())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, _ := GetActorFromContext(c)
		c.String(http.StatusOK, actor.Name)
	})
	r.GET("/x", handlers...)
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	active := newActor(domain.RoleAttendant)
	inactive := newActor(domain.RoleAttendant)
	inactive.IsActive = false

	auth := &mockAuthenticator{}
	auth.On("Authenticate", mock.Anything, "good").Return(active, nil)
	auth.On("Authenticate", mock.Anything, "off").Return(inactive, nil)
	auth.On("Authenticate", mock.Anything, "bad").Return(nil, &errors.ErrUnauthorized{Message: "invalid API key"})
	auth.On("Authenticate", mock.Anything, "boom").Return(nil, errors.Internal("authenticate actor", stderrors.New("db down")))

	r := authRouter(auth)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"inactive", "Bearer off", http.StatusUnauthorized},
		{"unknown key", "Bearer bad", http.StatusUnauthorized},
		{"store failure", "Bearer boom", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, get(r, tc.header).Code)
		})
	}

	w := get(r, "Bearer boom")
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestRequireRole(t *testing.T) {
	admin := newActor(domain.RoleAdmin)
	reception := newActor(domain.RoleReception)

	auth := &mockAuthenticator{}
	auth.On("Authenticate", mock.Anything, "admin").Return(admin, nil)
	auth.On("Authenticate", mock.Anything, "reception").Return(reception, nil)

	r := authRouter(auth, RequireRole(domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, get(r, "Bearer admin").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer reception").Code)
}

func idempotencyRouter(t *testing.T, actor *domain.Actor, store *memory.Store) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ActorContextKey, actor)
		c.Next()
	})
	r.Use(IdempotencyMiddleware(store.Repositories().IdempotencyKey, zap.NewNop()))
	handler := func(c *gin.Context) {
		key, hash, existing, replay := GetIdempotencyInfo(c)
		c.JSON(http.StatusOK, gin.H{"key": key, "hash": hash, "existing": existing, "replay": replay})
	}
	r.POST("/a", handler)
	r.POST("/b", handler)
	return r
}

func post(r http.Handler, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware(t *testing.T) {
	store := memory.NewStore()
	actor := newActor(domain.RoleAttendant)
	r := idempotencyRouter(t, actor, store)

	t.Run("no header passes through", func(t *testing.T) {
		w := post(r, "/a", "", `{}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"replay":false`)
		assert.Contains(t, w.Body.String(), `"key":""`)
	})

	first := post(r, "/a", "k1", `{"n":1}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), `"key":"k1"`)

	// store the key the way the create handler does after a successful create
	orderID := uuid.New()
	hash := hashOf(t, first)
	require.NoError(t, store.Repositories().IdempotencyKey.Create(context.Background(), &domain.IdempotencyKey{
		Key: "k1", ActorID: actor.ID, OrderID: orderID, RequestHash: hash,
	}))

	t.Run("same request replays", func(t *testing.T) {
		w := post(r, "/a", "k1", `{"n":1}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"replay":true`)
		assert.Contains(t, w.Body.String(), orderID.String())
	})

	t.Run("different body conflicts", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, post(r, "/a", "k1", `{"n":2}`).Code)
	})

	t.Run("other route conflicts", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, post(r, "/b", "k1", `{"n":1}`).Code)
	})

	t.Run("other actor conflicts", func(t *testing.T) {
		other := idempotencyRouter(t, newActor(domain.RoleAttendant), store)
		assert.Equal(t, http.StatusConflict, post(other, "/a", "k1", `{"n":1}`).Code)
	})
}

func hashOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Hash string `json:"hash"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Hash)
	return resp.Hash
}
