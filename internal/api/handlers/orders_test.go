package handlers

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/api/middleware"
	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/internal/service"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testActor = &domain.Actor{ID: uuid.New(), Name: "maria", Role: domain.RoleAttendant, IsActive: true}

// withActor stands in for AuthMiddleware
func withActor(actor *domain.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ActorContextKey, actor)
		}
		c.Next()
	}
}

func sampleOrder() *domain.Order {
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:               uuid.New(),
		Phase:            domain.PhasePending,
		OrderDate:        day.AddDate(0, 0, -20),
		EventDate:        day,
		ReturnDate:       &day,
		TotalValue:       500,
		AdvancePayment:   100,
		RemainingPayment: 400,
		Occasion:         "Casamento",
		Renter:           &domain.Person{ID: uuid.New(), Name: "João da Silva"},
		Items: []*domain.OrderItem{{
			ID:      uuid.New(),
			Product: domain.AdHocItem{TemporaryProductID: uuid.New(), TemporaryProduct: &domain.TemporaryProduct{ProductType: "TERNO"}},
		}},
	}
}

func perform(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleCreateOrder(t *testing.T) {
	orders := new(mockOrderService)
	keys := new(mockIdempotencyKeys)
	order := sampleOrder()

	orders.On("Create", mock.Anything, testActor, mock.MatchedBy(func(req service.IntakeRequest) bool {
		return req.Client.CPF == "123.456.789-01" && req.EmployeeName == "Maria Souza"
	})).Return(order, nil)

	r := gin.New()
	r.POST("/orders", withActor(testActor), HandleCreateOrder(orders, keys, zap.NewNop()))

	w := perform(r, http.MethodPost, "/orders", gin.H{
		"client":        gin.H{"name": "João da Silva", "phone": "11999990000", "cpf": "123.456.789-01"},
		"employee_name": "Maria Souza",
		"order":         gin.H{"event_date": "2026-04-10", "total_value": 500, "advance_payment": 100},
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, order.ID.String(), resp.ID)
	assert.Equal(t, domain.PhasePending, resp.Phase)
	assert.Equal(t, "PENDENTE", resp.PhaseName)
	assert.Equal(t, "2026-04-10", resp.EventDate)
	require.NotNil(t, resp.ReturnDate)
	assert.Equal(t, "2026-04-10", *resp.ReturnDate)
	require.Len(t, resp.Items, 1)
	require.NotNil(t, resp.Items[0].TemporaryProduct)
	assert.Equal(t, "TERNO", resp.Items[0].TemporaryProduct.ProductType)
	assert.Nil(t, resp.Items[0].ProductID)

	orders.AssertExpectations(t)
	keys.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandleCreateOrder_StoresIdempotencyKey(t *testing.T) {
	orders := new(mockOrderService)
	keys := new(mockIdempotencyKeys)
	order := sampleOrder()

	orders.On("Create", mock.Anything, testActor, mock.Anything).Return(order, nil)
	keys.On("Create", mock.Anything, mock.MatchedBy(func(k *domain.IdempotencyKey) bool {
		return k.Key == "abc" && k.OrderID == order.ID && k.ActorID == testActor.ID && k.RequestHash == "h1"
	})).Return(nil)

	r := gin.New()
	r.POST("/orders", withActor(testActor), func(c *gin.Context) {
		c.Set("idempotency_key", "abc")
		c.Set("idempotency_request_hash", "h1")
	}, HandleCreateOrder(orders, keys, zap.NewNop()))

	w := perform(r, http.MethodPost, "/orders", gin.H{"employee_name": "x"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	keys.AssertExpectations(t)
}

func TestHandleCreateOrder_ReplaysExisting(t *testing.T) {
	orders := new(mockOrderService)
	keys := new(mockIdempotencyKeys)
	order := sampleOrder()

	orders.On("Get", mock.Anything, testActor, order.ID).Return(order, nil)

	r := gin.New()
	r.POST("/orders", withActor(testActor), func(c *gin.Context) {
		c.Set("idempotency_existing_order_id", order.ID)
	}, HandleCreateOrder(orders, keys, zap.NewNop()))

	w := perform(r, http.MethodPost, "/orders", gin.H{}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCreateOrder_Errors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   errors.Kind
	}{
		{"validation", &errors.ErrValidation{Message: "invalid CPF: must contain 11 digits", Fields: map[string]string{"client.cpf": "invalid"}}, http.StatusBadRequest, errors.KindValidation},
		{"employee missing", &errors.ErrNotFound{Resource: "employee", ID: "Fulano"}, http.StatusNotFound, errors.KindNotFound},
		{"denied", &errors.ErrPermissionDenied{}, http.StatusForbidden, errors.KindPermissionDenied},
		{"internal", errors.Internal("create order", stderrors.New("pq: connection refused")), http.StatusInternalServerError, errors.KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := new(mockOrderService)
			orders.On("Create", mock.Anything, testActor, mock.Anything).Return(nil, tc.err)

			r := gin.New()
			r.POST("/orders", withActor(testActor), HandleCreateOrder(orders, new(mockIdempotencyKeys), zap.NewNop()))

			w := perform(r, http.MethodPost, "/orders", gin.H{}, nil)
			require.Equal(t, tc.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tc.kind, resp.Error)
			if tc.kind == errors.KindInternal {
				assert.Equal(t, "internal error", resp.Message)
				assert.NotContains(t, w.Body.String(), "pq:")
			}
			if tc.kind == errors.KindValidation {
				assert.Equal(t, "invalid", resp.Fields["client.cpf"])
			}
		})
	}
}

func TestHandleCreateOrder_MalformedBody(t *testing.T) {
	orders := new(mockOrderService)
	r := gin.New()
	r.POST("/orders", withActor(testActor), HandleCreateOrder(orders, new(mockIdempotencyKeys), zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.KindValidation, decodeError(t, w).Error)
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleListOrders_Filters(t *testing.T) {
	orders := new(mockOrderService)
	late := domain.PhaseLate
	yes := true
	orders.On("List", mock.Anything, testActor, repository.OrderFilter{
		Phase:  &late,
		Late:   &yes,
		Limit:  20,
		Offset: 40,
	}).Return([]*domain.Order{sampleOrder()}, nil)

	r := gin.New()
	r.GET("/orders", withActor(testActor), HandleListOrders(orders, zap.NewNop()))

	w := perform(r, http.MethodGet, "/orders?phase=atrasado&late=true&limit=20&offset=40", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Orders []OrderResponse `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Orders, 1)
	orders.AssertExpectations(t)
}

func TestHandleListOrders_BadQuery(t *testing.T) {
	r := gin.New()
	r.GET("/orders", withActor(testActor), HandleListOrders(new(mockOrderService), zap.NewNop()))

	w := perform(r, http.MethodGet, "/orders?phase=SHIPPED", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Fields, "phase")

	w = perform(r, http.MethodGet, "/orders?late=maybe", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTransition(t *testing.T) {
	orders := new(mockOrderService)
	order := sampleOrder()
	order.Phase = domain.PhaseAwaitingPayment
	orders.On("Accept", mock.Anything, testActor, order.ID).Return(order, nil)

	missing := uuid.New()
	orders.On("Accept", mock.Anything, testActor, missing).Return(nil, &errors.ErrNotFound{Resource: "service_order", ID: missing.String()})

	completed := uuid.New()
	orders.On("Accept", mock.Anything, testActor, completed).
		Return(nil, &errors.ErrInvalidStateTransition{From: domain.PhaseCompleted, To: domain.PhaseAwaitingPayment})

	r := gin.New()
	r.POST("/orders/:id/accept", withActor(testActor), HandleTransition(orders.Accept, zap.NewNop()))

	w := perform(r, http.MethodPost, "/orders/"+order.ID.String()+"/accept", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.PhaseAwaitingPayment, resp.Phase)

	w = perform(r, http.MethodPost, "/orders/"+missing.String()+"/accept", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodPost, "/orders/"+completed.String()+"/accept", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/orders/not-a-uuid/accept", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Fields, "id")
}

func TestHandleRefuseOrder(t *testing.T) {
	orders := new(mockOrderService)
	order := sampleOrder()
	order.Phase = domain.PhaseRefused
	justification := "Cliente desistiu"
	order.RefusalJustification = &justification

	orders.On("Refuse", mock.Anything, testActor, order.ID, service.RefuseRequest{Justification: justification}).Return(order, nil)

	r := gin.New()
	r.POST("/orders/:id/refuse", withActor(testActor), HandleRefuseOrder(orders, zap.NewNop()))

	w := perform(r, http.MethodPost, "/orders/"+order.ID.String()+"/refuse", gin.H{"justification": justification}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.PhaseRefused, resp.Phase)
	require.NotNil(t, resp.RefusalJustification)
	assert.Equal(t, justification, *resp.RefusalJustification)
	orders.AssertExpectations(t)
}

func TestHandlers_RequireActor(t *testing.T) {
	r := gin.New()
	r.GET("/orders/:id", withActor(nil), HandleGetOrder(new(mockOrderService), zap.NewNop()))

	w := perform(r, http.MethodGet, "/orders/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleGetOrderEvents(t *testing.T) {
	orders := new(mockOrderService)
	id := uuid.New()
	orders.On("Events", mock.Anything, testActor, id).Return([]*domain.OrderEvent{
		{ID: uuid.New(), OrderID: id, EventType: domain.OrderEventCreated, ActorID: &testActor.ID},
		{ID: uuid.New(), OrderID: id, EventType: domain.OrderEventLateFlagChanged, EventData: map[string]interface{}{"is_late": true}},
	}, nil)

	r := gin.New()
	r.GET("/orders/:id/events", withActor(testActor), HandleGetOrderEvents(orders, zap.NewNop()))

	w := perform(r, http.MethodGet, "/orders/"+id.String()+"/events", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Events []OrderEventResponse `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Events, 2)
	require.NotNil(t, body.Events[0].ActorID)
	assert.Nil(t, body.Events[1].ActorID)
	assert.Equal(t, true, body.Events[1].Data["is_late"])
}
