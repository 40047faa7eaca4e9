package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

const apiKeyPrefix = "sc_"

// CreatedActor carries the generated API key. The key is not stored and
// cannot be retrieved again.
type CreatedActor struct {
	Actor  *domain.Actor
	APIKey string
}

// ActorService manages API actors
type ActorService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewActorService creates a new actor service
func NewActorService(repos *repository.Repositories, logger *zap.Logger) *ActorService {
	return &ActorService{
		repos:  repos,
		logger: logger,
	}
}

// Authenticate resolves an API key to an active actor
func (s *ActorService) Authenticate(ctx context.Context, apiKey string) (*domain.Actor, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &errors.ErrUnauthorized{Message: "missing API key"}
	}
	actor, err := s.repos.Actor.GetByAPIKey(ctx, apiKey)
	if errors.IsNotFound(err) {
		return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
	}
	if err != nil {
		return nil, errors.Internal("authenticate actor", err)
	}
	return actor, nil
}

// CreateAs registers an actor on behalf of an administrator
func (s *ActorService) CreateAs(ctx context.Context, admin *domain.Actor, req CreateActorRequest) (*CreatedActor, error) {
	if admin == nil {
		return nil, &errors.ErrUnauthorized{}
	}
	if !admin.IsAdmin() {
		return nil, &errors.ErrPermissionDenied{Message: "only administrators may create actors"}
	}
	return s.Create(ctx, req)
}

// Create registers an actor without a permission check. It backs the CLI
// bootstrap of the first administrator.
func (s *ActorService) Create(ctx context.Context, req CreateActorRequest) (*CreatedActor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if req.PersonID != nil {
		if _, err := s.repos.Person.GetByID(ctx, *req.PersonID); err != nil {
			return nil, errors.Internal("get person", err)
		}
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, errors.Internal("generate api key", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("hash api key", err)
	}

	actor := &domain.Actor{
		Name:         req.Name,
		Role:         domain.Role(req.Role),
		PersonID:     req.PersonID,
		APIKeyHash:   string(hash),
		APIKeyLookup: domain.APIKeyLookup(apiKey),
		IsActive:     true,
	}
	if err := s.repos.Actor.Create(ctx, actor); err != nil {
		return nil, errors.Internal("create actor", err)
	}

	s.logger.Info("Actor created",
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", string(actor.Role)),
	)

	return &CreatedActor{Actor: actor, APIKey: apiKey}, nil
}

// List returns every actor; only administrators may call it
func (s *ActorService) List(ctx context.Context, admin *domain.Actor) ([]*domain.Actor, error) {
	if admin == nil {
		return nil, &errors.ErrUnauthorized{}
	}
	if !admin.IsAdmin() {
		return nil, &errors.ErrPermissionDenied{Message: "only administrators may list actors"}
	}
	actors, err := s.repos.Actor.List(ctx)
	if err != nil {
		return nil, errors.Internal("list actors", err)
	}
	return actors, nil
}

func generateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return apiKeyPrefix + hex.EncodeToString(b), nil
}
