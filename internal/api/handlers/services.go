package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/internal/service"
)

// OrderService is the lifecycle surface used by the order handlers
type OrderService interface {
	Create(ctx context.Context, actor *domain.Actor, req service.IntakeRequest) (*domain.Order, error)
	CreatePreTriage(ctx context.Context, actor *domain.Actor, req service.PreTriageRequest) (*domain.Order, error)
	Update(ctx context.Context, actor *domain.Actor, id uuid.UUID, patch service.OrderPatch) (*domain.Order, error)
	Accept(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error)
	MarkPaid(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error)
	MarkReady(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error)
	MarkRetrieved(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error)
	MarkReturned(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error)
	Refuse(ctx context.Context, actor *domain.Actor, id uuid.UUID, req service.RefuseRequest) (*domain.Order, error)
	Get(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, actor *domain.Actor, filter repository.OrderFilter) ([]*domain.Order, error)
	ListByPhase(ctx context.Context, actor *domain.Actor, phase string, limit, offset int) ([]*domain.Order, error)
	Events(ctx context.Context, actor *domain.Actor, id uuid.UUID) ([]*domain.OrderEvent, error)
	ListPhases(ctx context.Context, actor *domain.Actor) ([]*domain.Phase, error)
	ListRefusalReasons(ctx context.Context, actor *domain.Actor) ([]*domain.RefusalReason, error)
}

// MetricsService computes the dashboard
type MetricsService interface {
	ComputeMetrics(ctx context.Context, actor *domain.Actor) (*service.Metrics, error)
}

// ActorAdmin manages API actors
type ActorAdmin interface {
	CreateAs(ctx context.Context, admin *domain.Actor, req service.CreateActorRequest) (*service.CreatedActor, error)
	List(ctx context.Context, admin *domain.Actor) ([]*domain.Actor, error)
}

var (
	_ OrderService   = (*service.OrderLifecycle)(nil)
	_ MetricsService = (*service.Reporter)(nil)
	_ ActorAdmin     = (*service.ActorService)(nil)
)
