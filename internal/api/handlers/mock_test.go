package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/internal/service"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) order(args mock.Arguments) (*domain.Order, error) {
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderService) orders(args mock.Arguments) ([]*domain.Order, error) {
	o, _ := args.Get(0).([]*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderService) Create(ctx context.Context, actor *domain.Actor, req service.IntakeRequest) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, req))
}

func (m *mockOrderService) CreatePreTriage(ctx context.Context, actor *domain.Actor, req service.PreTriageRequest) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, req))
}

func (m *mockOrderService) Update(ctx context.Context, actor *domain.Actor, id uuid.UUID, patch service.OrderPatch) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, id, patch))
}

func (m *mockOrderService) Accept(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *mockOrderService) MarkPaid(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *mockOrderService) MarkReady(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *mockOrderService) MarkRetrieved(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *mockOrderService) MarkReturned(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *mockOrderService) Refuse(ctx context.Context, actor *domain.Actor, id uuid.UUID, req service.RefuseRequest) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, id, req))
}

func (m *mockOrderService) Get(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *mockOrderService) List(ctx context.Context, actor *domain.Actor, filter repository.OrderFilter) ([]*domain.Order, error) {
	return m.orders(m.Called(ctx, actor, filter))
}

func (m *mockOrderService) ListByPhase(ctx context.Context, actor *domain.Actor, phase string, limit, offset int) ([]*domain.Order, error) {
	return m.orders(m.Called(ctx, actor, phase, limit, offset))
}

func (m *mockOrderService) Events(ctx context.Context, actor *domain.Actor, id uuid.UUID) ([]*domain.OrderEvent, error) {
	args := m.Called(ctx, actor, id)
	e, _ := args.Get(0).([]*domain.OrderEvent)
	return e, args.Error(1)
}

func (m *mockOrderService) ListPhases(ctx context.Context, actor *domain.Actor) ([]*domain.Phase, error) {
	args := m.Called(ctx, actor)
	p, _ := args.Get(0).([]*domain.Phase)
	return p, args.Error(1)
}

func (m *mockOrderService) ListRefusalReasons(ctx context.Context, actor *domain.Actor) ([]*domain.RefusalReason, error) {
	args := m.Called(ctx, actor)
	r, _ := args.Get(0).([]*domain.RefusalReason)
	return r, args.Error(1)
}

type mockIdempotencyKeys struct {
	mock.Mock
}

func (m *mockIdempotencyKeys) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	args := m.Called(ctx, key)
	k, _ := args.Get(0).(*domain.IdempotencyKey)
	return k, args.Error(1)
}

func (m *mockIdempotencyKeys) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	return m.Called(ctx, key).Error(0)
}

type mockActorAdmin struct {
	mock.Mock
}

func (m *mockActorAdmin) CreateAs(ctx context.Context, admin *domain.Actor, req service.CreateActorRequest) (*service.CreatedActor, error) {
	args := m.Called(ctx, admin, req)
	c, _ := args.Get(0).(*service.CreatedActor)
	return c, args.Error(1)
}

func (m *mockActorAdmin) List(ctx context.Context, admin *domain.Actor) ([]*domain.Actor, error) {
	args := m.Called(ctx, admin)
	a, _ := args.Get(0).([]*domain.Actor)
	return a, args.Error(1)
}
