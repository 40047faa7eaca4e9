package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/roupadegala/servicecontrol/internal/domain"
)

// PhaseRepository defines phase data access methods
type PhaseRepository interface {
	GetByCode(ctx context.Context, code domain.PhaseCode) (*domain.Phase, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error)
	// CreateIfAbsent inserts the phase unless one with the same code exists,
	// and returns whichever row ended up stored.
	CreateIfAbsent(ctx context.Context, phase *domain.Phase) (*domain.Phase, error)
	List(ctx context.Context) ([]*domain.Phase, error)
}

// RefusalReasonRepository defines refusal reason data access methods
type RefusalReasonRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RefusalReason, error)
	List(ctx context.Context) ([]*domain.RefusalReason, error)
}

// OrderFilter narrows order listings
type OrderFilter struct {
	Phase  *domain.PhaseCode
	Late   *bool
	Limit  int
	Offset int
}

// ServiceOrderRepository defines service order data access methods
type ServiceOrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// Update fails with a "phase" ErrNotFound when PhaseID names a deleted phase
	Update(ctx context.Context, order *domain.Order) error
	// UpdateWithItems writes the order and replaces its items in one transaction
	UpdateWithItems(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	// ListActive returns every order with a non-terminal phase
	ListActive(ctx context.Context) ([]*domain.Order, error)
	SetLateFlag(ctx context.Context, id uuid.UUID, late bool) error
}

// ServiceOrderItemRepository defines order item data access methods
type ServiceOrderItemRepository interface {
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
	// ReplaceForOrder deletes the order's items and inserts the given set atomically
	ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []*domain.OrderItem) error
}

// CatalogRepository defines read access to the product catalog
type CatalogRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// FindColorCombination returns nil, nil when the pairing does not exist
	FindColorCombination(ctx context.Context, catalogueID, intensityID uuid.UUID) (*domain.ColorCombination, error)
}

// TemporaryProductRepository defines ad-hoc product data access methods
type TemporaryProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TemporaryProduct, error)
	// FindOrCreate returns the stored row with the same description, creating it if needed
	FindOrCreate(ctx context.Context, product *domain.TemporaryProduct) (*domain.TemporaryProduct, error)
}

// PersonRepository defines person/contact/address data access methods
type PersonRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error)
	FindOrCreateByCPF(ctx context.Context, person *domain.Person) (*domain.Person, error)
	// FindEmployeeByName matches the exact name among non-client persons
	FindEmployeeByName(ctx context.Context, name string) (*domain.Person, error)
	// FindContactOwner returns the person already using the phone or e-mail, or nil
	FindContactOwner(ctx context.Context, phone string, email *string) (*uuid.UUID, error)
	AttachContact(ctx context.Context, contact *domain.Contact) error
	AttachAddress(ctx context.Context, address *domain.Address) error
	FindCityByName(ctx context.Context, name string) (*domain.City, error)
}

// ActorRepository defines actor data access methods
type ActorRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Actor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Actor, error)
	Create(ctx context.Context, actor *domain.Actor) error
	List(ctx context.Context) ([]*domain.Actor, error)
}

// OrderEventRepository defines order event data access methods
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// PhaseCount is one row of the per-phase tally
type PhaseCount struct {
	Phase domain.PhaseCode
	Count int
}

// Financials is the money summary for one period
type Financials struct {
	TotalOrdered  float64
	TotalReceived float64
	OrderCount    int
}

// ReportRepository defines the read-side queries behind the dashboard
type ReportRepository interface {
	CountByPhase(ctx context.Context) ([]PhaseCount, error)
	CountLate(ctx context.Context) (int, error)
	// ListScheduled returns non-terminal orders carrying at least one of fitting/pickup/return dates
	ListScheduled(ctx context.Context) ([]*domain.Order, error)
	// Financials sums orders whose order date falls in [from, to], refused ones excluded
	Financials(ctx context.Context, from, to time.Time) (Financials, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Phase            PhaseRepository
	RefusalReason    RefusalReasonRepository
	ServiceOrder     ServiceOrderRepository
	ServiceOrderItem ServiceOrderItemRepository
	Catalog          CatalogRepository
	TemporaryProduct TemporaryProductRepository
	Person           PersonRepository
	Actor            ActorRepository
	OrderEvent       OrderEventRepository
	IdempotencyKey   IdempotencyKeyRepository
	Report           ReportRepository
}
