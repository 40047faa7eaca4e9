package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Phase:            NewPhaseRepository(db, logger),
		RefusalReason:    NewRefusalReasonRepository(db, logger),
		ServiceOrder:     NewServiceOrderRepository(db, logger),
		ServiceOrderItem: NewServiceOrderItemRepository(db, logger),
		Catalog:          NewCatalogRepository(db, logger),
		TemporaryProduct: NewTemporaryProductRepository(db, logger),
		Person:           NewPersonRepository(db, logger),
		Actor:            NewActorRepository(db, logger),
		OrderEvent:       NewOrderEventRepository(db, logger),
		IdempotencyKey:   NewIdempotencyKeyRepository(db, logger),
		Report:           NewReportRepository(db, logger),
	}
}
