package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/internal/repository/memory"
)

type fixture struct {
	ctx       context.Context
	store     *memory.Store
	repos     *repository.Repositories
	registry  *PhaseRegistry
	lifecycle *OrderLifecycle
	reporter  *Reporter
	now       time.Time

	employee      *domain.Person
	otherEmployee *domain.Person
	adminPerson   *domain.Person

	admin          *domain.Actor
	attendant      *domain.Actor // linked to employee
	otherAttendant *domain.Actor // linked to otherEmployee
	reception      *domain.Actor
	client         *domain.Actor

	city *domain.City
}

// 2026-03-18 is a Wednesday; 15:00 UTC is midday in São Paulo.
var fixtureNow = time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	store := memory.NewStore()
	store.SeedDefaults()
	repos := store.Repositories()
	logger := zap.NewNop()

	f := &fixture{
		ctx:   context.Background(),
		store: store,
		repos: repos,
		now:   fixtureNow,
	}

	opts := []Option{
		WithClock(func() time.Time { return f.now }),
		WithLocation(loc),
		WithUpcomingWindow(10),
	}
	f.registry = NewPhaseRegistry(repos.Phase, logger)
	composer := NewItemComposer(repos, logger)
	f.lifecycle = NewOrderLifecycle(repos, f.registry, composer, logger, opts...)
	f.reporter = NewReporter(repos, f.lifecycle, logger, opts...)

	f.employee = store.AddPerson(&domain.Person{Name: "Maria Souza", Type: domain.RoleAttendant})
	f.otherEmployee = store.AddPerson(&domain.Person{Name: "Carlos Lima", Type: domain.RoleAttendant})
	f.adminPerson = store.AddPerson(&domain.Person{Name: "Ana Gerente", Type: domain.RoleAdmin})
	f.city = store.AddCity(&domain.City{Name: "Campinas", UF: "SP"})

	f.admin = &domain.Actor{ID: uuid.New(), Name: "admin", Role: domain.RoleAdmin, PersonID: &f.adminPerson.ID, IsActive: true}
	f.attendant = &domain.Actor{ID: uuid.New(), Name: "maria", Role: domain.RoleAttendant, PersonID: &f.employee.ID, IsActive: true}
	f.otherAttendant = &domain.Actor{ID: uuid.New(), Name: "carlos", Role: domain.RoleAttendant, PersonID: &f.otherEmployee.ID, IsActive: true}
	f.reception = &domain.Actor{ID: uuid.New(), Name: "reception", Role: domain.RoleReception, IsActive: true}
	f.client = &domain.Actor{ID: uuid.New(), Name: "client", Role: domain.RoleClient, IsActive: true}

	return f
}

func (f *fixture) today() time.Time {
	return domain.DateOnly(time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC))
}

// day formats today+offset as YYYY-MM-DD
func (f *fixture) day(offset int) *string {
	s := f.today().AddDate(0, 0, offset).Format(dateLayout)
	return &s
}

func intake(cpf string) IntakeRequest {
	return IntakeRequest{
		Client: ClientInfo{
			Name:  "João da Silva",
			Phone: "11999990000",
			CPF:   cpf,
		},
		EmployeeName: "Maria Souza",
		Order: OrderInfo{
			EventDate:      "2026-04-10",
			TotalValue:     500,
			AdvancePayment: 100,
			Occasion:       "Casamento",
		},
	}
}

// createOrder registers a walk-in order as the assigned attendant
func (f *fixture) createOrder(t *testing.T, mutate func(*IntakeRequest)) *domain.Order {
	t.Helper()
	req := intake("123.456.789-01")
	if mutate != nil {
		mutate(&req)
	}
	order, err := f.lifecycle.Create(f.ctx, f.attendant, req)
	require.NoError(t, err)
	return order
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *domain.Order {
	t.Helper()
	order, err := f.repos.ServiceOrder.GetByID(f.ctx, id)
	require.NoError(t, err)
	return order
}

func strPtr(s string) *string { return &s }
