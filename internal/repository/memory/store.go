// Package memory keeps every repository in process. It backs STORAGE=memory
// and the service tests; nothing survives a restart.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
)

// Store holds the tables shared by the in-memory repositories
type Store struct {
	mu sync.RWMutex

	phases            map[uuid.UUID]*domain.Phase
	refusalReasons    map[uuid.UUID]*domain.RefusalReason
	orders            map[uuid.UUID]*domain.Order
	items             map[uuid.UUID][]*domain.OrderItem
	products          map[uuid.UUID]*domain.Product
	colorCombinations []*domain.ColorCombination
	temporaryProducts []*domain.TemporaryProduct
	persons           map[uuid.UUID]*domain.Person
	contacts          []*domain.Contact
	addresses         []*domain.Address
	cities            []*domain.City
	actors            map[uuid.UUID]*domain.Actor
	events            []*domain.OrderEvent
	idempotencyKeys   map[string]*domain.IdempotencyKey
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		phases:          make(map[uuid.UUID]*domain.Phase),
		refusalReasons:  make(map[uuid.UUID]*domain.RefusalReason),
		orders:          make(map[uuid.UUID]*domain.Order),
		items:           make(map[uuid.UUID][]*domain.OrderItem),
		products:        make(map[uuid.UUID]*domain.Product),
		persons:         make(map[uuid.UUID]*domain.Person),
		actors:          make(map[uuid.UUID]*domain.Actor),
		idempotencyKeys: make(map[string]*domain.IdempotencyKey),
	}
}

// SeedDefaults inserts the phases and refusal reasons the SQL migrations seed
func (s *Store) SeedDefaults() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, code := range []domain.PhaseCode{
		domain.PhasePending,
		domain.PhaseAwaitingPickup,
		domain.PhaseAwaitingReturn,
		domain.PhaseLate,
		domain.PhaseCompleted,
		domain.PhaseRefused,
	} {
		if s.phaseByCodeLocked(code) == nil {
			id := uuid.New()
			s.phases[id] = &domain.Phase{ID: id, Code: code, Name: code.DisplayName(), CreatedAt: now}
		}
	}
	for _, name := range []string{"CANCELAMENTO DO EVENTO", "DESISTÊNCIA", "MUDANÇA DE DATA DO EVENTO", "OUTROS"} {
		id := uuid.New()
		s.refusalReasons[id] = &domain.RefusalReason{ID: id, Name: name, CreatedAt: now}
	}
}

// DeletePhase removes a phase row; orders pointing at it lose their phase,
// as ON DELETE SET NULL does in Postgres.
func (s *Store) DeletePhase(code domain.PhaseCode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.phaseByCodeLocked(code)
	if p == nil {
		return
	}
	delete(s.phases, p.ID)
	for _, o := range s.orders {
		if o.PhaseID != nil && *o.PhaseID == p.ID {
			o.PhaseID = nil
		}
	}
}

// AddProduct registers a catalog product
func (s *Store) AddProduct(p *domain.Product) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	s.products[p.ID] = &cp
	return p
}

// AddColorCombination registers a color/intensity pairing
func (s *Store) AddColorCombination(c *domain.ColorCombination) *domain.ColorCombination {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	s.colorCombinations = append(s.colorCombinations, &cp)
	return c
}

// AddCity registers a city for address resolution
func (s *Store) AddCity(c *domain.City) *domain.City {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	s.cities = append(s.cities, &cp)
	return c
}

// AddPerson registers a person, typically an employee
func (s *Store) AddPerson(p *domain.Person) *domain.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	s.persons[p.ID] = &cp
	return p
}

// Addresses returns a copy of the stored addresses of a person
func (s *Store) Addresses(personID uuid.UUID) []domain.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Address
	for _, a := range s.addresses {
		if a.PersonID == personID {
			out = append(out, *a)
		}
	}
	return out
}

// CountTemporaryProducts reports how many ad-hoc product rows exist
func (s *Store) CountTemporaryProducts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.temporaryProducts)
}

// CountOrders reports how many orders exist
func (s *Store) CountOrders() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Repositories returns the repository set backed by this store
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Phase:            &phaseRepository{s},
		RefusalReason:    &refusalReasonRepository{s},
		ServiceOrder:     &serviceOrderRepository{s},
		ServiceOrderItem: &serviceOrderItemRepository{s},
		Catalog:          &catalogRepository{s},
		TemporaryProduct: &temporaryProductRepository{s},
		Person:           &personRepository{s},
		Actor:            &actorRepository{s},
		OrderEvent:       &orderEventRepository{s},
		IdempotencyKey:   &idempotencyKeyRepository{s},
		Report:           &reportRepository{s},
	}
}

// NewRepositories creates a seeded store and returns its repositories
func NewRepositories() *repository.Repositories {
	s := NewStore()
	s.SeedDefaults()
	return s.Repositories()
}

func (s *Store) phaseByCodeLocked(code domain.PhaseCode) *domain.Phase {
	for _, p := range s.phases {
		if p.Code == code {
			return p
		}
	}
	return nil
}

// orderCopyLocked returns a detached copy with the phase code resolved
// from the phase table, mirroring the SQL join.
func (s *Store) orderCopyLocked(o *domain.Order) *domain.Order {
	cp := *o
	cp.Phase = ""
	if o.PhaseID != nil {
		if p, ok := s.phases[*o.PhaseID]; ok {
			cp.Phase = p.Code
		} else {
			cp.PhaseID = nil
		}
	}
	cp.Renter, cp.Employee, cp.Attendant, cp.Items = nil, nil, nil, nil
	return &cp
}

func sortOrders(orders []*domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].OrderDate.After(orders[j].OrderDate)
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
