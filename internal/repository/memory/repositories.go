package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

type phaseRepository struct{ s *Store }

func (r *phaseRepository) GetByCode(_ context.Context, code domain.PhaseCode) (*domain.Phase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p := r.s.phaseByCodeLocked(code)
	if p == nil {
		return nil, &errors.ErrNotFound{Resource: "phase", ID: string(code)}
	}
	cp := *p
	return &cp, nil
}

func (r *phaseRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Phase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.phases[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "phase", ID: id.String()}
	}
	cp := *p
	return &cp, nil
}

func (r *phaseRepository) CreateIfAbsent(_ context.Context, phase *domain.Phase) (*domain.Phase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing := r.s.phaseByCodeLocked(phase.Code); existing != nil {
		cp := *existing
		return &cp, nil
	}
	if phase.ID == uuid.Nil {
		phase.ID = uuid.New()
	}
	if phase.CreatedAt.IsZero() {
		phase.CreatedAt = time.Now()
	}
	if phase.Name == "" {
		phase.Name = phase.Code.DisplayName()
	}
	stored := *phase
	r.s.phases[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *phaseRepository) List(_ context.Context) ([]*domain.Phase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	phases := make([]*domain.Phase, 0, len(r.s.phases))
	for _, p := range r.s.phases {
		cp := *p
		phases = append(phases, &cp)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i].Code < phases[j].Code })
	return phases, nil
}

type refusalReasonRepository struct{ s *Store }

func (r *refusalReasonRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.RefusalReason, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reason, ok := r.s.refusalReasons[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "refusal_reason", ID: id.String()}
	}
	cp := *reason
	return &cp, nil
}

func (r *refusalReasonRepository) List(_ context.Context) ([]*domain.RefusalReason, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reasons := make([]*domain.RefusalReason, 0, len(r.s.refusalReasons))
	for _, reason := range r.s.refusalReasons {
		cp := *reason
		reasons = append(reasons, &cp)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i].Name < reasons[j].Name })
	return reasons, nil
}

type serviceOrderRepository struct{ s *Store }

func (r *serviceOrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	stored := *order
	r.s.orders[order.ID] = &stored
	return nil
}

func (r *serviceOrderRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "service_order", ID: id.String()}
	}
	return r.s.orderCopyLocked(o), nil
}

func (r *serviceOrderRepository) Update(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkUpdateLocked(order); err != nil {
		return err
	}
	r.updateLocked(order)
	return nil
}

// UpdateWithItems applies both writes or neither
func (r *serviceOrderRepository) UpdateWithItems(_ context.Context, order *domain.Order, items []*domain.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkUpdateLocked(order); err != nil {
		return err
	}
	stored, err := r.s.prepareItemsLocked(order.ID, items)
	if err != nil {
		return err
	}
	r.updateLocked(order)
	r.s.items[order.ID] = stored
	return nil
}

// checkUpdateLocked mirrors the SQL row lookup and the phase_id foreign key
func (r *serviceOrderRepository) checkUpdateLocked(order *domain.Order) error {
	if _, ok := r.s.orders[order.ID]; !ok {
		return &errors.ErrNotFound{Resource: "service_order", ID: order.ID.String()}
	}
	if order.PhaseID != nil {
		if _, ok := r.s.phases[*order.PhaseID]; !ok {
			return &errors.ErrNotFound{Resource: "phase", ID: order.PhaseID.String()}
		}
	}
	return nil
}

func (r *serviceOrderRepository) updateLocked(order *domain.Order) {
	existing := r.s.orders[order.ID]
	order.UpdatedAt = time.Now()
	stored := *order
	// renter and creation stamps are immutable, as in the SQL UPDATE
	stored.RenterID = existing.RenterID
	stored.CreatedBy = existing.CreatedBy
	stored.CreatedAt = existing.CreatedAt
	r.s.orders[order.ID] = &stored
}

func (r *serviceOrderRepository) List(_ context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var orders []*domain.Order
	for _, o := range r.s.orders {
		cp := r.s.orderCopyLocked(o)
		if filter.Phase != nil {
			if *filter.Phase == domain.PhaseLate {
				if !cp.IsLate || !cp.IsActive() {
					continue
				}
			} else if cp.Phase != *filter.Phase {
				continue
			}
		}
		if filter.Late != nil && cp.IsLate != *filter.Late {
			continue
		}
		orders = append(orders, cp)
	}
	sortOrders(orders)

	if filter.Offset > 0 {
		if filter.Offset >= len(orders) {
			return nil, nil
		}
		orders = orders[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(orders) {
		orders = orders[:filter.Limit]
	}
	return orders, nil
}

func (r *serviceOrderRepository) ListActive(_ context.Context) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var orders []*domain.Order
	for _, o := range r.s.orders {
		cp := r.s.orderCopyLocked(o)
		if cp.IsActive() {
			orders = append(orders, cp)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (r *serviceOrderRepository) SetLateFlag(_ context.Context, id uuid.UUID, late bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "service_order", ID: id.String()}
	}
	o.IsLate = late
	return nil
}

type serviceOrderItemRepository struct{ s *Store }

func (r *serviceOrderItemRepository) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stored := r.s.items[orderID]
	items := make([]*domain.OrderItem, 0, len(stored))
	for _, item := range stored {
		cp := *item
		switch p := cp.Product.(type) {
		case domain.CatalogItem:
			if product, ok := r.s.products[p.ProductID]; ok {
				pc := *product
				p.Product = &pc
			}
			cp.Product = p
		case domain.AdHocItem:
			for _, tp := range r.s.temporaryProducts {
				if tp.ID == p.TemporaryProductID {
					tc := *tp
					p.TemporaryProduct = &tc
				}
			}
			cp.Product = p
		}
		items = append(items, &cp)
	}
	return items, nil
}

func (r *serviceOrderItemRepository) ReplaceForOrder(_ context.Context, orderID uuid.UUID, items []*domain.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, err := r.s.prepareItemsLocked(orderID, items)
	if err != nil {
		return err
	}
	r.s.items[orderID] = stored
	return nil
}

// prepareItemsLocked checks every item before anything is stored
func (s *Store) prepareItemsLocked(orderID uuid.UUID, items []*domain.OrderItem) ([]*domain.OrderItem, error) {
	now := time.Now()
	stored := make([]*domain.OrderItem, 0, len(items))
	for _, item := range items {
		productID, temporaryProductID := item.ProductRefs()
		if _, err := domain.ItemProductFromRefs(productID, temporaryProductID); err != nil {
			return nil, err
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.OrderID = orderID
		cp := *item
		stored = append(stored, &cp)
	}
	return stored, nil
}

type catalogRepository struct{ s *Store }

func (r *catalogRepository) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	cp := *p
	return &cp, nil
}

func (r *catalogRepository) FindColorCombination(_ context.Context, catalogueID, intensityID uuid.UUID) (*domain.ColorCombination, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.colorCombinations {
		if c.ColorCatalogueID == catalogueID && c.ColorIntensityID == intensityID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

type temporaryProductRepository struct{ s *Store }

func (r *temporaryProductRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.TemporaryProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, tp := range r.s.temporaryProducts {
		if tp.ID == id {
			cp := *tp
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "temporary_product", ID: id.String()}
}

func (r *temporaryProductRepository) FindOrCreate(_ context.Context, product *domain.TemporaryProduct) (*domain.TemporaryProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, tp := range r.s.temporaryProducts {
		if tp.SameDescription(product) {
			cp := *tp
			return &cp, nil
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	stored := *product
	r.s.temporaryProducts = append(r.s.temporaryProducts, &stored)
	cp := stored
	return &cp, nil
}

type personRepository struct{ s *Store }

func (r *personRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Person, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.persons[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "person", ID: id.String()}
	}
	cp := *p
	return &cp, nil
}

func (r *personRepository) FindOrCreateByCPF(_ context.Context, person *domain.Person) (*domain.Person, error) {
	if person.CPF == nil {
		return nil, &errors.ErrValidation{Message: "CPF is required", Fields: map[string]string{"cpf": "required"}}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.persons {
		if p.CPF != nil && *p.CPF == *person.CPF {
			cp := *p
			return &cp, nil
		}
	}
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = time.Now()
	}
	stored := *person
	r.s.persons[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *personRepository) FindEmployeeByName(_ context.Context, name string) (*domain.Person, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found *domain.Person
	for _, p := range r.s.persons {
		if p.Name != name || p.Type == domain.RoleClient {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			found = p
		}
	}
	if found == nil {
		return nil, &errors.ErrNotFound{Resource: "employee", ID: name}
	}
	cp := *found
	return &cp, nil
}

func (r *personRepository) FindContactOwner(_ context.Context, phone string, email *string) (*uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.contacts {
		if c.Phone == phone || (email != nil && c.Email != nil && *c.Email == *email) {
			id := c.PersonID
			return &id, nil
		}
	}
	return nil, nil
}

func (r *personRepository) AttachContact(_ context.Context, contact *domain.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contacts {
		if c.PersonID == contact.PersonID && c.Phone == contact.Phone {
			return nil
		}
		if contact.Email != nil && c.Email != nil && *c.Email == *contact.Email {
			return nil
		}
	}
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	cp := *contact
	r.s.contacts = append(r.s.contacts, &cp)
	return nil
}

func (r *personRepository) AttachAddress(_ context.Context, address *domain.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.addresses {
		if a.PersonID == address.PersonID && a.Street == address.Street && a.Number == address.Number &&
			a.CEP == address.CEP && a.Neighborhood == address.Neighborhood && a.CityID == address.CityID {
			return nil
		}
	}
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	if address.CreatedAt.IsZero() {
		address.CreatedAt = time.Now()
	}
	cp := *address
	r.s.addresses = append(r.s.addresses, &cp)
	return nil
}

func (r *personRepository) FindCityByName(_ context.Context, name string) (*domain.City, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.cities {
		if equalFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "city", ID: name}
}

type actorRepository struct{ s *Store }

func (r *actorRepository) GetByAPIKey(_ context.Context, apiKey string) (*domain.Actor, error) {
	lookup := domain.APIKeyLookup(apiKey)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.actors {
		if a.IsActive && a.APIKeyLookup == lookup {
			if bcrypt.CompareHashAndPassword([]byte(a.APIKeyHash), []byte(apiKey)) != nil {
				break
			}
			cp := *a
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "actor", ID: "api_key"}
}

func (r *actorRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Actor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.actors[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "actor", ID: id.String()}
	}
	cp := *a
	return &cp, nil
}

func (r *actorRepository) Create(_ context.Context, actor *domain.Actor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.actors {
		if a.APIKeyLookup == actor.APIKeyLookup {
			return &errors.ErrConflict{Message: "api key already in use"}
		}
	}
	now := time.Now()
	if actor.ID == uuid.Nil {
		actor.ID = uuid.New()
	}
	if actor.CreatedAt.IsZero() {
		actor.CreatedAt = now
	}
	if actor.UpdatedAt.IsZero() {
		actor.UpdatedAt = now
	}
	cp := *actor
	r.s.actors[actor.ID] = &cp
	return nil
}

func (r *actorRepository) List(_ context.Context) ([]*domain.Actor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	actors := make([]*domain.Actor, 0, len(r.s.actors))
	for _, a := range r.s.actors {
		cp := *a
		actors = append(actors, &cp)
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].CreatedAt.After(actors[j].CreatedAt) })
	return actors, nil
}

type orderEventRepository struct{ s *Store }

func (r *orderEventRepository) Create(_ context.Context, event *domain.OrderEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	cp := *event
	r.s.events = append(r.s.events, &cp)
	return nil
}

func (r *orderEventRepository) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var events []*domain.OrderEvent
	for _, e := range r.s.events {
		if e.OrderID == orderID {
			cp := *e
			events = append(events, &cp)
		}
	}
	return events, nil
}

type idempotencyKeyRepository struct{ s *Store }

func (r *idempotencyKeyRepository) GetByKey(_ context.Context, key string) (*domain.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	k, ok := r.s.idempotencyKeys[key]
	if !ok {
		return nil, nil
	}
	cp := *k
	return &cp, nil
}

func (r *idempotencyKeyRepository) Create(_ context.Context, key *domain.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.idempotencyKeys[key.Key]; ok {
		return &errors.ErrConflict{Message: "idempotency key already exists"}
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}
	cp := *key
	r.s.idempotencyKeys[key.Key] = &cp
	return nil
}

type reportRepository struct{ s *Store }

func (r *reportRepository) CountByPhase(_ context.Context) ([]repository.PhaseCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tally := make(map[domain.PhaseCode]int)
	for _, o := range r.s.orders {
		if cp := r.s.orderCopyLocked(o); cp.Phase != "" {
			tally[cp.Phase]++
		}
	}
	counts := make([]repository.PhaseCount, 0, len(tally))
	for code, n := range tally {
		counts = append(counts, repository.PhaseCount{Phase: code, Count: n})
	}
	return counts, nil
}

func (r *reportRepository) CountLate(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, o := range r.s.orders {
		if cp := r.s.orderCopyLocked(o); cp.IsLate && cp.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r *reportRepository) ListScheduled(_ context.Context) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var orders []*domain.Order
	for _, o := range r.s.orders {
		cp := r.s.orderCopyLocked(o)
		if !cp.IsActive() {
			continue
		}
		if cp.FittingDate == nil && cp.PickupDate == nil && cp.ReturnDate == nil {
			continue
		}
		orders = append(orders, cp)
	}
	return orders, nil
}

func (r *reportRepository) Financials(_ context.Context, from, to time.Time) (repository.Financials, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	var f repository.Financials
	for _, o := range r.s.orders {
		cp := r.s.orderCopyLocked(o)
		if cp.Phase == domain.PhaseRefused {
			continue
		}
		d := domain.DateOnly(cp.OrderDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		f.TotalOrdered += cp.TotalValue
		f.TotalReceived += cp.AdvancePayment
		f.OrderCount++
	}
	return f, nil
}
