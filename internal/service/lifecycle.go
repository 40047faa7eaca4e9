package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// OrderLifecycle owns every state change of a service order
type OrderLifecycle struct {
	repos    *repository.Repositories
	registry *PhaseRegistry
	composer *ItemComposer
	logger   *zap.Logger
	settings
}

// NewOrderLifecycle creates the lifecycle engine
func NewOrderLifecycle(
	repos *repository.Repositories,
	registry *PhaseRegistry,
	composer *ItemComposer,
	logger *zap.Logger,
	opts ...Option,
) *OrderLifecycle {
	return &OrderLifecycle{
		repos:    repos,
		registry: registry,
		composer: composer,
		logger:   logger,
		settings: newSettings(opts),
	}
}

// Create registers a walk-in order. The assigned employee is matched by name
// and a declared city must exist.
func (s *OrderLifecycle) Create(ctx context.Context, actor *domain.Actor, req IntakeRequest) (*domain.Order, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	cpf, err := normalizeCPF(req.Client.CPF)
	if err != nil {
		return nil, err
	}
	order, err := s.orderFromInfo(req.Order)
	if err != nil {
		return nil, err
	}

	employee, err := s.repos.Person.FindEmployeeByName(ctx, strings.TrimSpace(req.EmployeeName))
	if err != nil {
		return nil, errors.Internal("find employee", err)
	}
	order.EmployeeID = &employee.ID

	var city *domain.City
	if req.Address != nil {
		city, err = s.repos.Person.FindCityByName(ctx, req.Address.City)
		if err != nil {
			return nil, errors.Internal("find city", err)
		}
	}

	if err := s.checkContactOwner(ctx, req.Client, cpf); err != nil {
		return nil, err
	}

	var items []*domain.OrderItem
	if len(req.Items) > 0 {
		if items, err = s.composer.Compose(ctx, actor, req.Items); err != nil {
			return nil, err
		}
	}

	renter, err := s.resolveRenter(ctx, actor, req.Client, cpf)
	if err != nil {
		return nil, err
	}
	if city != nil {
		if err := s.attachAddress(ctx, renter, req.Address, city); err != nil {
			return nil, err
		}
	}

	return s.persistNew(ctx, actor, order, renter, items, "walk_in")
}

// CreatePreTriage registers an order from the reception desk. The employee
// is given by id and must be an attendant; an unknown city only drops the
// address.
func (s *OrderLifecycle) CreatePreTriage(ctx context.Context, actor *domain.Actor, req PreTriageRequest) (*domain.Order, error) {
	if actor == nil {
		return nil, &errors.ErrUnauthorized{}
	}
	if actor.Role != domain.RoleReception && actor.Role != domain.RoleAdmin {
		return nil, &errors.ErrPermissionDenied{Message: "only reception or administrators may pre-triage orders"}
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	cpf, err := normalizeCPF(req.Client.CPF)
	if err != nil {
		return nil, err
	}
	eventDate, err := parseDate("event_date", &req.EventDate)
	if err != nil {
		return nil, err
	}

	employee, err := s.repos.Person.GetByID(ctx, req.EmployeeID)
	if err != nil && !errors.IsNotFound(err) {
		return nil, errors.Internal("get employee", err)
	}
	if employee == nil || employee.Type != domain.RoleAttendant {
		return nil, &errors.ErrNotFound{Resource: "employee", ID: req.EmployeeID.String()}
	}

	var city *domain.City
	if req.Address != nil {
		city, err = s.repos.Person.FindCityByName(ctx, req.Address.City)
		switch {
		case errors.IsNotFound(err):
			s.logger.Info("City not found, skipping address", zap.String("city", req.Address.City))
			city = nil
		case err != nil:
			return nil, errors.Internal("find city", err)
		}
	}

	if err := s.checkContactOwner(ctx, req.Client, cpf); err != nil {
		return nil, err
	}

	renter, err := s.resolveRenter(ctx, actor, req.Client, cpf)
	if err != nil {
		return nil, err
	}
	if city != nil {
		if err := s.attachAddress(ctx, renter, req.Address, city); err != nil {
			return nil, err
		}
	}

	order := &domain.Order{
		OrderDate:    s.today(),
		EventDate:    *eventDate,
		EmployeeID:   &employee.ID,
		Occasion:     strings.TrimSpace(req.Occasion),
		RenterRole:   trimmedPtr(req.RenterRole),
		Observations: trimmedPtr(req.Observations),
	}
	return s.persistNew(ctx, actor, order, renter, nil, "pre_triage")
}

// Update merges the patch into the order. A supplied item list replaces the
// stored one in the same transaction as the order write; composition errors
// abort before anything is written.
func (s *OrderLifecycle) Update(ctx context.Context, actor *domain.Actor, id uuid.UUID, patch OrderPatch) (*domain.Order, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := applyPatch(order, patch)
	if err != nil {
		return nil, err
	}

	var items []*domain.OrderItem
	if patch.Items != nil {
		if items, err = s.composer.Compose(ctx, actor, *patch.Items); err != nil {
			return nil, err
		}
		changed = append(changed, "items")
	}

	order.UpdatedBy = &actor.ID
	if patch.Items != nil {
		err = s.repos.ServiceOrder.UpdateWithItems(ctx, order, items)
	} else {
		err = s.repos.ServiceOrder.Update(ctx, order)
	}
	if err != nil {
		return nil, errors.Internal("update order", err)
	}

	data := map[string]interface{}{"fields": changed}
	if patch.Items != nil {
		data["item_count"] = len(items)
	}
	s.recordEvent(ctx, actor, order.ID, domain.OrderEventUpdated, data)
	s.logger.Info("Order updated", zap.String("order_id", order.ID.String()), zap.Strings("fields", changed))

	return s.hydrate(ctx, order)
}

// Accept moves a pending order to AWAITING_PAYMENT, configuring that phase
// on first use.
func (s *OrderLifecycle) Accept(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, order, domain.PhaseAwaitingPayment, nil)
}

// MarkPaid settles the balance and releases the order to production or
// pickup. When AWAITING_PAYMENT is not configured it succeeds without change.
func (s *OrderLifecycle) MarkPaid(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireHandler(actor, order); err != nil {
		return nil, err
	}

	awaiting, err := s.registry.Find(ctx, domain.PhaseAwaitingPayment)
	if err != nil {
		return nil, err
	}
	if awaiting == nil {
		s.logger.Info("AWAITING_PAYMENT phase not configured, mark-paid is a no-op",
			zap.String("order_id", order.ID.String()))
		return s.hydrate(ctx, order)
	}

	next := domain.PhaseAwaitingPickup
	if order.ProductionDate != nil {
		next = domain.PhaseInProduction
	}
	if order.Phase != domain.PhaseAwaitingPayment {
		return nil, &errors.ErrInvalidStateTransition{From: order.Phase, To: next}
	}

	return s.transition(ctx, actor, order, next, func(o *domain.Order) {
		now := s.now()
		o.AdvancePayment = o.TotalValue
		o.RemainingPayment = 0
		o.PaidAt = &now
	})
}

// MarkReady finishes production
func (s *OrderLifecycle) MarkReady(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Phase != domain.PhaseInProduction {
		return nil, &errors.ErrInvalidStateTransition{From: order.Phase, To: domain.PhaseAwaitingPickup}
	}
	return s.transition(ctx, actor, order, domain.PhaseAwaitingPickup, nil)
}

// MarkRetrieved records that the customer picked the order up
func (s *OrderLifecycle) MarkRetrieved(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireHandler(actor, order); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, order, domain.PhaseAwaitingReturn, func(o *domain.Order) {
		now := s.now()
		o.RetrievedAt = &now
	})
}

// MarkReturned records the return and completes the order
func (s *OrderLifecycle) MarkReturned(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireHandler(actor, order); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, order, domain.PhaseCompleted, func(o *domain.Order) {
		now := s.now()
		o.ReturnedAt = &now
		o.CompletedAt = &now
	})
}

// Refuse refuses or cancels an order. While the order is PENDING only an
// administrator or its assigned employee may refuse it.
func (s *OrderLifecycle) Refuse(ctx context.Context, actor *domain.Actor, id uuid.UUID, req RefuseRequest) (*domain.Order, error) {
	if strings.TrimSpace(req.Justification) == "" {
		return nil, &errors.ErrValidation{
			Message: "justification is required to refuse an order",
			Fields:  map[string]string{"justification": "required"},
		}
	}
	if actor == nil {
		return nil, &errors.ErrUnauthorized{}
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Phase.CanTransitionTo(domain.PhaseRefused) {
		return nil, &errors.ErrInvalidStateTransition{From: order.Phase, To: domain.PhaseRefused}
	}

	if order.Phase == domain.PhasePending {
		if !actor.IsAdmin() && !actor.IsPerson(order.EmployeeID) {
			return nil, &errors.ErrPermissionDenied{
				Message: "only an administrator or the assigned employee may refuse a pending order",
			}
		}
	} else if err := requireStaff(actor); err != nil {
		return nil, err
	}

	if req.ReasonID != nil {
		if _, err := s.repos.RefusalReason.GetByID(ctx, *req.ReasonID); err != nil {
			return nil, errors.Internal("get refusal reason", err)
		}
	}

	justification := req.Justification
	return s.transition(ctx, actor, order, domain.PhaseRefused, func(o *domain.Order) {
		now := s.now()
		o.RefusedAt = &now
		o.RefusalJustification = &justification
		o.RefusalReasonID = req.ReasonID
		o.CanceledBy = &actor.ID
	})
}

// Get returns the order with renter, staff and items. Clients may only read
// their own orders.
func (s *OrderLifecycle) Get(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Order, error) {
	if actor == nil {
		return nil, &errors.ErrUnauthorized{}
	}
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && !actor.IsPerson(&order.RenterID) {
		return nil, &errors.ErrPermissionDenied{Message: "order belongs to another customer"}
	}
	return s.hydrate(ctx, order)
}

// List runs the lateness sweep and returns the matching orders
func (s *OrderLifecycle) List(ctx context.Context, actor *domain.Actor, filter repository.OrderFilter) ([]*domain.Order, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if _, err := s.AdvancePhases(ctx); err != nil {
		return nil, err
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, err := s.repos.ServiceOrder.List(ctx, filter)
	if err != nil {
		return nil, errors.Internal("list orders", err)
	}
	for i, order := range orders {
		if orders[i], err = s.hydrate(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// ListByPhase accepts a phase code or display name. LATE lists active
// orders carrying the late flag.
func (s *OrderLifecycle) ListByPhase(ctx context.Context, actor *domain.Actor, phase string, limit, offset int) ([]*domain.Order, error) {
	code, ok := domain.ParsePhaseCode(phase)
	if !ok {
		return nil, &errors.ErrValidation{
			Message: "unknown phase",
			Fields:  map[string]string{"phase": phase},
		}
	}
	return s.List(ctx, actor, repository.OrderFilter{Phase: &code, Limit: limit, Offset: offset})
}

// Events returns the audit trail of an order
func (s *OrderLifecycle) Events(ctx context.Context, actor *domain.Actor, id uuid.UUID) ([]*domain.OrderEvent, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.repos.OrderEvent.GetByOrderID(ctx, id)
	if err != nil {
		return nil, errors.Internal("get order events", err)
	}
	return events, nil
}

// ListPhases returns the configured phases
func (s *OrderLifecycle) ListPhases(ctx context.Context, actor *domain.Actor) ([]*domain.Phase, error) {
	if actor == nil {
		return nil, &errors.ErrUnauthorized{}
	}
	return s.registry.List(ctx)
}

// ListRefusalReasons returns the canonical refusal reasons
func (s *OrderLifecycle) ListRefusalReasons(ctx context.Context, actor *domain.Actor) ([]*domain.RefusalReason, error) {
	if actor == nil {
		return nil, &errors.ErrUnauthorized{}
	}
	reasons, err := s.repos.RefusalReason.List(ctx)
	if err != nil {
		return nil, errors.Internal("list refusal reasons", err)
	}
	return reasons, nil
}

func (s *OrderLifecycle) transition(
	ctx context.Context,
	actor *domain.Actor,
	order *domain.Order,
	to domain.PhaseCode,
	mutate func(*domain.Order),
) (*domain.Order, error) {
	from := order.Phase
	if !from.CanTransitionTo(to) {
		return nil, &errors.ErrInvalidStateTransition{From: from, To: to}
	}

	phase, err := s.resolvePhase(ctx, actor, to)
	if err != nil {
		return nil, err
	}

	order.SetPhase(phase)
	if mutate != nil {
		mutate(order)
	}
	_, order.IsLate = order.LateEvent(s.today())
	order.UpdatedBy = &actor.ID

	err = s.repos.ServiceOrder.Update(ctx, order)
	if errors.IsNotFoundResource(err, "phase") {
		// the phase row was deleted after it was looked up; resolve it once more
		s.registry.Invalidate(ctx, phase)
		if phase, err = s.resolvePhase(ctx, actor, to); err != nil {
			return nil, err
		}
		order.SetPhase(phase)
		err = s.repos.ServiceOrder.Update(ctx, order)
	}
	if err != nil {
		return nil, errors.Internal("update order phase", err)
	}

	s.recordEvent(ctx, actor, order.ID, domain.OrderEventPhaseChanged, map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
	s.logger.Info("Order phase changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.ID.String()),
	)

	return s.hydrate(ctx, order)
}

// resolvePhase returns the target phase row. REFUSED is mandatory and is
// never created here.
func (s *OrderLifecycle) resolvePhase(ctx context.Context, actor *domain.Actor, code domain.PhaseCode) (*domain.Phase, error) {
	if code != domain.PhaseRefused {
		return s.registry.GetOrCreate(ctx, code, &actor.ID)
	}
	phase, err := s.registry.Find(ctx, code)
	if err != nil {
		return nil, err
	}
	if phase == nil {
		return nil, &errors.ErrNotFound{Resource: "phase", ID: string(code)}
	}
	return phase, nil
}

func (s *OrderLifecycle) persistNew(
	ctx context.Context,
	actor *domain.Actor,
	order *domain.Order,
	renter *domain.Person,
	items []*domain.OrderItem,
	channel string,
) (*domain.Order, error) {
	phase, err := s.registry.GetOrCreate(ctx, domain.PhasePending, &actor.ID)
	if err != nil {
		return nil, err
	}

	order.SetPhase(phase)
	order.RenterID = renter.ID
	order.AttendantID = actor.PersonID
	order.CreatedBy = &actor.ID
	order.UpdatedBy = &actor.ID
	order.RecomputeRemaining()
	_, order.IsLate = order.LateEvent(s.today())

	if err := s.repos.ServiceOrder.Create(ctx, order); err != nil {
		return nil, errors.Internal("create order", err)
	}
	if len(items) > 0 {
		if err := s.repos.ServiceOrderItem.ReplaceForOrder(ctx, order.ID, items); err != nil {
			return nil, errors.Internal("create order items", err)
		}
	}

	s.recordEvent(ctx, actor, order.ID, domain.OrderEventCreated, map[string]interface{}{
		"phase":      string(order.Phase),
		"channel":    channel,
		"item_count": len(items),
	})
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("channel", channel),
		zap.Int("item_count", len(items)),
	)

	return s.hydrate(ctx, order)
}

// checkContactOwner rejects a phone or e-mail that already belongs to a
// person with a different CPF.
func (s *OrderLifecycle) checkContactOwner(ctx context.Context, client ClientInfo, cpf string) error {
	ownerID, err := s.repos.Person.FindContactOwner(ctx, strings.TrimSpace(client.Phone), trimmedPtr(client.Email))
	if err != nil {
		return errors.Internal("find contact owner", err)
	}
	if ownerID == nil {
		return nil
	}
	owner, err := s.repos.Person.GetByID(ctx, *ownerID)
	if err != nil {
		return errors.Internal("get contact owner", err)
	}
	if owner.CPF != nil && *owner.CPF == cpf {
		return nil
	}
	return &errors.ErrValidation{
		Message: "phone or e-mail already registered to another person",
		Fields:  map[string]string{"client.phone": "already in use"},
	}
}

func (s *OrderLifecycle) resolveRenter(ctx context.Context, actor *domain.Actor, client ClientInfo, cpf string) (*domain.Person, error) {
	renter, err := s.repos.Person.FindOrCreateByCPF(ctx, &domain.Person{
		Name:      strings.TrimSpace(client.Name),
		CPF:       &cpf,
		Type:      domain.RoleClient,
		CreatedBy: &actor.ID,
	})
	if err != nil {
		return nil, errors.Internal("find or create renter", err)
	}

	if err := s.repos.Person.AttachContact(ctx, &domain.Contact{
		PersonID: renter.ID,
		Phone:    strings.TrimSpace(client.Phone),
		Email:    trimmedPtr(client.Email),
	}); err != nil {
		return nil, errors.Internal("attach contact", err)
	}

	return renter, nil
}

func (s *OrderLifecycle) attachAddress(ctx context.Context, renter *domain.Person, addr *AddressInfo, city *domain.City) error {
	err := s.repos.Person.AttachAddress(ctx, &domain.Address{
		PersonID:     renter.ID,
		Street:       strings.TrimSpace(addr.Street),
		Number:       strings.TrimSpace(addr.Number),
		CEP:          strings.TrimSpace(addr.CEP),
		Neighborhood: strings.TrimSpace(addr.Neighborhood),
		CityID:       city.ID,
	})
	return errors.Internal("attach address", err)
}

func (s *OrderLifecycle) orderFromInfo(info OrderInfo) (*domain.Order, error) {
	order := &domain.Order{
		TotalValue:     info.TotalValue,
		AdvancePayment: info.AdvancePayment,
		PaymentMethod:  trimmedPtr(info.PaymentMethod),
		Purchase:       info.Purchase,
		CameFrom:       trimmedPtr(info.CameFrom),
		Occasion:       strings.TrimSpace(info.Occasion),
		RenterRole:     trimmedPtr(info.RenterRole),
		Observations:   trimmedPtr(info.Observations),
	}

	orderDate, err := parseDate("order.order_date", info.OrderDate)
	if err != nil {
		return nil, err
	}
	if orderDate == nil {
		today := s.today()
		orderDate = &today
	}
	order.OrderDate = *orderDate

	eventDate, err := parseDate("order.event_date", &info.EventDate)
	if err != nil {
		return nil, err
	}
	order.EventDate = *eventDate

	for _, d := range []struct {
		field string
		raw   *string
		dst   **time.Time
	}{
		{"order.fitting_date", info.FittingDate, &order.FittingDate},
		{"order.pickup_date", info.PickupDate, &order.PickupDate},
		{"order.return_date", info.ReturnDate, &order.ReturnDate},
		{"order.production_date", info.ProductionDate, &order.ProductionDate},
		{"order.payment_due_date", info.PaymentDueDate, &order.PaymentDueDate},
	} {
		if *d.dst, err = parseDate(d.field, d.raw); err != nil {
			return nil, err
		}
	}

	order.RecomputeRemaining()
	return order, nil
}

// applyPatch merges the non-nil fields and returns their names
func applyPatch(order *domain.Order, patch OrderPatch) ([]string, error) {
	var changed []string

	for _, d := range []struct {
		field string
		raw   *string
		dst   **time.Time
	}{
		{"fitting_date", patch.FittingDate, &order.FittingDate},
		{"pickup_date", patch.PickupDate, &order.PickupDate},
		{"return_date", patch.ReturnDate, &order.ReturnDate},
		{"production_date", patch.ProductionDate, &order.ProductionDate},
		{"payment_due_date", patch.PaymentDueDate, &order.PaymentDueDate},
	} {
		if d.raw == nil {
			continue
		}
		t, err := parseDate(d.field, d.raw)
		if err != nil {
			return nil, err
		}
		if t != nil {
			*d.dst = t
			changed = append(changed, d.field)
		}
	}
	if patch.EventDate != nil {
		t, err := parseDate("event_date", patch.EventDate)
		if err != nil {
			return nil, err
		}
		if t != nil {
			order.EventDate = *t
			changed = append(changed, "event_date")
		}
	}

	if patch.TotalValue != nil {
		order.TotalValue = *patch.TotalValue
		changed = append(changed, "total_value")
	}
	if patch.AdvancePayment != nil {
		order.AdvancePayment = *patch.AdvancePayment
		changed = append(changed, "advance_payment")
	}
	if patch.TotalValue != nil || patch.AdvancePayment != nil {
		order.RecomputeRemaining()
	}

	if patch.PaymentMethod != nil {
		order.PaymentMethod = trimmedPtr(patch.PaymentMethod)
		changed = append(changed, "payment_method")
	}
	if patch.Purchase != nil {
		order.Purchase = *patch.Purchase
		changed = append(changed, "purchase")
	}
	if patch.CameFrom != nil {
		order.CameFrom = trimmedPtr(patch.CameFrom)
		changed = append(changed, "came_from")
	}
	if patch.Occasion != nil {
		order.Occasion = strings.TrimSpace(*patch.Occasion)
		changed = append(changed, "occasion")
	}
	if patch.RenterRole != nil {
		order.RenterRole = trimmedPtr(patch.RenterRole)
		changed = append(changed, "renter_role")
	}
	if patch.Observations != nil {
		order.Observations = trimmedPtr(patch.Observations)
		changed = append(changed, "observations")
	}

	return changed, nil
}

func (s *OrderLifecycle) load(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.ServiceOrder.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Internal("get order", err)
	}
	return order, nil
}

// hydrate loads the renter, staff and items of an order
func (s *OrderLifecycle) hydrate(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var err error
	if order.Renter, err = s.person(ctx, &order.RenterID); err != nil {
		return nil, err
	}
	if order.Employee, err = s.person(ctx, order.EmployeeID); err != nil {
		return nil, err
	}
	if order.Attendant, err = s.person(ctx, order.AttendantID); err != nil {
		return nil, err
	}
	if order.Items, err = s.repos.ServiceOrderItem.GetByOrderID(ctx, order.ID); err != nil {
		return nil, errors.Internal("get order items", err)
	}
	return order, nil
}

func (s *OrderLifecycle) person(ctx context.Context, id *uuid.UUID) (*domain.Person, error) {
	if id == nil {
		return nil, nil
	}
	p, err := s.repos.Person.GetByID(ctx, *id)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Internal("get person", err)
	}
	return p, nil
}

func (s *OrderLifecycle) recordEvent(ctx context.Context, actor *domain.Actor, orderID uuid.UUID, eventType string, data map[string]interface{}) {
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: eventType,
		EventData: data,
	}
	if actor != nil {
		id := actor.ID
		event.ActorID = &id
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event",
			zap.String("order_id", orderID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func requireStaff(actor *domain.Actor) error {
	if actor == nil {
		return &errors.ErrUnauthorized{}
	}
	if !actor.Role.IsStaff() {
		return &errors.ErrPermissionDenied{Message: "only shop staff may perform this operation"}
	}
	return nil
}

// requireHandler allows administrators and the staff attached to the order
func requireHandler(actor *domain.Actor, order *domain.Order) error {
	if actor == nil {
		return &errors.ErrUnauthorized{}
	}
	if actor.IsAdmin() || actor.IsPerson(order.EmployeeID) || actor.IsPerson(order.AttendantID) {
		return nil
	}
	return &errors.ErrPermissionDenied{Message: "actor is not assigned to this order"}
}
