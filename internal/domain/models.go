package domain

import (
	"time"

	"github.com/google/uuid"
)

// Phase is a configured lifecycle phase row
type Phase struct {
	ID        uuid.UUID
	Code      PhaseCode
	Name      string
	CreatedBy *uuid.UUID
	CreatedAt time.Time
}

// RefusalReason is a canonical cause for refusing or canceling an order
type RefusalReason struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Actor is an authenticated staff member or client account
type Actor struct {
	ID           uuid.UUID
	Name         string
	Role         Role
	PersonID     *uuid.UUID // linked person record, if any
	APIKeyHash   string
	APIKeyLookup string // SHA256(apiKey) hex for lookup
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the actor has the administrator role
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// IsPerson reports whether the actor is linked to the given person
func (a *Actor) IsPerson(personID *uuid.UUID) bool {
	return a != nil && a.PersonID != nil && personID != nil && *a.PersonID == *personID
}

// Person is a customer or employee record
type Person struct {
	ID        uuid.UUID
	Name      string
	CPF       *string
	Type      Role
	CreatedBy *uuid.UUID
	CreatedAt time.Time
}

// Contact is a phone/e-mail pair attached to a person
type Contact struct {
	ID        uuid.UUID
	PersonID  uuid.UUID
	Phone     string
	Email     *string
	CreatedAt time.Time
}

// City is a known city for addresses
type City struct {
	ID   uuid.UUID
	Name string
	UF   string
	Code string
}

// Address is a postal address attached to a person
type Address struct {
	ID           uuid.UUID
	PersonID     uuid.UUID
	Street       string
	Number       string
	CEP          string
	Neighborhood string
	CityID       uuid.UUID
	CreatedAt    time.Time
}

// Product is a catalog product referenced by order items
type Product struct {
	ID          uuid.UUID
	LabelCode   string
	Description string
	OnStock     bool
}

// ColorCombination is a catalogue color paired with an intensity
type ColorCombination struct {
	ID               uuid.UUID
	ColorCatalogueID uuid.UUID
	ColorIntensityID uuid.UUID
	Description      string
}

// TemporaryProduct is an ad-hoc garment description used instead of a catalog product.
// Empty strings mean "not informed".
type TemporaryProduct struct {
	ID           uuid.UUID
	ProductType  string
	Size         string
	SleeveLength string
	LegLength    string
	WaistSize    string
	CollarSize   string
	Color        string
	Brand        string
	Fabric       string
	Description  string
	CreatedBy    *uuid.UUID
	CreatedAt    time.Time
}

// SameDescription reports whether both rows describe the same garment
func (t *TemporaryProduct) SameDescription(o *TemporaryProduct) bool {
	return t.ProductType == o.ProductType &&
		t.Size == o.Size &&
		t.SleeveLength == o.SleeveLength &&
		t.LegLength == o.LegLength &&
		t.WaistSize == o.WaistSize &&
		t.CollarSize == o.CollarSize &&
		t.Color == o.Color &&
		t.Brand == o.Brand &&
		t.Fabric == o.Fabric &&
		t.Description == o.Description
}

// Order is a service (rental or purchase) order
type Order struct {
	ID          uuid.UUID
	RenterID    uuid.UUID
	EmployeeID  *uuid.UUID // assigned employee
	AttendantID *uuid.UUID // staff who recorded the order

	OrderDate      time.Time
	EventDate      time.Time
	FittingDate    *time.Time
	PickupDate     *time.Time
	ReturnDate     *time.Time
	ProductionDate *time.Time
	PaymentDueDate *time.Time

	PaidAt      *time.Time
	RetrievedAt *time.Time
	ReturnedAt  *time.Time
	RefusedAt   *time.Time
	CompletedAt *time.Time

	TotalValue       float64
	AdvancePayment   float64
	RemainingPayment float64
	PaymentMethod    *string
	Purchase         bool
	CameFrom         *string

	Occasion     string
	RenterRole   *string
	Observations *string

	PhaseID              *uuid.UUID
	Phase                PhaseCode // resolved from PhaseID; empty when unset
	IsLate               bool
	RefusalJustification *string
	RefusalReasonID      *uuid.UUID

	CreatedBy  *uuid.UUID
	UpdatedBy  *uuid.UUID
	CanceledBy *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Loaded for detail views
	Renter    *Person
	Employee  *Person
	Attendant *Person
	Items     []*OrderItem
}

// SetPhase points the order at a phase row
func (o *Order) SetPhase(p *Phase) {
	id := p.ID
	o.PhaseID = &id
	o.Phase = p.Code
}

// IsActive reports whether the order has a phase and is not terminal
func (o *Order) IsActive() bool {
	return o.Phase != "" && !o.Phase.IsTerminal()
}

// RecomputeRemaining keeps remaining = total - advance
func (o *Order) RecomputeRemaining() {
	o.RemainingPayment = o.TotalValue - o.AdvancePayment
}

// LateEvent reports whether the order is late on the given day and which
// scheduled date caused it. Rules are checked fitting, pickup, return.
func (o *Order) LateEvent(today time.Time) (EventType, bool) {
	if !o.IsActive() {
		return "", false
	}
	today = DateOnly(today)
	if before(o.FittingDate, today) && o.Phase == PhasePending {
		return EventFitting, true
	}
	if before(o.PickupDate, today) && o.RetrievedAt == nil {
		return EventPickup, true
	}
	if before(o.ReturnDate, today) && o.ReturnedAt == nil {
		return EventReturn, true
	}
	return "", false
}

// ScheduledOn returns the event types whose date equals day
func (o *Order) ScheduledOn(day time.Time) []EventType {
	return o.ScheduledBetween(DateOnly(day).AddDate(0, 0, -1), day)
}

// ScheduledBetween returns the event types whose date d satisfies from < d <= to
func (o *Order) ScheduledBetween(from, to time.Time) []EventType {
	from, to = DateOnly(from), DateOnly(to)
	var out []EventType
	for _, e := range []struct {
		kind EventType
		date *time.Time
	}{
		{EventFitting, o.FittingDate},
		{EventPickup, o.PickupDate},
		{EventReturn, o.ReturnDate},
	} {
		if e.date == nil {
			continue
		}
		d := DateOnly(*e.date)
		if d.After(from) && !d.After(to) {
			out = append(out, e.kind)
		}
	}
	return out
}

func before(d *time.Time, today time.Time) bool {
	return d != nil && DateOnly(*d).Before(today)
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ActorID   *uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}

// IdempotencyKey stores idempotency information for order intake
type IdempotencyKey struct {
	Key         string
	ActorID     uuid.UUID
	OrderID     uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}
