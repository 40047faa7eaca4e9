package service

import "github.com/google/uuid"

// ClientInfo identifies the renter on intake
type ClientInfo struct {
	Name  string  `json:"name" validate:"required,notblank,max=255"`
	Phone string  `json:"phone" validate:"required,notblank,max=32"`
	CPF   string  `json:"cpf" validate:"required,notblank"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

// AddressInfo is the renter's postal address. City is matched by name.
type AddressInfo struct {
	Street       string `json:"street" validate:"max=255"`
	Number       string `json:"number" validate:"max=32"`
	CEP          string `json:"cep" validate:"max=16"`
	Neighborhood string `json:"neighborhood" validate:"max=255"`
	City         string `json:"city" validate:"required,max=255"`
}

// OrderInfo carries the commercial, schedule and descriptive fields of an
// order. Dates are YYYY-MM-DD.
type OrderInfo struct {
	OrderDate      *string  `json:"order_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EventDate      string   `json:"event_date" validate:"required,datetime=2006-01-02"`
	FittingDate    *string  `json:"fitting_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PickupDate     *string  `json:"pickup_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate     *string  `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProductionDate *string  `json:"production_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PaymentDueDate *string  `json:"payment_due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TotalValue     float64  `json:"total_value" validate:"gte=0"`
	AdvancePayment float64  `json:"advance_payment" validate:"gte=0"`
	PaymentMethod  *string  `json:"payment_method,omitempty" validate:"omitempty,max=255"`
	Purchase       bool     `json:"purchase"`
	CameFrom       *string  `json:"came_from,omitempty" validate:"omitempty,max=255"`
	Occasion       string   `json:"occasion" validate:"max=255"`
	RenterRole     *string  `json:"renter_role,omitempty" validate:"omitempty,max=255"`
	Observations   *string  `json:"observations,omitempty"`
}

// IntakeRequest is the classic walk-in registration payload
type IntakeRequest struct {
	Client       ClientInfo   `json:"client"`
	EmployeeName string       `json:"employee_name" validate:"required,notblank"`
	Address      *AddressInfo `json:"address,omitempty"`
	Order        OrderInfo    `json:"order"`
	Items        []ItemSpec   `json:"items,omitempty"`
}

// PreTriageRequest is the reception desk's short registration payload
type PreTriageRequest struct {
	Client       ClientInfo   `json:"client"`
	EmployeeID   uuid.UUID    `json:"employee_id" validate:"required"`
	Address      *AddressInfo `json:"address,omitempty"`
	EventDate    string       `json:"event_date" validate:"required,datetime=2006-01-02"`
	Occasion     string       `json:"occasion" validate:"max=255"`
	RenterRole   *string      `json:"renter_role,omitempty" validate:"omitempty,max=255"`
	Observations *string      `json:"observations,omitempty"`
}

// OrderPatch is a partial update. Nil fields are left untouched; a non-nil
// Items replaces the whole item list, even when empty.
type OrderPatch struct {
	EventDate      *string     `json:"event_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	FittingDate    *string     `json:"fitting_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PickupDate     *string     `json:"pickup_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate     *string     `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProductionDate *string     `json:"production_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PaymentDueDate *string     `json:"payment_due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TotalValue     *float64    `json:"total_value,omitempty" validate:"omitempty,gte=0"`
	AdvancePayment *float64    `json:"advance_payment,omitempty" validate:"omitempty,gte=0"`
	PaymentMethod  *string     `json:"payment_method,omitempty" validate:"omitempty,max=255"`
	Purchase       *bool       `json:"purchase,omitempty"`
	CameFrom       *string     `json:"came_from,omitempty" validate:"omitempty,max=255"`
	Occasion       *string     `json:"occasion,omitempty" validate:"omitempty,max=255"`
	RenterRole     *string     `json:"renter_role,omitempty" validate:"omitempty,max=255"`
	Observations   *string     `json:"observations,omitempty"`
	Items          *[]ItemSpec `json:"items,omitempty"`
}

// RefuseRequest refuses or cancels an order
type RefuseRequest struct {
	Justification string     `json:"justification"`
	ReasonID      *uuid.UUID `json:"reason_id,omitempty"`
}

// CreateActorRequest registers a new API actor
type CreateActorRequest struct {
	Name     string     `json:"name" validate:"required,max=255"`
	Role     string     `json:"role" validate:"required,oneof=ADMIN ATTENDANT RECEPTION CLIENT"`
	PersonID *uuid.UUID `json:"person_id,omitempty"`
}
