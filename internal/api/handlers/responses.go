package handlers

import (
	"time"

	"github.com/roupadegala/servicecontrol/internal/domain"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05Z07:00"
)

// OrderResponse represents the order response
type OrderResponse struct {
	ID        string              `json:"id"`
	Phase     domain.PhaseCode    `json:"phase"`
	PhaseName string              `json:"phase_name,omitempty"`
	IsLate    bool                `json:"is_late"`
	Renter    *PersonResponse     `json:"renter,omitempty"`
	Employee  *PersonResponse     `json:"employee,omitempty"`
	Attendant *PersonResponse     `json:"attendant,omitempty"`
	Items     []OrderItemResponse `json:"items"`

	OrderDate      string  `json:"order_date"`
	EventDate      string  `json:"event_date"`
	FittingDate    *string `json:"fitting_date,omitempty"`
	PickupDate     *string `json:"pickup_date,omitempty"`
	ReturnDate     *string `json:"return_date,omitempty"`
	ProductionDate *string `json:"production_date,omitempty"`
	PaymentDueDate *string `json:"payment_due_date,omitempty"`

	PaidAt      *string `json:"paid_at,omitempty"`
	RetrievedAt *string `json:"retrieved_at,omitempty"`
	ReturnedAt  *string `json:"returned_at,omitempty"`
	RefusedAt   *string `json:"refused_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`

	TotalValue       float64 `json:"total_value"`
	AdvancePayment   float64 `json:"advance_payment"`
	RemainingPayment float64 `json:"remaining_payment"`
	PaymentMethod    *string `json:"payment_method,omitempty"`
	Purchase         bool    `json:"purchase"`
	CameFrom         *string `json:"came_from,omitempty"`
	Occasion         string  `json:"occasion"`
	RenterRole       *string `json:"renter_role,omitempty"`
	Observations     *string `json:"observations,omitempty"`

	RefusalJustification *string `json:"refusal_justification,omitempty"`
	RefusalReasonID      *string `json:"refusal_reason_id,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PersonResponse is the short form of a renter or staff member
type PersonResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	CPF  *string `json:"cpf,omitempty"`
}

type OrderItemResponse struct {
	ID                 string                    `json:"id"`
	ProductID          *string                   `json:"product_id,omitempty"`
	Product            *ProductResponse          `json:"product,omitempty"`
	TemporaryProductID *string                   `json:"temporary_product_id,omitempty"`
	TemporaryProduct   *TemporaryProductResponse `json:"temporary_product,omitempty"`
	ColorCatalogueID   *string                   `json:"color_catalogue_id,omitempty"`
	ColorCombinationID *string                   `json:"color_combination_id,omitempty"`
	AdjustmentNeeded   bool                      `json:"adjustment_needed"`
	AdjustmentValue    *int                      `json:"adjustment_value,omitempty"`
	AdjustmentNotes    *string                   `json:"adjustment_notes,omitempty"`
}

type ProductResponse struct {
	LabelCode   string `json:"label_code"`
	Description string `json:"description"`
	OnStock     bool   `json:"on_stock"`
}

type TemporaryProductResponse struct {
	ProductType  string `json:"product_type"`
	Size         string `json:"size,omitempty"`
	SleeveLength string `json:"sleeve_length,omitempty"`
	LegLength    string `json:"leg_length,omitempty"`
	WaistSize    string `json:"waist_size,omitempty"`
	CollarSize   string `json:"collar_size,omitempty"`
	Color        string `json:"color,omitempty"`
	Brand        string `json:"brand,omitempty"`
	Fabric       string `json:"fabric,omitempty"`
	Description  string `json:"description,omitempty"`
}

type PhaseResponse struct {
	ID   string           `json:"id"`
	Code domain.PhaseCode `json:"code"`
	Name string           `json:"name"`
}

type RefusalReasonResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OrderEventResponse struct {
	ID        string                 `json:"id"`
	EventType string                 `json:"event_type"`
	ActorID   *string                `json:"actor_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

type ActorResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	PersonID  *string     `json:"person_id,omitempty"`
	IsActive  bool        `json:"is_active"`
	CreatedAt string      `json:"created_at"`
}

func newOrderResponse(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:                   o.ID.String(),
		Phase:                o.Phase,
		PhaseName:            o.Phase.DisplayName(),
		IsLate:               o.IsLate,
		Renter:               newPersonResponse(o.Renter),
		Employee:             newPersonResponse(o.Employee),
		Attendant:            newPersonResponse(o.Attendant),
		Items:                make([]OrderItemResponse, 0, len(o.Items)),
		OrderDate:            o.OrderDate.Format(dateLayout),
		EventDate:            o.EventDate.Format(dateLayout),
		FittingDate:          formatDate(o.FittingDate),
		PickupDate:           formatDate(o.PickupDate),
		ReturnDate:           formatDate(o.ReturnDate),
		ProductionDate:       formatDate(o.ProductionDate),
		PaymentDueDate:       formatDate(o.PaymentDueDate),
		PaidAt:               formatTimestamp(o.PaidAt),
		RetrievedAt:          formatTimestamp(o.RetrievedAt),
		ReturnedAt:           formatTimestamp(o.ReturnedAt),
		RefusedAt:            formatTimestamp(o.RefusedAt),
		CompletedAt:          formatTimestamp(o.CompletedAt),
		TotalValue:           o.TotalValue,
		AdvancePayment:       o.AdvancePayment,
		RemainingPayment:     o.RemainingPayment,
		PaymentMethod:        o.PaymentMethod,
		Purchase:             o.Purchase,
		CameFrom:             o.CameFrom,
		Occasion:             o.Occasion,
		RenterRole:           o.RenterRole,
		Observations:         o.Observations,
		RefusalJustification: o.RefusalJustification,
		CreatedAt:            o.CreatedAt.Format(timestampLayout),
		UpdatedAt:            o.UpdatedAt.Format(timestampLayout),
	}
	if o.RefusalReasonID != nil {
		id := o.RefusalReasonID.String()
		resp.RefusalReasonID = &id
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, newOrderItemResponse(item))
	}
	return resp
}

func newOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderResponse(o))
	}
	return out
}

func newPersonResponse(p *domain.Person) *PersonResponse {
	if p == nil {
		return nil
	}
	return &PersonResponse{ID: p.ID.String(), Name: p.Name, CPF: p.CPF}
}

func newOrderItemResponse(item *domain.OrderItem) OrderItemResponse {
	resp := OrderItemResponse{
		ID:               item.ID.String(),
		AdjustmentNeeded: item.AdjustmentNeeded,
		AdjustmentValue:  item.AdjustmentValue,
		AdjustmentNotes:  item.AdjustmentNotes,
	}
	if item.ColorCatalogueID != nil {
		id := item.ColorCatalogueID.String()
		resp.ColorCatalogueID = &id
	}
	if item.ColorCombinationID != nil {
		id := item.ColorCombinationID.String()
		resp.ColorCombinationID = &id
	}

	switch p := item.Product.(type) {
	case domain.CatalogItem:
		id := p.ProductID.String()
		resp.ProductID = &id
		if p.Product != nil {
			resp.Product = &ProductResponse{
				LabelCode:   p.Product.LabelCode,
				Description: p.Product.Description,
				OnStock:     p.Product.OnStock,
			}
		}
	case domain.AdHocItem:
		id := p.TemporaryProductID.String()
		resp.TemporaryProductID = &id
		if tp := p.TemporaryProduct; tp != nil {
			resp.TemporaryProduct = &TemporaryProductResponse{
				ProductType:  tp.ProductType,
				Size:         tp.Size,
				SleeveLength: tp.SleeveLength,
				LegLength:    tp.LegLength,
				WaistSize:    tp.WaistSize,
				CollarSize:   tp.CollarSize,
				Color:        tp.Color,
				Brand:        tp.Brand,
				Fabric:       tp.Fabric,
				Description:  tp.Description,
			}
		}
	}
	return resp
}

func newActorResponse(a *domain.Actor) ActorResponse {
	resp := ActorResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt.Format(timestampLayout),
	}
	if a.PersonID != nil {
		id := a.PersonID.String()
		resp.PersonID = &id
	}
	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timestampLayout)
	return &s
}
