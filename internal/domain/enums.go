package domain

import "strings"

// PhaseCode is the stable symbolic identifier of a service-order phase.
// Business rules key off the code; the display name lives on Phase.
type PhaseCode string

const (
	// PENDING - new order, waiting for triage
	PhasePending PhaseCode = "PENDING"
	// AWAITING_PAYMENT - accepted, waiting for the deposit to clear
	PhaseAwaitingPayment PhaseCode = "AWAITING_PAYMENT"
	// IN_PRODUCTION - garment being made or altered
	PhaseInProduction PhaseCode = "IN_PRODUCTION"
	// AWAITING_PICKUP - ready, customer has not picked it up yet
	PhaseAwaitingPickup PhaseCode = "AWAITING_PICKUP"
	// AWAITING_RETURN - picked up, rental not yet returned
	PhaseAwaitingReturn PhaseCode = "AWAITING_RETURN"
	// LATE - listing bucket only; lateness is carried by Order.IsLate
	PhaseLate PhaseCode = "LATE"
	// COMPLETED - returned and settled
	PhaseCompleted PhaseCode = "COMPLETED"
	// REFUSED - refused or canceled
	PhaseRefused PhaseCode = "REFUSED"
)

// AllPhaseCodes lists every known code in lifecycle order.
var AllPhaseCodes = []PhaseCode{
	PhasePending,
	PhaseAwaitingPayment,
	PhaseInProduction,
	PhaseAwaitingPickup,
	PhaseAwaitingReturn,
	PhaseLate,
	PhaseCompleted,
	PhaseRefused,
}

var phaseDisplayNames = map[PhaseCode]string{
	PhasePending:         "PENDENTE",
	PhaseAwaitingPayment: "AGUARDANDO_PAGAMENTO",
	PhaseInProduction:    "EM_PRODUCAO",
	PhaseAwaitingPickup:  "AGUARDANDO_RETIRADA",
	PhaseAwaitingReturn:  "AGUARDANDO_DEVOLUCAO",
	PhaseLate:            "ATRASADO",
	PhaseCompleted:       "FINALIZADO",
	PhaseRefused:         "RECUSADA",
}

// IsValid checks if the phase code is known
func (c PhaseCode) IsValid() bool {
	_, ok := phaseDisplayNames[c]
	return ok
}

// DisplayName returns the name shown to shop staff
func (c PhaseCode) DisplayName() string {
	return phaseDisplayNames[c]
}

// IsTerminal reports whether no further transition or sweep may touch the order
func (c PhaseCode) IsTerminal() bool {
	return c == PhaseCompleted || c == PhaseRefused
}

// CanTransitionTo checks if a phase transition is valid
func (c PhaseCode) CanTransitionTo(next PhaseCode) bool {
	switch c {
	case PhasePending:
		return next == PhaseAwaitingPayment ||
			next == PhaseRefused
	case PhaseAwaitingPayment:
		return next == PhaseInProduction ||
			next == PhaseAwaitingPickup ||
			next == PhaseRefused
	case PhaseInProduction:
		return next == PhaseAwaitingPickup ||
			next == PhaseRefused
	case PhaseAwaitingPickup:
		return next == PhaseAwaitingReturn ||
			next == PhaseRefused
	case PhaseAwaitingReturn:
		return next == PhaseCompleted
	case "":
		// Phase row removed administratively; the order can only be closed out.
		return next == PhaseRefused
	default:
		return false // terminal, or LATE which is never stored
	}
}

// ParsePhaseCode accepts either the code or the display name, case-insensitively.
func ParsePhaseCode(s string) (PhaseCode, bool) {
	up := strings.ToUpper(strings.TrimSpace(s))
	if c := PhaseCode(up); c.IsValid() {
		return c, true
	}
	for code, name := range phaseDisplayNames {
		if name == up {
			return code, true
		}
	}
	return "", false
}

// Role is the role of an authenticated actor
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAttendant Role = "ATTENDANT"
	RoleReception Role = "RECEPTION"
	RoleClient    Role = "CLIENT"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAttendant, RoleReception, RoleClient:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role belongs to shop staff
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleAttendant || r == RoleReception
}

// EventType classifies which scheduled date of an order a metric refers to.
type EventType string

const (
	EventFitting EventType = "fitting"
	EventPickup  EventType = "pickup"
	EventReturn  EventType = "return"
)

// Order event types recorded in the audit trail
const (
	OrderEventCreated         = "order_created"
	OrderEventUpdated         = "order_updated"
	OrderEventPhaseChanged    = "phase_changed"
	OrderEventLateFlagChanged = "late_flag_changed"
)
