package lifecycle

import (
	"tablepay/internal/apperr"
	"tablepay/internal/domain"
)

// edge is one legal move of the order state machine together with the
// roles allowed to trigger it.
type edge struct {
	to    domain.Status
	roles []domain.Role
}

// Each status has at most one outgoing edge: orders only move forward
// through pending -> cooking -> ready -> completed, never backward and
// never skipping a state. completed has no edge and is terminal.
var transitions = map[domain.Status]edge{
	domain.StatusPending: {to: domain.StatusCooking, roles: []domain.Role{domain.RoleKitchen}},
	domain.StatusCooking: {to: domain.StatusReady, roles: []domain.Role{domain.RoleKitchen}},
	domain.StatusReady:   {to: domain.StatusCompleted, roles: []domain.Role{domain.RoleKitchen, domain.RoleCashier, domain.RoleAdmin}},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to domain.Status) bool {
	e, ok := transitions[from]
	return ok && e.to == to
}

// NextStatus returns the only legal successor of from, if any.
func NextStatus(from domain.Status) (domain.Status, bool) {
	e, ok := transitions[from]
	return e.to, ok
}

// ValidateTransition rejects the move locally, before any write: the
// edge must exist and the acting role must be allowed to trigger it.
func ValidateTransition(from, to domain.Status, role domain.Role) error {
	if !from.Valid() || !to.Valid() {
		return apperr.ErrBadStatus
	}
	if !CanTransition(from, to) {
		return apperr.ErrInvalidTransition
	}
	for _, r := range transitions[from].roles {
		if r == role {
			return nil
		}
	}
	return apperr.ErrRoleNotAllowed
}
