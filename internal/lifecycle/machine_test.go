package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tablepay/internal/apperr"
	"tablepay/internal/domain"
)

func TestCanTransitionOnlyForward(t *testing.T) {
	statuses := []domain.Status{
		domain.StatusPending, domain.StatusCooking, domain.StatusReady, domain.StatusCompleted,
	}

	legal := map[[2]domain.Status]bool{
		{domain.StatusPending, domain.StatusCooking}: true,
		{domain.StatusCooking, domain.StatusReady}:   true,
		{domain.StatusReady, domain.StatusCompleted}: true,
	}

	// Every other pair, including backward moves, skips, self-loops and
	// anything out of completed, must be rejected.
	for _, from := range statuses {
		for _, to := range statuses {
			want := legal[[2]domain.Status{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestNextStatus(t *testing.T) {
	next, ok := NextStatus(domain.StatusPending)
	assert.True(t, ok)
	assert.Equal(t, domain.StatusCooking, next)

	_, ok = NextStatus(domain.StatusCompleted)
	assert.False(t, ok, "completed is terminal")
}

func TestValidateTransitionRoles(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.Status
		to      domain.Status
		role    domain.Role
		wantErr error
	}{
		{"kitchen starts cooking", domain.StatusPending, domain.StatusCooking, domain.RoleKitchen, nil},
		{"cashier cannot start cooking", domain.StatusPending, domain.StatusCooking, domain.RoleCashier, apperr.ErrRoleNotAllowed},
		{"admin cannot start cooking", domain.StatusPending, domain.StatusCooking, domain.RoleAdmin, apperr.ErrRoleNotAllowed},
		{"kitchen marks ready", domain.StatusCooking, domain.StatusReady, domain.RoleKitchen, nil},
		{"cashier marks served", domain.StatusReady, domain.StatusCompleted, domain.RoleCashier, nil},
		{"kitchen completes", domain.StatusReady, domain.StatusCompleted, domain.RoleKitchen, nil},
		{"admin marks served", domain.StatusReady, domain.StatusCompleted, domain.RoleAdmin, nil},
		{"skip pending to ready", domain.StatusPending, domain.StatusReady, domain.RoleKitchen, apperr.ErrInvalidTransition},
		{"backward ready to pending", domain.StatusReady, domain.StatusPending, domain.RoleKitchen, apperr.ErrInvalidTransition},
		{"out of completed", domain.StatusCompleted, domain.StatusReady, domain.RoleAdmin, apperr.ErrInvalidTransition},
		{"unknown status", domain.Status("burnt"), domain.StatusReady, domain.RoleKitchen, apperr.ErrBadStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to, tt.role)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
