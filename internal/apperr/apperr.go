package apperr

import "errors"

var (
	ErrParseCmd       = errors.New("cannot parse arguments")
	ErrHelp           = errors.New("")
	ErrModeFlag       = errors.New("mode flag is required")
	ErrUnknownService = errors.New("unknown service, write --help command to see valid services")

	ErrDBConn = errors.New("db connection failure")
	ErrMBConn = errors.New("message broker connection failure")
	ErrMBCh   = errors.New("message broker channel failure")

	// ErrNotFound: no order with the given id exists.
	ErrNotFound = errors.New("order not found")

	// ErrConflict: a conditional status update matched zero rows because
	// another client already moved the order past the expected status.
	// Not a failure of the caller; refetch and re-render.
	ErrConflict = errors.New("order was already updated by someone else")

	// ErrInvalidTransition: the requested edge is not in the state machine.
	ErrInvalidTransition = errors.New("transition not allowed from current status")

	// ErrRoleNotAllowed: the acting role may not perform this transition.
	ErrRoleNotAllowed = errors.New("role is not allowed to perform this transition")

	ErrFieldIsEmpty   = errors.New("field is empty")
	ErrEmptyOrder     = errors.New("order must contain at least one item")
	ErrBadPaymentMode = errors.New("payment mode must be cash, card or upi")
	ErrBadQuantity    = errors.New("quantity must be positive")
	ErrBadPrice       = errors.New("price must not be negative")
	ErrBadStatus      = errors.New("unknown order status")
)
