package services

import "errors"

// EngineError is a typed ordering failure the caller is expected to branch on.
// Two EngineErrors match under errors.Is when their codes are equal.
type EngineError struct {
	Code    string
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes the cause, e.g. the StaleMenu behind an InvalidOrder.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so wrapped copies compare equal to the sentinels.
func (e *EngineError) Is(target error) bool {
	var other *EngineError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// wrapEngine returns a copy of the sentinel carrying a cause.
func wrapEngine(sentinel *EngineError, cause error) *EngineError {
	return &EngineError{Code: sentinel.Code, Message: sentinel.Message, Cause: cause}
}

var (
	ErrUnknownCustomer      = &EngineError{Code: "UNKNOWN_CUSTOMER", Message: "customer not found"}
	ErrNoActivePermission   = &EngineError{Code: "NO_ACTIVE_PERMISSION", Message: "customer has no active canteen permission"}
	ErrNoValidMenus         = &EngineError{Code: "NO_VALID_MENUS", Message: "no menus can be ordered right now"}
	ErrStaleMenu            = &EngineError{Code: "STALE_MENU", Message: "menu can no longer be ordered"}
	ErrInvalidOrder         = &EngineError{Code: "INVALID_ORDER", Message: "order is no longer valid"}
	ErrNoFixedItems         = &EngineError{Code: "NO_FIXED_ITEMS", Message: "menu has no fixed complex positions"}
	ErrNoPositionsSelected  = &EngineError{Code: "NO_POSITIONS_SELECTED", Message: "no positions were added to the order"}
	ErrInvalidQuantity      = &EngineError{Code: "INVALID_QUANTITY", Message: "quantity cannot go below one"}
	ErrPagesExhausted       = &EngineError{Code: "PAGES_EXHAUSTED", Message: "all positions have been shown"}
	ErrEmptyCollection      = &EngineError{Code: "EMPTY_COLLECTION", Message: "no orders to show"}
	ErrInvalidState         = &EngineError{Code: "INVALID_STATE", Message: "operation not allowed in the current step"}
	ErrUnknownPosition      = &EngineError{Code: "UNKNOWN_POSITION", Message: "position is not part of the chosen menu"}
	ErrUnknownDeliveryPlace = &EngineError{Code: "UNKNOWN_DELIVERY_PLACE", Message: "delivery place is not available"}
	ErrOrderNotDeletable    = &EngineError{Code: "ORDER_NOT_DELETABLE", Message: "order can no longer be deleted"}
)

// AsEngineError extracts the typed failure from err, if any.
func AsEngineError(err error) (*EngineError, bool) {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr, true
	}
	return nil, false
}
