package admin

import "errors"

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrEventConflict    = errors.New("event conflict")
	ErrDiscountNotFound = errors.New("discount not found")
	ErrInvalidDiscount  = errors.New("invalid discount definition")
)
