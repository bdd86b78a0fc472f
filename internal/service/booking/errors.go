package booking

import "errors"

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingConflict   = errors.New("conflict creating booking")
	ErrDiscountExhausted = errors.New("discount usage cap exhausted")
	ErrInvalidTransition = errors.New("invalid status transition")
)
