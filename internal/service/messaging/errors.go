package messaging

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyBody       = errors.New("message body is empty")
)
