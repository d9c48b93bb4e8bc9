package errs

import "errors"

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrProfileNotFound = errors.New("profile not found")
)
