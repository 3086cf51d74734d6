// Package domain holds the client-side representations of the entities the
// remote service owns. The server is authoritative for all of them.
package domain

import "errors"

var (
	ErrInstitutionalEmail = errors.New("use your university e-mail address")
	ErrInvalidEmail       = errors.New("invalid e-mail address")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidAction      = errors.New("invalid match response action")
	ErrBioTooLong         = errors.New("bio is too long")
	ErrMessageTooLong     = errors.New("message is too long")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrSessionDuration    = errors.New("session duration out of range")
	ErrRating             = errors.New("rating must be between 1 and 5")
)
