package store

import "errors"

var (
	// ErrUnknownCandidate is returned when a swipe names a candidate that is
	// neither queued nor already being acted on.
	ErrUnknownCandidate = errors.New("candidate is not in the queue")
	ErrUnknownMatch     = errors.New("match is not in the list")
	// ErrMalformedResponse means a 2xx body lacked a field the store needs.
	ErrMalformedResponse = errors.New("malformed server response")
)

func errorText(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
