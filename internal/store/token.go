package store

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims reads exp and sub without verifying the signature. The client
// has no key; the server stays the judge of validity.
func tokenClaims(token string) (exp time.Time, subject string, ok bool) {
	if token == "" {
		return time.Time{}, "", false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, "", false
	}
	if sub, err := claims.GetSubject(); err == nil {
		subject = sub
	}
	if e, err := claims.GetExpirationTime(); err == nil && e != nil {
		exp = e.Time
	}
	return exp, subject, true
}
