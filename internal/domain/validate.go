package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultEmailSuffix = ".edu.pe"

	MaxBioLength       = 300
	MaxMessageLength   = 1000
	MinSessionDuration = 30
	MaxSessionDuration = 180
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateEmail(email string) error {
	if !emailShape.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateInstitutionalEmail rejects addresses outside the university domain
// suffix. An empty suffix falls back to DefaultEmailSuffix.
func ValidateInstitutionalEmail(email, suffix string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if suffix == "" {
		suffix = DefaultEmailSuffix
	}
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), strings.ToLower(suffix)) {
		return ErrInstitutionalEmail
	}
	return nil
}

func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fmt.Errorf("%w: max %d characters", ErrBioTooLong, MaxBioLength)
	}
	return nil
}

func ValidateMessage(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return fmt.Errorf("%w: max %d characters", ErrMessageTooLong, MaxMessageLength)
	}
	return nil
}

func ValidateSessionDuration(minutes int) error {
	if minutes < MinSessionDuration || minutes > MaxSessionDuration {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrSessionDuration, minutes, MinSessionDuration, MaxSessionDuration)
	}
	return nil
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrRating
	}
	return nil
}
