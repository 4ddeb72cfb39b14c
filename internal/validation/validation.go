// Package validation checks user-supplied profile and credential fields.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"socialhub/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	MaxFirstNameLength = 30
	MaxSurnameLength   = 50
	MinPasswordLength  = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLength = 72
	MaxEmailLength    = 254
	MaxCaptionLength  = 2200
	MaxCommentLength  = 1000
)

var validate = validator.New()

var birthdateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address format and length.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("Email is required.")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("Email must be at most %d characters.", MaxEmailLength)
	}
	if err := validate.Var(email, "email"); err != nil {
		return errors.New("Email is invalid.")
	}
	return nil
}

// ValidatePassword enforces the accepted password length range.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("Password must be at least %d characters.", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("Password must be at most %d characters.", MaxPasswordLength)
	}
	return nil
}

// ValidateFirstName requires a non-blank first name of limited length.
func ValidateFirstName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("First name is required.")
	}
	if utf8.RuneCountInString(name) > MaxFirstNameLength {
		return fmt.Errorf("First name must be at most %d characters.", MaxFirstNameLength)
	}
	return nil
}

// ValidateSurname allows an empty surname but limits its length.
func ValidateSurname(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > MaxSurnameLength {
		return fmt.Errorf("Surname must be at most %d characters.", MaxSurnameLength)
	}
	return nil
}

// ParseGender accepts exactly Male, Female or Others.
func ParseGender(raw string) (models.Gender, error) {
	g := models.Gender(strings.TrimSpace(raw))
	if !g.Valid() {
		return "", errors.New("Gender must be one of Male, Female or Others.")
	}
	return g, nil
}

// ParseBirthdate accepts YYYY-MM-DD or RFC 3339 and rejects future dates.
func ParseBirthdate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("Birthdate is required.")
	}
	for _, layout := range birthdateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.After(now) {
			return time.Time{}, errors.New("Birthdate cannot be in the future.")
		}
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("Birthdate must be a date like 2000-01-31.")
}

// ValidateCaption limits caption length; captions may be empty.
func ValidateCaption(caption string) error {
	if utf8.RuneCountInString(caption) > MaxCaptionLength {
		return fmt.Errorf("Caption must be at most %d characters.", MaxCaptionLength)
	}
	return nil
}

// NormalizeCommentText trims text and requires something to remain.
func NormalizeCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("Comment text is required.")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return "", fmt.Errorf("Comment must be at most %d characters.", MaxCommentLength)
	}
	return text, nil
}
