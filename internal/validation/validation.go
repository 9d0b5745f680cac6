// Package validation provides input validation for account and content fields.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLen = 12
	MaxPasswordLen = 128
	MinUsernameLen = 3
	MaxUsernameLen = 30
	MaxEmailLen    = 254
	MaxFullNameLen = 100
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
	specialRegex  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)

	validate = validator.New()
)

// NormalizeUsername trims and lower-cases a username the way it is stored.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail trims and lower-cases an email the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword checks length and character-class requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLen)
	}

	var hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !digitRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !specialRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one special character (!@#$%%^&*)")
	}
	return nil
}

// ValidateUsername checks an already normalized username.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain lowercase letters, numbers, underscores, and hyphens")
	}

	first, last := username[0], username[len(username)-1]
	if first == '_' || first == '-' || last == '_' || last == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}
	if validate.Var(email, "required,email") != nil || strings.Contains(email, "..") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateFullName rejects names longer than MaxFullNameLen runes.
func ValidateFullName(name string) error {
	if utf8.RuneCountInString(name) > MaxFullNameLen {
		return fmt.Errorf("full name must not exceed %d characters", MaxFullNameLen)
	}
	return nil
}

// Blank reports whether any of the values is empty after trimming.
func Blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
