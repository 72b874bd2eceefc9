package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Field length limits enforced by the validators
const (
	MaxEmailLength       = 254
	MinPasswordLength    = 8
	MaxPasswordLength    = 72
	MaxNameLength        = 100
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationResult carries the outcome of a validation check.
// Every violated rule contributes one message so callers can
// report all problems at once instead of the first one found.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

func newResult(errs []string) ValidationResult {
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateEmail checks that the value looks like a deliverable address
func ValidateEmail(email string) ValidationResult {
	var errs []string

	email = strings.TrimSpace(email)
	if email == "" {
		errs = append(errs, "email is required")
		return newResult(errs)
	}
	if len(email) > MaxEmailLength {
		errs = append(errs, fmt.Sprintf("email must be at most %d characters", MaxEmailLength))
	}
	if !emailPattern.MatchString(email) {
		errs = append(errs, "email format is invalid")
	}
	if strings.Contains(email, "..") {
		errs = append(errs, "email must not contain consecutive dots")
	}

	return newResult(errs)
}

// ValidatePassword checks minimum complexity for a new password.
// The rules are deliberately coarse; strength estimation is not a goal.
func ValidatePassword(password string) ValidationResult {
	var errs []string

	if password == "" {
		errs = append(errs, "password is required")
		return newResult(errs)
	}
	if len(password) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at most %d characters", MaxPasswordLength))
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLower {
		errs = append(errs, "password must contain a lowercase letter")
	}
	if !hasUpper {
		errs = append(errs, "password must contain an uppercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain a number")
	}

	return newResult(errs)
}

// ValidateName checks a user display name
func ValidateName(name string) ValidationResult {
	var errs []string

	name = strings.TrimSpace(name)
	if name == "" {
		errs = append(errs, "name is required")
		return newResult(errs)
	}
	if len(name) > MaxNameLength {
		errs = append(errs, fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if strings.ContainsAny(name, "<>") {
		errs = append(errs, "name must not contain angle brackets")
	}

	return newResult(errs)
}

// ValidateTodoTitle checks the title of a todo item
func ValidateTodoTitle(title string) ValidationResult {
	var errs []string

	if strings.TrimSpace(title) == "" {
		errs = append(errs, "title is required")
		return newResult(errs)
	}
	if len(title) > MaxTitleLength {
		errs = append(errs, fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}

	return newResult(errs)
}

// ValidateTodoDescription checks the optional description of a todo item
func ValidateTodoDescription(description string) ValidationResult {
	var errs []string

	if len(description) > MaxDescriptionLength {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}

	return newResult(errs)
}

// ValidatePriority checks that the value is one of the known priority levels
func ValidatePriority(priority string) ValidationResult {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return newResult(nil)
	}
	return newResult([]string{"priority must be one of: low, medium, high"})
}

// ValidateRequired checks that a field has a non-blank value
func ValidateRequired(value, field string) ValidationResult {
	if strings.TrimSpace(value) == "" {
		return newResult([]string{field + " is required"})
	}
	return newResult(nil)
}

// Merge combines several results into one, concatenating error lists
func Merge(results ...ValidationResult) ValidationResult {
	var errs []string
	for _, r := range results {
		errs = append(errs, r.Errors...)
	}
	return newResult(errs)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeInput escapes HTML-significant characters. Defense in depth
// alongside whatever the rendering layer escapes; not a security boundary.
func SanitizeInput(s string) string {
	return htmlEscaper.Replace(s)
}

// IsValidUUID reports whether the value parses as an RFC 4122 UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
