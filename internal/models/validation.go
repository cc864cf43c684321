package models

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// one @, no whitespace, a dot in the domain
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const (
	maxNameLength        = 128
	maxDescriptionLength = 4096
	minPasswordLength    = 8
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidateName validates a project name
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > maxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxNameLength)}
	}
	return nil
}

// ValidateDescription validates description field
func ValidateDescription(description string) error {
	if len(description) > maxDescriptionLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", maxDescriptionLength)}
	}
	return nil
}

// ValidateStatus validates a project status
func ValidateStatus(status ProjectStatus) error {
	for _, s := range ProjectStatuses {
		if status == s {
			return nil
		}
	}
	names := make([]string, len(ProjectStatuses))
	for i, s := range ProjectStatuses {
		names[i] = string(s)
	}
	return &ValidationError{Field: "status", Message: fmt.Sprintf("status must be one of: %s", strings.Join(names, ", "))}
}

// ValidateProjectInput validates a create or update payload.
// An empty status is allowed and means "keep" on update, "planned" on create.
func ValidateProjectInput(in *ProjectInput) error {
	if err := ValidateName(in.Name); err != nil {
		return err
	}
	if err := ValidateDescription(in.Description); err != nil {
		return err
	}
	if in.Status != "" {
		if err := ValidateStatus(in.Status); err != nil {
			return err
		}
	}
	if in.StartDate != nil && in.DueDate != nil && in.DueDate.Before(*in.StartDate) {
		return &ValidationError{Field: "due_date", Message: "due_date must not be before start_date"}
	}
	return nil
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "email is not a valid address"}
	}
	return nil
}

// ValidatePassword validates a new password
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	return nil
}

// ValidateRegistration validates a registration payload
func ValidateRegistration(req *RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	return ValidatePassword(req.Password)
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
