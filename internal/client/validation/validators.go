package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pitidev/workhub/internal/models"
)

// ParseDate parses a --start/--due flag value. Accepts YYYY-MM-DD or RFC 3339.
// An empty value returns nil.
func ParseDate(flag, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, fmt.Errorf("invalid --%s format. Expected 'YYYY-MM-DD', got: '%s'", flag, value)
}

// ParseStatus validates a --status flag value. An empty value returns "".
func ParseStatus(value string) (models.ProjectStatus, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	status := models.ProjectStatus(value)
	if err := models.ValidateStatus(status); err != nil {
		var valErr *models.ValidationError
		if errors.As(err, &valErr) {
			return "", fmt.Errorf("invalid --status: %s", valErr.Message)
		}
		return "", err
	}
	return status, nil
}

// ValidateProjectInput checks a payload before it is sent, so obvious
// mistakes fail without a round trip
func ValidateProjectInput(in *models.ProjectInput) error {
	if err := models.ValidateProjectInput(in); err != nil {
		var valErr *models.ValidationError
		if errors.As(err, &valErr) {
			return fmt.Errorf("invalid --%s: %s", flagName(valErr.Field), valErr.Message)
		}
		return err
	}
	return nil
}

func flagName(field string) string {
	switch field {
	case "start_date":
		return "start"
	case "due_date":
		return "due"
	default:
		return field
	}
}
