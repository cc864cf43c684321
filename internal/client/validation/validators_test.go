package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitidev/workhub/internal/models"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		expected  *time.Time
		wantError bool
	}{
		{name: "empty", value: ""},
		{name: "date", value: "2026-03-09", expected: ptr(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339 normalised to UTC", value: "2026-03-09T10:00:00+02:00", expected: ptr(time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC))},
		{name: "garbage", value: "next tuesday", wantError: true},
		{name: "day out of range", value: "2026-02-30", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate("due", tt.value)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--due")
				return
			}
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "got %s", got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" Active ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, status)

	status, err = ParseStatus("")
	require.NoError(t, err)
	assert.Empty(t, status)

	_, err = ParseStatus("paused")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --status")
	assert.Contains(t, err.Error(), "planned")
}

func TestValidateProjectInput(t *testing.T) {
	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	due := start.AddDate(0, 0, -1)

	err := ValidateProjectInput(&models.ProjectInput{Name: "Website", StartDate: &start, DueDate: &due})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --due")

	err = ValidateProjectInput(&models.ProjectInput{Name: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --name")

	assert.NoError(t, ValidateProjectInput(&models.ProjectInput{Name: "Website", StartDate: &start}))
}

func ptr(t time.Time) *time.Time {
	return &t
}
