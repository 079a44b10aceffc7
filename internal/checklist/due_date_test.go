package checklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/admissions-checklist/internal/models"
)

func application(created time.Time, submitted *time.Time) models.Application {
	app := models.Application{SubmittedAt: submitted}
	app.CreatedAt = created
	return app
}

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCalculateDueDate(t *testing.T) {
	submitted := ts("2024-10-15T18:30:00Z")
	withSubmission := application(ts("2024-09-01T00:00:00Z"), &submitted)
	noSubmission := application(ts("2024-09-01T00:00:00Z"), nil)

	tests := []struct {
		name string
		rule models.DueDateRule
		app  models.Application
		want string
	}{
		{"no rule", nil, withSubmission, ""},
		{"explicit none", models.NoDueDate{}, withSubmission, ""},
		{"fixed", models.Fixed("2026-06-01"), noSubmission, "2026-06-01"},
		{"fixed malformed", models.Fixed("June 1st"), noSubmission, ""},
		{"fixed out of range", models.Fixed("2026-02-30"), noSubmission, ""},
		{"relative to start", models.DaysAfterStart(7), noSubmission, "2024-09-08"},
		{"relative to start negative", models.DaysAfterStart(-1), noSubmission, "2024-08-31"},
		{"relative to submission", models.DaysAfterSubmission(30), withSubmission, "2024-11-14"},
		{"relative to submission before submitting", models.DaysAfterSubmission(30), noSubmission, ""},
		{"relative to start without created_at", models.DaysAfterStart(7), models.Application{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CalculateDueDate(tt.rule, tt.app)
			if tt.want == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Format(models.DateLayout))
		})
	}
}

func TestCalculateDueDateCrossesBoundaries(t *testing.T) {
	leap := application(ts("2024-02-28T23:59:00Z"), nil)
	got, ok := CalculateDueDate(models.DaysAfterStart(1), leap)
	require.True(t, ok)
	assert.Equal(t, "2024-02-29", got.Format(models.DateLayout))

	yearEnd := application(ts("2024-12-25T10:00:00Z"), nil)
	got, ok = CalculateDueDate(models.DaysAfterStart(10), yearEnd)
	require.True(t, ok)
	assert.Equal(t, "2025-01-04", got.Format(models.DateLayout))

	// US DST ends on 2024-11-03; day arithmetic must not drift by an hour.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	dst := application(time.Date(2024, 11, 2, 12, 0, 0, 0, ny), nil)
	got, ok = CalculateDueDate(models.DaysAfterStart(2), dst)
	require.True(t, ok)
	assert.Equal(t, "2024-11-04", got.Format(models.DateLayout))
	assert.Equal(t, 0, got.Hour())
}

func TestDueDateFor(t *testing.T) {
	app := application(ts("2024-09-01T00:00:00Z"), nil)

	assert.Nil(t, DueDateFor(models.DaysAfterSubmission(3), app))

	d := DueDateFor(models.DaysAfterStart(7), app)
	require.NotNil(t, d)
	assert.Equal(t, "2024-09-08", models.FormatDate(d))
}

func TestSameDueDate(t *testing.T) {
	assert.True(t, SameDueDate(nil, nil))
	assert.False(t, SameDueDate(models.NewDate(2024, 3, 1), nil))
	assert.True(t, SameDueDate(models.NewDate(2024, 3, 1), models.NewDate(2024, 3, 1)))
	assert.False(t, SameDueDate(models.NewDate(2024, 3, 1), models.NewDate(2024, 3, 2)))
}
