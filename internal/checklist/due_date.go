// Package checklist holds the pure rules of the admissions checklist: due
// dates, template expansion, the status lifecycle, progress and the next
// action. Nothing here performs I/O.
package checklist

import (
	"strings"
	"time"

	"github.com/javajoker/admissions-checklist/internal/models"
)

// CalculateDueDate resolves rule against the application's milestones. The
// second result is false when the item has no due date: no rule, a malformed
// fixed date, or a relative rule whose milestone has not happened yet.
func CalculateDueDate(rule models.DueDateRule, app models.Application) (time.Time, bool) {
	switch r := rule.(type) {
	case models.FixedDueDate:
		d, err := time.Parse(models.DateLayout, strings.TrimSpace(r.Date))
		if err != nil {
			return time.Time{}, false
		}
		return d, true
	case models.RelativeToStart:
		if app.CreatedAt.IsZero() {
			return time.Time{}, false
		}
		return addDays(app.CreatedAt, r.Days), true
	case models.RelativeToSubmission:
		if app.SubmittedAt == nil || app.SubmittedAt.IsZero() {
			return time.Time{}, false
		}
		return addDays(*app.SubmittedAt, r.Days), true
	default:
		return time.Time{}, false
	}
}

// DueDateFor is CalculateDueDate shaped for the checklist item column.
func DueDateFor(rule models.DueDateRule, app models.Application) *models.Date {
	d, ok := CalculateDueDate(rule, app)
	if !ok {
		return nil
	}
	return models.DateFromTime(d)
}

// calendarDate drops the time of day. Milestones are stored in UTC, so the
// date is taken in UTC as well.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// addDays adds calendar days, not multiples of 24h.
func addDays(t time.Time, days int) time.Time {
	return calendarDate(t).AddDate(0, 0, days)
}

func dateValue(d *models.Date) time.Time {
	return d.Time()
}

// SameDueDate reports whether two nullable due dates name the same day.
func SameDueDate(a, b *models.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return dateValue(a).Equal(dateValue(b))
}
