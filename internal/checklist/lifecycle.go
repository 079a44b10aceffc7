package checklist

import (
	"errors"
	"fmt"
	"time"

	"github.com/javajoker/admissions-checklist/internal/models"
)

var (
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrDerivedStatus     = errors.New("overdue is only set by the overdue sweep")
)

// IsEffectivelyDone is true for the terminal-success statuses.
func IsEffectivelyDone(status models.ChecklistStatus) bool {
	return status == models.ChecklistStatusCompleted || status == models.ChecklistStatusWaived
}

// CanBecomeOverdue is true for statuses the sweep may move to overdue.
func CanBecomeOverdue(status models.ChecklistStatus) bool {
	return !IsEffectivelyDone(status) && status != models.ChecklistStatusOverdue
}

// TransitionPolicy is the allow-list of user-initiated status changes.
type TransitionPolicy struct {
	allowed map[models.ChecklistStatus][]models.ChecklistStatus
}

// DefaultPolicy treats completed and waived as final.
func DefaultPolicy() TransitionPolicy {
	return TransitionPolicy{allowed: map[models.ChecklistStatus][]models.ChecklistStatus{
		models.ChecklistStatusNotStarted: {
			models.ChecklistStatusInProgress,
			models.ChecklistStatusSubmitted,
			models.ChecklistStatusCompleted,
			models.ChecklistStatusWaived,
		},
		models.ChecklistStatusInProgress: {
			models.ChecklistStatusSubmitted,
			models.ChecklistStatusCompleted,
			models.ChecklistStatusWaived,
		},
		models.ChecklistStatusSubmitted: {
			models.ChecklistStatusInProgress,
			models.ChecklistStatusCompleted,
			models.ChecklistStatusWaived,
		},
		models.ChecklistStatusOverdue: {
			models.ChecklistStatusInProgress,
			models.ChecklistStatusSubmitted,
			models.ChecklistStatusCompleted,
			models.ChecklistStatusWaived,
		},
	}}
}

// ReopenPolicy is DefaultPolicy plus reopening completed or waived items.
func ReopenPolicy() TransitionPolicy {
	p := DefaultPolicy()
	reopen := []models.ChecklistStatus{models.ChecklistStatusNotStarted, models.ChecklistStatusInProgress}
	p.allowed[models.ChecklistStatusCompleted] = reopen
	p.allowed[models.ChecklistStatusWaived] = reopen
	return p
}

// Targets lists the statuses reachable from from.
func (p TransitionPolicy) Targets(from models.ChecklistStatus) []models.ChecklistStatus {
	return append([]models.ChecklistStatus(nil), p.allowed[from]...)
}

func (p TransitionPolicy) Allows(from, to models.ChecklistStatus) bool {
	for _, s := range p.allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Check returns nil when a user may move an item from from to to.
func (p TransitionPolicy) Check(from, to models.ChecklistStatus) error {
	if to == models.ChecklistStatusOverdue {
		return ErrDerivedStatus
	}
	if !p.Allows(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsPastDue compares the item's due date with today in loc. An item due
// today is not past due.
func IsPastDue(item models.ChecklistItem, now time.Time, loc *time.Location) bool {
	if item.DueDate == nil {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return dateValue(item.DueDate).Before(today)
}

// ShouldMarkOverdue is the sweep's predicate for a single item.
func ShouldMarkOverdue(item models.ChecklistItem, now time.Time, loc *time.Location) bool {
	return CanBecomeOverdue(item.Status) && IsPastDue(item, now, loc)
}
