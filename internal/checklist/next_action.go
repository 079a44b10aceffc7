package checklist

import (
	"cmp"
	"slices"
	"strings"

	"github.com/javajoker/admissions-checklist/internal/models"
)

// NextActionItem returns the most urgent item that is not effectively done,
// or nil when nothing is outstanding.
func NextActionItem(items []models.ChecklistItem) *models.ChecklistItem {
	outstanding := Outstanding(items)
	if len(outstanding) == 0 {
		return nil
	}
	next := outstanding[0]
	return &next
}

// Outstanding returns a copy of the items that are not effectively done,
// most urgent first.
func Outstanding(items []models.ChecklistItem) []models.ChecklistItem {
	out := make([]models.ChecklistItem, 0, len(items))
	for _, item := range items {
		if !IsEffectivelyDone(item.Status) {
			out = append(out, item)
		}
	}
	slices.SortFunc(out, CompareUrgency)
	return out
}

// CompareUrgency orders overdue items first, then dated items by due date
// ahead of undated ones, then by sort order. Item ids settle any remaining
// tie so the order is total.
func CompareUrgency(a, b models.ChecklistItem) int {
	aOverdue := a.Status == models.ChecklistStatusOverdue
	bOverdue := b.Status == models.ChecklistStatusOverdue
	if aOverdue != bOverdue {
		if aOverdue {
			return -1
		}
		return 1
	}

	switch {
	case a.DueDate != nil && b.DueDate == nil:
		return -1
	case a.DueDate == nil && b.DueDate != nil:
		return 1
	case a.DueDate != nil && b.DueDate != nil:
		if c := dateValue(a.DueDate).Compare(dateValue(b.DueDate)); c != 0 {
			return c
		}
	}

	if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}
