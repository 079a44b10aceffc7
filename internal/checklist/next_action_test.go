package checklist

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/admissions-checklist/internal/models"
)

func actionItem(title string, status models.ChecklistStatus, sortOrder int, due *models.Date) models.ChecklistItem {
	it := models.ChecklistItem{Title: title, Status: status, SortOrder: sortOrder, DueDate: due, IsRequired: true}
	it.ID = uuid.New()
	return it
}

func TestNextActionItem(t *testing.T) {
	tests := []struct {
		name  string
		items []models.ChecklistItem
		want  string
	}{
		{
			"overdue wins",
			[]models.ChecklistItem{
				actionItem("A", models.ChecklistStatusNotStarted, 0, nil),
				actionItem("B", models.ChecklistStatusOverdue, 1, nil),
			},
			"B",
		},
		{
			"overdue wins over an earlier due date",
			[]models.ChecklistItem{
				actionItem("A", models.ChecklistStatusNotStarted, 0, models.NewDate(2024, 1, 1)),
				actionItem("B", models.ChecklistStatusOverdue, 1, models.NewDate(2024, 2, 1)),
			},
			"B",
		},
		{
			"earliest due date wins",
			[]models.ChecklistItem{
				actionItem("A", models.ChecklistStatusNotStarted, 0, models.NewDate(2024, 3, 15)),
				actionItem("B", models.ChecklistStatusNotStarted, 1, models.NewDate(2024, 2, 15)),
			},
			"B",
		},
		{
			"dated beats undated",
			[]models.ChecklistItem{
				actionItem("A", models.ChecklistStatusNotStarted, 0, nil),
				actionItem("B", models.ChecklistStatusNotStarted, 1, models.NewDate(2024, 3, 15)),
			},
			"B",
		},
		{
			"sort order fallback",
			[]models.ChecklistItem{
				actionItem("A", models.ChecklistStatusNotStarted, 2, nil),
				actionItem("B", models.ChecklistStatusNotStarted, 1, nil),
			},
			"B",
		},
		{
			"same due date falls back to sort order",
			[]models.ChecklistItem{
				actionItem("A", models.ChecklistStatusSubmitted, 5, models.NewDate(2024, 3, 15)),
				actionItem("B", models.ChecklistStatusInProgress, 4, models.NewDate(2024, 3, 15)),
			},
			"B",
		},
		{
			"done items are skipped",
			[]models.ChecklistItem{
				actionItem("A", models.ChecklistStatusCompleted, 0, models.NewDate(2020, 1, 1)),
				actionItem("B", models.ChecklistStatusSubmitted, 9, nil),
				actionItem("C", models.ChecklistStatusWaived, 1, nil),
			},
			"B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextActionItem(tt.items)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Title)
		})
	}
}

func TestNextActionItemNoneOutstanding(t *testing.T) {
	assert.Nil(t, NextActionItem(nil))
	assert.Nil(t, NextActionItem([]models.ChecklistItem{
		actionItem("A", models.ChecklistStatusCompleted, 0, nil),
		actionItem("B", models.ChecklistStatusWaived, 1, nil),
	}))
}

func TestNextActionItemDoesNotReorderInput(t *testing.T) {
	items := []models.ChecklistItem{
		actionItem("A", models.ChecklistStatusNotStarted, 1, nil),
		actionItem("B", models.ChecklistStatusNotStarted, 0, nil),
	}
	NextActionItem(items)
	assert.Equal(t, "A", items[0].Title)
}

func TestOutstandingOrder(t *testing.T) {
	items := []models.ChecklistItem{
		actionItem("undated-late", models.ChecklistStatusNotStarted, 3, nil),
		actionItem("done", models.ChecklistStatusCompleted, 0, nil),
		actionItem("march", models.ChecklistStatusInProgress, 2, models.NewDate(2024, 3, 1)),
		actionItem("overdue", models.ChecklistStatusOverdue, 4, models.NewDate(2024, 1, 1)),
		actionItem("undated-early", models.ChecklistStatusNotStarted, 1, nil),
		actionItem("feb", models.ChecklistStatusNotStarted, 5, models.NewDate(2024, 2, 1)),
	}

	var titles []string
	for _, it := range Outstanding(items) {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"overdue", "feb", "march", "undated-early", "undated-late"}, titles)
}

func TestCompareUrgencyIsTotal(t *testing.T) {
	a := actionItem("A", models.ChecklistStatusNotStarted, 0, nil)
	b := a
	b.ID = uuid.New()

	assert.Equal(t, 0, CompareUrgency(a, a))
	assert.NotEqual(t, 0, CompareUrgency(a, b))
	assert.Equal(t, -CompareUrgency(a, b), CompareUrgency(b, a))
}
