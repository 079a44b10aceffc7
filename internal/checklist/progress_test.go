package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/javajoker/admissions-checklist/internal/models"
)

func item(status models.ChecklistStatus, required bool) models.ChecklistItem {
	return models.ChecklistItem{Status: status, IsRequired: required}
}

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name  string
		items []models.ChecklistItem
		want  Progress
	}{
		{"empty checklist is complete", nil, Progress{Completed: 0, Total: 0, Percentage: 100}},
		{
			"mixed rounds half up",
			[]models.ChecklistItem{
				item(models.ChecklistStatusCompleted, true),
				item(models.ChecklistStatusNotStarted, true),
				item(models.ChecklistStatusCompleted, true),
			},
			Progress{Completed: 2, Total: 3, Percentage: 67},
		},
		{
			"optional items are ignored",
			[]models.ChecklistItem{
				item(models.ChecklistStatusCompleted, true),
				item(models.ChecklistStatusNotStarted, false),
			},
			Progress{Completed: 1, Total: 1, Percentage: 100},
		},
		{
			"only optional items",
			[]models.ChecklistItem{item(models.ChecklistStatusNotStarted, false)},
			Progress{Completed: 0, Total: 0, Percentage: 100},
		},
		{
			"waived counts as done, overdue does not",
			[]models.ChecklistItem{
				item(models.ChecklistStatusWaived, true),
				item(models.ChecklistStatusOverdue, true),
				item(models.ChecklistStatusSubmitted, true),
			},
			Progress{Completed: 1, Total: 3, Percentage: 33},
		},
		{
			"exact half rounds up",
			[]models.ChecklistItem{
				item(models.ChecklistStatusCompleted, true),
				item(models.ChecklistStatusNotStarted, true),
				item(models.ChecklistStatusNotStarted, true),
				item(models.ChecklistStatusNotStarted, true),
				item(models.ChecklistStatusNotStarted, true),
				item(models.ChecklistStatusNotStarted, true),
				item(models.ChecklistStatusNotStarted, true),
				item(models.ChecklistStatusNotStarted, true),
			},
			Progress{Completed: 1, Total: 8, Percentage: 13},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateProgress(tt.items))
		})
	}
}

func TestIsChecklistComplete(t *testing.T) {
	assert.True(t, IsChecklistComplete(nil))

	assert.True(t, IsChecklistComplete([]models.ChecklistItem{
		item(models.ChecklistStatusCompleted, true),
		item(models.ChecklistStatusWaived, true),
		item(models.ChecklistStatusNotStarted, false),
	}))

	assert.False(t, IsChecklistComplete([]models.ChecklistItem{
		item(models.ChecklistStatusCompleted, true),
		item(models.ChecklistStatusSubmitted, true),
	}))
}
