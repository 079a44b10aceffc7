package checklist

import "github.com/javajoker/admissions-checklist/internal/models"

type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// CalculateProgress counts required items only. With no required items the
// checklist is reported as 100% complete.
func CalculateProgress(items []models.ChecklistItem) Progress {
	var p Progress
	for _, item := range items {
		if !item.IsRequired {
			continue
		}
		p.Total++
		if IsEffectivelyDone(item.Status) {
			p.Completed++
		}
	}
	p.Percentage = percentage(p.Completed, p.Total)
	return p
}

// IsChecklistComplete is true when every required item is effectively done.
func IsChecklistComplete(items []models.ChecklistItem) bool {
	for _, item := range items {
		if item.IsRequired && !IsEffectivelyDone(item.Status) {
			return false
		}
	}
	return true
}

// percentage rounds half up in integer arithmetic:
// floor(completed*100/total + 1/2) == (200*completed + total) / (2*total).
func percentage(completed, total int) int {
	if total == 0 {
		return 100
	}
	return (200*completed + total) / (2 * total)
}
