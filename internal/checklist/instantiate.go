package checklist

import (
	"github.com/javajoker/admissions-checklist/internal/models"
)

// Instantiate expands the items of template into fresh checklist items for
// app. templateItems must already be in display order; sort orders are copied
// through untouched. Ids and timestamps are left for the store to assign.
func Instantiate(template models.ChecklistTemplate, templateItems []models.ChecklistTemplateItem, app models.Application) []models.ChecklistItem {
	items := make([]models.ChecklistItem, 0, len(templateItems))
	for _, ti := range templateItems {
		templateItemID := ti.ID

		config := ti.Config.DeepCopy()
		if config == nil {
			config = models.JSONB{}
		}

		items = append(items, models.ChecklistItem{
			ApplicationID:  app.ID,
			TemplateItemID: &templateItemID,
			Title:          ti.Title,
			Description:    ti.Description,
			ItemType:       ti.ItemType,
			IsRequired:     ti.IsRequired,
			SortOrder:      ti.SortOrder,
			Status:         models.ChecklistStatusNotStarted,
			DueDate:        DueDateFor(ti.DueDateRule.Rule, app),
			Config:         config,
			SubmissionData: models.JSONB{},
		})
	}
	return items
}

// TemplateApplies reports whether template should be expanded for app: it is
// active, belongs to the same school and stage, and its grade levels and
// application types both include the application's. An empty target set
// matches everything.
func TemplateApplies(template models.ChecklistTemplate, app models.Application) bool {
	if !template.IsActive {
		return false
	}
	if template.SchoolID != app.SchoolID || template.Stage != app.Stage {
		return false
	}
	return targets(template.GradeLevels, app.GradeLevel) && targets(template.ApplicationTypes, app.ApplicationType)
}

func targets(set []string, value string) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
