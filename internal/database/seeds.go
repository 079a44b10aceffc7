// internal/database/seeds.go
package database

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/admissions-checklist/internal/models"
)

// SeedDemoData creates a demo school with one application-stage template when
// the database has no schools yet.
func SeedDemoData(db *gorm.DB) error {
	var schoolCount int64
	if err := db.Model(&models.School{}).Count(&schoolCount).Error; err != nil {
		return fmt.Errorf("failed to count schools: %w", err)
	}
	if schoolCount > 0 {
		return nil
	}

	logrus.Info("Seeding demo data...")

	school := &models.School{Name: "Demo Academy", Timezone: "America/New_York"}
	if err := db.Create(school).Error; err != nil {
		return fmt.Errorf("failed to create demo school: %w", err)
	}

	template := &models.ChecklistTemplate{
		SchoolID:         school.ID,
		Stage:            models.ApplicationStageStarted,
		Name:             "Application requirements",
		GradeLevels:      pq.StringArray{"K", "1", "2", "3", "4", "5"},
		ApplicationTypes: pq.StringArray{"new", "transfer"},
		IsActive:         true,
		Items: []models.ChecklistTemplateItem{
			{
				Title:       "Parent questionnaire",
				ItemType:    models.ItemTypeFormSubmission,
				IsRequired:  true,
				SortOrder:   0,
				DueDateRule: models.DueDateRuleColumn{Rule: models.DaysAfterStart(14)},
			},
			{
				Title:       "Teacher recommendation",
				ItemType:    models.ItemTypeRecommendation,
				IsRequired:  true,
				SortOrder:   1,
				Config:      models.JSONB{"recommenders": 1},
				DueDateRule: models.DueDateRuleColumn{Rule: models.DaysAfterSubmission(21)},
			},
			{
				Title:       "Application fee",
				ItemType:    models.ItemTypePayment,
				IsRequired:  true,
				SortOrder:   2,
				Config:      models.JSONB{"amount_cents": 7500, "waivable": true},
				DueDateRule: models.DueDateRuleColumn{Rule: models.DaysAfterStart(7)},
			},
			{
				Title:      "Campus tour",
				ItemType:   models.ItemTypeEventAttendance,
				IsRequired: false,
				SortOrder:  3,
			},
		},
	}
	if err := db.Create(template).Error; err != nil {
		return fmt.Errorf("failed to create demo template: %w", err)
	}

	logrus.WithField("school_id", school.ID).Info("Demo data seeded")
	return nil
}
