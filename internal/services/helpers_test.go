package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/admissions-checklist/internal/checklist"
	"github.com/javajoker/admissions-checklist/internal/config"
	"github.com/javajoker/admissions-checklist/internal/i18n"
	"github.com/javajoker/admissions-checklist/internal/models"
	"github.com/javajoker/admissions-checklist/internal/repository"
)

// serviceSuite wires the services over a fresh in-memory repository for
// every test.
type serviceSuite struct {
	suite.Suite
	ctx           context.Context
	repo          *repository.MemoryRepository
	notifications *NotificationService
	checklists    *ChecklistService
	templates     *TemplateService
	sweeper       *OverdueSweeper
	school        *models.School
	app           *models.Application
}

func (s *serviceSuite) SetupSuite() {
	require.NoError(s.T(), i18n.Initialize("en"))
}

func (s *serviceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = repository.NewMemoryRepository()
	s.notifications = NewNotificationService("en")
	s.checklists = NewChecklistService(s.repo, checklist.DefaultPolicy(), s.notifications)
	s.templates = NewTemplateService(s.repo)

	sweeper, err := NewOverdueSweeper(s.repo, s.notifications, config.SweepConfig{BatchSize: 100, DefaultTimezone: "UTC"})
	s.Require().NoError(err)
	s.sweeper = sweeper

	s.school = s.createSchool("America/New_York")
	s.app = s.createApplication(s.school, "3", "new")
}

func (s *serviceSuite) createSchool(timezone string) *models.School {
	school := &models.School{Name: "Hillcrest", Timezone: timezone}
	s.Require().NoError(s.repo.CreateSchool(s.ctx, school))
	return school
}

func (s *serviceSuite) createApplication(school *models.School, grade, appType string) *models.Application {
	app := &models.Application{
		SchoolID:        school.ID,
		StudentName:     "Ada",
		Stage:           models.ApplicationStageStarted,
		GradeLevel:      grade,
		ApplicationType: appType,
	}
	app.CreatedAt = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.repo.CreateApplication(s.ctx, app))
	return app
}

func (s *serviceSuite) createTemplate(req *CreateTemplateRequest) *models.ChecklistTemplate {
	if req.SchoolID == uuid.Nil {
		req.SchoolID = s.school.ID
	}
	if req.Stage == "" {
		req.Stage = models.ApplicationStageStarted
	}
	template, err := s.templates.CreateTemplate(s.ctx, req)
	s.Require().NoError(err)
	return template
}

// createItem stores a checklist item directly, bypassing templates.
func (s *serviceSuite) createItem(app *models.Application, title string, status models.ChecklistStatus, due *time.Time) models.ChecklistItem {
	item := models.ChecklistItem{
		ApplicationID:  app.ID,
		Title:          title,
		ItemType:       models.ItemTypeCustom,
		IsRequired:     true,
		Status:         status,
		Config:         models.JSONB{},
		SubmissionData: models.JSONB{},
	}
	if due != nil {
		item.DueDate = models.DateFromTime(*due)
	}
	items := []models.ChecklistItem{item}
	s.Require().NoError(s.repo.CreateChecklistItems(s.ctx, items))
	return items[0]
}

func (s *serviceSuite) reload(id uuid.UUID) *models.ChecklistItem {
	item, err := s.repo.GetChecklistItem(s.ctx, id)
	s.Require().NoError(err)
	return item
}

func days(n int) *int {
	return &n
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func itemRequest(title string, rule *DueDateRuleRequest) TemplateItemRequest {
	return TemplateItemRequest{
		Title:       title,
		ItemType:    models.ItemTypeFormSubmission,
		IsRequired:  true,
		DueDateRule: rule,
	}
}
