// internal/services/checklist_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/admissions-checklist/internal/checklist"
	"github.com/javajoker/admissions-checklist/internal/models"
	"github.com/javajoker/admissions-checklist/internal/repository"
	"github.com/javajoker/admissions-checklist/internal/utils"
)

var ErrTemplateInactive = errors.New("checklist template is inactive")

type ChecklistService struct {
	repo                repository.Repository
	policy              checklist.TransitionPolicy
	notificationService *NotificationService
	now                 func() time.Time
}

type InstantiateRequest struct {
	// TemplateID limits instantiation to one template. Without it every
	// matching active template is used.
	TemplateID *uuid.UUID `json:"template_id,omitempty"`
}

type TransitionRequest struct {
	Status         models.ChecklistStatus `json:"status" validate:"required,checklist_status"`
	ActorID        *uuid.UUID             `json:"actor_id,omitempty"`
	Reason         string                 `json:"reason,omitempty" validate:"max=500"`
	SubmissionData map[string]interface{} `json:"submission_data,omitempty"`
}

type CustomItemRequest struct {
	Title       string                 `json:"title" validate:"required,min=1,max=255"`
	Description string                 `json:"description,omitempty" validate:"max=2000"`
	ItemType    models.ItemType        `json:"item_type,omitempty" validate:"omitempty,item_type"`
	IsRequired  bool                   `json:"is_required"`
	DueDate     string                 `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Config      map[string]interface{} `json:"config,omitempty"`
}

type ChecklistSummary struct {
	ApplicationID uuid.UUID              `json:"application_id"`
	Items         []models.ChecklistItem `json:"items"`
	Progress      checklist.Progress     `json:"progress"`
	NextAction    *models.ChecklistItem  `json:"next_action"`
	IsComplete    bool                   `json:"is_complete"`
}

func NewChecklistService(repo repository.Repository, policy checklist.TransitionPolicy, notificationService *NotificationService) *ChecklistService {
	return &ChecklistService{
		repo:                repo,
		policy:              policy,
		notificationService: notificationService,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}

// Instantiate creates checklist items for the application from its matching
// templates. Templates already instantiated for the application are skipped,
// so calling it twice does not duplicate items.
func (s *ChecklistService) Instantiate(ctx context.Context, applicationID uuid.UUID, req *InstantiateRequest) ([]models.ChecklistItem, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("application not found: %w", err)
	}

	templates, err := s.templatesFor(ctx, app, req)
	if err != nil {
		return nil, err
	}

	var created []models.ChecklistItem
	err = s.repo.WithinTransaction(ctx, func(tx repository.Repository) error {
		for _, template := range templates {
			exists, err := tx.HasItemsFromTemplate(ctx, app.ID, template.ID)
			if err != nil {
				return fmt.Errorf("failed to check existing items: %w", err)
			}
			if exists {
				continue
			}

			items := checklist.Instantiate(template, template.Items, *app)
			if len(items) == 0 {
				continue
			}
			if err := tx.CreateChecklistItems(ctx, items); err != nil {
				return fmt.Errorf("failed to create checklist items: %w", err)
			}
			created = append(created, items...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"templates":      len(templates),
		"items_created":  len(created),
	}).Info("Checklist instantiated")
	return created, nil
}

func (s *ChecklistService) templatesFor(ctx context.Context, app *models.Application, req *InstantiateRequest) ([]models.ChecklistTemplate, error) {
	if req != nil && req.TemplateID != nil {
		template, err := s.repo.GetTemplate(ctx, *req.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("checklist template not found: %w", err)
		}
		if !template.IsActive {
			return nil, ErrTemplateInactive
		}
		return []models.ChecklistTemplate{*template}, nil
	}

	stage := app.Stage
	candidates, err := s.repo.ListTemplates(ctx, repository.TemplateFilter{
		SchoolID:   &app.SchoolID,
		Stage:      &stage,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	var templates []models.ChecklistTemplate
	for _, template := range candidates {
		if checklist.TemplateApplies(template, *app) {
			templates = append(templates, template)
		}
	}
	return templates, nil
}

func (s *ChecklistService) GetSummary(ctx context.Context, applicationID uuid.UUID) (*ChecklistSummary, error) {
	if _, err := s.repo.GetApplication(ctx, applicationID); err != nil {
		return nil, fmt.Errorf("application not found: %w", err)
	}

	items, err := s.repo.ListChecklistItems(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	if items == nil {
		items = []models.ChecklistItem{}
	}

	return &ChecklistSummary{
		ApplicationID: applicationID,
		Items:         items,
		Progress:      checklist.CalculateProgress(items),
		NextAction:    checklist.NextActionItem(items),
		IsComplete:    checklist.IsChecklistComplete(items),
	}, nil
}

// Transition applies a user status change. Completion fields follow the
// status: set when the item becomes effectively done, cleared otherwise. The
// write only lands while the item still has the status the policy was checked
// against; otherwise repository.ErrConflict is returned.
func (s *ChecklistService) Transition(ctx context.Context, itemID uuid.UUID, req *TransitionRequest) (*models.ChecklistItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	item, err := s.repo.GetChecklistItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("checklist item not found: %w", err)
	}

	from := item.Status
	if err := s.policy.Check(from, req.Status); err != nil {
		return nil, err
	}

	now := s.now()
	item.Status = req.Status
	if checklist.IsEffectivelyDone(req.Status) {
		item.CompletedAt = &now
		item.CompletedBy = req.ActorID
	} else {
		item.CompletedAt = nil
		item.CompletedBy = nil
	}
	if req.Status == models.ChecklistStatusSubmitted && req.SubmissionData != nil {
		item.SubmissionData = models.JSONB(req.SubmissionData).DeepCopy()
	}

	err = s.repo.WithinTransaction(ctx, func(tx repository.Repository) error {
		if err := tx.UpdateChecklistItemIf(ctx, item, from); err != nil {
			return fmt.Errorf("failed to update checklist item: %w", err)
		}
		event := &models.ChecklistItemEvent{
			ChecklistItemID: item.ID,
			FromStatus:      from,
			ToStatus:        req.Status,
			ActorID:         req.ActorID,
			Reason:          req.Reason,
		}
		if err := tx.CreateItemEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"item_id": item.ID,
		"from":    from,
		"to":      req.Status,
	}).Info("Checklist item status changed")
	return item, nil
}

// AddCustomItem appends an ad hoc item after the application's existing items.
func (s *ChecklistService) AddCustomItem(ctx context.Context, applicationID uuid.UUID, req *CustomItemRequest) (*models.ChecklistItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.GetApplication(ctx, applicationID); err != nil {
		return nil, fmt.Errorf("application not found: %w", err)
	}

	existing, err := s.repo.ListChecklistItems(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}

	sortOrder := 0
	for _, item := range existing {
		if item.SortOrder >= sortOrder {
			sortOrder = item.SortOrder + 1
		}
	}

	itemType := req.ItemType
	if itemType == "" {
		itemType = models.ItemTypeCustom
	}

	item := models.ChecklistItem{
		ApplicationID:  applicationID,
		Title:          req.Title,
		Description:    req.Description,
		ItemType:       itemType,
		IsRequired:     req.IsRequired,
		SortOrder:      sortOrder,
		Status:         models.ChecklistStatusNotStarted,
		Config:         models.JSONB(req.Config).DeepCopy(),
		SubmissionData: models.JSONB{},
	}
	if item.Config == nil {
		item.Config = models.JSONB{}
	}
	if req.DueDate != "" {
		due, err := utils.ParseDate(req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		item.DueDate = models.DateFromTime(due)
	}

	items := []models.ChecklistItem{item}
	if err := s.repo.CreateChecklistItems(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to create checklist item: %w", err)
	}
	return &items[0], nil
}

// RecalculateDueDates recomputes due dates of outstanding templated items
// after the application's milestones change. It returns the items whose due
// date moved. Items whose template item was removed keep their date.
func (s *ChecklistService) RecalculateDueDates(ctx context.Context, applicationID uuid.UUID) ([]models.ChecklistItem, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("application not found: %w", err)
	}

	items, err := s.repo.ListChecklistItems(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}

	changed := []models.ChecklistItem{}
	err = s.repo.WithinTransaction(ctx, func(tx repository.Repository) error {
		for i := range items {
			item := &items[i]
			if item.TemplateItemID == nil || checklist.IsEffectivelyDone(item.Status) {
				continue
			}

			templateItem, err := tx.GetTemplateItem(ctx, *item.TemplateItemID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load template item: %w", err)
			}

			due := checklist.DueDateFor(templateItem.DueDateRule.Rule, *app)
			if checklist.SameDueDate(item.DueDate, due) {
				continue
			}
			item.DueDate = due
			err = tx.UpdateChecklistItemIf(ctx, item, item.Status)
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to update due date: %w", err)
			}
			changed = append(changed, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		logrus.WithFields(logrus.Fields{
			"application_id": applicationID,
			"items_changed":  len(changed),
		}).Info("Checklist due dates recalculated")
	}
	return changed, nil
}

func (s *ChecklistService) ListItemEvents(ctx context.Context, itemID uuid.UUID) ([]models.ChecklistItemEvent, error) {
	if _, err := s.repo.GetChecklistItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("checklist item not found: %w", err)
	}

	events, err := s.repo.ListItemEvents(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item events: %w", err)
	}
	if events == nil {
		events = []models.ChecklistItemEvent{}
	}
	return events, nil
}

// RemindNextAction records a reminder for the most urgent outstanding item.
// It returns nil when nothing is outstanding.
func (s *ChecklistService) RemindNextAction(ctx context.Context, applicationID uuid.UUID) (*models.Notification, error) {
	summary, err := s.GetSummary(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if summary.NextAction == nil {
		return nil, nil
	}
	return s.notificationService.NotifyNextAction(ctx, s.repo, summary.NextAction)
}

func (s *ChecklistService) ListNotifications(ctx context.Context, applicationID uuid.UUID) ([]models.Notification, error) {
	if _, err := s.repo.GetApplication(ctx, applicationID); err != nil {
		return nil, fmt.Errorf("application not found: %w", err)
	}

	notifications, err := s.repo.ListNotifications(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}
