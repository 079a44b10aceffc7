// internal/services/template_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/admissions-checklist/internal/models"
	"github.com/javajoker/admissions-checklist/internal/repository"
	"github.com/javajoker/admissions-checklist/internal/utils"
)

var (
	ErrInvalidOrder = errors.New("item order must list every template item exactly once")
	ErrInvalidRule  = errors.New("invalid due date rule")
)

// TemplateService owns template authoring. Item sort orders are kept dense
// and zero-based after every add, reorder and removal.
type TemplateService struct {
	repo repository.Repository
}

type DueDateRuleRequest struct {
	Type       models.DueDateRuleType `json:"type" validate:"due_date_rule"`
	FixedDate  string                 `json:"fixed_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DaysOffset *int                   `json:"days_offset,omitempty" validate:"omitempty,min=-3650,max=3650"`
}

type TemplateItemRequest struct {
	Title       string                 `json:"title" validate:"required,min=1,max=255"`
	Description string                 `json:"description,omitempty" validate:"max=2000"`
	ItemType    models.ItemType        `json:"item_type" validate:"required,item_type"`
	IsRequired  bool                   `json:"is_required"`
	Config      map[string]interface{} `json:"config,omitempty"`
	DueDateRule *DueDateRuleRequest    `json:"due_date_rule,omitempty"`
}

type CreateTemplateRequest struct {
	SchoolID         uuid.UUID               `json:"school_id" validate:"required"`
	SeasonID         *uuid.UUID              `json:"season_id,omitempty"`
	Stage            models.ApplicationStage `json:"stage" validate:"required,application_stage"`
	Name             string                  `json:"name" validate:"required,min=1,max=255"`
	GradeLevels      []string                `json:"grade_levels,omitempty" validate:"dive,required,max=20"`
	ApplicationTypes []string                `json:"application_types,omitempty" validate:"dive,required,max=50"`
	Items            []TemplateItemRequest   `json:"items,omitempty" validate:"dive"`
}

type ReorderItemsRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" validate:"required"`
}

func NewTemplateService(repo repository.Repository) *TemplateService {
	return &TemplateService{repo: repo}
}

// Rule converts the request into a due-date rule. A nil request means no
// due date.
func (r *DueDateRuleRequest) Rule() (models.DueDateRule, error) {
	if r == nil {
		return models.NoDueDate{}, nil
	}
	switch r.Type {
	case models.DueDateRuleNone:
		return models.NoDueDate{}, nil
	case models.DueDateRuleFixed:
		if r.FixedDate == "" {
			return nil, fmt.Errorf("%w: fixed rule needs fixed_date", ErrInvalidRule)
		}
		if _, err := utils.ParseDate(r.FixedDate); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
		return models.Fixed(r.FixedDate), nil
	case models.DueDateRuleRelativeToStart, models.DueDateRuleRelativeToSubmission:
		if r.DaysOffset == nil {
			return nil, fmt.Errorf("%w: %s rule needs days_offset", ErrInvalidRule, r.Type)
		}
		if r.Type == models.DueDateRuleRelativeToStart {
			return models.DaysAfterStart(*r.DaysOffset), nil
		}
		return models.DaysAfterSubmission(*r.DaysOffset), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidRule, r.Type)
	}
}

func (r *TemplateItemRequest) toModel(templateID uuid.UUID, sortOrder int) (models.ChecklistTemplateItem, error) {
	rule, err := r.DueDateRule.Rule()
	if err != nil {
		return models.ChecklistTemplateItem{}, err
	}

	config := models.JSONB(r.Config).DeepCopy()
	if config == nil {
		config = models.JSONB{}
	}

	return models.ChecklistTemplateItem{
		TemplateID:  templateID,
		Title:       r.Title,
		Description: r.Description,
		ItemType:    r.ItemType,
		IsRequired:  r.IsRequired,
		SortOrder:   sortOrder,
		Config:      config,
		DueDateRule: models.DueDateRuleColumn{Rule: rule},
	}, nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*models.ChecklistTemplate, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	template := &models.ChecklistTemplate{
		SchoolID:         req.SchoolID,
		SeasonID:         req.SeasonID,
		Stage:            req.Stage,
		Name:             req.Name,
		GradeLevels:      pq.StringArray(append([]string{}, req.GradeLevels...)),
		ApplicationTypes: pq.StringArray(append([]string{}, req.ApplicationTypes...)),
		IsActive:         true,
	}

	for i := range req.Items {
		item, err := req.Items[i].toModel(uuid.Nil, i)
		if err != nil {
			return nil, err
		}
		template.Items = append(template.Items, item)
	}

	if err := s.repo.CreateTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create checklist template: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"template_id": template.ID,
		"school_id":   template.SchoolID,
		"stage":       template.Stage,
		"items":       len(template.Items),
	}).Info("Checklist template created")
	return template, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (*models.ChecklistTemplate, error) {
	template, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("checklist template not found: %w", err)
	}
	return template, nil
}

func (s *TemplateService) ListTemplates(ctx context.Context, filter repository.TemplateFilter) ([]models.ChecklistTemplate, error) {
	templates, err := s.repo.ListTemplates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []models.ChecklistTemplate{}
	}
	return templates, nil
}

// AddTemplateItem appends an item at the end of the template.
func (s *TemplateService) AddTemplateItem(ctx context.Context, templateID uuid.UUID, req *TemplateItemRequest) (*models.ChecklistTemplateItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	template, err := s.editableTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	item, err := req.toModel(template.ID, len(template.Items))
	if err != nil {
		return nil, err
	}

	err = s.repo.WithinTransaction(ctx, func(tx repository.Repository) error {
		if err := tx.CreateTemplateItem(ctx, &item); err != nil {
			return fmt.Errorf("failed to create template item: %w", err)
		}
		return s.renumber(ctx, tx, template.ID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ReorderTemplateItems assigns sort orders from the position of each id in
// itemIDs, which must be a permutation of the template's items.
func (s *TemplateService) ReorderTemplateItems(ctx context.Context, templateID uuid.UUID, req *ReorderItemsRequest) (*models.ChecklistTemplate, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	template, err := s.editableTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if len(req.ItemIDs) != len(template.Items) {
		return nil, fmt.Errorf("%w: got %d ids for %d items", ErrInvalidOrder, len(req.ItemIDs), len(template.Items))
	}

	known := make(map[uuid.UUID]bool, len(template.Items))
	for _, item := range template.Items {
		known[item.ID] = true
	}

	order := make(map[uuid.UUID]int, len(req.ItemIDs))
	for i, id := range req.ItemIDs {
		if !known[id] {
			return nil, fmt.Errorf("%w: %s is not in this template", ErrInvalidOrder, id)
		}
		if _, dup := order[id]; dup {
			return nil, fmt.Errorf("%w: %s is listed twice", ErrInvalidOrder, id)
		}
		order[id] = i
	}

	if err := s.repo.SetTemplateItemOrder(ctx, template.ID, order); err != nil {
		return nil, fmt.Errorf("failed to reorder template items: %w", err)
	}
	return s.GetTemplate(ctx, template.ID)
}

// RemoveTemplateItem deletes the item and closes the gap it leaves. Checklist
// items already created from it are kept.
func (s *TemplateService) RemoveTemplateItem(ctx context.Context, templateID, itemID uuid.UUID) error {
	template, err := s.editableTemplate(ctx, templateID)
	if err != nil {
		return err
	}

	item, err := s.repo.GetTemplateItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("template item not found: %w", err)
	}
	if item.TemplateID != template.ID {
		return fmt.Errorf("template item not found: %w", repository.ErrNotFound)
	}

	return s.repo.WithinTransaction(ctx, func(tx repository.Repository) error {
		if err := tx.DeleteTemplateItem(ctx, item.ID); err != nil {
			return fmt.Errorf("failed to delete template item: %w", err)
		}
		return s.renumber(ctx, tx, template.ID)
	})
}

// DeactivateTemplate stops the template from being used for new checklists.
// Templates are never hard-deleted.
func (s *TemplateService) DeactivateTemplate(ctx context.Context, id uuid.UUID) (*models.ChecklistTemplate, error) {
	if err := s.repo.SetTemplateActive(ctx, id, false); err != nil {
		return nil, fmt.Errorf("failed to deactivate template: %w", err)
	}

	logrus.WithField("template_id", id).Info("Checklist template deactivated")
	return s.GetTemplate(ctx, id)
}

func (s *TemplateService) editableTemplate(ctx context.Context, id uuid.UUID) (*models.ChecklistTemplate, error) {
	template, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !template.IsActive {
		return nil, ErrTemplateInactive
	}
	return template, nil
}

// renumber rewrites sort orders as 0..n-1 in the current display order.
func (s *TemplateService) renumber(ctx context.Context, tx repository.Repository, templateID uuid.UUID) error {
	template, err := tx.GetTemplate(ctx, templateID)
	if err != nil {
		return fmt.Errorf("checklist template not found: %w", err)
	}

	order := make(map[uuid.UUID]int, len(template.Items))
	dense := true
	for i, item := range template.Items {
		order[item.ID] = i
		if item.SortOrder != i {
			dense = false
		}
	}
	if dense {
		return nil
	}

	if err := tx.SetTemplateItemOrder(ctx, templateID, order); err != nil {
		return fmt.Errorf("failed to renumber template items: %w", err)
	}
	return nil
}
