// internal/repository/gorm.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/admissions-checklist/internal/models"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("database error: %w", err)
}

func (r *GormRepository) CreateSchool(ctx context.Context, school *models.School) error {
	if err := r.db.WithContext(ctx).Create(school).Error; err != nil {
		return fmt.Errorf("failed to create school: %w", err)
	}
	return nil
}

func (r *GormRepository) GetSchool(ctx context.Context, id uuid.UUID) (*models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).First(&school, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "school")
	}
	return &school, nil
}

func (r *GormRepository) CreateApplication(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *GormRepository) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "application")
	}
	return &app, nil
}

func (r *GormRepository) CreateTemplate(ctx context.Context, template *models.ChecklistTemplate) error {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("failed to create checklist template: %w", err)
	}
	return nil
}

func (r *GormRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*models.ChecklistTemplate, error) {
	var template models.ChecklistTemplate
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		First(&template, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "checklist template")
	}
	return &template, nil
}

func (r *GormRepository) ListTemplates(ctx context.Context, filter TemplateFilter) ([]models.ChecklistTemplate, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") })

	if filter.SchoolID != nil {
		query = query.Where("school_id = ?", *filter.SchoolID)
	}
	if filter.Stage != nil {
		query = query.Where("stage = ?", *filter.Stage)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var templates []models.ChecklistTemplate
	if err := query.Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list checklist templates: %w", err)
	}
	return templates, nil
}

func (r *GormRepository) SetTemplateActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.ChecklistTemplate{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update checklist template: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("checklist template: %w", ErrNotFound)
	}
	return nil
}

func (r *GormRepository) CreateTemplateItem(ctx context.Context, item *models.ChecklistTemplateItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create checklist template item: %w", err)
	}
	return nil
}

func (r *GormRepository) GetTemplateItem(ctx context.Context, id uuid.UUID) (*models.ChecklistTemplateItem, error) {
	var item models.ChecklistTemplateItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "checklist template item")
	}
	return &item, nil
}

func (r *GormRepository) DeleteTemplateItem(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.ChecklistTemplateItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete checklist template item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("checklist template item: %w", ErrNotFound)
	}
	return nil
}

func (r *GormRepository) SetTemplateItemOrder(ctx context.Context, templateID uuid.UUID, order map[uuid.UUID]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, sortOrder := range order {
			res := tx.Model(&models.ChecklistTemplateItem{}).
				Where("id = ? AND template_id = ?", id, templateID).
				Update("sort_order", sortOrder)
			if res.Error != nil {
				return fmt.Errorf("failed to reorder checklist template item: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("checklist template item %s: %w", id, ErrNotFound)
			}
		}
		return nil
	})
}

func (r *GormRepository) CreateChecklistItems(ctx context.Context, items []models.ChecklistItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create checklist items: %w", err)
	}
	return nil
}

func (r *GormRepository) GetChecklistItem(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "checklist item")
	}
	return &item, nil
}

func (r *GormRepository) ListChecklistItems(ctx context.Context, applicationID uuid.UUID) ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("sort_order ASC").Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}
	return items, nil
}

func (r *GormRepository) HasItemsFromTemplate(ctx context.Context, applicationID, templateID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Joins("JOIN checklist_template_items ON checklist_template_items.id = checklist_items.template_item_id").
		Where("checklist_items.application_id = ? AND checklist_template_items.template_id = ?", applicationID, templateID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count checklist items: %w", err)
	}
	return count > 0, nil
}

func (r *GormRepository) UpdateChecklistItemIf(ctx context.Context, item *models.ChecklistItem, expected models.ChecklistStatus) error {
	item.UpdatedAt = r.db.NowFunc()
	res := r.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("id = ? AND status = ?", item.ID, expected).
		Updates(checklistItemChanges(item))
	if res.Error != nil {
		return fmt.Errorf("failed to update checklist item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("checklist item %s: %w", item.ID, ErrConflict)
	}
	return nil
}

// checklistItemChanges lists the columns a checklist item update may touch.
// A map keeps nil values, so cleared fields are written as NULL.
func checklistItemChanges(item *models.ChecklistItem) map[string]interface{} {
	return map[string]interface{}{
		"status":          item.Status,
		"due_date":        item.DueDate,
		"completed_at":    item.CompletedAt,
		"completed_by":    item.CompletedBy,
		"submission_data": item.SubmissionData,
		"updated_at":      item.UpdatedAt,
	}
}

func (r *GormRepository) TransitionStatusIf(ctx context.Context, id uuid.UUID, expected, to models.ChecklistStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition checklist item: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

type overdueRow struct {
	models.ChecklistItem
	SchoolTimezone string
}

func (r *GormRepository) ListOverdueCandidates(ctx context.Context, query OverdueQuery) ([]OverdueCandidate, error) {
	var rows []overdueRow
	err := r.db.WithContext(ctx).
		Table("checklist_items").
		Select("checklist_items.*, schools.timezone AS school_timezone").
		Joins("JOIN applications ON applications.id = checklist_items.application_id").
		Joins("JOIN schools ON schools.id = applications.school_id").
		Where("checklist_items.status IN ?", outstandingStatuses).
		Where("checklist_items.due_date IS NOT NULL AND checklist_items.due_date < ?", query.DueBefore).
		Where("checklist_items.id > ?", query.AfterID).
		Order("checklist_items.id ASC").
		Limit(query.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue candidates: %w", err)
	}

	candidates := make([]OverdueCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, OverdueCandidate{Item: row.ChecklistItem, Timezone: row.SchoolTimezone})
	}
	return candidates, nil
}

func (r *GormRepository) CreateItemEvent(ctx context.Context, event *models.ChecklistItemEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create checklist item event: %w", err)
	}
	return nil
}

func (r *GormRepository) ListItemEvents(ctx context.Context, itemID uuid.UUID) ([]models.ChecklistItemEvent, error) {
	var events []models.ChecklistItemEvent
	err := r.db.WithContext(ctx).
		Where("checklist_item_id = ?", itemID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist item events: %w", err)
	}
	return events, nil
}

func (r *GormRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *GormRepository) ListNotifications(ctx context.Context, applicationID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *GormRepository) WithinTransaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}
