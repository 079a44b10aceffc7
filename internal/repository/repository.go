// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/admissions-checklist/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict means the record changed after it was read.
	ErrConflict = errors.New("record changed concurrently")
)

type TemplateFilter struct {
	SchoolID   *uuid.UUID
	Stage      *models.ApplicationStage
	ActiveOnly bool
}

// OverdueQuery pages through outstanding dated items. Items are returned in
// id order starting after AfterID.
type OverdueQuery struct {
	DueBefore time.Time
	AfterID   uuid.UUID
	Limit     int
}

// OverdueCandidate is an outstanding item together with its school's
// timezone, which decides what "today" means for it.
type OverdueCandidate struct {
	Item     models.ChecklistItem
	Timezone string
}

// Repository is the persistence boundary of the checklist service.
type Repository interface {
	CreateSchool(ctx context.Context, school *models.School) error
	GetSchool(ctx context.Context, id uuid.UUID) (*models.School, error)
	CreateApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)

	// CreateTemplate inserts the template and any items attached to it.
	CreateTemplate(ctx context.Context, template *models.ChecklistTemplate) error
	// GetTemplate loads the template with its items ordered by sort order.
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.ChecklistTemplate, error)
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]models.ChecklistTemplate, error)
	SetTemplateActive(ctx context.Context, id uuid.UUID, active bool) error
	CreateTemplateItem(ctx context.Context, item *models.ChecklistTemplateItem) error
	GetTemplateItem(ctx context.Context, id uuid.UUID) (*models.ChecklistTemplateItem, error)
	DeleteTemplateItem(ctx context.Context, id uuid.UUID) error
	// SetTemplateItemOrder writes the given sort orders for items of one template.
	SetTemplateItemOrder(ctx context.Context, templateID uuid.UUID, order map[uuid.UUID]int) error

	// CreateChecklistItems assigns ids and timestamps in place.
	CreateChecklistItems(ctx context.Context, items []models.ChecklistItem) error
	GetChecklistItem(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error)
	ListChecklistItems(ctx context.Context, applicationID uuid.UUID) ([]models.ChecklistItem, error)
	HasItemsFromTemplate(ctx context.Context, applicationID, templateID uuid.UUID) (bool, error)
	// UpdateChecklistItemIf writes the item's status, due date, completion
	// and submission fields only while the stored status is still expected.
	// It returns ErrConflict otherwise.
	UpdateChecklistItemIf(ctx context.Context, item *models.ChecklistItem, expected models.ChecklistStatus) error
	// TransitionStatusIf moves an item to status to only while it is still in
	// expected. It reports whether the row was updated.
	TransitionStatusIf(ctx context.Context, id uuid.UUID, expected, to models.ChecklistStatus, at time.Time) (bool, error)
	ListOverdueCandidates(ctx context.Context, query OverdueQuery) ([]OverdueCandidate, error)

	CreateItemEvent(ctx context.Context, event *models.ChecklistItemEvent) error
	ListItemEvents(ctx context.Context, itemID uuid.UUID) ([]models.ChecklistItemEvent, error)
	CreateNotification(ctx context.Context, notification *models.Notification) error
	ListNotifications(ctx context.Context, applicationID uuid.UUID) ([]models.Notification, error)

	// WithinTransaction runs fn against a repository bound to one transaction.
	WithinTransaction(ctx context.Context, fn func(Repository) error) error
}

// outstandingStatuses are the statuses the overdue sweep may move.
var outstandingStatuses = []models.ChecklistStatus{
	models.ChecklistStatusNotStarted,
	models.ChecklistStatusInProgress,
	models.ChecklistStatusSubmitted,
}
