// internal/models/checklist.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ChecklistTemplate is deactivated, never deleted, so instantiated items keep
// a valid template reference.
type ChecklistTemplate struct {
	BaseModel
	SchoolID         uuid.UUID        `json:"school_id" gorm:"type:uuid;not null;index"`
	SeasonID         *uuid.UUID       `json:"season_id" gorm:"type:uuid;index"`
	Stage            ApplicationStage `json:"stage" gorm:"type:varchar(30);not null;index"`
	Name             string           `json:"name" gorm:"size:255;not null"`
	GradeLevels      pq.StringArray   `json:"grade_levels" gorm:"type:text[]"`
	ApplicationTypes pq.StringArray   `json:"application_types" gorm:"type:text[]"`
	IsActive         bool             `json:"is_active" gorm:"default:true;index"`

	// Relationships
	Items []ChecklistTemplateItem `json:"items,omitempty" gorm:"foreignKey:TemplateID"`
}

type ChecklistTemplateItem struct {
	BaseModel
	TemplateID  uuid.UUID         `json:"template_id" gorm:"type:uuid;not null;index"`
	Title       string            `json:"title" gorm:"size:255;not null"`
	Description string            `json:"description" gorm:"type:text"`
	ItemType    ItemType          `json:"item_type" gorm:"type:varchar(30);not null"`
	IsRequired  bool              `json:"is_required"`
	SortOrder   int               `json:"sort_order" gorm:"not null"`
	Config      JSONB             `json:"config" gorm:"type:jsonb"`
	DueDateRule DueDateRuleColumn `json:"due_date_rule" gorm:"type:jsonb"`
}

// ChecklistItem is the per-application instance of a template item, or an ad
// hoc item when TemplateItemID is nil.
type ChecklistItem struct {
	BaseModel
	ApplicationID  uuid.UUID       `json:"application_id" gorm:"type:uuid;not null;index"`
	TemplateItemID *uuid.UUID      `json:"template_item_id" gorm:"type:uuid;index"`
	Title          string          `json:"title" gorm:"size:255;not null"`
	Description    string          `json:"description" gorm:"type:text"`
	ItemType       ItemType        `json:"item_type" gorm:"type:varchar(30);not null"`
	IsRequired     bool            `json:"is_required"`
	SortOrder      int             `json:"sort_order" gorm:"not null"`
	Status         ChecklistStatus `json:"status" gorm:"type:varchar(20);default:'not_started';index"`
	DueDate        *Date           `json:"due_date" gorm:"index"`
	CompletedAt    *time.Time      `json:"completed_at"`
	CompletedBy    *uuid.UUID      `json:"completed_by" gorm:"type:uuid"`
	Config         JSONB           `json:"config" gorm:"type:jsonb"`
	SubmissionData JSONB           `json:"submission_data" gorm:"type:jsonb"`
}

// ChecklistItemEvent records one status change. A nil ActorID means the
// change came from the overdue sweep.
type ChecklistItemEvent struct {
	BaseModel
	ChecklistItemID uuid.UUID       `json:"checklist_item_id" gorm:"type:uuid;not null;index"`
	FromStatus      ChecklistStatus `json:"from_status" gorm:"type:varchar(20);not null"`
	ToStatus        ChecklistStatus `json:"to_status" gorm:"type:varchar(20);not null"`
	ActorID         *uuid.UUID      `json:"actor_id" gorm:"type:uuid"`
	Reason          string          `json:"reason,omitempty" gorm:"type:text"`
}
