// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}

	return json.Unmarshal(bytes, j)
}

// DeepCopy returns a copy that shares no maps or slices with j.
func (j JSONB) DeepCopy() JSONB {
	if j == nil {
		return nil
	}
	out := make(JSONB, len(j))
	for k, v := range j {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return map[string]interface{}(JSONB(t).DeepCopy())
	case JSONB:
		return t.DeepCopy()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = deepCopyValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Enums
type ChecklistStatus string

const (
	ChecklistStatusNotStarted ChecklistStatus = "not_started"
	ChecklistStatusInProgress ChecklistStatus = "in_progress"
	ChecklistStatusSubmitted  ChecklistStatus = "submitted"
	ChecklistStatusCompleted  ChecklistStatus = "completed"
	ChecklistStatusWaived     ChecklistStatus = "waived"
	ChecklistStatusOverdue    ChecklistStatus = "overdue"
)

// ChecklistStatuses lists every status in lifecycle order.
var ChecklistStatuses = []ChecklistStatus{
	ChecklistStatusNotStarted,
	ChecklistStatusInProgress,
	ChecklistStatusSubmitted,
	ChecklistStatusCompleted,
	ChecklistStatusWaived,
	ChecklistStatusOverdue,
}

func (s ChecklistStatus) Valid() bool {
	for _, known := range ChecklistStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type ItemType string

const (
	ItemTypeFormSubmission  ItemType = "form_submission"
	ItemTypeDocumentUpload  ItemType = "document_upload"
	ItemTypeRecommendation  ItemType = "recommendation"
	ItemTypeInterview       ItemType = "interview"
	ItemTypeAssessment      ItemType = "assessment"
	ItemTypePayment         ItemType = "payment"
	ItemTypeEventAttendance ItemType = "event_attendance"
	ItemTypeCustom          ItemType = "custom"
)

type ApplicationStage string

const (
	ApplicationStageInquiry      ApplicationStage = "inquiry"
	ApplicationStageStarted      ApplicationStage = "started"
	ApplicationStageSubmitted    ApplicationStage = "submitted"
	ApplicationStageUnderReview  ApplicationStage = "under_review"
	ApplicationStageWaitlisted   ApplicationStage = "waitlisted"
	ApplicationStageAccepted     ApplicationStage = "accepted"
	ApplicationStageDenied       ApplicationStage = "denied"
	ApplicationStageContractSent ApplicationStage = "contract_sent"
	ApplicationStageEnrolled     ApplicationStage = "enrolled"
	ApplicationStageWithdrawn    ApplicationStage = "withdrawn"
)

type NotificationKind string

const (
	NotificationKindItemOverdue        NotificationKind = "item_overdue"
	NotificationKindNextActionReminder NotificationKind = "next_action_reminder"
)

type NotificationStatus string

const (
	NotificationStatusUnread NotificationStatus = "unread"
	NotificationStatusRead   NotificationStatus = "read"
)
