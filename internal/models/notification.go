// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	ApplicationID   uuid.UUID          `json:"application_id" gorm:"type:uuid;not null;index"`
	ChecklistItemID *uuid.UUID         `json:"checklist_item_id" gorm:"type:uuid;index"`
	Kind            NotificationKind   `json:"kind" gorm:"type:varchar(50);not null;index"`
	Title           string             `json:"title" gorm:"size:255;not null"`
	Message         string             `json:"message" gorm:"type:text;not null"`
	Status          NotificationStatus `json:"status" gorm:"type:varchar(20);default:'unread';index"`
	ReadAt          *time.Time         `json:"read_at"`
}
