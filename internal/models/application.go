// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// School is the tenant that owns templates and applications.
type School struct {
	BaseModel
	Name     string `json:"name" gorm:"size:255;not null"`
	Timezone string `json:"timezone" gorm:"size:64;not null;default:'UTC'"`
}

// Application is owned by the admissions pipeline. The checklist engine only
// reads its milestones and its grade/type for template matching.
type Application struct {
	BaseModel
	SchoolID        uuid.UUID        `json:"school_id" gorm:"type:uuid;not null;index"`
	SeasonID        *uuid.UUID       `json:"season_id" gorm:"type:uuid;index"`
	StudentName     string           `json:"student_name" gorm:"size:255"`
	Stage           ApplicationStage `json:"stage" gorm:"type:varchar(30);not null;index"`
	GradeLevel      string           `json:"grade_level" gorm:"size:20"`
	ApplicationType string           `json:"application_type" gorm:"size:50"`
	SubmittedAt     *time.Time       `json:"submitted_at"`

	School *School `json:"school,omitempty" gorm:"foreignKey:SchoolID"`
}
