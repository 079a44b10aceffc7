// internal/utils/validator.go
package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/admissions-checklist/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("checklist_status", validateChecklistStatus)
	validate.RegisterValidation("item_type", validateItemType)
	validate.RegisterValidation("application_stage", validateApplicationStage)
	validate.RegisterValidation("due_date_rule", validateDueDateRule)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateChecklistStatus(fl validator.FieldLevel) bool {
	return models.ChecklistStatus(fl.Field().String()).Valid()
}

func validateItemType(fl validator.FieldLevel) bool {
	switch models.ItemType(fl.Field().String()) {
	case models.ItemTypeFormSubmission, models.ItemTypeDocumentUpload, models.ItemTypeRecommendation,
		models.ItemTypeInterview, models.ItemTypeAssessment, models.ItemTypePayment,
		models.ItemTypeEventAttendance, models.ItemTypeCustom:
		return true
	}
	return false
}

func validateApplicationStage(fl validator.FieldLevel) bool {
	switch models.ApplicationStage(fl.Field().String()) {
	case models.ApplicationStageInquiry, models.ApplicationStageStarted, models.ApplicationStageSubmitted,
		models.ApplicationStageUnderReview, models.ApplicationStageWaitlisted, models.ApplicationStageAccepted,
		models.ApplicationStageDenied, models.ApplicationStageContractSent, models.ApplicationStageEnrolled,
		models.ApplicationStageWithdrawn:
		return true
	}
	return false
}

// validateDueDateRule accepts the rule type names plus an empty string for
// items without a due date.
func validateDueDateRule(fl validator.FieldLevel) bool {
	switch models.DueDateRuleType(fl.Field().String()) {
	case models.DueDateRuleNone, models.DueDateRuleFixed, models.DueDateRuleRelativeToStart,
		models.DueDateRuleRelativeToSubmission:
		return true
	}
	return false
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

// IsValidationError reports whether err carries validator failures.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "datetime":
		return e.Field() + " must be a date in YYYY-MM-DD format"
	case "checklist_status":
		return "Status must be one of: " + joinStatuses()
	case "item_type":
		return "Item type is not recognised"
	case "application_stage":
		return "Stage is not a known application stage"
	case "due_date_rule":
		return "Due date rule type must be fixed, relative_to_start or relative_to_submission"
	default:
		return e.Field() + " is invalid"
	}
}

func joinStatuses() string {
	names := make([]string, 0, len(models.ChecklistStatuses))
	for _, s := range models.ChecklistStatuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}
