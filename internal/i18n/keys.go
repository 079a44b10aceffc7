// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// Resources, used as "<resource>.not_found"
	KeyApplicationNotFound       = "application.not_found"
	KeyChecklistItemNotFound     = "checklist_item.not_found"
	KeyChecklistTemplateNotFound = "checklist_template.not_found"
	KeyTemplateItemNotFound      = "template_item.not_found"

	// Checklist
	KeyChecklistInstantiated     = "checklist.instantiated"
	KeyChecklistStatusUpdated    = "checklist.status_updated"
	KeyChecklistInvalidStatus    = "checklist.invalid_transition"
	KeyChecklistDerivedStatus    = "checklist.derived_status"
	KeyChecklistDueDatesUpdated  = "checklist.due_dates_updated"
	KeyChecklistNothingToRemind  = "checklist.nothing_to_remind"
	KeyChecklistTemplateInactive = "checklist.template_inactive"
	KeyChecklistInvalidOrder     = "checklist.invalid_order"
	KeyChecklistTemplateUpdated  = "checklist.template_updated"
	KeyChecklistItemChanged      = "checklist.item_changed"

	// Notifications
	KeyNotificationOverdueTitle    = "notification.overdue.title"
	KeyNotificationOverdueBody     = "notification.overdue.body"
	KeyNotificationNextActionTitle = "notification.next_action.title"
	KeyNotificationNextActionBody  = "notification.next_action.body"
	KeyNotificationNextActionDue   = "notification.next_action.due"

	// Sweep
	KeySweepCompleted = "sweep.completed"

	// System
	KeySystemError       = "system.error"
	KeySystemRateLimited = "system.rate_limited"
)
