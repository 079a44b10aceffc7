// internal/handlers/checklist.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/admissions-checklist/internal/i18n"
	"github.com/javajoker/admissions-checklist/internal/services"
	"github.com/javajoker/admissions-checklist/internal/utils"
)

type ChecklistHandler struct {
	checklistService *services.ChecklistService
}

func NewChecklistHandler(checklistService *services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{
		checklistService: checklistService,
	}
}

// GET /applications/:id/checklist
func (h *ChecklistHandler) GetChecklist(c *gin.Context) {
	applicationID, ok := parseID(c, "id", "application")
	if !ok {
		return
	}

	summary, err := h.checklistService.GetSummary(c.Request.Context(), applicationID)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, summary)
}

// POST /applications/:id/checklist/instantiate
func (h *ChecklistHandler) Instantiate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	applicationID, ok := parseID(c, "id", "application")
	if !ok {
		return
	}

	// The body is optional
	var req services.InstantiateRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	items, err := h.checklistService.Instantiate(c.Request.Context(), applicationID, &req)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyChecklistInstantiated),
		"items":   nonNil(items),
	})
}

// POST /applications/:id/checklist/items
func (h *ChecklistHandler) AddItem(c *gin.Context) {
	applicationID, ok := parseID(c, "id", "application")
	if !ok {
		return
	}

	var req services.CustomItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.checklistService.AddCustomItem(c.Request.Context(), applicationID, &req)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.CreatedResponse(c, item)
}

// POST /applications/:id/checklist/recalculate
func (h *ChecklistHandler) RecalculateDueDates(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	applicationID, ok := parseID(c, "id", "application")
	if !ok {
		return
	}

	changed, err := h.checklistService.RecalculateDueDates(c.Request.Context(), applicationID)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyChecklistDueDatesUpdated),
		"items":   changed,
	})
}

// POST /applications/:id/checklist/remind
func (h *ChecklistHandler) RemindNextAction(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	applicationID, ok := parseID(c, "id", "application")
	if !ok {
		return
	}

	notification, err := h.checklistService.RemindNextAction(c.Request.Context(), applicationID)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	if notification == nil {
		utils.SuccessResponse(c, gin.H{
			"message":      i18n.T(lang, i18n.KeyChecklistNothingToRemind),
			"notification": nil,
		})
		return
	}

	utils.CreatedResponse(c, gin.H{
		"notification": notification,
	})
}

// GET /applications/:id/notifications
func (h *ChecklistHandler) ListNotifications(c *gin.Context) {
	applicationID, ok := parseID(c, "id", "application")
	if !ok {
		return
	}

	notifications, err := h.checklistService.ListNotifications(c.Request.Context(), applicationID)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.PaginatedResponse(c, utils.Paginate(notifications, utils.GetPaginationParams(c)))
}

// PATCH /checklist-items/:id/status
func (h *ChecklistHandler) UpdateStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	itemID, ok := parseID(c, "id", "checklist item")
	if !ok {
		return
	}

	var req services.TransitionRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.checklistService.Transition(c.Request.Context(), itemID, &req)
	if err != nil {
		respondError(c, err, "checklist_item")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyChecklistStatusUpdated),
		"item":    item,
	})
}

// GET /checklist-items/:id/events
func (h *ChecklistHandler) ListEvents(c *gin.Context) {
	itemID, ok := parseID(c, "id", "checklist item")
	if !ok {
		return
	}

	events, err := h.checklistService.ListItemEvents(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err, "checklist_item")
		return
	}

	utils.SuccessResponse(c, events)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
