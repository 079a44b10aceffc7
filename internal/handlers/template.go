// internal/handlers/template.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/admissions-checklist/internal/i18n"
	"github.com/javajoker/admissions-checklist/internal/models"
	"github.com/javajoker/admissions-checklist/internal/repository"
	"github.com/javajoker/admissions-checklist/internal/services"
	"github.com/javajoker/admissions-checklist/internal/utils"
)

type TemplateHandler struct {
	templateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

// POST /checklist-templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req services.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "checklist_template")
		return
	}

	utils.CreatedResponse(c, template)
}

// GET /checklist-templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	var filter repository.TemplateFilter

	// Parse filters
	if schoolIDStr := c.Query("school_id"); schoolIDStr != "" {
		schoolID, err := uuid.Parse(schoolIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid school ID", nil)
			return
		}
		filter.SchoolID = &schoolID
	}

	if stage := c.Query("stage"); stage != "" {
		appStage := models.ApplicationStage(stage)
		filter.Stage = &appStage
	}

	if active := c.Query("active"); active != "" {
		activeOnly, err := strconv.ParseBool(active)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid active filter", nil)
			return
		}
		filter.ActiveOnly = activeOnly
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "checklist_template")
		return
	}

	utils.PaginatedResponse(c, utils.Paginate(templates, utils.GetPaginationParams(c)))
}

// GET /checklist-templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	templateID, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	template, err := h.templateService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		respondError(c, err, "checklist_template")
		return
	}

	utils.SuccessResponse(c, template)
}

// POST /checklist-templates/:id/items
func (h *TemplateHandler) AddItem(c *gin.Context) {
	templateID, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	var req services.TemplateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.templateService.AddTemplateItem(c.Request.Context(), templateID, &req)
	if err != nil {
		respondError(c, err, "checklist_template")
		return
	}

	utils.CreatedResponse(c, item)
}

// PUT /checklist-templates/:id/items/order
func (h *TemplateHandler) ReorderItems(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	templateID, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	var req services.ReorderItemsRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.ReorderTemplateItems(c.Request.Context(), templateID, &req)
	if err != nil {
		respondError(c, err, "checklist_template")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyChecklistTemplateUpdated),
		"template": template,
	})
}

// DELETE /checklist-templates/:id/items/:itemId
func (h *TemplateHandler) RemoveItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	templateID, ok := parseID(c, "id", "template")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId", "template item")
	if !ok {
		return
	}

	if err := h.templateService.RemoveTemplateItem(c.Request.Context(), templateID, itemID); err != nil {
		respondError(c, err, "template_item")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyChecklistTemplateUpdated),
	})
}

// POST /checklist-templates/:id/deactivate
func (h *TemplateHandler) DeactivateTemplate(c *gin.Context) {
	templateID, ok := parseID(c, "id", "template")
	if !ok {
		return
	}

	template, err := h.templateService.DeactivateTemplate(c.Request.Context(), templateID)
	if err != nil {
		respondError(c, err, "checklist_template")
		return
	}

	utils.SuccessResponse(c, template)
}
