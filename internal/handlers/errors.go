// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/admissions-checklist/internal/checklist"
	"github.com/javajoker/admissions-checklist/internal/i18n"
	"github.com/javajoker/admissions-checklist/internal/repository"
	"github.com/javajoker/admissions-checklist/internal/services"
	"github.com/javajoker/admissions-checklist/internal/utils"
)

// respondError maps service errors onto API responses. resource names the
// entity a not-found error refers to.
func respondError(c *gin.Context, err error, resource string) {
	lang := utils.GetLangFromContext(c)

	switch {
	case utils.IsValidationError(err):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	case errors.Is(err, repository.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, checklist.ErrDerivedStatus):
		utils.ErrorResponse(c, http.StatusBadRequest, "DERIVED_STATUS", i18n.T(lang, i18n.KeyChecklistDerivedStatus), nil)
	case errors.Is(err, repository.ErrConflict):
		utils.ConflictResponse(c, "CONCURRENT_UPDATE", i18n.T(lang, i18n.KeyChecklistItemChanged))
	case errors.Is(err, checklist.ErrInvalidTransition):
		utils.ConflictResponse(c, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, services.ErrTemplateInactive):
		utils.ConflictResponse(c, "TEMPLATE_INACTIVE", i18n.T(lang, i18n.KeyChecklistTemplateInactive))
	case errors.Is(err, services.ErrInvalidOrder):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_ORDER", i18n.T(lang, i18n.KeyChecklistInvalidOrder), err.Error())
	case errors.Is(err, services.ErrInvalidRule):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_DUE_DATE_RULE", err.Error(), nil)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString("request_id"),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	}
}

// parseID reads a uuid path parameter, writing a 400 when it is malformed.
func parseID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds and validates a request body.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}
