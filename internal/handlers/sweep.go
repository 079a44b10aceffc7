// internal/handlers/sweep.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/admissions-checklist/internal/i18n"
	"github.com/javajoker/admissions-checklist/internal/services"
	"github.com/javajoker/admissions-checklist/internal/utils"
)

type SweepHandler struct {
	sweeper *services.OverdueSweeper
}

func NewSweepHandler(sweeper *services.OverdueSweeper) *SweepHandler {
	return &SweepHandler{
		sweeper: sweeper,
	}
}

// POST /sweeps/overdue
func (h *SweepHandler) RunOverdueSweep(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	result, err := h.sweeper.Run(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeySweepCompleted),
		"result":  result,
	})
}
