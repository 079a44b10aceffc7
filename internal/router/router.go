// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/admissions-checklist/internal/checklist"
	"github.com/javajoker/admissions-checklist/internal/config"
	"github.com/javajoker/admissions-checklist/internal/handlers"
	"github.com/javajoker/admissions-checklist/internal/middleware"
	"github.com/javajoker/admissions-checklist/internal/repository"
	"github.com/javajoker/admissions-checklist/internal/services"
)

const version = "1.0.0"

// Services groups what the HTTP layer and the scheduler share.
type Services struct {
	Checklists *services.ChecklistService
	Templates  *services.TemplateService
	Sweeper    *services.OverdueSweeper
}

func NewServices(repo repository.Repository, cfg *config.Config) (*Services, error) {
	policy := checklist.DefaultPolicy()
	if cfg.Checklist.AllowReopen {
		policy = checklist.ReopenPolicy()
	}

	notificationService := services.NewNotificationService(cfg.I18n.DefaultLocale)

	sweeper, err := services.NewOverdueSweeper(repo, notificationService, cfg.Sweep)
	if err != nil {
		return nil, err
	}

	return &Services{
		Checklists: services.NewChecklistService(repo, policy, notificationService),
		Templates:  services.NewTemplateService(repo),
		Sweeper:    sweeper,
	}, nil
}

func Initialize(svc *Services, cfg *config.Config) *gin.Engine {
	// Initialize handlers
	checklistHandler := handlers.NewChecklistHandler(svc.Checklists)
	templateHandler := handlers.NewTemplateHandler(svc.Templates)
	sweepHandler := handlers.NewSweepHandler(svc.Sweeper)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.Limit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Per-application checklist
		applications := v1.Group("/applications/:id")
		{
			applications.GET("/checklist", checklistHandler.GetChecklist)
			applications.POST("/checklist/instantiate", checklistHandler.Instantiate)
			applications.POST("/checklist/items", checklistHandler.AddItem)
			applications.POST("/checklist/recalculate", checklistHandler.RecalculateDueDates)
			applications.POST("/checklist/remind", checklistHandler.RemindNextAction)
			applications.GET("/notifications", checklistHandler.ListNotifications)
		}

		items := v1.Group("/checklist-items/:id")
		{
			items.PATCH("/status", checklistHandler.UpdateStatus)
			items.GET("/events", checklistHandler.ListEvents)
		}

		// Template authoring
		templates := v1.Group("/checklist-templates")
		{
			templates.POST("", templateHandler.CreateTemplate)
			templates.GET("", templateHandler.ListTemplates)
			templates.GET("/:id", templateHandler.GetTemplate)
			templates.POST("/:id/items", templateHandler.AddItem)
			templates.PUT("/:id/items/order", templateHandler.ReorderItems)
			templates.DELETE("/:id/items/:itemId", templateHandler.RemoveItem)
			templates.POST("/:id/deactivate", templateHandler.DeactivateTemplate)
		}

		v1.POST("/sweeps/overdue", sweepHandler.RunOverdueSweep)
	}

	return r
}
