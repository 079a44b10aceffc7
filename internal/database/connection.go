// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/admissions-checklist/internal/config"
	"github.com/javajoker/admissions-checklist/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(cfg.GormLogLevel()),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.School{},
		&models.Application{},
		&models.ChecklistTemplate{},
		&models.ChecklistTemplateItem{},
		&models.ChecklistItem{},
		&models.ChecklistItemEvent{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Template selection by school and stage
		"CREATE INDEX IF NOT EXISTS idx_checklist_templates_school_stage ON checklist_templates(school_id, stage, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_checklist_template_items_order ON checklist_template_items(template_id, sort_order)",

		// Checklist reads are per application in display order
		"CREATE INDEX IF NOT EXISTS idx_checklist_items_application_order ON checklist_items(application_id, sort_order)",

		// Overdue sweep scans outstanding dated items only
		"CREATE INDEX IF NOT EXISTS idx_checklist_items_sweep ON checklist_items(due_date, id) WHERE due_date IS NOT NULL AND status IN ('not_started', 'in_progress', 'submitted')",

		"CREATE INDEX IF NOT EXISTS idx_checklist_item_events_item ON checklist_item_events(checklist_item_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_application ON notifications(application_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}
