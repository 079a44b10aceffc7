package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/admissions-checklist/internal/models"
)

// sqlRecorder keeps the statements gorm reports to its logger.
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.statements)
	return r.statements[len(r.statements)-1]
}

// dryRunRepository builds SQL against the postgres dialect without a server.
func dryRunRepository(t *testing.T) (*GormRepository, *sqlRecorder) {
	t.Helper()
	recorder := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=admissions dbname=admissions sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               recorder,
	})
	require.NoError(t, err)
	return NewGormRepository(db), recorder
}

func TestGormUpdateChecklistItemIfIsConditional(t *testing.T) {
	repo, recorder := dryRunRepository(t)
	item := &models.ChecklistItem{
		Status:  models.ChecklistStatusSubmitted,
		DueDate: models.NewDate(2024, 9, 8),
	}
	item.ID = uuid.New()

	// Nothing is affected in a dry run, which reads as a lost race.
	err := repo.UpdateChecklistItemIf(context.Background(), item, models.ChecklistStatusInProgress)
	assert.ErrorIs(t, err, ErrConflict)

	sql := recorder.last(t)
	assert.Contains(t, sql, `UPDATE "checklist_items" SET`)
	assert.Contains(t, sql, `"status"='submitted'`)
	assert.Contains(t, sql, `"due_date"='2024-09-08 00:00:00'`)
	assert.Contains(t, sql, `"completed_by"=NULL`)
	assert.Contains(t, sql, "id = '"+item.ID.String()+"' AND status = 'in_progress'")
	assert.Contains(t, sql, `"checklist_items"."deleted_at" IS NULL`)
	assert.NotContains(t, sql, `"title"`)
}

func TestGormTransitionStatusIfIsConditional(t *testing.T) {
	repo, recorder := dryRunRepository(t)
	id := uuid.New()

	updated, err := repo.TransitionStatusIf(context.Background(), id, models.ChecklistStatusNotStarted, models.ChecklistStatusOverdue,
		time.Date(2024, 9, 10, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, updated)

	sql := recorder.last(t)
	assert.Contains(t, sql, `UPDATE "checklist_items" SET`)
	assert.Contains(t, sql, `"status"='overdue'`)
	assert.Contains(t, sql, `"updated_at"='2024-09-10 13:00:00'`)
	assert.Contains(t, sql, "id = '"+id.String()+"' AND status = 'not_started'")
}

func TestGormListOverdueCandidatesQuery(t *testing.T) {
	repo, recorder := dryRunRepository(t)
	after := uuid.New()

	_, err := repo.ListOverdueCandidates(context.Background(), OverdueQuery{
		DueBefore: time.Date(2024, 9, 11, 0, 0, 0, 0, time.UTC),
		AfterID:   after,
		Limit:     50,
	})
	assert.ErrorIs(t, err, gorm.ErrDryRunModeUnsupported)

	sql := recorder.last(t)
	assert.Contains(t, sql, "schools.timezone AS school_timezone")
	assert.Contains(t, sql, "JOIN applications ON applications.id = checklist_items.application_id")
	assert.Contains(t, sql, "JOIN schools ON schools.id = applications.school_id")
	assert.Contains(t, sql, "checklist_items.status IN ('not_started','in_progress','submitted')")
	assert.Contains(t, sql, "checklist_items.due_date < '2024-09-11 00:00:00'")
	assert.Contains(t, sql, "checklist_items.id > '"+after.String()+"'")
	assert.Contains(t, sql, "ORDER BY checklist_items.id ASC")
	assert.Contains(t, sql, "LIMIT 50")
}
