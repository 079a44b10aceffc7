package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/admissions-checklist/internal/models"
)

func seedApplication(t *testing.T, repo *MemoryRepository, timezone string) *models.Application {
	t.Helper()
	ctx := context.Background()
	school := &models.School{Name: "Lakeside", Timezone: timezone}
	require.NoError(t, repo.CreateSchool(ctx, school))
	app := &models.Application{SchoolID: school.ID, Stage: models.ApplicationStageStarted}
	require.NoError(t, repo.CreateApplication(ctx, app))
	return app
}

func seedItem(t *testing.T, repo *MemoryRepository, app *models.Application, status models.ChecklistStatus, due *time.Time) models.ChecklistItem {
	t.Helper()
	item := models.ChecklistItem{ApplicationID: app.ID, Title: "Form", Status: status, Config: models.JSONB{}}
	if due != nil {
		item.DueDate = models.DateFromTime(*due)
	}
	items := []models.ChecklistItem{item}
	require.NoError(t, repo.CreateChecklistItems(context.Background(), items))
	return items[0]
}

func TestMemoryRepositoryCopiesRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	app := seedApplication(t, repo, "")

	item := seedItem(t, repo, app, models.ChecklistStatusNotStarted, nil)
	item.Config["mutated"] = true

	stored, err := repo.GetChecklistItem(ctx, item.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.Config, "mutated")

	stored.Title = "Changed"
	again, err := repo.GetChecklistItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Form", again.Title)

	school, err := repo.GetSchool(ctx, app.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, "UTC", school.Timezone)
}

func TestMemoryRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.GetApplication(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetTemplate(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetChecklistItem(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdateChecklistItemIf(ctx, &models.ChecklistItem{}, models.ChecklistStatusNotStarted), ErrNotFound)
	assert.ErrorIs(t, repo.SetTemplateActive(ctx, uuid.New(), false), ErrNotFound)
}

func TestTransitionStatusIf(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	app := seedApplication(t, repo, "")
	item := seedItem(t, repo, app, models.ChecklistStatusInProgress, nil)
	at := time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)

	writes := repo.Writes()
	ok, err := repo.TransitionStatusIf(ctx, item.ID, models.ChecklistStatusNotStarted, models.ChecklistStatusOverdue, at)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, writes, repo.Writes())

	ok, err = repo.TransitionStatusIf(ctx, item.ID, models.ChecklistStatusInProgress, models.ChecklistStatusOverdue, at)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, writes+1, repo.Writes())

	stored, err := repo.GetChecklistItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistStatusOverdue, stored.Status)
	assert.Equal(t, at, stored.UpdatedAt)
}

func TestUpdateChecklistItemIf(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	app := seedApplication(t, repo, "")
	item := seedItem(t, repo, app, models.ChecklistStatusInProgress, nil)

	stale := item
	stale.Status = models.ChecklistStatusSubmitted
	writes := repo.Writes()
	err := repo.UpdateChecklistItemIf(ctx, &stale, models.ChecklistStatusNotStarted)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, writes, repo.Writes())

	actor := uuid.New()
	item.Status = models.ChecklistStatusCompleted
	item.CompletedBy = &actor
	item.Title = "Ignored"
	require.NoError(t, repo.UpdateChecklistItemIf(ctx, &item, models.ChecklistStatusInProgress))
	assert.Equal(t, writes+1, repo.Writes())

	stored, err := repo.GetChecklistItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistStatusCompleted, stored.Status)
	assert.Equal(t, &actor, stored.CompletedBy)
	assert.Equal(t, "Form", stored.Title)

	err = repo.UpdateChecklistItemIf(ctx, &stale, models.ChecklistStatusInProgress)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListOverdueCandidates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	app := seedApplication(t, repo, "Asia/Tokyo")
	past := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	var outstanding []uuid.UUID
	for _, status := range []models.ChecklistStatus{models.ChecklistStatusNotStarted, models.ChecklistStatusInProgress, models.ChecklistStatusSubmitted} {
		outstanding = append(outstanding, seedItem(t, repo, app, status, &past).ID)
	}
	seedItem(t, repo, app, models.ChecklistStatusCompleted, &past)
	seedItem(t, repo, app, models.ChecklistStatusOverdue, &past)
	seedItem(t, repo, app, models.ChecklistStatusNotStarted, &future)
	seedItem(t, repo, app, models.ChecklistStatusNotStarted, nil)

	query := OverdueQuery{DueBefore: time.Date(2024, 9, 11, 0, 0, 0, 0, time.UTC), Limit: 2}
	first, err := repo.ListOverdueCandidates(ctx, query)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Asia/Tokyo", first[0].Timezone)
	assert.Less(t, first[0].Item.ID.String(), first[1].Item.ID.String())

	query.AfterID = first[1].Item.ID
	second, err := repo.ListOverdueCandidates(ctx, query)
	require.NoError(t, err)
	require.Len(t, second, 1)

	var seen []uuid.UUID
	for _, c := range append(first, second...) {
		seen = append(seen, c.Item.ID)
	}
	assert.ElementsMatch(t, outstanding, seen)
}

func TestTemplateItems(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	app := seedApplication(t, repo, "")

	template := &models.ChecklistTemplate{
		SchoolID: app.SchoolID,
		Stage:    models.ApplicationStageStarted,
		Name:     "Default",
		IsActive: true,
		Items: []models.ChecklistTemplateItem{
			{Title: "B", SortOrder: 1},
			{Title: "A", SortOrder: 0},
		},
	}
	require.NoError(t, repo.CreateTemplate(ctx, template))

	loaded, err := repo.GetTemplate(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "A", loaded.Items[0].Title)

	other := &models.ChecklistTemplate{SchoolID: app.SchoolID, Name: "Other", Items: []models.ChecklistTemplateItem{{Title: "C"}}}
	require.NoError(t, repo.CreateTemplate(ctx, other))
	err = repo.SetTemplateItemOrder(ctx, template.ID, map[uuid.UUID]int{other.Items[0].ID: 0})
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := repo.HasItemsFromTemplate(ctx, app.ID, template.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	templateItemID := loaded.Items[0].ID
	items := []models.ChecklistItem{{ApplicationID: app.ID, TemplateItemID: &templateItemID, Title: "A"}}
	require.NoError(t, repo.CreateChecklistItems(ctx, items))
	assert.Equal(t, models.ChecklistStatusNotStarted, items[0].Status)

	exists, err = repo.HasItemsFromTemplate(ctx, app.ID, template.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.HasItemsFromTemplate(ctx, app.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithinTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	app := seedApplication(t, repo, "")
	item := seedItem(t, repo, app, models.ChecklistStatusNotStarted, nil)
	writes := repo.Writes()

	err := repo.WithinTransaction(ctx, func(tx Repository) error {
		changed := item
		changed.Status = models.ChecklistStatusInProgress
		if err := tx.UpdateChecklistItemIf(ctx, &changed, models.ChecklistStatusNotStarted); err != nil {
			return err
		}
		if err := tx.CreateItemEvent(ctx, &models.ChecklistItemEvent{
			ChecklistItemID: item.ID,
			FromStatus:      models.ChecklistStatusNotStarted,
			ToStatus:        models.ChecklistStatusInProgress,
		}); err != nil {
			return err
		}
		return ErrConflict
	})
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := repo.GetChecklistItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistStatusNotStarted, stored.Status)
	events, err := repo.ListItemEvents(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, writes, repo.Writes())

	require.NoError(t, repo.WithinTransaction(ctx, func(tx Repository) error {
		changed := item
		changed.Status = models.ChecklistStatusInProgress
		return tx.UpdateChecklistItemIf(ctx, &changed, models.ChecklistStatusNotStarted)
	}))
	stored, err = repo.GetChecklistItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistStatusInProgress, stored.Status)
}
