// internal/repository/memory.go
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/admissions-checklist/internal/models"
)

// MemoryRepository keeps everything in process memory. It backs tests and
// local runs without a database. Records are copied on the way in and out so
// callers never share state with the store.
type MemoryRepository struct {
	mu            sync.RWMutex
	now           func() time.Time
	schools       map[uuid.UUID]models.School
	applications  map[uuid.UUID]models.Application
	templates     map[uuid.UUID]models.ChecklistTemplate
	templateItems map[uuid.UUID]models.ChecklistTemplateItem
	items         map[uuid.UUID]models.ChecklistItem
	events        []models.ChecklistItemEvent
	notifications []models.Notification
	writes        int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		now:           func() time.Time { return time.Now().UTC() },
		schools:       make(map[uuid.UUID]models.School),
		applications:  make(map[uuid.UUID]models.Application),
		templates:     make(map[uuid.UUID]models.ChecklistTemplate),
		templateItems: make(map[uuid.UUID]models.ChecklistTemplateItem),
		items:         make(map[uuid.UUID]models.ChecklistItem),
	}
}

// Writes counts successful mutations since the repository was created.
func (r *MemoryRepository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

func (r *MemoryRepository) stamp(base *models.BaseModel) {
	now := r.now()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func (r *MemoryRepository) CreateSchool(ctx context.Context, school *models.School) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&school.BaseModel)
	if school.Timezone == "" {
		school.Timezone = "UTC"
	}
	r.schools[school.ID] = *school
	r.writes++
	return nil
}

func (r *MemoryRepository) GetSchool(ctx context.Context, id uuid.UUID) (*models.School, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	school, ok := r.schools[id]
	if !ok {
		return nil, fmt.Errorf("school: %w", ErrNotFound)
	}
	return &school, nil
}

func (r *MemoryRepository) CreateApplication(ctx context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&app.BaseModel)
	r.applications[app.ID] = cloneApplication(*app)
	r.writes++
	return nil
}

func (r *MemoryRepository) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.applications[id]
	if !ok {
		return nil, fmt.Errorf("application: %w", ErrNotFound)
	}
	app = cloneApplication(app)
	return &app, nil
}

// UpdateApplication stands in for the admissions pipeline changing
// milestones; it is not part of Repository.
func (r *MemoryRepository) UpdateApplication(ctx context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.applications[app.ID]; !ok {
		return fmt.Errorf("application: %w", ErrNotFound)
	}
	app.UpdatedAt = r.now()
	r.applications[app.ID] = cloneApplication(*app)
	r.writes++
	return nil
}

func (r *MemoryRepository) CreateTemplate(ctx context.Context, template *models.ChecklistTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&template.BaseModel)
	for i := range template.Items {
		template.Items[i].TemplateID = template.ID
		r.stamp(&template.Items[i].BaseModel)
		r.templateItems[template.Items[i].ID] = cloneTemplateItem(template.Items[i])
	}
	stored := cloneTemplate(*template)
	stored.Items = nil
	r.templates[template.ID] = stored
	r.writes++
	return nil
}

func (r *MemoryRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*models.ChecklistTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	template, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("checklist template: %w", ErrNotFound)
	}
	template = r.withItems(template)
	return &template, nil
}

func (r *MemoryRepository) withItems(template models.ChecklistTemplate) models.ChecklistTemplate {
	out := cloneTemplate(template)
	out.Items = nil
	for _, item := range r.templateItems {
		if item.TemplateID == template.ID {
			out.Items = append(out.Items, cloneTemplateItem(item))
		}
	}
	sort.SliceStable(out.Items, func(i, j int) bool { return out.Items[i].SortOrder < out.Items[j].SortOrder })
	return out
}

func (r *MemoryRepository) ListTemplates(ctx context.Context, filter TemplateFilter) ([]models.ChecklistTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var templates []models.ChecklistTemplate
	for _, template := range r.templates {
		if filter.SchoolID != nil && template.SchoolID != *filter.SchoolID {
			continue
		}
		if filter.Stage != nil && template.Stage != *filter.Stage {
			continue
		}
		if filter.ActiveOnly && !template.IsActive {
			continue
		}
		templates = append(templates, r.withItems(template))
	}
	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].CreatedAt.Before(templates[j].CreatedAt)
	})
	return templates, nil
}

func (r *MemoryRepository) SetTemplateActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[id]
	if !ok {
		return fmt.Errorf("checklist template: %w", ErrNotFound)
	}
	template.IsActive = active
	template.UpdatedAt = r.now()
	r.templates[id] = template
	r.writes++
	return nil
}

func (r *MemoryRepository) CreateTemplateItem(ctx context.Context, item *models.ChecklistTemplateItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[item.TemplateID]; !ok {
		return fmt.Errorf("checklist template: %w", ErrNotFound)
	}
	r.stamp(&item.BaseModel)
	r.templateItems[item.ID] = cloneTemplateItem(*item)
	r.writes++
	return nil
}

func (r *MemoryRepository) GetTemplateItem(ctx context.Context, id uuid.UUID) (*models.ChecklistTemplateItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.templateItems[id]
	if !ok {
		return nil, fmt.Errorf("checklist template item: %w", ErrNotFound)
	}
	item = cloneTemplateItem(item)
	return &item, nil
}

func (r *MemoryRepository) DeleteTemplateItem(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templateItems[id]; !ok {
		return fmt.Errorf("checklist template item: %w", ErrNotFound)
	}
	delete(r.templateItems, id)
	r.writes++
	return nil
}

func (r *MemoryRepository) SetTemplateItemOrder(ctx context.Context, templateID uuid.UUID, order map[uuid.UUID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range order {
		item, ok := r.templateItems[id]
		if !ok || item.TemplateID != templateID {
			return fmt.Errorf("checklist template item %s: %w", id, ErrNotFound)
		}
	}
	now := r.now()
	for id, sortOrder := range order {
		item := r.templateItems[id]
		item.SortOrder = sortOrder
		item.UpdatedAt = now
		r.templateItems[id] = item
	}
	r.writes++
	return nil
}

func (r *MemoryRepository) CreateChecklistItems(ctx context.Context, items []models.ChecklistItem) error {
	if len(items) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range items {
		r.stamp(&items[i].BaseModel)
		if items[i].Status == "" {
			items[i].Status = models.ChecklistStatusNotStarted
		}
		r.items[items[i].ID] = cloneItem(items[i])
	}
	r.writes++
	return nil
}

func (r *MemoryRepository) GetChecklistItem(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("checklist item: %w", ErrNotFound)
	}
	item = cloneItem(item)
	return &item, nil
}

func (r *MemoryRepository) ListChecklistItems(ctx context.Context, applicationID uuid.UUID) ([]models.ChecklistItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []models.ChecklistItem
	for _, item := range r.items {
		if item.ApplicationID == applicationID {
			items = append(items, cloneItem(item))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *MemoryRepository) HasItemsFromTemplate(ctx context.Context, applicationID, templateID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.ApplicationID != applicationID || item.TemplateItemID == nil {
			continue
		}
		if ti, ok := r.templateItems[*item.TemplateItemID]; ok && ti.TemplateID == templateID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) UpdateChecklistItemIf(ctx context.Context, item *models.ChecklistItem, expected models.ChecklistStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[item.ID]
	if !ok {
		return fmt.Errorf("checklist item: %w", ErrNotFound)
	}
	if stored.Status != expected {
		return fmt.Errorf("checklist item %s: %w", item.ID, ErrConflict)
	}
	item.UpdatedAt = r.now()
	changed := cloneItem(*item)
	stored.Status = changed.Status
	stored.DueDate = changed.DueDate
	stored.CompletedAt = changed.CompletedAt
	stored.CompletedBy = changed.CompletedBy
	stored.SubmissionData = changed.SubmissionData
	stored.UpdatedAt = changed.UpdatedAt
	r.items[item.ID] = stored
	r.writes++
	return nil
}

func (r *MemoryRepository) TransitionStatusIf(ctx context.Context, id uuid.UUID, expected, to models.ChecklistStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.Status != expected {
		return false, nil
	}
	item.Status = to
	item.UpdatedAt = at
	r.items[id] = item
	r.writes++
	return true, nil
}

func (r *MemoryRepository) ListOverdueCandidates(ctx context.Context, query OverdueQuery) ([]OverdueCandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	after := query.AfterID.String()
	var candidates []OverdueCandidate
	for _, item := range r.items {
		if !isOutstanding(item.Status) || item.DueDate == nil {
			continue
		}
		if !item.DueDate.Time().Before(query.DueBefore) {
			continue
		}
		if item.ID.String() <= after {
			continue
		}
		timezone := "UTC"
		if app, ok := r.applications[item.ApplicationID]; ok {
			if school, ok := r.schools[app.SchoolID]; ok && school.Timezone != "" {
				timezone = school.Timezone
			}
		}
		candidates = append(candidates, OverdueCandidate{Item: cloneItem(item), Timezone: timezone})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Item.ID.String() < candidates[j].Item.ID.String()
	})
	if query.Limit > 0 && len(candidates) > query.Limit {
		candidates = candidates[:query.Limit]
	}
	return candidates, nil
}

func (r *MemoryRepository) CreateItemEvent(ctx context.Context, event *models.ChecklistItemEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&event.BaseModel)
	r.events = append(r.events, *event)
	r.writes++
	return nil
}

func (r *MemoryRepository) ListItemEvents(ctx context.Context, itemID uuid.UUID) ([]models.ChecklistItemEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var events []models.ChecklistItemEvent
	for _, event := range r.events {
		if event.ChecklistItemID == itemID {
			events = append(events, event)
		}
	}
	return events, nil
}

func (r *MemoryRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&notification.BaseModel)
	if notification.Status == "" {
		notification.Status = models.NotificationStatusUnread
	}
	r.notifications = append(r.notifications, *notification)
	r.writes++
	return nil
}

func (r *MemoryRepository) ListNotifications(ctx context.Context, applicationID uuid.UUID) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var notifications []models.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].ApplicationID == applicationID {
			notifications = append(notifications, r.notifications[i])
		}
	}
	return notifications, nil
}

// WithinTransaction restores the state from before fn when fn fails. It does
// not isolate fn from concurrent writers.
func (r *MemoryRepository) WithinTransaction(ctx context.Context, fn func(Repository) error) error {
	snapshot := r.snapshot()
	if err := fn(r); err != nil {
		r.restore(snapshot)
		return err
	}
	return nil
}

type memoryState struct {
	schools       map[uuid.UUID]models.School
	applications  map[uuid.UUID]models.Application
	templates     map[uuid.UUID]models.ChecklistTemplate
	templateItems map[uuid.UUID]models.ChecklistTemplateItem
	items         map[uuid.UUID]models.ChecklistItem
	events        []models.ChecklistItemEvent
	notifications []models.Notification
	writes        int
}

func (r *MemoryRepository) snapshot() memoryState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state := memoryState{
		schools:       make(map[uuid.UUID]models.School, len(r.schools)),
		applications:  make(map[uuid.UUID]models.Application, len(r.applications)),
		templates:     make(map[uuid.UUID]models.ChecklistTemplate, len(r.templates)),
		templateItems: make(map[uuid.UUID]models.ChecklistTemplateItem, len(r.templateItems)),
		items:         make(map[uuid.UUID]models.ChecklistItem, len(r.items)),
		events:        append([]models.ChecklistItemEvent(nil), r.events...),
		notifications: append([]models.Notification(nil), r.notifications...),
		writes:        r.writes,
	}
	for id, school := range r.schools {
		state.schools[id] = school
	}
	for id, app := range r.applications {
		state.applications[id] = cloneApplication(app)
	}
	for id, template := range r.templates {
		state.templates[id] = cloneTemplate(template)
	}
	for id, item := range r.templateItems {
		state.templateItems[id] = cloneTemplateItem(item)
	}
	for id, item := range r.items {
		state.items[id] = cloneItem(item)
	}
	return state
}

func (r *MemoryRepository) restore(state memoryState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schools = state.schools
	r.applications = state.applications
	r.templates = state.templates
	r.templateItems = state.templateItems
	r.items = state.items
	r.events = state.events
	r.notifications = state.notifications
	r.writes = state.writes
}

func isOutstanding(status models.ChecklistStatus) bool {
	for _, s := range outstandingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func cloneApplication(app models.Application) models.Application {
	if app.SubmittedAt != nil {
		t := *app.SubmittedAt
		app.SubmittedAt = &t
	}
	if app.SeasonID != nil {
		id := *app.SeasonID
		app.SeasonID = &id
	}
	app.School = nil
	return app
}

func cloneTemplate(t models.ChecklistTemplate) models.ChecklistTemplate {
	t.GradeLevels = append([]string(nil), t.GradeLevels...)
	t.ApplicationTypes = append([]string(nil), t.ApplicationTypes...)
	if t.SeasonID != nil {
		id := *t.SeasonID
		t.SeasonID = &id
	}
	items := make([]models.ChecklistTemplateItem, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, cloneTemplateItem(item))
	}
	t.Items = items
	return t
}

func cloneTemplateItem(item models.ChecklistTemplateItem) models.ChecklistTemplateItem {
	item.Config = item.Config.DeepCopy()
	return item
}

func cloneItem(item models.ChecklistItem) models.ChecklistItem {
	if item.TemplateItemID != nil {
		id := *item.TemplateItemID
		item.TemplateItemID = &id
	}
	if item.DueDate != nil {
		d := *item.DueDate
		item.DueDate = &d
	}
	if item.CompletedAt != nil {
		t := *item.CompletedAt
		item.CompletedAt = &t
	}
	if item.CompletedBy != nil {
		id := *item.CompletedBy
		item.CompletedBy = &id
	}
	item.Config = item.Config.DeepCopy()
	item.SubmissionData = item.SubmissionData.DeepCopy()
	return item
}
