// Package lifecycle implements the task lifecycle engine: promoting
// catalog tasks onto the active roster, advancing them through pending and
// done, resetting per-tab progress, and rolling over today-due recurring
// instances.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fairflowapp/fairflow/internal/history"
	"github.com/fairflowapp/fairflow/internal/schedule"
	"github.com/fairflowapp/fairflow/models"
	"github.com/fairflowapp/fairflow/store"
)

// ErrTaskNotFound is returned when a task id matches no active entry and
// no eligible catalog entry in any tab. Callers surface it as a warning;
// nothing was mutated.
var ErrTaskNotFound = errors.New("task not found in any active list or catalog")

// ErrNoTab is returned when an operation requiring a tab receives none.
// No storage mutation occurs.
var ErrNoTab = errors.New("no tab selected")

// Renderer re-renders a tab's view after a mutation.
type Renderer interface {
	RenderTab(tab models.Tab)
}

// BadgeUpdater recomputes tab badges after a mutation.
type BadgeUpdater interface {
	UpdateBadges()
}

// HistoryLogger records lifecycle events.
type HistoryLogger interface {
	Record(e history.Event) error
}

// Collaborators are the engine's injected capabilities. Any field may be
// nil; missing collaborators are skipped.
type Collaborators struct {
	Renderer Renderer
	Badges   BadgeUpdater
	History  HistoryLogger
}

// Engine executes lifecycle operations against the typed data layer.
type Engine struct {
	data   *store.Data
	collab Collaborators
	now    func() time.Time
}

// NewEngine constructs an engine over the data layer.
func NewEngine(data *store.Data, collab Collaborators) *Engine {
	return &Engine{
		data:   data,
		collab: collab,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Used by tests and the scheduler.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Data returns the engine's data layer.
func (e *Engine) Data() *store.Data {
	return e.data
}

func (e *Engine) notify(tab models.Tab) {
	if e.collab.Renderer != nil {
		e.collab.Renderer.RenderTab(tab)
	}
	if e.collab.Badges != nil {
		e.collab.Badges.UpdateBadges()
	}
}

func (e *Engine) record(action string, tab models.Tab, taskID, actor, detail string) {
	if e.collab.History == nil {
		return
	}
	_ = e.collab.History.Record(history.Event{
		At:     e.now(),
		Actor:  actor,
		Action: action,
		Tab:    string(tab),
		TaskID: taskID,
		Detail: detail,
	})
}

// Select claims a task for an actor. It searches every tab's active list
// for the id and marks the entry pending in place; if the id only exists
// as a never-instantiated catalog entry, a pending copy is created without
// touching the active list. At most one pending entry per id ever exists.
func (e *Engine) Select(taskID, actor string) (models.Tab, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return "", fmt.Errorf("task id is required")
	}

	catalog := e.data.ReadCatalog()

	for _, tab := range models.AllTabs() {
		active := e.data.ReadList(tab, store.BucketActive)
		for i := range active {
			if !active[i].Matches(taskID) {
				continue
			}
			// Update in place; the entry stays on the roster.
			assigned := actor
			active[i].Status = models.StatusPending
			active[i].AssignedTo = &assigned
			if err := e.data.WriteList(tab, store.BucketActive, active); err != nil {
				return tab, err
			}
			if err := e.appendPending(tab, pendingCopy(active[i].KeyID(), active[i].Title, active[i].Instructions, actor)); err != nil {
				return tab, err
			}
			e.record(history.ActionSelect, tab, taskID, actor, "claimed from active roster")
			e.notify(tab)
			return tab, nil
		}
	}

	// Not on any roster: look for a never-instantiated catalog entry.
	for _, tab := range models.AllTabs() {
		for _, entry := range catalog[tab] {
			if entry.KeyID() != taskID {
				continue
			}
			if !entry.IsInitial() {
				// Already past initial state; keep looking in other tabs.
				continue
			}
			// Runtime copy from template fields only; the catalog itself
			// is never mutated.
			if err := e.appendPending(tab, pendingCopy(entry.KeyID(), entry.Title, entry.Instructions, actor)); err != nil {
				return tab, err
			}
			e.record(history.ActionSelect, tab, taskID, actor, "claimed from catalog")
			e.notify(tab)
			return tab, nil
		}
	}

	return "", ErrTaskNotFound
}

func pendingCopy(keyID, title, instructions, actor string) models.TaskInstance {
	assigned := actor
	return models.TaskInstance{
		ID:           keyID,
		TaskID:       keyID,
		Title:        title,
		Instructions: instructions,
		Status:       models.StatusPending,
		AssignedTo:   &assigned,
	}
}

// appendPending adds the copy to the tab's pending list unless an entry
// with the same id already exists.
func (e *Engine) appendPending(tab models.Tab, copy models.TaskInstance) error {
	pending := e.data.ReadList(tab, store.BucketPending)
	for _, p := range pending {
		if p.Matches(copy.KeyID()) {
			return nil
		}
	}
	return e.data.WriteList(tab, store.BucketPending, append(pending, copy))
}

// MarkDone completes a task in the given tab. The employee of record is
// the pending entry's assignee when present, falling back to the invoking
// actor. An active entry already in done state is left untouched.
func (e *Engine) MarkDone(tab models.Tab, taskID, actor string) (models.TaskInstance, error) {
	if tab == "" {
		return models.TaskInstance{}, ErrNoTab
	}
	taskID = strings.TrimSpace(taskID)
	completedAt := e.now().UnixMilli()

	// 1) Remove from pending, capturing the employee of record.
	pending := e.data.ReadList(tab, store.BucketPending)
	employee := actor
	var pendingTask *models.TaskInstance
	for i := range pending {
		if !pending[i].Matches(taskID) {
			continue
		}
		p := pending[i]
		pendingTask = &p
		if p.AssignedTo != nil && *p.AssignedTo != "" {
			employee = *p.AssignedTo
		} else if p.CompletedBy != "" {
			employee = p.CompletedBy
		}
		pending = append(pending[:i], pending[i+1:]...)
		if err := e.data.WriteList(tab, store.BucketPending, pending); err != nil {
			return models.TaskInstance{}, err
		}
		break
	}

	// 2) Canonical key id.
	keyID := taskID
	if pendingTask != nil && pendingTask.KeyID() != "" {
		keyID = pendingTask.KeyID()
	}

	// 3) Update or create in the active list.
	active := e.data.ReadList(tab, store.BucketActive)
	idx := -1
	for i := range active {
		if active[i].Matches(keyID) {
			idx = i
			break
		}
	}

	var result models.TaskInstance
	if idx >= 0 {
		if active[idx].Status == models.StatusDone && pendingTask == nil {
			// Repeat completion: leave completedAt/completedBy intact.
			return active[idx], nil
		}
		active[idx].ID = keyID
		active[idx].TaskID = keyID
		active[idx].Status = models.StatusDone
		active[idx].CompletedAt = completedAt
		active[idx].CompletedBy = employee
		active[idx].Active = true
		active[idx].AssignedTo = nil
		result = active[idx]
	} else {
		result = models.TaskInstance{
			ID:          keyID,
			TaskID:      keyID,
			Status:      models.StatusDone,
			CompletedAt: completedAt,
			CompletedBy: employee,
			Active:      true,
			AssignedTo:  nil,
		}
		if pendingTask != nil {
			result.Title = pendingTask.Title
			result.Instructions = pendingTask.Instructions
		}
		active = append(active, result)
	}
	if err := e.data.WriteList(tab, store.BucketActive, active); err != nil {
		return models.TaskInstance{}, err
	}

	e.record(history.ActionDone, tab, keyID, employee, "")
	e.notify(tab)
	return result, nil
}

// ResetTab wipes a tab's progress while preserving the roster: pending and
// done buckets (including legacy key variants) and selection keys are
// deleted, then the active roster is rebuilt as the union of existing
// roster entries and the tab's catalog, with every runtime field stripped.
// The catalog is never touched.
func (e *Engine) ResetTab(tab models.Tab) error {
	if tab == "" {
		return ErrNoTab
	}

	if err := e.data.DeleteList(tab, store.BucketPending); err != nil {
		return err
	}
	if err := e.data.DeleteList(tab, store.BucketDone); err != nil {
		return err
	}
	if err := e.data.DeleteSelectionKeys(tab); err != nil {
		return err
	}

	active := e.data.ReadList(tab, store.BucketActive)
	seen := make(map[string]bool, len(active))
	for _, t := range active {
		seen[t.KeyID()] = true
	}
	for _, entry := range e.data.ReadCatalog()[tab] {
		keyID := entry.KeyID()
		if keyID == "" || seen[keyID] {
			continue
		}
		seen[keyID] = true
		active = append(active, models.TaskInstance{
			ID:           keyID,
			TaskID:       keyID,
			Title:        entry.Title,
			Instructions: entry.Instructions,
		})
	}

	for i := range active {
		active[i].ClearRuntime()
	}
	if err := e.data.WriteList(tab, store.BucketActive, active); err != nil {
		return err
	}

	e.record(history.ActionReset, tab, "", "", fmt.Sprintf("roster size %d", len(active)))
	e.notify(tab)
	return nil
}

// RolloverToday reinitializes only the instances scheduled for today in a
// weekly or monthly tab, regardless of completion state. Instances not due
// today keep their progress. Returns the number of instances rolled over.
func (e *Engine) RolloverToday(tab models.Tab) (int, error) {
	if tab != models.TabWeekly && tab != models.TabMonthly {
		return 0, fmt.Errorf("rollover applies to weekly and monthly tabs, not %q", tab)
	}

	ref := e.now()
	due := make(map[string]bool)
	for _, entry := range e.data.ReadCatalog()[tab] {
		if schedule.DueToday(tab, entry, ref) {
			due[entry.KeyID()] = true
		}
	}
	if len(due) == 0 {
		return 0, nil
	}

	rolled := 0
	active := e.data.ReadList(tab, store.BucketActive)
	for i := range active {
		if !due[active[i].KeyID()] {
			continue
		}
		active[i].ClearRuntime()
		rolled++
	}
	if rolled > 0 {
		if err := e.data.WriteList(tab, store.BucketActive, active); err != nil {
			return 0, err
		}
	}

	pending := e.data.ReadList(tab, store.BucketPending)
	kept := pending[:0]
	changed := false
	for _, p := range pending {
		if due[p.KeyID()] {
			changed = true
			continue
		}
		kept = append(kept, p)
	}
	if changed {
		if err := e.data.WriteList(tab, store.BucketPending, kept); err != nil {
			return 0, err
		}
	}

	e.record(history.ActionRollover, tab, "", "", fmt.Sprintf("%d instances rolled", rolled))
	e.notify(tab)
	return rolled, nil
}
