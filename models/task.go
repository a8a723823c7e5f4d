package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TaskStatus represents the runtime status of a task instance.
type TaskStatus string

const (
	// StatusNone is the template state: never claimed, never completed.
	StatusNone    TaskStatus = ""
	StatusPending TaskStatus = "pending"
	StatusDone    TaskStatus = "done"
)

// CatalogEntry is the owner-curated template for a task. Catalog entries
// are never mutated by lifecycle operations; only the settings flow may
// add, edit or remove them.
type CatalogEntry struct {
	ID           string `json:"id" validate:"required"`
	TaskID       string `json:"taskId,omitempty"`
	Title        string `json:"title" validate:"required"`
	Instructions string `json:"instructions,omitempty"`

	// Status appears on legacy catalog records; anything other than an
	// initial-state marker means the entry was already instantiated.
	Status string `json:"status,omitempty"`

	// Scheduling rule. Which fields apply depends on the tab.
	ScheduleWeekdays   *Weekdays   `json:"scheduleWeekdays,omitempty"`
	ScheduleDayOfMonth *FlexNumber `json:"scheduleDayOfMonth,omitempty"`
	ScheduleMonth      *FlexNumber `json:"scheduleMonth,omitempty"`
	ScheduleDay        *FlexNumber `json:"scheduleDay,omitempty"`
}

// KeyID returns the stable identifier, preferring taskId over id.
func (e CatalogEntry) KeyID() string {
	if e.TaskID != "" {
		return e.TaskID
	}
	return e.ID
}

// IsInitial reports whether the entry has never been instantiated. The
// recognized initial markers are empty, "new", "idle" and "catalog",
// case-insensitive.
func (e CatalogEntry) IsInitial() bool {
	switch strings.ToLower(strings.TrimSpace(e.Status)) {
	case "", "new", "idle", "catalog":
		return true
	default:
		return false
	}
}

// Catalog maps a tab name to its catalog entries.
type Catalog map[Tab][]CatalogEntry

// TaskInstance is the runtime state of a task inside a tab's active or
// pending bucket. Identity fields id and taskId mirror each other after
// normalization.
type TaskInstance struct {
	ID           string     `json:"id,omitempty"`
	TaskID       string     `json:"taskId,omitempty"`
	Title        string     `json:"title,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Status       TaskStatus `json:"status,omitempty"`
	AssignedTo   *string    `json:"assignedTo"`
	CompletedAt  int64      `json:"completedAt,omitempty"` // ms since epoch
	CompletedBy  string     `json:"completedBy,omitempty"`
	Active       bool       `json:"active,omitempty"`

	// Legacy selection markers; stripped on reset, never written.
	Selected   bool   `json:"selected,omitempty"`
	SelectedBy string `json:"selectedBy,omitempty"`
	SelectedAt int64  `json:"selectedAt,omitempty"`
}

// KeyID returns the stable identifier, preferring taskId over id.
func (t TaskInstance) KeyID() string {
	if t.TaskID != "" {
		return t.TaskID
	}
	return t.ID
}

// Matches reports whether the instance carries the given stable id.
func (t TaskInstance) Matches(id string) bool {
	key := t.KeyID()
	return key != "" && key == id
}

// IsDone reports completion, tolerating records where only the timestamp
// survived.
func (t TaskInstance) IsDone() bool {
	return t.Status == StatusDone || t.CompletedAt > 0
}

// Normalize mirrors id and taskId onto each other.
func (t *TaskInstance) Normalize() {
	key := t.KeyID()
	t.ID = key
	t.TaskID = key
}

// ClearRuntime strips every runtime field, returning the instance to
// template form while preserving identity and roster membership.
func (t *TaskInstance) ClearRuntime() {
	t.Normalize()
	t.Status = StatusNone
	t.AssignedTo = nil
	t.CompletedAt = 0
	t.CompletedBy = ""
	t.Selected = false
	t.SelectedBy = ""
	t.SelectedAt = 0
	t.Active = true
}

// global validator instance
var validate = validator.New()

// ValidateStruct performs validation on any struct carrying validate tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
