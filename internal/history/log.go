// Package history records lifecycle actions in an append-only log stored
// under the ffv24_log key, retention-capped to 90 days / 10,000 entries on
// each app load. An optional SQLite archive mirrors events for ad hoc
// queries.
package history

import (
	"encoding/json"
	"time"

	"github.com/fairflowapp/fairflow/store"
	"github.com/google/uuid"
)

const (
	// RetentionDays is the age cap applied on load.
	RetentionDays = 90
	// RetentionMaxEntries is the count cap applied on load.
	RetentionMaxEntries = 10000
)

// Action names recorded by the lifecycle engine.
const (
	ActionSelect    = "select"
	ActionDone      = "done"
	ActionReset     = "reset"
	ActionRollover  = "rollover"
	ActionAutoReset = "auto-reset"
)

// Event is one history entry.
type Event struct {
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
	Actor  string    `json:"actor,omitempty"`
	Action string    `json:"action"`
	Tab    string    `json:"tab,omitempty"`
	TaskID string    `json:"taskId,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Log is the KV-backed history log.
type Log struct {
	kv  store.KVStore
	now func() time.Time
}

// NewLog creates a log over the given store and applies the retention cap,
// matching the prune-on-load behavior of prior versions.
func NewLog(kv store.KVStore) *Log {
	l := &Log{kv: kv, now: time.Now}
	_ = l.Prune()
	return l
}

// WithClock overrides the time source. Used by tests.
func (l *Log) WithClock(now func() time.Time) *Log {
	l.now = now
	return l
}

func (l *Log) read() []Event {
	raw, ok, err := l.kv.Get(store.KeyLog)
	if err != nil || !ok || len(raw) == 0 {
		return nil
	}
	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		// Corrupt log degrades to empty rather than blocking operations.
		return nil
	}
	return events
}

func (l *Log) write(events []Event) error {
	if events == nil {
		events = []Event{}
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return l.kv.Set(store.KeyLog, raw)
}

// Record appends an event, filling in ID and timestamp when absent.
func (l *Log) Record(e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = l.now()
	}
	events := append(l.read(), e)
	return l.write(l.capEvents(events))
}

// Events returns the log, oldest first.
func (l *Log) Events() []Event {
	return l.read()
}

// Prune applies the retention cap to the stored log.
func (l *Log) Prune() error {
	events := l.read()
	capped := l.capEvents(events)
	if len(capped) == len(events) {
		return nil
	}
	return l.write(capped)
}

func (l *Log) capEvents(events []Event) []Event {
	cutoff := l.now().AddDate(0, 0, -RetentionDays)
	kept := make([]Event, 0, len(events))
	for _, e := range events {
		if e.At.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > RetentionMaxEntries {
		kept = kept[len(kept)-RetentionMaxEntries:]
	}
	return kept
}
