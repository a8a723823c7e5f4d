// Package badge derives uncompleted-task counts per tab for display. It is
// a read-only consumer of the store and the schedule predicates.
package badge

import (
	"time"

	"github.com/fairflowapp/fairflow/internal/schedule"
	"github.com/fairflowapp/fairflow/models"
	"github.com/fairflowapp/fairflow/store"
)

// Counter computes uncompleted counts. The count covers the actionable
// roster: the union of a tab's active list and its never-instantiated
// catalog entries, restricted to entries due on the reference date
// (weekly/monthly) or schedule-active (yearly).
type Counter struct {
	data *store.Data
	now  func() time.Time
}

// NewCounter returns a counter reading from the given data layer.
func NewCounter(data *store.Data) *Counter {
	return &Counter{data: data, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (c *Counter) WithClock(now func() time.Time) *Counter {
	c.now = now
	return c
}

// Count returns the number of uncompleted tasks in a tab.
func (c *Counter) Count(tab models.Tab) int {
	ref := c.now()
	active := c.data.ReadList(tab, store.BucketActive)
	catalog := c.data.ReadCatalog()[tab]

	activeByID := make(map[string]models.TaskInstance, len(active))
	for _, t := range active {
		activeByID[t.KeyID()] = t
	}

	if tab == models.TabYearly {
		count := 0
		for _, entry := range catalog {
			completed := false
			if inst, ok := activeByID[entry.KeyID()]; ok {
				completed = inst.IsDone()
			}
			if schedule.YearlyActive(entry, completed, ref) {
				count++
			}
		}
		return count
	}

	catalogByID := make(map[string]models.CatalogEntry, len(catalog))
	for _, entry := range catalog {
		catalogByID[entry.KeyID()] = entry
	}

	count := 0
	for _, t := range active {
		if t.IsDone() {
			continue
		}
		if entry, ok := catalogByID[t.KeyID()]; ok && !schedule.DueToday(tab, entry, ref) {
			continue
		}
		count++
	}
	// Catalog entries never promoted to the roster still need doing.
	for _, entry := range catalog {
		if _, ok := activeByID[entry.KeyID()]; ok {
			continue
		}
		if !entry.IsInitial() {
			continue
		}
		if !schedule.DueToday(tab, entry, ref) {
			continue
		}
		count++
	}
	return count
}

// Counts returns counts for every tab. A failure computing one tab never
// prevents the others; reads already degrade to empty collections.
func (c *Counter) Counts() map[models.Tab]int {
	out := make(map[models.Tab]int, len(models.AllTabs()))
	for _, tab := range models.AllTabs() {
		out[tab] = c.Count(tab)
	}
	return out
}
