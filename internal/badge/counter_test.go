package badge

import (
	"testing"
	"time"

	"github.com/fairflowapp/fairflow/models"
	"github.com/fairflowapp/fairflow/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2026-03-02.
var monday = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestCounter(t *testing.T) (*Counter, *store.Data) {
	t.Helper()
	data := store.NewData(store.NewMemoryKVStore())
	return NewCounter(data).WithClock(func() time.Time { return monday }), data
}

func TestCount_ActiveRoster(t *testing.T) {
	counter, data := newTestCounter(t)
	assigned := "Alice"
	require.NoError(t, data.WriteList(models.TabOpening, store.BucketActive, []models.TaskInstance{
		{ID: "t1", TaskID: "t1", Title: "a"},
		{ID: "t2", TaskID: "t2", Title: "b", Status: models.StatusPending, AssignedTo: &assigned},
		{ID: "t3", TaskID: "t3", Title: "c", Status: models.StatusDone, CompletedAt: 1},
	}))

	// Pending still counts as uncompleted; done does not.
	assert.Equal(t, 2, counter.Count(models.TabOpening))
}

func TestCount_IncludesUnpromotedCatalogEntries(t *testing.T) {
	counter, data := newTestCounter(t)
	require.NoError(t, data.WriteCatalog(models.Catalog{
		models.TabOpening: {
			{ID: "t1", Title: "on roster"},
			{ID: "t2", Title: "catalog only"},
			{ID: "t3", Title: "already instantiated", Status: "active"},
		},
	}))
	require.NoError(t, data.WriteList(models.TabOpening, store.BucketActive, []models.TaskInstance{
		{ID: "t1", TaskID: "t1", Title: "on roster"},
	}))

	// t1 from the roster, t2 from the catalog; t3 is past initial state.
	assert.Equal(t, 2, counter.Count(models.TabOpening))
}

func TestCount_WeeklyScheduleGate(t *testing.T) {
	counter, data := newTestCounter(t)
	require.NoError(t, data.WriteCatalog(models.Catalog{
		models.TabWeekly: {
			{ID: "mon", Title: "Monday task", ScheduleWeekdays: &models.Weekdays{Days: []int{1}}},
			{ID: "tue", Title: "Tuesday task", ScheduleWeekdays: &models.Weekdays{Days: []int{2}}},
		},
	}))
	require.NoError(t, data.WriteList(models.TabWeekly, store.BucketActive, []models.TaskInstance{
		{ID: "mon", TaskID: "mon", Title: "Monday task"},
		{ID: "tue", TaskID: "tue", Title: "Tuesday task"},
	}))

	// Only the Monday task is due on the reference Monday.
	assert.Equal(t, 1, counter.Count(models.TabWeekly))
}

func TestCount_RosterEntryWithoutCatalogMatchCounts(t *testing.T) {
	counter, data := newTestCounter(t)
	require.NoError(t, data.WriteList(models.TabWeekly, store.BucketActive, []models.TaskInstance{
		{ID: "orphan", TaskID: "orphan", Title: "No template"},
	}))

	// No catalog entry to gate on: fail open and count it.
	assert.Equal(t, 1, counter.Count(models.TabWeekly))
}

func TestCount_Yearly(t *testing.T) {
	counter, data := newTestCounter(t)
	june := models.FlexNumber{Num: 6, IsNum: true}
	jan := models.FlexNumber{Num: 1, IsNum: true}
	first := models.FlexNumber{Num: 1, IsNum: true}
	require.NoError(t, data.WriteCatalog(models.Catalog{
		models.TabYearly: {
			{ID: "y1", Title: "Active window", ScheduleMonth: &jan, ScheduleDay: &first},
			{ID: "y2", Title: "Future window", ScheduleMonth: &june, ScheduleDay: &first},
			{ID: "y3", Title: "No schedule"},
			{ID: "y4", Title: "Completed", ScheduleMonth: &jan, ScheduleDay: &first},
		},
	}))
	require.NoError(t, data.WriteList(models.TabYearly, store.BucketActive, []models.TaskInstance{
		{ID: "y4", TaskID: "y4", Title: "Completed", Status: models.StatusDone, CompletedAt: 1},
	}))

	// y1 is in window; y2 not yet; y3 fails closed; y4 is completed.
	assert.Equal(t, 1, counter.Count(models.TabYearly))
}

func TestCount_CorruptDataFailsOpen(t *testing.T) {
	counter, data := newTestCounter(t)
	require.NoError(t, data.KV().Set(store.TasksKey(models.TabOpening, store.BucketActive), []byte(`{not json`)))
	require.NoError(t, data.KV().Set(store.KeyCatalog, []byte(`also not json`)))

	assert.Zero(t, counter.Count(models.TabOpening))
}

func TestCounts_AllTabs(t *testing.T) {
	counter, data := newTestCounter(t)
	require.NoError(t, data.WriteList(models.TabClosing, store.BucketActive, []models.TaskInstance{
		{ID: "c1", TaskID: "c1", Title: "Lock up"},
	}))

	counts := counter.Counts()
	assert.Len(t, counts, 5)
	assert.Equal(t, 1, counts[models.TabClosing])
	assert.Zero(t, counts[models.TabOpening])
}
