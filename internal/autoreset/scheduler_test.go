package autoreset

import (
	"testing"
	"time"

	"github.com/fairflowapp/fairflow/internal/badge"
	"github.com/fairflowapp/fairflow/internal/lifecycle"
	"github.com/fairflowapp/fairflow/models"
	"github.com/fairflowapp/fairflow/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	data      *store.Data
	scheduler *Scheduler
	clock     *time.Time
}

func newFixture(t *testing.T, start time.Time) *fixture {
	t.Helper()
	data := store.NewData(store.NewMemoryKVStore())
	clock := start
	now := func() time.Time { return clock }
	engine := lifecycle.NewEngine(data, lifecycle.Collaborators{}).WithClock(now)
	counter := badge.NewCounter(data).WithClock(now)
	scheduler := NewScheduler(engine, counter).WithClock(now)
	return &fixture{data: data, scheduler: scheduler, clock: &clock}
}

func (f *fixture) enable(t *testing.T, tab models.Tab, cutoff string) {
	t.Helper()
	windows := f.data.ReadAlertWindows()
	windows[tab] = models.AlertWindow{AutoResetEnabled: true, AutoResetTime: cutoff}
	require.NoError(t, f.data.WriteAlertWindows(windows))
}

// Monday 2026-03-02.
func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.Local)
}

func TestCheckTab_FiresOncePerDay(t *testing.T) {
	f := newFixture(t, at(9, 1))
	f.enable(t, models.TabOpening, "09:00")
	// Empty tab: badge count is zero, so the completion gate passes.

	fired, err := f.scheduler.CheckTab(models.TabOpening)
	require.NoError(t, err)
	assert.True(t, fired, "first check past the cutoff fires")

	for _, tick := range []time.Time{at(9, 5), at(9, 30), at(23, 59)} {
		*f.clock = tick
		fired, err = f.scheduler.CheckTab(models.TabOpening)
		require.NoError(t, err)
		assert.False(t, fired, "already ran today at %s", tick)
	}

	// Next calendar day: eligible again.
	*f.clock = at(9, 1).AddDate(0, 0, 1)
	fired, err = f.scheduler.CheckTab(models.TabOpening)
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestCheckTab_BeforeCutoff(t *testing.T) {
	f := newFixture(t, at(8, 59))
	f.enable(t, models.TabOpening, "09:00")

	fired, err := f.scheduler.CheckTab(models.TabOpening)
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestCheckTab_DisabledOrUnconfigured(t *testing.T) {
	f := newFixture(t, at(12, 0))

	// No window at all.
	fired, err := f.scheduler.CheckTab(models.TabOpening)
	require.NoError(t, err)
	assert.False(t, fired)

	// Window present but disabled.
	windows := f.data.ReadAlertWindows()
	windows[models.TabOpening] = models.AlertWindow{AutoResetEnabled: false, AutoResetTime: "09:00"}
	require.NoError(t, f.data.WriteAlertWindows(windows))
	fired, err = f.scheduler.CheckTab(models.TabOpening)
	require.NoError(t, err)
	assert.False(t, fired)

	// Enabled but the cutoff is malformed.
	f.enable(t, models.TabOpening, "morning")
	fired, err = f.scheduler.CheckTab(models.TabOpening)
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestCheckTab_OpeningWaitsForCompletion(t *testing.T) {
	f := newFixture(t, at(9, 1))
	f.enable(t, models.TabOpening, "09:00")
	require.NoError(t, f.data.WriteList(models.TabOpening, store.BucketActive, []models.TaskInstance{
		{ID: "t1", TaskID: "t1", Title: "Unlock door"},
	}))

	fired, err := f.scheduler.CheckTab(models.TabOpening)
	require.NoError(t, err)
	assert.False(t, fired, "an unfinished task holds the reset")

	// No last-run stamp was written, so finishing the task the same day
	// lets the reset fire.
	require.NoError(t, f.data.WriteList(models.TabOpening, store.BucketActive, []models.TaskInstance{
		{ID: "t1", TaskID: "t1", Title: "Unlock door", Status: models.StatusDone, CompletedAt: 1, CompletedBy: "Alice"},
	}))
	fired, err = f.scheduler.CheckTab(models.TabOpening)
	require.NoError(t, err)
	assert.True(t, fired)

	// The reset rebuilt the roster in template state.
	active := f.data.ReadList(models.TabOpening, store.BucketActive)
	require.Len(t, active, 1)
	assert.Equal(t, models.StatusNone, active[0].Status)
}

func TestCheckTab_WeeklySkipsWhenNothingDue(t *testing.T) {
	f := newFixture(t, at(9, 1)) // Monday
	f.enable(t, models.TabWeekly, "09:00")
	tuesday := weekdaysOf(t, 2)
	require.NoError(t, f.data.WriteCatalog(models.Catalog{
		models.TabWeekly: {{ID: "tue", Title: "Tuesday task", ScheduleWeekdays: tuesday}},
	}))

	fired, err := f.scheduler.CheckTab(models.TabWeekly)
	require.NoError(t, err)
	assert.False(t, fired)

	// Skipping must not stamp the day: once something is due, it fires.
	monday := weekdaysOf(t, 1)
	require.NoError(t, f.data.WriteCatalog(models.Catalog{
		models.TabWeekly: {
			{ID: "tue", Title: "Tuesday task", ScheduleWeekdays: tuesday},
			{ID: "mon", Title: "Monday task", ScheduleWeekdays: monday},
		},
	}))
	fired, err = f.scheduler.CheckTab(models.TabWeekly)
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestCheckTab_WeeklyDoesNotWaitForCompletion(t *testing.T) {
	f := newFixture(t, at(9, 1)) // Monday
	f.enable(t, models.TabWeekly, "09:00")
	require.NoError(t, f.data.WriteCatalog(models.Catalog{
		models.TabWeekly: {{ID: "mon", Title: "Monday task", ScheduleWeekdays: weekdaysOf(t, 1)}},
	}))
	// An unfinished instance does not hold a weekly rollover.
	require.NoError(t, f.data.WriteList(models.TabWeekly, store.BucketActive, []models.TaskInstance{
		{ID: "mon", TaskID: "mon", Title: "Monday task", Status: models.StatusPending},
	}))

	fired, err := f.scheduler.CheckTab(models.TabWeekly)
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestCheckTab_YearlyNeverFires(t *testing.T) {
	f := newFixture(t, at(12, 0))
	f.enable(t, models.TabYearly, "09:00")

	fired, err := f.scheduler.CheckTab(models.TabYearly)
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestCheckAll_TabIsolation(t *testing.T) {
	f := newFixture(t, at(9, 1))
	f.enable(t, models.TabOpening, "09:00")
	f.enable(t, models.TabClosing, "09:00")

	f.scheduler.CheckAll()

	state := f.data.ReadAutoResetState()
	assert.Equal(t, "2026-03-02", state[models.TabOpening].LastRunDate)
	assert.Equal(t, "2026-03-02", state[models.TabClosing].LastRunDate)
}

func TestParseCutoff(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00", 540, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{" 9:30 ", 570, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"0900", 0, true},
		{"", 0, true},
		{"nine", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseCutoff(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func weekdaysOf(t *testing.T, days ...int) *models.Weekdays {
	t.Helper()
	return &models.Weekdays{Days: days}
}
