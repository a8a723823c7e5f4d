package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	archive, err := OpenArchive(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })
	return archive
}

func TestArchive_RecordAndQuery(t *testing.T) {
	archive := newTestArchive(t)
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, archive.Record(Event{ID: "e1", At: base, Actor: "Alice", Action: ActionSelect, Tab: "opening", TaskID: "t1"}))
	require.NoError(t, archive.Record(Event{ID: "e2", At: base.Add(time.Minute), Actor: "Alice", Action: ActionDone, Tab: "opening", TaskID: "t1"}))
	require.NoError(t, archive.Record(Event{ID: "e3", At: base.Add(2 * time.Minute), Action: ActionReset, Tab: "closing"}))

	events, err := archive.Events("", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "e3", events[0].ID, "newest first")
	assert.Equal(t, base.Add(2*time.Minute), events[0].At)

	opening, err := archive.Events("opening", 10)
	require.NoError(t, err)
	require.Len(t, opening, 2)
	for _, e := range opening {
		assert.Equal(t, "opening", e.Tab)
	}
}

func TestArchive_ReplayIsIdempotent(t *testing.T) {
	archive := newTestArchive(t)
	e := Event{ID: "e1", At: time.Now(), Action: ActionDone, Tab: "opening"}

	require.NoError(t, archive.Record(e))
	require.NoError(t, archive.Record(e))

	events, err := archive.Events("", 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestArchive_Prune(t *testing.T) {
	archive := newTestArchive(t)
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, archive.Record(Event{ID: "old", At: base.AddDate(0, 0, -100), Action: ActionDone}))
	require.NoError(t, archive.Record(Event{ID: "new", At: base, Action: ActionDone}))

	require.NoError(t, archive.Prune(base.AddDate(0, 0, -RetentionDays)))

	events, err := archive.Events("", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].ID)
}

func TestArchive_Limit(t *testing.T) {
	archive := newTestArchive(t)
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, archive.Record(Event{
			ID: string(rune('a' + i)), At: base.Add(time.Duration(i) * time.Second), Action: ActionDone,
		}))
	}

	events, err := archive.Events("", 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
