package store

import (
	"testing"

	"github.com/fairflowapp/fairflow/models"
)

func newTestData(t *testing.T) *Data {
	t.Helper()
	return NewData(NewMemoryKVStore())
}

func TestReadList_NormalizesIdentity(t *testing.T) {
	data := newTestData(t)
	raw := `[
		{"id":"t1","title":"has id only"},
		{"taskId":"t2","title":"has taskId only"},
		{"title":"no identity at all"}
	]`
	if err := data.KV().Set(TasksKey(models.TabOpening, BucketActive), []byte(raw)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	list := data.ReadList(models.TabOpening, BucketActive)
	if len(list) != 2 {
		t.Fatalf("Expected 2 entries (identity-less dropped), got %d", len(list))
	}
	for _, task := range list {
		if task.ID == "" || task.TaskID == "" || task.ID != task.TaskID {
			t.Errorf("Identity not mirrored: id=%q taskId=%q", task.ID, task.TaskID)
		}
	}
}

func TestReadList_MalformedFailsOpen(t *testing.T) {
	data := newTestData(t)
	if err := data.KV().Set(TasksKey(models.TabOpening, BucketActive), []byte(`{not json`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if list := data.ReadList(models.TabOpening, BucketActive); list != nil {
		t.Errorf("Malformed JSON should read as empty, got %v", list)
	}
	// Other keys are unaffected.
	if err := data.WriteList(models.TabClosing, BucketActive, []models.TaskInstance{{ID: "c1", TaskID: "c1"}}); err != nil {
		t.Fatalf("WriteList failed: %v", err)
	}
	if list := data.ReadList(models.TabClosing, BucketActive); len(list) != 1 {
		t.Errorf("Healthy key should still read, got %v", list)
	}
}

func TestWriteList_NilBecomesEmptyArray(t *testing.T) {
	data := newTestData(t)
	if err := data.WriteList(models.TabOpening, BucketPending, nil); err != nil {
		t.Fatalf("WriteList failed: %v", err)
	}

	raw, ok, err := data.KV().Get(TasksKey(models.TabOpening, BucketPending))
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if string(raw) != "[]" {
		t.Errorf("Expected empty JSON array, got %q", raw)
	}
}

func TestDeleteList_PurgesLegacyVariants(t *testing.T) {
	data := newTestData(t)
	kv := data.KV()
	for _, key := range []string{
		"ff_tasks_weekly_pending_v1",
		"ffv24_tasks_weekly_pending_v1",
		"ffv24_tasks_weekly_pending",
	} {
		if err := kv.Set(key, []byte(`[]`)); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}

	if err := data.DeleteList(models.TabWeekly, BucketPending); err != nil {
		t.Fatalf("DeleteList failed: %v", err)
	}

	keys, err := kv.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Expected all variants purged, still have %v", keys)
	}
}

func TestDeleteSelectionKeys(t *testing.T) {
	data := newTestData(t)
	kv := data.KV()
	keep := []string{
		"ff_tasks_catalog_v1",
		"ff_tasks_opening_selected_catalog", // catalog keys are never touched
		"ff_tasks_closing_selected_v1",      // different tab
		"ff_tasks_opening_active_v1",        // no selected marker
	}
	purge := []string{
		"ff_tasks_opening_selected_v1",
		"ffv24_tasks_opening_selected",
	}
	for _, key := range append(append([]string{}, keep...), purge...) {
		if err := kv.Set(key, []byte(`{}`)); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
	}

	if err := data.DeleteSelectionKeys(models.TabOpening); err != nil {
		t.Fatalf("DeleteSelectionKeys failed: %v", err)
	}

	keys, err := kv.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	remaining := map[string]bool{}
	for _, k := range keys {
		remaining[k] = true
	}
	for _, k := range keep {
		if !remaining[k] {
			t.Errorf("Key %s should have been kept", k)
		}
	}
	for _, k := range purge {
		if remaining[k] {
			t.Errorf("Key %s should have been purged", k)
		}
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	data := newTestData(t)
	catalog := models.Catalog{
		models.TabWeekly: {{ID: "w1", Title: "Deep clean"}},
	}
	if err := data.WriteCatalog(catalog); err != nil {
		t.Fatalf("WriteCatalog failed: %v", err)
	}

	got := data.ReadCatalog()
	if len(got[models.TabWeekly]) != 1 || got[models.TabWeekly][0].Title != "Deep clean" {
		t.Errorf("Catalog mismatch: %v", got)
	}
}

func TestReadCatalog_MalformedFailsOpen(t *testing.T) {
	data := newTestData(t)
	if err := data.KV().Set(KeyCatalog, []byte(`broken`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got := data.ReadCatalog()
	if got == nil {
		t.Fatal("ReadCatalog should return an empty catalog, not nil")
	}
	if len(got) != 0 {
		t.Errorf("Expected empty catalog, got %v", got)
	}
}

func TestSettingsAndUsersRoundTrip(t *testing.T) {
	data := newTestData(t)

	settings := models.Settings{AdminCode: "1234", Managers: []models.Manager{{Code: "9", Name: "M"}}}
	if err := data.WriteSettings(settings); err != nil {
		t.Fatalf("WriteSettings failed: %v", err)
	}
	if got := data.ReadSettings(); got.AdminCode != "1234" || len(got.Managers) != 1 {
		t.Errorf("Settings mismatch: %+v", got)
	}

	users := []models.User{{Pin: "4321", DisplayName: "Alice"}}
	if err := data.WriteUsers(users); err != nil {
		t.Fatalf("WriteUsers failed: %v", err)
	}
	if got := data.ReadUsers(); len(got) != 1 || got[0].DisplayName != "Alice" {
		t.Errorf("Users mismatch: %+v", got)
	}
}

func TestAlertWindowsAndStateRoundTrip(t *testing.T) {
	data := newTestData(t)

	windows := map[models.Tab]models.AlertWindow{
		models.TabOpening: {AutoResetEnabled: true, AutoResetTime: "09:00"},
	}
	if err := data.WriteAlertWindows(windows); err != nil {
		t.Fatalf("WriteAlertWindows failed: %v", err)
	}
	if got := data.ReadAlertWindows(); !got[models.TabOpening].AutoResetEnabled {
		t.Errorf("AlertWindows mismatch: %+v", got)
	}

	state := map[models.Tab]models.AutoResetState{
		models.TabOpening: {LastRunDate: "2026-03-02"},
	}
	if err := data.WriteAutoResetState(state); err != nil {
		t.Fatalf("WriteAutoResetState failed: %v", err)
	}
	if got := data.ReadAutoResetState(); got[models.TabOpening].LastRunDate != "2026-03-02" {
		t.Errorf("AutoResetState mismatch: %+v", got)
	}
}
