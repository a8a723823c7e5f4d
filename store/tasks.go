package store

import (
	"encoding/json"
	"strings"

	"github.com/fairflowapp/fairflow/models"
)

// Data is the typed serialization boundary over the raw key-value store.
// Every read validates and normalizes; malformed persisted JSON degrades
// to an empty collection instead of propagating, so one corrupt key never
// blocks another tab's computation.
type Data struct {
	kv KVStore
}

// NewData wraps a KVStore with the typed boundary.
func NewData(kv KVStore) *Data {
	return &Data{kv: kv}
}

// KV exposes the underlying store for components that manage their own
// keys, such as the history log.
func (d *Data) KV() KVStore {
	return d.kv
}

// readJSON unmarshals the value at key into out. Missing keys and
// malformed JSON both leave out untouched and report false.
func (d *Data) readJSON(key string, out interface{}) bool {
	raw, ok, err := d.kv.Get(key)
	if err != nil || !ok || len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}

func (d *Data) writeJSON(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return d.kv.Set(key, raw)
}

// ReadList returns a tab's bucket list with identities normalized.
func (d *Data) ReadList(tab models.Tab, bucket Bucket) []models.TaskInstance {
	var list []models.TaskInstance
	if !d.readJSON(TasksKey(tab, bucket), &list) {
		return nil
	}
	out := list[:0]
	for _, t := range list {
		if t.KeyID() == "" {
			continue
		}
		t.Normalize()
		out = append(out, t)
	}
	return out
}

// WriteList persists a tab's bucket list.
func (d *Data) WriteList(tab models.Tab, bucket Bucket, list []models.TaskInstance) error {
	if list == nil {
		list = []models.TaskInstance{}
	}
	return d.writeJSON(TasksKey(tab, bucket), list)
}

// DeleteList removes a tab's bucket list along with its legacy variants.
func (d *Data) DeleteList(tab models.Tab, bucket Bucket) error {
	if err := d.kv.Delete(TasksKey(tab, bucket)); err != nil {
		return err
	}
	for _, k := range legacyTasksKeys(tab, bucket) {
		if err := d.kv.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSelectionKeys removes any key containing the tab name and a
// "selected" marker. Keys containing "catalog" are never touched.
func (d *Data) DeleteSelectionKeys(tab models.Tab) error {
	keys, err := d.kv.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !strings.Contains(key, string(tab)) {
			continue
		}
		if !strings.Contains(key, "selected") && !strings.Contains(key, "_selected_") {
			continue
		}
		if strings.Contains(strings.ToLower(key), "catalog") {
			continue
		}
		if err := d.kv.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// ReadCatalog returns the full catalog. Missing or corrupt data yields an
// empty catalog.
func (d *Data) ReadCatalog() models.Catalog {
	catalog := models.Catalog{}
	d.readJSON(KeyCatalog, &catalog)
	return catalog
}

// WriteCatalog persists the catalog. Only the settings flow may call this;
// lifecycle operations never do.
func (d *Data) WriteCatalog(catalog models.Catalog) error {
	return d.writeJSON(KeyCatalog, catalog)
}

// ReadAlertWindows returns the per-tab alert-window configuration.
func (d *Data) ReadAlertWindows() map[models.Tab]models.AlertWindow {
	windows := map[models.Tab]models.AlertWindow{}
	d.readJSON(KeyAlertWindows, &windows)
	return windows
}

// WriteAlertWindows persists the per-tab alert-window configuration.
func (d *Data) WriteAlertWindows(windows map[models.Tab]models.AlertWindow) error {
	return d.writeJSON(KeyAlertWindows, windows)
}

// ReadAutoResetState returns the per-tab last-run-date records.
func (d *Data) ReadAutoResetState() map[models.Tab]models.AutoResetState {
	state := map[models.Tab]models.AutoResetState{}
	d.readJSON(KeyAutoResetState, &state)
	return state
}

// WriteAutoResetState persists the per-tab last-run-date records.
func (d *Data) WriteAutoResetState(state map[models.Tab]models.AutoResetState) error {
	return d.writeJSON(KeyAutoResetState, state)
}

// ReadUsers returns the worker-PIN list.
func (d *Data) ReadUsers() []models.User {
	var users []models.User
	d.readJSON(KeyUsers, &users)
	return users
}

// WriteUsers persists the worker-PIN list.
func (d *Data) WriteUsers(users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	return d.writeJSON(KeyUsers, users)
}

// ReadSettings returns the salon settings record.
func (d *Data) ReadSettings() models.Settings {
	var settings models.Settings
	d.readJSON(KeySettings, &settings)
	return settings
}

// WriteSettings persists the salon settings record.
func (d *Data) WriteSettings(settings models.Settings) error {
	return d.writeJSON(KeySettings, settings)
}
