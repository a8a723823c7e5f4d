package store

import (
	"os"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T, format string) *FileKVStore {
	t.Helper()

	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "fairflow."+format)

	s := NewFileKVStore()
	config := map[string]string{
		"dataFile":       filePath,
		"dataFileFormat": format,
	}

	if err := s.Initialize(config); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestFileKVStore_BasicOperations(t *testing.T) {
	s := setupTestStore(t, "json")

	if err := s.Set("ff_users_v1", []byte(`[{"pin":"1234","displayName":"Alice"}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok, err := s.Get("ff_users_v1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Get should find the key")
	}
	if string(val) != `[{"pin":"1234","displayName":"Alice"}]` {
		t.Errorf("Value mismatch: got %q", val)
	}

	_, ok, err = s.Get("missing")
	if err != nil {
		t.Fatalf("Get of missing key failed: %v", err)
	}
	if ok {
		t.Error("Get should not find a missing key")
	}

	if err := s.Delete("ff_users_v1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get("ff_users_v1"); ok {
		t.Error("Key should be gone after Delete")
	}

	// Deleting a missing key is not an error.
	if err := s.Delete("ff_users_v1"); err != nil {
		t.Errorf("Delete of missing key should be a no-op: %v", err)
	}
}

func TestFileKVStore_Keys(t *testing.T) {
	s := setupTestStore(t, "json")

	for _, k := range []string{"b_key", "a_key", "c_key"} {
		if err := s.Set(k, []byte("v")); err != nil {
			t.Fatalf("Set %s failed: %v", k, err)
		}
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("Expected 3 keys, got %d", len(keys))
	}
	// Sorted for stable output.
	if keys[0] != "a_key" || keys[1] != "b_key" || keys[2] != "c_key" {
		t.Errorf("Keys not sorted: %v", keys)
	}
}

func TestFileKVStore_PersistsAcrossReopen(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "fairflow.json")
	config := map[string]string{"dataFile": filePath, "dataFileFormat": "json"}

	s1 := NewFileKVStore()
	if err := s1.Initialize(config); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := s1.Set("ffv24_settings", []byte(`{"adminCode":"1234"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2 := NewFileKVStore()
	if err := s2.Initialize(config); err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer func() { _ = s2.Close() }()

	val, ok, err := s2.Get("ffv24_settings")
	if err != nil || !ok {
		t.Fatalf("Get after reopen failed: ok=%v err=%v", ok, err)
	}
	if string(val) != `{"adminCode":"1234"}` {
		t.Errorf("Value mismatch after reopen: got %q", val)
	}
}

func TestFileKVStore_AlternateFormats(t *testing.T) {
	for _, format := range []string{"yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			s := setupTestStore(t, format)

			if err := s.Set("ff_tasks_opening_active_v1", []byte(`[{"id":"t1","title":"x"}]`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			val, ok, err := s.Get("ff_tasks_opening_active_v1")
			if err != nil || !ok {
				t.Fatalf("Get failed: ok=%v err=%v", ok, err)
			}
			if string(val) != `[{"id":"t1","title":"x"}]` {
				t.Errorf("Value mismatch: got %q", val)
			}
		})
	}
}

func TestFileKVStore_ChecksumMismatch(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "fairflow.json")
	config := map[string]string{"dataFile": filePath, "dataFileFormat": "json"}

	s1 := NewFileKVStore()
	if err := s1.Initialize(config); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := s1.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Tamper with the data file without updating the checksum sidecar.
	if err := os.WriteFile(filePath, []byte(`{"records":{"k":"tampered"},"count":1}`), 0o644); err != nil {
		t.Fatalf("Tamper write failed: %v", err)
	}

	s2 := NewFileKVStore()
	if err := s2.Initialize(config); err == nil {
		_ = s2.Close()
		t.Fatal("Initialize should fail on checksum mismatch")
	}
}

func TestFileKVStore_RejectsUnknownFormat(t *testing.T) {
	s := NewFileKVStore()
	err := s.Initialize(map[string]string{
		"dataFile":       filepath.Join(t.TempDir(), "fairflow.xml"),
		"dataFileFormat": "xml",
	})
	if err == nil {
		t.Fatal("Initialize should reject unsupported formats")
	}
}
