package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	yaml "gopkg.in/yaml.v3"
)

const (
	defaultDataFile   = "fairflow.json" // Default filename if only format implies extension
	dataFileKey       = "dataFile"
	dataFileFormatKey = "dataFileFormat"
	defaultDataFormat = "json"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"
	checksumSuffix    = ".checksum"
)

// recordSet is the on-disk payload. Values are JSON documents kept as
// strings so the same shape serializes cleanly to all three formats.
type recordSet struct {
	Records map[string]string `json:"records" yaml:"records" toml:"records"`
	Count   int               `json:"count" yaml:"count" toml:"count"`
}

// FileKVStore implements the KVStore interface using a file backend.
// It supports JSON, YAML, and TOML formats and uses file-level locking.
type FileKVStore struct {
	filePath string
	records  map[string]string
	flk      *flock.Flock
	format   string // "json", "yaml", or "toml"
}

// NewFileKVStore creates a new instance of FileKVStore.
// It does not initialize the store; Initialize must be called separately.
func NewFileKVStore() *FileKVStore {
	return &FileKVStore{
		records: make(map[string]string),
	}
}

// Initialize configures the FileKVStore.
// It expects a 'dataFile' key in the config map specifying the path to the
// data file, defaulting to 'fairflow.json' in the current working
// directory. It loads existing records if the file exists and establishes
// a file lock.
func (s *FileKVStore) Initialize(config map[string]string) error {
	if val, ok := config[dataFileKey]; ok && val != "" {
		s.filePath = val
	} else {
		s.filePath = defaultDataFile
	}

	if val, ok := config[dataFileFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML, formatTOML:
			s.format = formatLower
		default:
			return fmt.Errorf("unsupported dataFileFormat: %s. Supported formats are json, yaml, toml", val)
		}
	} else {
		s.format = defaultDataFormat
	}

	// If filePath was the default and format is not JSON, adjust the
	// default extension. Users providing a full path own its extension.
	if s.filePath == defaultDataFile && s.format != formatJSON {
		ext := filepath.Ext(s.filePath)
		s.filePath = strings.TrimSuffix(s.filePath, ext) + "." + s.format
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// flock uses the file path itself for locking.
	s.flk = flock.New(s.filePath)

	locked, err := s.flk.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire initial lock for %s: %w", s.filePath, err)
	}
	if !locked {
		// Another process holds the lock; block until initialization can
		// complete.
		if err := s.flk.Lock(); err != nil {
			return fmt.Errorf("failed to acquire blocking initial lock for %s: %w", s.filePath, err)
		}
	}
	defer func() { _ = s.flk.Unlock() }()

	s.records = make(map[string]string)
	return s.loadInternal()
}

// calculateChecksum computes the SHA256 checksum of the given data.
func calculateChecksum(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data) // Write never returns an error
	return hex.EncodeToString(hasher.Sum(nil))
}

// loadInternal reads records from the file, verifies checksum, and
// unmarshals. The caller must hold the file lock.
func (s *FileKVStore) loadInternal() error {
	checksumFilePath := s.filePath + checksumSuffix

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.records = make(map[string]string)
			_ = os.Remove(checksumFilePath)
			if f, createErr := os.OpenFile(s.filePath, os.O_CREATE|os.O_RDWR, 0o644); createErr != nil {
				return fmt.Errorf("failed to create data file %s: %w", s.filePath, createErr)
			} else {
				_ = f.Close()
			}
			if err := os.WriteFile(checksumFilePath, []byte(calculateChecksum([]byte{})), 0o644); err != nil {
				// Non-critical; the next save will recreate it.
				fmt.Printf("Warning: could not write initial checksum file %s: %v\n", checksumFilePath, err)
			}
			return nil
		}
		return fmt.Errorf("failed to read data file %s: %w", s.filePath, err)
	}

	// Verify checksum if checksum file exists
	if _, err := os.Stat(checksumFilePath); err == nil {
		expectedChecksumBytes, readErr := os.ReadFile(checksumFilePath)
		if readErr != nil {
			return fmt.Errorf("failed to read checksum file %s: %w - data file might be corrupt or tampered", checksumFilePath, readErr)
		}
		expectedChecksum := strings.TrimSpace(string(expectedChecksumBytes))
		actualChecksum := calculateChecksum(data)

		if actualChecksum != expectedChecksum {
			return fmt.Errorf("checksum mismatch for %s - expected %s, got %s - file is corrupt or tampered", s.filePath, expectedChecksum, actualChecksum)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking checksum file %s: %w", checksumFilePath, err)
	}
	// A data file without a checksum file predates checksums; load it and
	// let the next save create one.

	if len(data) == 0 {
		_ = os.WriteFile(checksumFilePath, []byte(calculateChecksum([]byte{})), 0o644) // best effort
		s.records = make(map[string]string)
		return nil
	}

	var set recordSet
	switch s.format {
	case formatJSON:
		if err := json.Unmarshal(data, &set); err != nil {
			return fmt.Errorf("failed to unmarshal JSON from %s (checksum may have passed): %w", s.filePath, err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &set); err != nil {
			return fmt.Errorf("failed to unmarshal YAML from %s (checksum may have passed): %w", s.filePath, err)
		}
	case formatTOML:
		if err := toml.Unmarshal(data, &set); err != nil {
			return fmt.Errorf("failed to unmarshal TOML from %s (checksum may have passed): %w", s.filePath, err)
		}
	default:
		return fmt.Errorf("unsupported data format for loading: %s", s.format)
	}

	s.records = set.Records
	if s.records == nil {
		s.records = make(map[string]string)
	}
	return nil
}

// saveInternal writes records to file, then writes its checksum. The
// caller must hold the file lock.
func (s *FileKVStore) saveInternal() error {
	set := recordSet{
		Records: s.records,
		Count:   len(s.records),
	}

	var marshaledData []byte
	var err error

	switch s.format {
	case formatJSON:
		marshaledData, err = json.MarshalIndent(set, "", "  ")
	case formatYAML:
		marshaledData, err = yaml.Marshal(set)
	case formatTOML:
		buf := new(bytes.Buffer)
		if encodeErr := toml.NewEncoder(buf).Encode(set); encodeErr == nil {
			marshaledData = buf.Bytes()
		} else {
			err = fmt.Errorf("failed to marshal TOML: %w", encodeErr)
		}
	default:
		return fmt.Errorf("unsupported data format for saving: %s", s.format)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal records to %s: %w", s.format, err)
	}

	tempFilePath := s.filePath + ".tmp"
	checksumFilePath := s.filePath + checksumSuffix
	tempChecksumFilePath := checksumFilePath + ".tmp"

	defer func() { _ = os.Remove(tempFilePath) }()
	defer func() { _ = os.Remove(tempChecksumFilePath) }()

	if err := os.WriteFile(tempFilePath, marshaledData, 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary data file %s: %w", tempFilePath, err)
	}

	actualChecksum := calculateChecksum(marshaledData)
	if err := os.WriteFile(tempChecksumFilePath, []byte(actualChecksum), 0o644); err != nil {
		return fmt.Errorf("failed to write to temporary checksum file %s: %w", tempChecksumFilePath, err)
	}

	// Atomically move data file and then checksum file.
	if err := os.Rename(tempFilePath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temporary data file %s to %s: %w", tempFilePath, s.filePath, err)
	}
	if err := os.Rename(tempChecksumFilePath, checksumFilePath); err != nil {
		return fmt.Errorf("CRITICAL: data file %s updated, but failed to update checksum file %s from %s: %w - store may be inconsistent", s.filePath, checksumFilePath, tempChecksumFilePath, err)
	}

	return nil
}

// Get retrieves the value for a key.
func (s *FileKVStore) Get(key string) ([]byte, bool, error) {
	if err := s.flk.Lock(); err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock for Get: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadInternal(); err != nil {
		return nil, false, fmt.Errorf("failed to load records for Get: %w", err)
	}

	val, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(val), true, nil
}

// Set stores a value under a key, creating or replacing it.
func (s *FileKVStore) Set(key string, value []byte) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock file for Set: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	// Reload state from disk so concurrent processes don't lose updates;
	// the lock serializes the read-modify-write.
	if err := s.loadInternal(); err != nil {
		return fmt.Errorf("failed to reload records before Set: %w", err)
	}

	s.records[key] = string(value)

	if err := s.saveInternal(); err != nil {
		// Best-effort rollback: reload from the unchanged file.
		_ = s.loadInternal()
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *FileKVStore) Delete(key string) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("could not lock file for Delete: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadInternal(); err != nil {
		return fmt.Errorf("failed to reload records before Delete: %w", err)
	}

	if _, ok := s.records[key]; !ok {
		return nil
	}
	delete(s.records, key)

	if err := s.saveInternal(); err != nil {
		_ = s.loadInternal()
		return fmt.Errorf("failed to save after deleting %s: %w", key, err)
	}
	return nil
}

// Keys returns every key currently present, sorted for stable output.
func (s *FileKVStore) Keys() ([]string, error) {
	if err := s.flk.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock for Keys: %w", err)
	}
	defer func() { _ = s.flk.Unlock() }()

	if err := s.loadInternal(); err != nil {
		return nil, fmt.Errorf("failed to load records for Keys: %w", err)
	}

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases the file lock.
func (s *FileKVStore) Close() error {
	if s.flk != nil {
		return s.flk.Unlock()
	}
	return nil
}

// FilePath returns the path of the backing data file. Used by watch mode
// to subscribe to external changes.
func (s *FileKVStore) FilePath() string {
	return s.filePath
}
