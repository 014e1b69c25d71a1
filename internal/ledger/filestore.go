package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorrupt is returned by FileStore.Load when the ledger file exists
// but cannot be parsed. The returned record is still the usable default.
var ErrCorrupt = errors.New("ledger file is corrupt")

// FileStore persists the ledger record as a single JSON file.
// Writes go through a temp file and rename so the record is never
// half-written on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the ledger file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted record. A missing file yields the default
// record with no error; an unreadable or malformed file yields the
// default record and ErrCorrupt so the caller can warn.
func (s *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRecord(), nil
		}
		return DefaultRecord(), fmt.Errorf("read %s: %w", s.path, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return DefaultRecord(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if record.Vouchers == nil {
		record.Vouchers = []string{}
	}

	return record, nil
}

// Save writes the record atomically.
func (s *FileStore) Save(record Record) error {
	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close ledger file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace ledger file: %w", err)
	}

	return nil
}
