package release

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Store manages release records on disk
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at baseDir
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// BaseDir returns the store root directory
func (s *Store) BaseDir() string {
	return s.baseDir
}

// ReleaseDir returns the directory for a new release
func (s *Store) ReleaseDir(t time.Time) string {
	return filepath.Join(s.baseDir, t.UTC().Format("20060102_150405"))
}

// Write persists a record into a timestamped release directory and
// returns the directory it was written to
func (s *Store) Write(r *Record) (string, error) {
	dir := s.ReleaseDir(r.CreatedAt)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating release directory: %w", err)
	}

	if err := r.Save(filepath.Join(dir, RecordFilename)); err != nil {
		return "", err
	}

	return dir, nil
}

// List returns all records, newest first
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading release directory: %w", err)
	}

	var records []*Record
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(s.baseDir, e.Name(), RecordFilename)
		r, err := LoadRecord(path)
		if err != nil {
			// skip directories without a readable record
			continue
		}
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// Latest returns the most recent record, or nil when none exist
func (s *Store) Latest() (*Record, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}
