package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var statuses = []Status{StatusCompleted, StatusFailed}

// ErrNotFound is returned by Load when no record matches the ID.
var ErrNotFound = errors.New("record not found")

// Store handles record persistence. Records are stored as JSON files under baseDir,
// organized by status (completed, failed). A path cache speeds up Load/Save by
// avoiding directory scans.
type Store struct {
	baseDir   string
	pathCache map[string]string // record ID -> file path cache
	cacheMu   sync.RWMutex      // protects pathCache
}

// NewStore creates a Store with the given base directory (e.g. .crew-history).
func NewStore(baseDir string) *Store {
	return &Store{
		baseDir:   baseDir,
		pathCache: make(map[string]string),
	}
}

// Init creates the status subdirectories under baseDir.
// Records contain model output, so directories are 0700.
func (s *Store) Init() error {
	for _, status := range statuses {
		dir := filepath.Join(s.baseDir, string(status))
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Save writes a record under baseDir/<status>/<id>.json.
// A file left in another status directory is removed.
func (s *Store) Save(r *Record) error {
	if err := r.Validate(); err != nil {
		return err
	}

	newPath := filepath.Join(s.baseDir, string(r.Status), r.ID+".json")

	s.cacheMu.RLock()
	cachedPath, hasCached := s.pathCache[r.ID]
	s.cacheMu.RUnlock()

	if hasCached && cachedPath != newPath {
		if err := os.Remove(cachedPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove old record file: %w", err)
		}
	} else if !hasCached {
		for _, status := range statuses {
			if status == r.Status {
				continue
			}
			oldPath := filepath.Join(s.baseDir, string(status), r.ID+".json")
			if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove old record file: %w", err)
			}
		}
	}

	dir := filepath.Join(s.baseDir, string(r.Status))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := os.WriteFile(newPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}

	s.cacheMu.Lock()
	s.pathCache[r.ID] = newPath
	s.cacheMu.Unlock()

	return nil
}

// Load reads a record by ID. A unique ID prefix is accepted as well, so the
// short IDs shown by `history` can be passed back in.
func (s *Store) Load(id string) (*Record, error) {
	s.cacheMu.RLock()
	cachedPath, hasCached := s.pathCache[id]
	s.cacheMu.RUnlock()

	if hasCached {
		if data, err := os.ReadFile(cachedPath); err == nil {
			return FromJSON(data)
		}
		s.cacheMu.Lock()
		delete(s.pathCache, id)
		s.cacheMu.Unlock()
	}

	var matches []string
	for _, status := range statuses {
		dir := filepath.Join(s.baseDir, string(status))
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || filepath.Ext(name) != ".json" {
				continue
			}
			if strings.HasPrefix(strings.TrimSuffix(name, ".json"), id) {
				matches = append(matches, filepath.Join(dir, name))
			}
		}
	}

	switch {
	case id == "" || len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(matches) > 1:
		return nil, fmt.Errorf("ambiguous record ID %q matches %d records", id, len(matches))
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	r, err := FromJSON(data)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.pathCache[r.ID] = matches[0]
	s.cacheMu.Unlock()
	return r, nil
}

// LoadByStatus loads all records in the given status directory, newest first.
// Returns an empty slice if the directory does not exist.
func (s *Store) LoadByStatus(status Status) ([]*Record, error) {
	dir := filepath.Join(s.baseDir, string(status))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*Record{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	records := make([]*Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		r, err := FromJSON(data)
		if err != nil {
			continue
		}
		records = append(records, r)
	}

	sortNewestFirst(records)
	return records, nil
}

// List loads records of every status, newest first.
func (s *Store) List() ([]*Record, error) {
	var all []*Record
	for _, status := range statuses {
		records, err := s.LoadByStatus(status)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	sortNewestFirst(all)
	return all, nil
}

func sortNewestFirst(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
}

// CountByStatus returns the number of records with the given status by counting
// .json files in the status directory. It does not parse the records.
func (s *Store) CountByStatus(status Status) (int, error) {
	dir := filepath.Join(s.baseDir, string(status))
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			count++
		}
	}
	return count, nil
}

// Count returns the count of records per status.
func (s *Store) Count() (map[Status]int, error) {
	counts := make(map[Status]int)
	for _, status := range statuses {
		n, err := s.CountByStatus(status)
		if err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, nil
}

// Clean removes the base directory and all record files.
func (s *Store) Clean() error {
	s.cacheMu.Lock()
	s.pathCache = make(map[string]string)
	s.cacheMu.Unlock()
	return os.RemoveAll(s.baseDir)
}
