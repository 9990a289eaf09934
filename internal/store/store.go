package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"jira-stage-metrics/internal/jira"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnknownSource is returned when a source has no records.
	ErrUnknownSource = errors.New("unknown source")
	// ErrInvalidSource is returned for source ids that cannot name a cache file.
	ErrInvalidSource = errors.New("invalid source id")
)

var validate = validator.New()

// RecordStore provides thread-safe storage of raw issue records, partitioned by source id
// (a board, a project or an import name). Computed metrics are never stored.
type RecordStore struct {
	mu      sync.RWMutex
	sources map[string]map[string]jira.Record
}

// NewRecordStore creates a new empty RecordStore.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		sources: make(map[string]map[string]jira.Record),
	}
}

// ValidateSource checks that a source id is usable as a cache file name.
func ValidateSource(sourceID string) error {
	if err := validate.Var(sourceID, "required,max=128,printascii,excludesall=/\\:*?\"<>0x7C"); err != nil {
		return fmt.Errorf("%w %q", ErrInvalidSource, sourceID)
	}
	if strings.HasPrefix(sourceID, ".") {
		return fmt.Errorf("%w %q", ErrInvalidSource, sourceID)
	}
	return nil
}

// Append adds records to a source. A record replaces any earlier record with the same key.
// It returns the number of keys that were not present before.
func (s *RecordStore) Append(sourceID string, records []jira.Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.sources[sourceID]
	if !ok {
		byKey = make(map[string]jira.Record, len(records))
		s.sources[sourceID] = byKey
	}

	added := 0
	for _, r := range records {
		if _, exists := byKey[r.Key]; !exists {
			added++
		}
		byKey[r.Key] = r
	}
	return added
}

// Get returns a copy of every record of a source, ordered by issue key.
func (s *RecordStore) Get(sourceID string) ([]jira.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey, ok := s.sources[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSource, sourceID)
	}
	return sortedRecords(byKey), nil
}

// GetIssue returns the record of one issue.
func (s *RecordStore) GetIssue(sourceID, key string) (jira.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.sources[sourceID][key]
	return r, ok
}

// Sources returns the ids of every loaded source, sorted.
func (s *RecordStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.sources))
	for id := range s.sources {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Count returns the number of records in the store for a source.
func (s *RecordStore) Count(sourceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources[sourceID])
}

// Clear drops every record of a source.
func (s *RecordStore) Clear(sourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, sourceID)
}

// CachePath returns the JSONL cache file of a source.
func CachePath(cacheDir, sourceID string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("%s.jsonl", sourceID))
}

// Load reads records from a JSONL cache file for the given source.
func (s *RecordStore) Load(cacheDir string, sourceID string) error {
	if err := ValidateSource(sourceID); err != nil {
		return err
	}

	file, err := os.Open(CachePath(cacheDir, sourceID))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w %q: no cache in %s", ErrUnknownSource, sourceID, cacheDir)
		}
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer file.Close()

	var records []jira.Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r jira.Record
		if err := json.Unmarshal(line, &r); err != nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("Skipping invalid JSON line in cache")
			continue
		}
		if err := r.Validate(); err != nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("Skipping invalid record in cache")
			continue
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading cache: %w", err)
	}

	s.Append(sourceID, records)
	log.Info().Str("source", sourceID).Int("count", len(records)).Msg("Loaded records from cache")
	return nil
}

// Save persists the records of a source to a JSONL cache file.
func (s *RecordStore) Save(cacheDir string, sourceID string) error {
	if err := ValidateSource(sourceID); err != nil {
		return err
	}

	s.mu.RLock()
	byKey, ok := s.sources[sourceID]
	records := sortedRecords(byKey)
	s.mu.RUnlock()

	if !ok || len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := CachePath(cacheDir, sourceID)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, r := range records {
		if err := encoder.Encode(r); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	log.Info().Str("source", sourceID).Int("count", len(records)).Msg("Records saved to cache")
	return nil
}

func sortedRecords(byKey map[string]jira.Record) []jira.Record {
	out := make([]jira.Record, 0, len(byKey))
	for _, r := range byKey {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b jira.Record) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}
