package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Snapshot sections, one subdirectory per fetch kind
const (
	SectionTweetDetails = "tweet_details"
	SectionRetweets     = "retweets"
	SectionFollowers    = "followers"
	SectionFollowees    = "followees"
	SectionTimelines    = "timelines"
)

// Sections lists every snapshot subdirectory of a run
var Sections = []string{
	SectionTweetDetails,
	SectionRetweets,
	SectionFollowers,
	SectionFollowees,
	SectionTimelines,
}

// DeltaRecord is one run's follower or followee change relative to the
// reconstructed prior cumulative state. Written once per user per run,
// never mutated.
type DeltaRecord struct {
	Added      []string `json:"added"`
	Subtracted []string `json:"subtracted"`
}

// Store manages the snapshot directory of one collection run. Files are
// keyed by object id within a section, so concurrent workers never write
// the same file; the mutex only guards the written-set bookkeeping.
type Store struct {
	root    string
	runDir  string
	written map[string]bool
	mu      sync.RWMutex
}

// NewStore creates the snapshot directory tree for one run:
// {root}/{timestamp}/twitter/{section}/ for every section.
func NewStore(root, timestamp string) (*Store, error) {
	runDir := filepath.Join(root, timestamp, "twitter")

	for _, section := range Sections {
		if err := os.MkdirAll(filepath.Join(runDir, section), 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	return &Store{
		root:    root,
		runDir:  runDir,
		written: make(map[string]bool),
	}, nil
}

// Root returns the snapshot root directory holding all runs
func (s *Store) Root() string {
	return s.root
}

// RunDir returns this run's snapshot directory
func (s *Store) RunDir() string {
	return s.runDir
}

// Exists reports whether this run already holds output for the given
// section and object id. Used as the completion check when enqueueing.
func (s *Store) Exists(section, id string) bool {
	s.mu.RLock()
	if s.written[section+"/"+id] {
		s.mu.RUnlock()
		return true
	}
	s.mu.RUnlock()

	_, err := os.Stat(s.path(section, id))
	return err == nil
}

// WriteJSON atomically writes one output file for this run. The value is
// written to a temporary file and renamed into place so a crash never
// leaves a partial file that would pass the completion check.
func (s *Store) WriteJSON(section, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", section, id, err)
	}

	filename := s.path(section, id)
	tempFile := filename + ".tmp"

	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	s.mu.Lock()
	s.written[section+"/"+id] = true
	s.mu.Unlock()

	return nil
}

// ReadJSON reads one of this run's output files into v
func (s *Store) ReadJSON(section, id string, v interface{}) error {
	data, err := os.ReadFile(s.path(section, id))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ListIDs returns the object ids present in one section of this run
func (s *Store) ListIDs(section string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.runDir, section))
	if err != nil {
		return nil, fmt.Errorf("failed to read section %s: %w", section, err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, name[:len(name)-len(".json")])
	}
	return ids, nil
}

// WrittenCount returns the number of files written by this run so far
func (s *Store) WrittenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.written)
}

func (s *Store) path(section, id string) string {
	return filepath.Join(s.runDir, section, id+".json")
}
