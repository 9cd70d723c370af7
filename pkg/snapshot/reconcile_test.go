package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writeRun writes one run's file for a user into a handmade run layout
func writeRun(t *testing.T, root, timestamp, section, userID string, v interface{}) {
	t.Helper()

	dir := filepath.Join(root, timestamp, "twitter", section)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create run directory: %v", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, userID+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
}

func TestFollowerSetNoHistory(t *testing.T) {
	r := NewReconciler(t.TempDir())

	set, err := r.FollowerSet("42")
	if err != nil {
		t.Fatalf("Failed to reconstruct: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("Expected empty set without history, got %v", set)
	}
}

func TestFollowerSetReplaysDeltas(t *testing.T) {
	root := t.TempDir()

	// First run saw followers A, B, C
	writeRun(t, root, "20240101120000", SectionFollowers, "42",
		DeltaRecord{Added: []string{"A", "B", "C"}, Subtracted: []string{}})

	// Second run saw A, C, D: B left, D arrived
	writeRun(t, root, "20240201120000", SectionFollowers, "42",
		DeltaRecord{Added: []string{"D"}, Subtracted: []string{"B"}})

	set, err := NewReconciler(root).FollowerSet("42")
	if err != nil {
		t.Fatalf("Failed to reconstruct: %v", err)
	}

	for _, id := range []string{"A", "C", "D"} {
		if _, ok := set[id]; !ok {
			t.Errorf("Expected %s in reconstructed set", id)
		}
	}
	if _, ok := set["B"]; ok {
		t.Error("Expected B to be subtracted from reconstructed set")
	}
}

func TestFollowerSetSkipsMissingRuns(t *testing.T) {
	root := t.TempDir()

	writeRun(t, root, "20240101120000", SectionFollowers, "42",
		DeltaRecord{Added: []string{"A"}, Subtracted: []string{}})

	// A later run crawled other users only, no file for 42
	writeRun(t, root, "20240201120000", SectionFollowers, "7",
		DeltaRecord{Added: []string{"X"}, Subtracted: []string{}})

	set, err := NewReconciler(root).FollowerSet("42")
	if err != nil {
		t.Fatalf("Failed to reconstruct: %v", err)
	}
	if _, ok := set["A"]; !ok {
		t.Error("Expected older run's record to still apply")
	}
	if len(set) != 1 {
		t.Errorf("Expected exactly one follower, got %v", set)
	}
}

func TestReconcilerSkipsPlainFiles(t *testing.T) {
	root := t.TempDir()

	// The ignore list lives next to the run directories
	if err := os.WriteFile(filepath.Join(root, "user_ignore_list.txt"), []byte("123\n"), 0644); err != nil {
		t.Fatalf("Failed to write ignore list: %v", err)
	}

	writeRun(t, root, "20240101120000", SectionFollowees, "42",
		DeltaRecord{Added: []string{"F"}, Subtracted: []string{}})

	set, err := NewReconciler(root).FolloweeSet("42")
	if err != nil {
		t.Fatalf("Failed to reconstruct: %v", err)
	}
	if _, ok := set["F"]; !ok {
		t.Error("Expected followee set to be reconstructed despite stray files")
	}
}

func TestLastTweetID(t *testing.T) {
	root := t.TempDir()
	r := NewReconciler(root)

	// No timeline ever recorded
	if _, ok, err := r.LastTweetID("42"); err != nil || ok {
		t.Errorf("Expected no last tweet, got ok=%v err=%v", ok, err)
	}

	// Timelines are stored newest first
	writeRun(t, root, "20240101120000", SectionTimelines, "42", []map[string]interface{}{
		{"id_str": "900", "text": "older"},
		{"id_str": "800", "text": "oldest"},
	})
	writeRun(t, root, "20240201120000", SectionTimelines, "42", []map[string]interface{}{
		{"id_str": "1000", "text": "newest"},
	})

	id, ok, err := r.LastTweetID("42")
	if err != nil {
		t.Fatalf("Failed to find last tweet: %v", err)
	}
	if !ok || id != "1000" {
		t.Errorf("Expected last tweet 1000, got %q ok=%v", id, ok)
	}
}

func TestLastTweetIDFallsBackToOlderRun(t *testing.T) {
	root := t.TempDir()

	writeRun(t, root, "20240101120000", SectionTimelines, "42", []map[string]interface{}{
		{"id_str": "500"},
	})

	// Newer run recorded no timeline for this user (no new tweets)
	if err := os.MkdirAll(filepath.Join(root, "20240201120000", "twitter", SectionTimelines), 0755); err != nil {
		t.Fatalf("Failed to create run directory: %v", err)
	}

	id, ok, err := NewReconciler(root).LastTweetID("42")
	if err != nil {
		t.Fatalf("Failed to find last tweet: %v", err)
	}
	if !ok || id != "500" {
		t.Errorf("Expected fallback to older run's 500, got %q ok=%v", id, ok)
	}
}

func TestLastTweetIDNumericFallback(t *testing.T) {
	root := t.TempDir()

	// Older payloads may carry a numeric id only
	writeRun(t, root, "20240101120000", SectionTimelines, "42", []map[string]interface{}{
		{"id": 12345},
	})

	id, ok, err := NewReconciler(root).LastTweetID("42")
	if err != nil {
		t.Fatalf("Failed to find last tweet: %v", err)
	}
	if !ok || id != "12345" {
		t.Errorf("Expected numeric id fallback 12345, got %q ok=%v", id, ok)
	}
}
