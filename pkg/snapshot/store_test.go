package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreCreatesSections(t *testing.T) {
	root := t.TempDir()

	store, err := NewStore(root, "20240101120000")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	for _, section := range Sections {
		dir := filepath.Join(store.RunDir(), section)
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("Expected section directory %s to exist: %v", section, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("Expected %s to be a directory", dir)
		}
	}
}

func TestStoreWriteAndRead(t *testing.T) {
	store, err := NewStore(t.TempDir(), "20240101120000")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	record := DeltaRecord{Added: []string{"1", "2"}, Subtracted: []string{"3"}}
	if err := store.WriteJSON(SectionFollowers, "42", record); err != nil {
		t.Fatalf("Failed to write record: %v", err)
	}

	var got DeltaRecord
	if err := store.ReadJSON(SectionFollowers, "42", &got); err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}

	if len(got.Added) != 2 || got.Added[0] != "1" || got.Added[1] != "2" {
		t.Errorf("Added mismatch: got %v", got.Added)
	}
	if len(got.Subtracted) != 1 || got.Subtracted[0] != "3" {
		t.Errorf("Subtracted mismatch: got %v", got.Subtracted)
	}

	// No stray temp file left behind
	if _, err := os.Stat(filepath.Join(store.RunDir(), SectionFollowers, "42.json.tmp")); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be gone after write")
	}
}

func TestStoreExists(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root, "20240101120000")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if store.Exists(SectionTweetDetails, "99") {
		t.Error("Expected Exists to be false before write")
	}

	if err := store.WriteJSON(SectionTweetDetails, "99", map[string]string{"id_str": "99"}); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	if !store.Exists(SectionTweetDetails, "99") {
		t.Error("Expected Exists to be true after write")
	}

	// A second store over the same run directory sees the file on disk
	restarted, err := NewStore(root, "20240101120000")
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	if !restarted.Exists(SectionTweetDetails, "99") {
		t.Error("Expected restarted store to see existing file")
	}
	if restarted.Exists(SectionTweetDetails, "100") {
		t.Error("Expected restarted store to miss unwritten id")
	}
}

func TestStoreListIDs(t *testing.T) {
	store, err := NewStore(t.TempDir(), "20240101120000")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ids, err := store.ListIDs(SectionRetweets)
	if err != nil {
		t.Fatalf("Failed to list empty section: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected empty section, got %v", ids)
	}

	store.WriteJSON(SectionRetweets, "11", []string{})
	store.WriteJSON(SectionRetweets, "22", []string{})

	ids, err = store.ListIDs(SectionRetweets)
	if err != nil {
		t.Fatalf("Failed to list section: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 ids, got %v", ids)
	}

	if store.WrittenCount() != 2 {
		t.Errorf("Expected written count 2, got %d", store.WrittenCount())
	}
}
