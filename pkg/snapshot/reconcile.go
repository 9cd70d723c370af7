package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Reconciler rebuilds cumulative state from the delta records of prior
// runs. Run directories are named by timestamp, so lexical order is
// chronological order; replay walks them newest first.
//
// Reconstruction assumes an unbroken chain of runs: each delta record is
// the diff against the run immediately before it, so a deleted run
// directory silently shifts the baseline rather than failing. Absent
// history is indistinguishable from an account that had no followers.
type Reconciler struct {
	root string
}

// NewReconciler creates a reconciler over the snapshot root directory
func NewReconciler(root string) *Reconciler {
	return &Reconciler{root: root}
}

// FollowerSet reconstructs the cumulative follower id set of a user from
// all prior runs
func (r *Reconciler) FollowerSet(userID string) (map[string]struct{}, error) {
	return r.replayDeltas(SectionFollowers, userID)
}

// FolloweeSet reconstructs the cumulative followee id set of a user from
// all prior runs
func (r *Reconciler) FolloweeSet(userID string) (map[string]struct{}, error) {
	return r.replayDeltas(SectionFollowees, userID)
}

// replayDeltas walks run directories newest first and, for each delta
// record found for the user, unions the added set then removes the
// subtracted set from the accumulator.
func (r *Reconciler) replayDeltas(section, userID string) (map[string]struct{}, error) {
	acc := make(map[string]struct{})

	for _, run := range r.runDirs() {
		file := filepath.Join(r.root, run, "twitter", section, userID+".json")

		data, err := os.ReadFile(file)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read delta record %s: %w", file, err)
		}

		var record DeltaRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to parse delta record %s: %w", file, err)
		}

		for _, id := range record.Added {
			acc[id] = struct{}{}
		}
		for _, id := range record.Subtracted {
			delete(acc, id)
		}
	}

	return acc, nil
}

// LastTweetID returns the id of the most recent tweet recorded for a
// user across all runs, from the newest timeline file that exists.
// The second return is false when no timeline has ever been recorded.
func (r *Reconciler) LastTweetID(userID string) (string, bool, error) {
	for _, run := range r.runDirs() {
		file := filepath.Join(r.root, run, "twitter", SectionTimelines, userID+".json")

		data, err := os.ReadFile(file)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to read timeline %s: %w", file, err)
		}

		var tweets []json.RawMessage
		if err := json.Unmarshal(data, &tweets); err != nil {
			return "", false, fmt.Errorf("failed to parse timeline %s: %w", file, err)
		}
		if len(tweets) == 0 {
			continue
		}

		// Timelines are stored newest first, the head is the latest tweet
		var head struct {
			IDStr string `json:"id_str"`
			ID    int64  `json:"id"`
		}
		if err := json.Unmarshal(tweets[0], &head); err != nil {
			return "", false, fmt.Errorf("failed to parse tweet in %s: %w", file, err)
		}

		if head.IDStr != "" {
			return head.IDStr, true, nil
		}
		if head.ID != 0 {
			return strconv.FormatInt(head.ID, 10), true, nil
		}
		return "", false, fmt.Errorf("timeline %s head tweet has no id", file)
	}

	return "", false, nil
}

// runDirs lists run directories under the root, newest first. Plain
// files next to the run directories (the ignore list) are skipped.
func (r *Reconciler) runDirs() []string {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	return dirs
}
