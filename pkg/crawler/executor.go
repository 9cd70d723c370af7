package crawler

import (
	"encoding/json"
	"fmt"
	"sort"

	"twsnap/internal/scheduler"
	"twsnap/pkg/ignore"
	"twsnap/pkg/logger"
	"twsnap/pkg/snapshot"
)

// executor binds one credential's client to the per-kind fetch
// handlers. One executor runs on one worker goroutine at a time, so it
// needs no locking of its own; the store and gate it shares with the
// other executors are concurrency safe.
type executor struct {
	client       APIClient
	store        *snapshot.Store
	reconciler   *snapshot.Reconciler
	gate         *ignore.Gate
	retweetLimit int
	logger       logger.Logger
}

// Execute dispatches a task to its kind's handler
func (e *executor) Execute(task scheduler.Task) error {
	switch task.Kind {
	case scheduler.KindTweetDetails:
		return e.fetchTweetDetails(task.ObjectID)
	case scheduler.KindRetweets:
		return e.fetchRetweets(task.ObjectID)
	case scheduler.KindFollowers:
		return e.fetchFollowers(task.ObjectID)
	case scheduler.KindFollowees:
		return e.fetchFollowees(task.ObjectID)
	case scheduler.KindTimeline:
		return e.fetchTimeline(task.ObjectID)
	default:
		return fmt.Errorf("unknown task kind %d", task.Kind)
	}
}

// fetchTweetDetails persists the raw payload of one tweet
func (e *executor) fetchTweetDetails(tweetID string) error {
	tweet, err := e.client.GetTweet(tweetID)
	if err != nil {
		return fmt.Errorf("failed to fetch tweet %s: %w", tweetID, err)
	}

	if err := e.store.WriteJSON(snapshot.SectionTweetDetails, tweetID, tweet.Raw); err != nil {
		return err
	}

	e.logger.DebugWithFields("Stored tweet details", map[string]interface{}{
		"tweet_id":   tweetID,
		"author_id":  tweet.User.IDStr,
		"credential": e.client.Label(),
	})
	return nil
}

// fetchRetweets persists the most recent retweets of one tweet. An
// empty result still writes a file: "fetched and found none" must
// survive the run so the tweet is not re-enqueued.
func (e *executor) fetchRetweets(tweetID string) error {
	retweets, err := e.client.Retweets(tweetID, e.retweetLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch retweets of %s: %w", tweetID, err)
	}

	raws := make([]json.RawMessage, 0, len(retweets))
	for _, rt := range retweets {
		raws = append(raws, rt.Raw)
	}

	if err := e.store.WriteJSON(snapshot.SectionRetweets, tweetID, raws); err != nil {
		return err
	}

	e.logger.DebugWithFields("Stored retweets", map[string]interface{}{
		"tweet_id":   tweetID,
		"count":      len(raws),
		"credential": e.client.Label(),
	})
	return nil
}

// fetchFollowers records the follower delta of one user against the
// reconstructed prior cumulative state
func (e *executor) fetchFollowers(userID string) error {
	return e.fetchNetwork(userID, snapshot.SectionFollowers,
		e.reconciler.FollowerSet, e.client.FollowerIDs)
}

// fetchFollowees records the followee delta of one user
func (e *executor) fetchFollowees(userID string) error {
	return e.fetchNetwork(userID, snapshot.SectionFollowees,
		e.reconciler.FolloweeSet, e.client.FriendIDs)
}

// fetchNetwork is the shared follower/followee handler: gate on the
// identity, fetch the full current id set, diff against reconstructed
// prior state and persist the delta record.
func (e *executor) fetchNetwork(userID, section string,
	prior func(string) (map[string]struct{}, error),
	current func(string) ([]string, error)) error {

	user, err := e.client.GetUser(userID)
	if err != nil {
		return fmt.Errorf("failed to fetch identity of %s: %w", userID, err)
	}

	ignored, err := e.gate.Check(user)
	if err != nil {
		return err
	}
	if ignored {
		return nil
	}

	priorSet, err := prior(user.IDStr)
	if err != nil {
		return err
	}

	currentIDs, err := current(user.IDStr)
	if err != nil {
		return fmt.Errorf("failed to fetch %s of %s: %w", section, userID, err)
	}

	record := diff(currentIDs, priorSet)
	if err := e.store.WriteJSON(section, user.IDStr, record); err != nil {
		return err
	}

	e.logger.InfoWithFields("Stored network delta", map[string]interface{}{
		"section":    section,
		"user_id":    user.IDStr,
		"current":    len(currentIDs),
		"added":      len(record.Added),
		"subtracted": len(record.Subtracted),
		"credential": e.client.Label(),
	})
	return nil
}

// fetchTimeline persists the tweets a user posted since the last
// recorded one. Zero new tweets write no file, so a later run's
// reconciliation falls through to the next older timeline snapshot.
func (e *executor) fetchTimeline(userID string) error {
	user, err := e.client.GetUser(userID)
	if err != nil {
		return fmt.Errorf("failed to fetch identity of %s: %w", userID, err)
	}

	ignored, err := e.gate.Check(user)
	if err != nil {
		return err
	}
	if ignored {
		return nil
	}

	sinceID, _, err := e.reconciler.LastTweetID(user.IDStr)
	if err != nil {
		return err
	}

	tweets, err := e.client.Timeline(user.IDStr, sinceID)
	if err != nil {
		return fmt.Errorf("failed to fetch timeline of %s: %w", userID, err)
	}

	if len(tweets) == 0 {
		e.logger.DebugWithFields("No new tweets, skipping timeline file", map[string]interface{}{
			"user_id":  user.IDStr,
			"since_id": sinceID,
		})
		return nil
	}

	raws := make([]json.RawMessage, 0, len(tweets))
	for _, tweet := range tweets {
		raws = append(raws, tweet.Raw)
	}

	if err := e.store.WriteJSON(snapshot.SectionTimelines, user.IDStr, raws); err != nil {
		return err
	}

	e.logger.InfoWithFields("Stored timeline", map[string]interface{}{
		"user_id":    user.IDStr,
		"count":      len(raws),
		"since_id":   sinceID,
		"credential": e.client.Label(),
	})
	return nil
}

// diff computes the delta record between the freshly fetched id set and
// the reconstructed prior state. Output is sorted for stable files.
func diff(currentIDs []string, prior map[string]struct{}) snapshot.DeltaRecord {
	currentSet := make(map[string]struct{}, len(currentIDs))
	for _, id := range currentIDs {
		currentSet[id] = struct{}{}
	}

	record := snapshot.DeltaRecord{
		Added:      []string{},
		Subtracted: []string{},
	}
	for id := range currentSet {
		if _, ok := prior[id]; !ok {
			record.Added = append(record.Added, id)
		}
	}
	for id := range prior {
		if _, ok := currentSet[id]; !ok {
			record.Subtracted = append(record.Subtracted, id)
		}
	}

	sort.Strings(record.Added)
	sort.Strings(record.Subtracted)
	return record
}
