package crawler

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"twsnap/internal/scheduler"
	"twsnap/pkg/config"
	"twsnap/pkg/ignore"
	"twsnap/pkg/logger"
	"twsnap/pkg/snapshot"
)

// Crawler orchestrates one collection run: it owns the run's snapshot
// store, the shared task queue and one executor per usable credential,
// and drives the phases in order.
type Crawler struct {
	cfg       *config.Config
	store     *snapshot.Store
	gate      *ignore.Gate
	queue     *scheduler.Queue
	executors []scheduler.Executor
	logger    logger.Logger
}

// New prepares a collection run: creates the timestamped snapshot
// directory tree, loads the ignore list and wires the queue's
// completion check to the store. Directory creation failures abort the
// run; everything later is per-task.
func New(cfg *config.Config, clients []APIClient, timestamp string) (*Crawler, error) {
	if len(clients) == 0 {
		return nil, errors.New("no usable API credentials")
	}

	log := logger.GetLogger().WithFields(map[string]interface{}{
		"run_id":        uuid.NewString(),
		"run_timestamp": timestamp,
	})

	store, err := snapshot.NewStore(cfg.Storage.RootDirectory, timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}

	list := ignore.NewList(filepath.Join(cfg.Storage.RootDirectory, ignore.ListFileName))
	known, err := list.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore list: %w", err)
	}
	gate := ignore.NewGate(list, cfg.Crawl.IgnoreThreshold, known, log)

	queue := scheduler.NewQueue(scheduler.CompletionCheckerFunc(func(kind scheduler.Kind, objectID string) bool {
		return store.Exists(kind.Section(), objectID)
	}), log)

	reconciler := snapshot.NewReconciler(cfg.Storage.RootDirectory)

	executors := make([]scheduler.Executor, 0, len(clients))
	for _, client := range clients {
		executors = append(executors, &executor{
			client:       client,
			store:        store,
			reconciler:   reconciler,
			gate:         gate,
			retweetLimit: cfg.Crawl.RetweetLimit,
			logger:       log.WithField("credential", client.Label()),
		})
	}

	return &Crawler{
		cfg:       cfg,
		store:     store,
		gate:      gate,
		queue:     queue,
		executors: executors,
		logger:    log,
	}, nil
}

// Run executes one full collection: tweet details, then retweets gated
// on which detail fetches succeeded and whose authors are not ignored,
// then the follower, followee and timeline phases for the configured
// users merged with the discovered tweet authors.
func (c *Crawler) Run(userIDs, tweetIDs []string) error {
	c.logger.InfoWithFields("Starting collection run", map[string]interface{}{
		"users":   len(userIDs),
		"tweets":  len(tweetIDs),
		"workers": len(c.executors),
	})

	authors, err := c.processTweets(tweetIDs)
	if err != nil {
		return err
	}

	users := mergeIDs(c.filterIgnored(userIDs), authors)
	c.processUsers(users)

	c.logger.InfoWithFields("Collection run finished", map[string]interface{}{
		"files_written": c.store.WrittenCount(),
	})
	return nil
}

// processTweets runs the tweet details phase, then the retweets phase
// for the tweets whose details were fetched and whose authors are not
// ignored. It returns those authors for the user phases.
func (c *Crawler) processTweets(tweetIDs []string) ([]string, error) {
	if len(tweetIDs) == 0 {
		return nil, nil
	}

	c.phase(scheduler.KindTweetDetails, tweetIDs)

	fetched, err := c.store.ListIDs(snapshot.SectionTweetDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to list fetched tweet details: %w", err)
	}

	var retweetIDs []string
	var authors []string
	for _, tweetID := range fetched {
		var detail struct {
			User struct {
				IDStr string `json:"id_str"`
			} `json:"user"`
		}
		if err := c.store.ReadJSON(snapshot.SectionTweetDetails, tweetID, &detail); err != nil {
			c.logger.WithError(err).WithField("tweet_id", tweetID).Warn("Skipping unreadable tweet details")
			continue
		}

		if detail.User.IDStr == "" || c.gate.Contains(detail.User.IDStr) {
			continue
		}
		retweetIDs = append(retweetIDs, tweetID)
		authors = append(authors, detail.User.IDStr)
	}

	c.phase(scheduler.KindRetweets, retweetIDs)

	return authors, nil
}

// processUsers runs the follower, followee and timeline phases for the
// given users, each phase fully drained before the next starts
func (c *Crawler) processUsers(userIDs []string) {
	if len(userIDs) == 0 {
		return
	}

	c.phase(scheduler.KindFollowers, userIDs)
	c.phase(scheduler.KindFollowees, userIDs)
	c.phase(scheduler.KindTimeline, userIDs)
}

// phase enqueues one batch of same-kind tasks and drains it. Enqueueing
// completes fully before any worker starts.
func (c *Crawler) phase(kind scheduler.Kind, objectIDs []string) {
	admitted := 0
	for _, id := range objectIDs {
		if c.queue.EnqueueIfNew(id, kind) {
			admitted++
		}
	}

	c.logger.InfoWithFields("Starting phase", map[string]interface{}{
		"kind":      kind.String(),
		"requested": len(objectIDs),
		"admitted":  admitted,
	})

	if admitted == 0 {
		return
	}

	scheduler.NewPool(c.queue, c.executors, c.logger).Run()
}

// filterIgnored drops user ids already on the ignore list
func (c *Crawler) filterIgnored(userIDs []string) []string {
	filtered := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if c.gate.Contains(id) {
			c.logger.DebugWithFields("Skipping ignored user", map[string]interface{}{
				"user_id": id,
			})
			continue
		}
		filtered = append(filtered, id)
	}
	return filtered
}

// mergeIDs unions two id lists preserving first-seen order
func mergeIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	return merged
}
