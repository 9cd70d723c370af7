package ignore

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"twsnap/pkg/logger"
	"twsnap/pkg/twitter"
)

// ListFileName is the ignore list file kept next to the run directories
const ListFileName = "user_ignore_list.txt"

// List is the persistent set of ignored user ids. The file is
// newline-delimited and append-only; duplicate lines are tolerated
// because the file is read once per run into a set.
type List struct {
	path string
	mu   sync.Mutex
}

// NewList creates a handle on the ignore list file at path
func NewList(path string) *List {
	return &List{path: path}
}

// Load reads the ignore list into a set. A missing file is an empty set.
func (l *List) Load() (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	file, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return ids, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore list: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore list: %w", err)
	}

	return ids, nil
}

// Append adds one user id to the ignore list file
func (l *List) Append(userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ignore list for append: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, userID); err != nil {
		return fmt.Errorf("failed to append to ignore list: %w", err)
	}
	return nil
}

// Gate excludes celebrity-scale accounts from expensive full-network
// fetches. An account whose follower or followee count strictly exceeds
// the threshold is appended to the persistent list and skipped for this
// and all future runs.
type Gate struct {
	list      *List
	threshold int
	known     map[string]struct{}
	mu        sync.RWMutex
	logger    logger.Logger
}

// NewGate creates a gate over the given list with the loaded set of
// already-ignored ids
func NewGate(list *List, threshold int, known map[string]struct{}, log logger.Logger) *Gate {
	if log == nil {
		log = logger.GetLogger()
	}
	if known == nil {
		known = make(map[string]struct{})
	}
	return &Gate{
		list:      list,
		threshold: threshold,
		known:     known,
		logger:    log,
	}
}

// Contains reports whether a user id was on the ignore list at load time
// or has been added during this run
func (g *Gate) Contains(userID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.known[userID]
	return ok
}

// Check applies the threshold to a fetched identity. When it trips, the
// id is appended to the persistent list exactly once per call and true
// is returned; the caller skips the account.
func (g *Gate) Check(user *twitter.User) (bool, error) {
	if user.FollowersCount <= g.threshold && user.FriendsCount <= g.threshold {
		return false, nil
	}

	g.logger.InfoWithFields("Ignoring high-degree account", map[string]interface{}{
		"user_id":   user.IDStr,
		"followers": user.FollowersCount,
		"followees": user.FriendsCount,
		"threshold": g.threshold,
	})

	if err := g.list.Append(user.IDStr); err != nil {
		return true, err
	}

	g.mu.Lock()
	g.known[user.IDStr] = struct{}{}
	g.mu.Unlock()

	return true, nil
}
