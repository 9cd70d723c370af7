package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// mockUser is the identity record served by the mock API
type mockUser struct {
	IDStr          string `json:"id_str"`
	ScreenName     string `json:"screen_name"`
	FollowersCount int    `json:"followers_count"`
	FriendsCount   int    `json:"friends_count"`
}

// mockTweet is a tweet record served by the mock API
type mockTweet struct {
	IDStr string   `json:"id_str"`
	Text  string   `json:"text"`
	User  mockUser `json:"user"`
}

// MockTwitterServer simulates the Twitter v1.1 REST endpoints the
// crawler uses, backed by mutable in-memory state so tests can change
// the social graph between runs.
type MockTwitterServer struct {
	server *httptest.Server

	mu        sync.RWMutex
	users     map[string]mockUser
	tweets    map[string]mockTweet
	retweets  map[string][]mockTweet
	followers map[string][]string
	friends   map[string][]string
	timelines map[string][]mockTweet

	requestCount int32
}

// NewMockTwitterServer creates a mock API server with empty state
func NewMockTwitterServer() *MockTwitterServer {
	m := &MockTwitterServer{
		users:     make(map[string]mockUser),
		tweets:    make(map[string]mockTweet),
		retweets:  make(map[string][]mockTweet),
		followers: make(map[string][]string),
		friends:   make(map[string][]string),
		timelines: make(map[string][]mockTweet),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users/show.json", m.handleUserShow)
	mux.HandleFunc("/statuses/show.json", m.handleStatusShow)
	mux.HandleFunc("/statuses/retweets/", m.handleRetweets)
	mux.HandleFunc("/followers/ids.json", m.handleFollowerIDs)
	mux.HandleFunc("/friends/ids.json", m.handleFriendIDs)
	mux.HandleFunc("/statuses/user_timeline.json", m.handleTimeline)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the mock server's base URL
func (m *MockTwitterServer) URL() string {
	return m.server.URL
}

// Close shuts the mock server down
func (m *MockTwitterServer) Close() {
	m.server.Close()
}

// RequestCount returns the number of API requests served so far
func (m *MockTwitterServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// AddUser registers a user identity
func (m *MockTwitterServer) AddUser(id string, followersCount, friendsCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = mockUser{
		IDStr:          id,
		ScreenName:     "user_" + id,
		FollowersCount: followersCount,
		FriendsCount:   friendsCount,
	}
}

// AddTweet registers a tweet authored by a previously added user
func (m *MockTwitterServer) AddTweet(id, authorID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tweets[id] = mockTweet{IDStr: id, Text: text, User: m.users[authorID]}
}

// SetRetweets sets the retweets of a tweet, each authored by the given user
func (m *MockTwitterServer) SetRetweets(tweetID string, retweeterIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rts []mockTweet
	for i, uid := range retweeterIDs {
		rts = append(rts, mockTweet{
			IDStr: fmt.Sprintf("rt_%s_%d", tweetID, i),
			Text:  "RT",
			User:  m.users[uid],
		})
	}
	m.retweets[tweetID] = rts
}

// SetFollowers replaces a user's follower id set
func (m *MockTwitterServer) SetFollowers(userID string, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followers[userID] = ids
}

// SetFriends replaces a user's followee id set
func (m *MockTwitterServer) SetFriends(userID string, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.friends[userID] = ids
}

// SetTimeline replaces a user's timeline, newest first
func (m *MockTwitterServer) SetTimeline(userID string, tweetIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tweets []mockTweet
	for _, id := range tweetIDs {
		tweets = append(tweets, mockTweet{IDStr: id, Text: "tweet " + id, User: m.users[userID]})
	}
	m.timelines[userID] = tweets
}

func (m *MockTwitterServer) handleUserShow(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	m.mu.RLock()
	user, ok := m.users[r.URL.Query().Get("user_id")]
	m.mu.RUnlock()

	if !ok {
		writeAPIError(w, http.StatusNotFound, "User not found.")
		return
	}
	json.NewEncoder(w).Encode(user)
}

func (m *MockTwitterServer) handleStatusShow(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	m.mu.RLock()
	tweet, ok := m.tweets[r.URL.Query().Get("id")]
	m.mu.RUnlock()

	if !ok {
		writeAPIError(w, http.StatusNotFound, "No status found with that ID.")
		return
	}
	json.NewEncoder(w).Encode(tweet)
}

func (m *MockTwitterServer) handleRetweets(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	// Path shape: /statuses/retweets/{id}.json
	name := strings.TrimPrefix(r.URL.Path, "/statuses/retweets/")
	tweetID := strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	rts := m.retweets[tweetID]
	m.mu.RUnlock()

	if rts == nil {
		rts = []mockTweet{}
	}
	json.NewEncoder(w).Encode(rts)
}

func (m *MockTwitterServer) handleFollowerIDs(w http.ResponseWriter, r *http.Request) {
	m.handleCursoredIDs(w, r, m.followers)
}

func (m *MockTwitterServer) handleFriendIDs(w http.ResponseWriter, r *http.Request) {
	m.handleCursoredIDs(w, r, m.friends)
}

// handleCursoredIDs serves an id listing in pages of two so the
// client's cursor loop is exercised
func (m *MockTwitterServer) handleCursoredIDs(w http.ResponseWriter, r *http.Request, source map[string][]string) {
	atomic.AddInt32(&m.requestCount, 1)

	m.mu.RLock()
	ids := source[r.URL.Query().Get("user_id")]
	m.mu.RUnlock()

	const pageSize = 2

	offset := 0
	if cursor := r.URL.Query().Get("cursor"); cursor != "" && cursor != "-1" {
		offset, _ = strconv.Atoi(cursor)
	}

	end := offset + pageSize
	if end > len(ids) {
		end = len(ids)
	}

	page := ids[offset:end]
	next := "0"
	if end < len(ids) {
		next = strconv.Itoa(end)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"ids":             page,
		"next_cursor_str": next,
	})
}

func (m *MockTwitterServer) handleTimeline(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	m.mu.RLock()
	timeline := m.timelines[r.URL.Query().Get("user_id")]
	m.mu.RUnlock()

	sinceID := parseID(r.URL.Query().Get("since_id"))
	maxID := parseID(r.URL.Query().Get("max_id"))

	result := []mockTweet{}
	for _, tweet := range timeline {
		id := parseID(tweet.IDStr)
		if sinceID > 0 && id <= sinceID {
			continue
		}
		if maxID > 0 && id > maxID {
			continue
		}
		result = append(result, tweet)
	}

	json.NewEncoder(w).Encode(result)
}

func parseID(s string) int64 {
	if s == "" {
		return 0
	}
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}

func writeAPIError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]interface{}{{"code": code, "message": message}},
	})
}
