package twitter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mrjones/oauth"
	"twsnap/pkg/config"
	"twsnap/pkg/logger"
	"twsnap/pkg/ratelimit"
)

// Client is a Twitter API client bound to one rate-limited credential.
// It is safe for use by a single worker at a time.
type Client struct {
	httpClient *http.Client
	baseURL    string
	label      string
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates an API client for one credential. The returned client
// signs every request with the credential's OAuth1 keys.
func NewClient(cred config.CredentialConfig, timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	consumer := oauth.NewConsumer(cred.ConsumerKey, cred.ConsumerSecret, oauth.ServiceProvider{
		RequestTokenUrl:   RequestTokenURL,
		AuthorizeTokenUrl: AuthorizeTokenURL,
		AccessTokenUrl:    AccessTokenURL,
	})
	consumer.HttpClient = &http.Client{
		Timeout: timeout,
	}

	token := oauth.AccessToken{
		Token:  cred.AccessToken,
		Secret: cred.AccessTokenSecret,
	}

	httpClient, err := consumer.MakeHttpClient(&token)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth client: %w", err)
	}
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    BaseURL,
		label:      cred.Label,
		limiter:    limiter,
		logger:     log,
	}, nil
}

// Label returns the configured label for this credential
func (c *Client) Label() string {
	return c.label
}

// SetBaseURL overrides the API base URL, pointing the client at a
// different host such as a test server
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// get performs a rate-limited GET and returns the response body
func (c *Client) get(rawurl string) ([]byte, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		logger.LogRateLimit(c.label, int(time.Minute.Seconds()))
		c.limiter.Wait()
	}

	start := time.Now()
	resp, err := c.httpClient.Get(rawurl)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}
	defer resp.Body.Close()

	logger.LogRequest(http.MethodGet, rawurl, resp.StatusCode, float64(time.Since(start).Milliseconds()))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Type:    classifyStatus(resp.StatusCode),
			Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200)),
			Code:    resp.StatusCode,
		}
	}

	return body, nil
}

// getJSON performs a GET and decodes the response into out
func (c *Client) getJSON(rawurl string, out interface{}) error {
	body, err := c.get(rawurl)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("failed to decode response: %v", err),
			Code:    http.StatusOK,
		}
	}
	return nil
}

// GetUser fetches the identity of one account
func (c *Client) GetUser(userID string) (*User, error) {
	var user User
	if err := c.getJSON(userShowURL(c.baseURL, userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetTweet fetches one tweet with its full raw payload retained
func (c *Client) GetTweet(tweetID string) (*Tweet, error) {
	body, err := c.get(statusShowURL(c.baseURL, tweetID))
	if err != nil {
		return nil, err
	}

	tweet, err := decodeTweet(body)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("failed to decode tweet: %v", err),
			Code:    http.StatusOK,
		}
	}
	return &tweet, nil
}

// Retweets fetches up to limit of the most recent retweets of a tweet
func (c *Client) Retweets(tweetID string, limit int) ([]Tweet, error) {
	body, err := c.get(retweetsURL(c.baseURL, tweetID, limit))
	if err != nil {
		return nil, err
	}

	tweets, err := decodeTweets(body)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("failed to decode retweets: %v", err),
			Code:    http.StatusOK,
		}
	}
	return tweets, nil
}

// FollowerIDs fetches the complete current follower id set of an account,
// following the cursor until exhausted. The result is unbounded.
func (c *Client) FollowerIDs(userID string) ([]string, error) {
	return c.cursoredIDs(userID, func(cursor string) string {
		return followerIDsURL(c.baseURL, userID, cursor)
	})
}

// FriendIDs fetches the complete current followee id set of an account
func (c *Client) FriendIDs(userID string) ([]string, error) {
	return c.cursoredIDs(userID, func(cursor string) string {
		return friendIDsURL(c.baseURL, userID, cursor)
	})
}

// cursoredIDs drains a cursored id listing endpoint page by page
func (c *Client) cursoredIDs(userID string, urlFor func(cursor string) string) ([]string, error) {
	var ids []string
	cursor := "-1"

	for {
		var page idPage
		if err := c.getJSON(urlFor(cursor), &page); err != nil {
			return nil, err
		}

		ids = append(ids, page.IDs...)

		c.logger.DebugWithFields("Fetched id page", map[string]interface{}{
			"user_id":     userID,
			"page_size":   len(page.IDs),
			"next_cursor": page.NextCursorStr,
			"total":       len(ids),
		})

		if page.NextCursorStr == "" || page.NextCursorStr == "0" {
			return ids, nil
		}
		cursor = page.NextCursorStr
	}
}

// Timeline fetches the tweets of an account, newest first. When sinceID is
// non-empty only tweets with a greater id are returned; otherwise the
// entire available timeline is fetched. Pagination walks backwards with
// max_id until a page comes back empty.
func (c *Client) Timeline(userID, sinceID string) ([]Tweet, error) {
	var all []Tweet
	maxID := ""

	for {
		body, err := c.get(timelineURL(c.baseURL, userID, sinceID, maxID))
		if err != nil {
			return nil, err
		}

		page, err := decodeTweets(body)
		if err != nil {
			return nil, &Error{
				Type:    ErrorTypeParsing,
				Message: fmt.Sprintf("failed to decode timeline: %v", err),
				Code:    http.StatusOK,
			}
		}

		if len(page) == 0 {
			return all, nil
		}

		all = append(all, page...)

		c.logger.DebugWithFields("Fetched timeline page", map[string]interface{}{
			"user_id":   userID,
			"page_size": len(page),
			"total":     len(all),
		})

		oldest := page[len(page)-1].IDStr
		oldestNum, err := strconv.ParseInt(oldest, 10, 64)
		if err != nil {
			return nil, &Error{
				Type:    ErrorTypeParsing,
				Message: fmt.Sprintf("non-numeric tweet id %q", oldest),
				Code:    http.StatusOK,
			}
		}
		// max_id is inclusive, step below the oldest tweet seen
		maxID = strconv.FormatInt(oldestNum-1, 10)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
