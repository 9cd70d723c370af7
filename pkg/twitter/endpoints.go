package twitter

import (
	"fmt"
	"net/url"
	"strconv"
)

// API endpoints for the Twitter v1.1 REST API
const (
	BaseURL = "https://api.twitter.com/1.1"

	RequestTokenURL   = "https://api.twitter.com/oauth/request_token"
	AuthorizeTokenURL = "https://api.twitter.com/oauth/authorize"
	AccessTokenURL    = "https://api.twitter.com/oauth/access_token"
)

func userShowURL(base, userID string) string {
	v := url.Values{}
	v.Set("user_id", userID)
	return fmt.Sprintf("%s/users/show.json?%s", base, v.Encode())
}

func statusShowURL(base, tweetID string) string {
	v := url.Values{}
	v.Set("id", tweetID)
	return fmt.Sprintf("%s/statuses/show.json?%s", base, v.Encode())
}

func retweetsURL(base, tweetID string, count int) string {
	v := url.Values{}
	v.Set("count", strconv.Itoa(count))
	return fmt.Sprintf("%s/statuses/retweets/%s.json?%s", base, tweetID, v.Encode())
}

func followerIDsURL(base, userID, cursor string) string {
	return cursoredIDsURL(base+"/followers/ids.json", userID, cursor)
}

func friendIDsURL(base, userID, cursor string) string {
	return cursoredIDsURL(base+"/friends/ids.json", userID, cursor)
}

func cursoredIDsURL(endpoint, userID, cursor string) string {
	v := url.Values{}
	v.Set("user_id", userID)
	v.Set("stringify_ids", "true")
	v.Set("count", "5000")
	if cursor != "" {
		v.Set("cursor", cursor)
	}
	return fmt.Sprintf("%s?%s", endpoint, v.Encode())
}

func timelineURL(base, userID, sinceID, maxID string) string {
	v := url.Values{}
	v.Set("user_id", userID)
	v.Set("count", "200")
	v.Set("include_rts", "true")
	if sinceID != "" {
		v.Set("since_id", sinceID)
	}
	if maxID != "" {
		v.Set("max_id", maxID)
	}
	return fmt.Sprintf("%s/statuses/user_timeline.json?%s", base, v.Encode())
}
