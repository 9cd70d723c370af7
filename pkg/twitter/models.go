package twitter

import "encoding/json"

// User holds the subset of an account's identity the crawler inspects
type User struct {
	IDStr          string `json:"id_str"`
	ScreenName     string `json:"screen_name"`
	FollowersCount int    `json:"followers_count"`
	FriendsCount   int    `json:"friends_count"`
}

// Tweet holds the subset of a tweet the crawler inspects. Raw retains
// the full API payload so snapshots keep every field the API returned.
type Tweet struct {
	IDStr string `json:"id_str"`
	Text  string `json:"text"`
	User  User   `json:"user"`

	Raw json.RawMessage `json:"-"`
}

// idPage is one page of a cursored id listing (followers/ids, friends/ids)
type idPage struct {
	IDs           []string `json:"ids"`
	NextCursorStr string   `json:"next_cursor_str"`
}

// decodeTweet parses a raw API tweet payload, retaining the raw bytes
func decodeTweet(raw json.RawMessage) (Tweet, error) {
	var tweet Tweet
	if err := json.Unmarshal(raw, &tweet); err != nil {
		return Tweet{}, err
	}
	tweet.Raw = raw
	return tweet, nil
}

// decodeTweets parses an array of raw API tweet payloads
func decodeTweets(data []byte) ([]Tweet, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}

	tweets := make([]Tweet, 0, len(raws))
	for _, raw := range raws {
		tweet, err := decodeTweet(raw)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, tweet)
	}
	return tweets, nil
}
