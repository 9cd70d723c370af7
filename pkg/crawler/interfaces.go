package crawler

import "twsnap/pkg/twitter"

// APIClient is the fetch capability of one credential. *twitter.Client
// implements it; tests substitute fakes.
type APIClient interface {
	// Label identifies the credential for logging
	Label() string

	// GetUser fetches the identity of one account
	GetUser(userID string) (*twitter.User, error)

	// GetTweet fetches one tweet with its raw payload retained
	GetTweet(tweetID string) (*twitter.Tweet, error)

	// Retweets fetches up to limit of the most recent retweets of a tweet
	Retweets(tweetID string, limit int) ([]twitter.Tweet, error)

	// FollowerIDs fetches the complete current follower id set of an account
	FollowerIDs(userID string) ([]string, error)

	// FriendIDs fetches the complete current followee id set of an account
	FriendIDs(userID string) ([]string, error)

	// Timeline fetches an account's tweets newer than sinceID, newest
	// first; all available tweets when sinceID is empty
	Timeline(userID, sinceID string) ([]twitter.Tweet, error)
}
