package scheduler

import "twsnap/pkg/snapshot"

// Kind identifies the type of data a task fetches
type Kind int

const (
	KindTweetDetails Kind = iota
	KindRetweets
	KindFollowers
	KindFollowees
	KindTimeline
)

// Kinds lists every task kind
var Kinds = []Kind{
	KindTweetDetails,
	KindRetweets,
	KindFollowers,
	KindFollowees,
	KindTimeline,
}

func (k Kind) String() string {
	switch k {
	case KindTweetDetails:
		return "tweet_details"
	case KindRetweets:
		return "retweets"
	case KindFollowers:
		return "followers"
	case KindFollowees:
		return "followees"
	case KindTimeline:
		return "timeline"
	default:
		return "unknown"
	}
}

// Section returns the snapshot subdirectory this kind's output lands in
func (k Kind) Section() string {
	switch k {
	case KindTweetDetails:
		return snapshot.SectionTweetDetails
	case KindRetweets:
		return snapshot.SectionRetweets
	case KindFollowers:
		return snapshot.SectionFollowers
	case KindFollowees:
		return snapshot.SectionFollowees
	case KindTimeline:
		return snapshot.SectionTimelines
	default:
		return "unknown"
	}
}

// Task is one unit of work: fetch one object for one data kind.
// Immutable once created; uniqueness is enforced per (ObjectID, Kind)
// pair while the task is pending.
type Task struct {
	ObjectID string
	Kind     Kind
}
