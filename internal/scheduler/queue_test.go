package scheduler

import (
	"testing"
)

func TestQueueEnqueueDequeue(t *testing.T) {
	q := NewQueue(nil, nil)

	if !q.EnqueueIfNew("tweet1", KindTweetDetails) {
		t.Error("Expected first enqueue to be admitted")
	}
	if !q.EnqueueIfNew("tweet2", KindTweetDetails) {
		t.Error("Expected second object to be admitted")
	}
	if q.Len() != 2 {
		t.Errorf("Expected queue length 2, got %d", q.Len())
	}

	// FIFO order
	task, ok := q.Dequeue()
	if !ok {
		t.Fatal("Expected a task")
	}
	if task.ObjectID != "tweet1" {
		t.Errorf("Expected tweet1 first, got %s", task.ObjectID)
	}

	task, ok = q.Dequeue()
	if !ok {
		t.Fatal("Expected a second task")
	}
	if task.ObjectID != "tweet2" {
		t.Errorf("Expected tweet2 second, got %s", task.ObjectID)
	}

	if _, ok := q.Dequeue(); ok {
		t.Error("Expected empty queue")
	}
}

func TestQueueDedup(t *testing.T) {
	q := NewQueue(nil, nil)

	if !q.EnqueueIfNew("user1", KindFollowers) {
		t.Error("Expected first enqueue to be admitted")
	}
	if q.EnqueueIfNew("user1", KindFollowers) {
		t.Error("Expected duplicate enqueue to be rejected")
	}
	if q.Len() != 1 {
		t.Errorf("Expected queue length 1, got %d", q.Len())
	}

	// Same id under a different kind is a distinct task
	if !q.EnqueueIfNew("user1", KindFollowees) {
		t.Error("Expected same id with different kind to be admitted")
	}
}

func TestQueueDedupWhileInFlight(t *testing.T) {
	q := NewQueue(nil, nil)

	q.EnqueueIfNew("user1", KindTimeline)

	// Dequeued but not yet marked done: still pending, still deduped
	if _, ok := q.Dequeue(); !ok {
		t.Fatal("Expected a task")
	}
	if q.EnqueueIfNew("user1", KindTimeline) {
		t.Error("Expected in-flight task to block re-enqueue")
	}

	q.MarkDone("user1", KindTimeline)
	if !q.EnqueueIfNew("user1", KindTimeline) {
		t.Error("Expected re-enqueue to be admitted after MarkDone")
	}
}

func TestQueueCompletionCheck(t *testing.T) {
	done := map[string]bool{"tweet1": true}
	q := NewQueue(CompletionCheckerFunc(func(kind Kind, objectID string) bool {
		return done[objectID]
	}), nil)

	if q.EnqueueIfNew("tweet1", KindTweetDetails) {
		t.Error("Expected completed task to be rejected")
	}
	if !q.EnqueueIfNew("tweet2", KindTweetDetails) {
		t.Error("Expected uncompleted task to be admitted")
	}
}

func TestQueueMarkDoneIdempotent(t *testing.T) {
	q := NewQueue(nil, nil)

	q.EnqueueIfNew("user1", KindFollowers)
	q.Dequeue()

	q.MarkDone("user1", KindFollowers)
	q.MarkDone("user1", KindFollowers)

	if q.Pending(KindFollowers) != 0 {
		t.Errorf("Expected no pending tasks, got %d", q.Pending(KindFollowers))
	}
}

func TestQueuePendingPerKind(t *testing.T) {
	q := NewQueue(nil, nil)

	q.EnqueueIfNew("user1", KindFollowers)
	q.EnqueueIfNew("user2", KindFollowers)
	q.EnqueueIfNew("user1", KindTimeline)

	if q.Pending(KindFollowers) != 2 {
		t.Errorf("Expected 2 pending followers tasks, got %d", q.Pending(KindFollowers))
	}
	if q.Pending(KindTimeline) != 1 {
		t.Errorf("Expected 1 pending timeline task, got %d", q.Pending(KindTimeline))
	}
	if q.Pending(KindRetweets) != 0 {
		t.Errorf("Expected 0 pending retweets tasks, got %d", q.Pending(KindRetweets))
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindTweetDetails: "tweet_details",
		KindRetweets:     "retweets",
		KindFollowers:    "followers",
		KindFollowees:    "followees",
		KindTimeline:     "timeline",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
