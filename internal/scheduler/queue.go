package scheduler

import (
	"sync"

	"twsnap/pkg/logger"
)

// CompletionChecker reports whether a task's output already exists on
// disk. The snapshot store satisfies this through its Exists check.
type CompletionChecker interface {
	Completed(kind Kind, objectID string) bool
}

// CompletionCheckerFunc adapts a function to the CompletionChecker interface
type CompletionCheckerFunc func(kind Kind, objectID string) bool

func (f CompletionCheckerFunc) Completed(kind Kind, objectID string) bool {
	return f(kind, objectID)
}

// Queue is a FIFO of pending fetch tasks with a per-kind pending set
// for dedup. An (objectID, kind) pair sits in the pending set from the
// moment it is enqueued until the worker that executed it calls
// MarkDone, success or failure alike. Tasks are enqueued in whole
// batches before a drain starts; Dequeue and MarkDone are called
// concurrently by the workers.
type Queue struct {
	mu        sync.Mutex
	tasks     []Task
	pending   map[Kind]map[string]struct{}
	completed CompletionChecker
	logger    logger.Logger
}

// NewQueue creates an empty task queue. The completion checker gates
// enqueueing: a task whose output already exists is never admitted.
func NewQueue(completed CompletionChecker, log logger.Logger) *Queue {
	if log == nil {
		log = logger.GetLogger()
	}

	pending := make(map[Kind]map[string]struct{}, len(Kinds))
	for _, kind := range Kinds {
		pending[kind] = make(map[string]struct{})
	}

	return &Queue{
		pending:   pending,
		completed: completed,
		logger:    log,
	}
}

// EnqueueIfNew adds a task unless its output already exists or the same
// (objectID, kind) pair is already pending. Idempotent: enqueueing the
// same pair twice before a drain yields exactly one task. Returns
// whether the task was admitted.
func (q *Queue) EnqueueIfNew(objectID string, kind Kind) bool {
	if q.completed != nil && q.completed.Completed(kind, objectID) {
		q.logger.DebugWithFields("Task output already exists, skipping", map[string]interface{}{
			"kind":      kind.String(),
			"object_id": objectID,
		})
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.pending[kind][objectID]; ok {
		return false
	}

	q.pending[kind][objectID] = struct{}{}
	q.tasks = append(q.tasks, Task{ObjectID: objectID, Kind: kind})
	return true
}

// Dequeue pops the oldest pending task. The second return is false when
// the queue is empty. Safe for concurrent callers; the dequeued task
// stays in the pending set until MarkDone.
func (q *Queue) Dequeue() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return Task{}, false
	}

	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	return task, true
}

// MarkDone removes a task from its kind's pending set. Idempotent;
// called by the executing worker exactly once per task regardless of
// the task's outcome.
func (q *Queue) MarkDone(objectID string, kind Kind) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.pending[kind], objectID)
}

// Pending returns the number of not-yet-completed tasks of one kind
func (q *Queue) Pending(kind Kind) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending[kind])
}

// Len returns the number of tasks waiting in the queue
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}
