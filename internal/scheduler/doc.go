// Package scheduler implements the crawl's task scheduling core: a
// bounded FIFO of heterogeneous fetch tasks drained by a pool of
// credential-bound workers.
//
// Scheduling works in phases. The orchestrator enqueues a whole batch
// of same-kind tasks, then runs the pool until the queue is empty and
// every worker has exited before enqueueing the next batch, so enqueue
// and dequeue never race by construction. Admission is idempotent:
// EnqueueIfNew refuses a task whose (object id, kind) pair is already
// pending or whose output file already exists on disk, which also makes
// re-running an interrupted collection safe — completed work is skipped,
// abandoned work is re-admitted.
//
// There is no retry, no priority ordering and no cross-host
// coordination; a failed task is simply absent from the run's output
// and gets re-attempted by the next run's presence check.
package scheduler
