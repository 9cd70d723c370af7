package scheduler

import (
	"sync"
	"time"

	"twsnap/pkg/logger"
)

// Executor executes one task with one credential-bound client. The
// crawler builds one executor per usable credential.
type Executor interface {
	Execute(task Task) error
}

// Pool drains the queue with one worker goroutine per executor. Workers
// pull tasks until the queue is empty and then exit; Run returns only
// after every worker has exited, acting as the phase barrier.
type Pool struct {
	queue     *Queue
	executors []Executor
	logger    logger.Logger
}

// NewPool creates a worker pool over the given queue and executors
func NewPool(queue *Queue, executors []Executor, log logger.Logger) *Pool {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pool{
		queue:     queue,
		executors: executors,
		logger:    log,
	}
}

// Run drains the queue to exhaustion. A task failure is logged and the
// task abandoned for this run; it never stops the worker or the pool.
func (p *Pool) Run() {
	p.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": len(p.executors),
		"queued":      p.queue.Len(),
	})

	var wg sync.WaitGroup
	for i, exec := range p.executors {
		wg.Add(1)
		go p.worker(i, exec, &wg)
	}
	wg.Wait()

	p.logger.Info("Worker pool drained")
}

// worker is the main worker routine, draining the queue until empty
func (p *Pool) worker(id int, exec Executor, wg *sync.WaitGroup) {
	defer wg.Done()

	p.logger.DebugWithFields("Worker started", map[string]interface{}{
		"worker_id": id,
	})

	for {
		task, ok := p.queue.Dequeue()
		if !ok {
			p.logger.DebugWithFields("Worker stopping, queue empty", map[string]interface{}{
				"worker_id": id,
			})
			return
		}
		p.process(id, exec, task)
	}
}

// process runs one task. MarkDone is deferred so the pending set is
// cleared even when the executor fails or panics.
func (p *Pool) process(id int, exec Executor, task Task) {
	defer p.queue.MarkDone(task.ObjectID, task.Kind)

	start := time.Now()
	if err := exec.Execute(task); err != nil {
		p.logger.ErrorWithFields("Task failed, abandoning for this run", map[string]interface{}{
			"worker_id": id,
			"kind":      task.Kind.String(),
			"object_id": task.ObjectID,
			"error":     err.Error(),
			"duration":  time.Since(start),
		})
		return
	}

	p.logger.DebugWithFields("Task completed", map[string]interface{}{
		"worker_id": id,
		"kind":      task.Kind.String(),
		"object_id": task.ObjectID,
		"duration":  time.Since(start),
		"queued":    p.queue.Len(),
	})
}
