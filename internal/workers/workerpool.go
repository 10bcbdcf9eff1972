package workers

import (
	"sync"
)

// WorkerPool runs jobs on a fixed number of goroutines fed by a bounded queue.
// Jobs submitted while the queue is full, or after Stop, are rejected.
type WorkerPool struct {
	jobCh chan func()
	wg    sync.WaitGroup

	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewWorkerPool initializes a worker pool with a fixed number of workers.
func NewWorkerPool(workerCount, jobBufferSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	wp := &WorkerPool{
		jobCh: make(chan func(), jobBufferSize),
	}
	for i := 0; i < workerCount; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	for job := range wp.jobCh {
		job()
	}
}

// AddJob enqueues a job without blocking and reports whether it was accepted.
func (wp *WorkerPool) AddJob(job func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.stopped {
		return false
	}

	wp.wg.Add(1)
	select {
	case wp.jobCh <- func() {
		defer wp.wg.Done()
		job()
	}:
		return true
	default: // Drop the job if queue is full
		wp.wg.Done()
		return false
	}
}

// Wait blocks until all accepted jobs are completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop rejects new jobs, drains the queue and waits for the workers to finish it.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		wp.mu.Lock()
		wp.stopped = true
		close(wp.jobCh)
		wp.mu.Unlock()
		wp.wg.Wait()
	})
}
