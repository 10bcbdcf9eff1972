package workers

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsJobs(t *testing.T) {
	wp := NewWorkerPool(2, 16)
	defer wp.Stop()

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		if !wp.AddJob(func() { ran.Add(1) }) {
			t.Fatalf("job %d rejected with spare capacity", i)
		}
	}
	wp.Wait()

	if got := ran.Load(); got != 10 {
		t.Fatalf("expected 10 jobs to run, got %d", got)
	}
}

func TestWorkerPoolDropsWhenFull(t *testing.T) {
	wp := NewWorkerPool(1, 1)

	block := make(chan struct{})
	started := make(chan struct{})
	if !wp.AddJob(func() { close(started); <-block }) {
		t.Fatalf("first job rejected")
	}
	<-started

	if !wp.AddJob(func() {}) {
		t.Fatalf("queued job rejected while the buffer had room")
	}
	if wp.AddJob(func() {}) {
		t.Fatalf("expected job to be dropped when the queue is full")
	}

	close(block)
	wp.Stop()
}

func TestWorkerPoolRejectsAfterStop(t *testing.T) {
	wp := NewWorkerPool(1, 4)
	wp.Stop()
	wp.Stop()

	if wp.AddJob(func() {}) {
		t.Fatalf("expected job to be rejected after Stop")
	}
}
