package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	done := make(chan struct{}, 2)

	queue := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		seen[job.ID]++
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	if err := queue.Enqueue(Job{ID: "a"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := queue.Enqueue(Job{ID: "b"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if seen["a"] != 1 || seen["b"] != 1 {
		t.Fatalf("unexpected processing counts: %v", seen)
	}
}

func TestQueueRetriesFailedJob(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	queue := NewQueue("test", func(_ context.Context, _ Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()

	if err := queue.Enqueue(Job{ID: "flaky"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
}

func TestEnqueueFailsWhenFull(t *testing.T) {
	received := make(chan struct{}, 3)
	release := make(chan struct{})
	queue := NewQueue("test", func(_ context.Context, _ Job) error {
		received <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)
	defer queue.Stop()
	defer close(release)

	if err := queue.Enqueue(Job{ID: "busy"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the job")
	}

	// The worker is blocked, so this job parks in the buffer.
	if err := queue.Enqueue(Job{ID: "buffered"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := queue.Enqueue(Job{ID: "overflow"}); err == nil {
		t.Fatal("expected error when buffer is full")
	}
}

func TestEnqueueBeforeStart(t *testing.T) {
	queue := NewQueue("test", func(_ context.Context, _ Job) error { return nil }, QueueConfig{})
	if err := queue.Enqueue(Job{ID: "early"}); err == nil {
		t.Fatal("expected error before Start")
	}
}
