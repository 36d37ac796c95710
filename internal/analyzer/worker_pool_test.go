package analyzer

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// occupy parks the pool's only worker on a gated job and fills the queue
// behind it. The returned func releases the gate.
func occupy(t *testing.T, pool *WorkerPool) func() {
	t.Helper()
	gate := make(chan struct{})
	running := make(chan struct{})
	if !pool.Submit(func() {
		close(running)
		<-gate
	}) {
		t.Fatal("Expected gated job to be accepted")
	}
	<-running
	for i := 0; i < cap(pool.jobQueue); i++ {
		if !pool.Submit(func() {}) {
			t.Fatal("Expected queued job to be accepted")
		}
	}
	return func() { close(gate) }
}

func TestNewWorkerPool_Workers(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{4, 4},
		{0, runtime.NumCPU()},
		{-3, runtime.NumCPU()},
	}
	for _, tt := range tests {
		pool := NewWorkerPool(tt.requested)
		if got := pool.GetStats().Workers; got != tt.want {
			t.Errorf("NewWorkerPool(%d): expected %d workers, got %d", tt.requested, tt.want, got)
		}
		if cap(pool.jobQueue) != tt.want*2 {
			t.Errorf("NewWorkerPool(%d): expected queue of %d, got %d", tt.requested, tt.want*2, cap(pool.jobQueue))
		}
	}
}

func TestWorkerPool_SubmitBlocksWhileQueueFull(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	defer pool.Close()

	release := occupy(t, pool)

	accepted := make(chan bool, 1)
	go func() { accepted <- pool.Submit(func() {}) }()

	select {
	case <-accepted:
		t.Fatal("Expected Submit to block while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	if !<-accepted {
		t.Error("Expected blocked Submit to be accepted once the queue drains")
	}
	pool.Wait()

	stats := pool.GetStats()
	want := int64(cap(pool.jobQueue) + 2)
	if stats.TotalJobs != want || stats.CompletedJobs != want {
		t.Errorf("Expected %d total and completed jobs, got %+v", want, stats)
	}
	if stats.ActiveWorkers != 0 {
		t.Errorf("Expected no active workers, got %d", stats.ActiveWorkers)
	}
}

// Each caller fans out a full analyzer suite and joins on its own
// WaitGroup, the way concurrent detections share one pool.
func TestWorkerPool_SharedByConcurrentCallers(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	defer pool.Close()

	const callers, jobsPerCaller = 6, 7
	results := make([][]int, callers)

	var callersDone sync.WaitGroup
	for c := 0; c < callers; c++ {
		c := c
		callersDone.Add(1)
		go func() {
			defer callersDone.Done()
			out := make([]int, jobsPerCaller)
			var jobs sync.WaitGroup
			for i := 0; i < jobsPerCaller; i++ {
				i := i
				jobs.Add(1)
				if !pool.Submit(func() {
					defer jobs.Done()
					out[i] = c*100 + i
				}) {
					jobs.Done()
				}
			}
			jobs.Wait()
			results[c] = out
		}()
	}
	callersDone.Wait()
	pool.Wait()

	for c, out := range results {
		for i, v := range out {
			if v != c*100+i {
				t.Errorf("Caller %d job %d: expected %d, got %d", c, i, c*100+i, v)
			}
		}
	}
	stats := pool.GetStats()
	if stats.TotalJobs != callers*jobsPerCaller || stats.CompletedJobs != callers*jobsPerCaller {
		t.Errorf("Expected %d jobs, got %+v", callers*jobsPerCaller, stats)
	}
}

func TestWorkerPool_CloseWaitsForInFlightSubmit(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()

	release := occupy(t, pool)
	queued := pool.GetStats().TotalJobs

	var ran bool
	accepted := make(chan bool, 1)
	go func() {
		accepted <- pool.Submit(func() { ran = true })
	}()
	// The counter moves once Submit holds the read lock
	waitFor(t, "in-flight submit", func() bool { return pool.GetStats().TotalJobs == queued+1 })

	closed := make(chan struct{})
	go func() {
		pool.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Expected Close to wait for the in-flight Submit")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	if !<-accepted {
		t.Error("Expected in-flight Submit to be accepted")
	}
	<-closed
	pool.Wait()

	if !ran {
		t.Error("Expected job accepted before Close to run")
	}
	if pool.Submit(func() {}) {
		t.Error("Expected Submit after Close to be rejected")
	}
	pool.Close()
}

func TestWorkerPool_StartTwice(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	pool.Start()
	defer pool.Close()

	done := make(chan struct{})
	pool.Submit(func() { close(done) })
	<-done
	pool.Wait()

	if stats := pool.GetStats(); stats.Workers != 1 || stats.CompletedJobs != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}
