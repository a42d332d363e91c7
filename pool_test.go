package offload

import (
	"context"
	"sync"
	"testing"
	"time"
)

func startedPool[I, O any](t *testing.T, fn Func[I, O], opts ...Option) *Pool[I, O] {
	t.Helper()

	p := NewPool(fn, opts...)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return p
}

func TestPool_Construction(t *testing.T) {
	t.Run("default worker count", func(t *testing.T) {
		p := NewPool(func(n int) int { return n })
		if p.WorkerCount() != DefaultWorkerCount {
			t.Errorf("expected %d workers, got %d", DefaultWorkerCount, p.WorkerCount())
		}
	})

	t.Run("configured worker count", func(t *testing.T) {
		p := NewPool(func(n int) int { return n }, WithWorkerCount(3))
		if p.WorkerCount() != 3 {
			t.Errorf("expected 3 workers, got %d", p.WorkerCount())
		}
	})

	t.Run("non-positive worker count ignored", func(t *testing.T) {
		p := NewPool(func(n int) int { return n }, WithWorkerCount(0))
		if p.WorkerCount() != DefaultWorkerCount {
			t.Errorf("expected default, got %d", p.WorkerCount())
		}
	})

	t.Run("double start fails", func(t *testing.T) {
		p := startedPool(t, func(n int) int { return n })
		defer p.ForceShutdown()

		if err := p.Start(context.Background()); err != ErrAlreadyStarted {
			t.Errorf("expected ErrAlreadyStarted, got %v", err)
		}
	})
}

func TestPool_RoundRobin(t *testing.T) {
	t.Run("cursor cycles through worker indices", func(t *testing.T) {
		p := NewPool(func(n int) int { return n }, WithWorkerCount(4))

		want := []int64{0, 1, 2, 3, 0, 1, 2, 3, 0}
		for i, exp := range want {
			if got := p.next(); got != exp {
				t.Fatalf("send %d: expected worker %d, got %d", i, exp, got)
			}
		}
	})

	t.Run("input k lands on workers[k mod n]", func(t *testing.T) {
		gate := make(chan struct{})
		p := startedPool(t, func(n int) int {
			<-gate
			return n
		}, WithWorkerCount(4))

		// Each worker picks up its first input and blocks in the
		// function, leaving exactly its second input queued.
		for i := 0; i < 8; i++ {
			p.Send(i)
		}

		deadline := time.Now().Add(2 * time.Second)
		for {
			queued := true
			for _, w := range p.workers {
				if w.mbox.Len() != 1 {
					queued = false
				}
			}
			if queued {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("inputs were not distributed one per worker")
			}
			time.Sleep(time.Millisecond)
		}

		close(gate)
		p.Shutdown()
		if got := drain(t, p.Out(), 2*time.Second); len(got) != 8 {
			t.Fatalf("expected 8 results, got %d", len(got))
		}
	})
}

func TestPool_Merge(t *testing.T) {
	t.Run("multiset of outputs matches inputs", func(t *testing.T) {
		p := startedPool(t, func(n int) int { return n }, WithWorkerCount(4))

		for i := 0; i < 8; i++ {
			p.Send(i)
		}
		p.Shutdown()

		got := drain(t, p.Out(), 2*time.Second)
		if len(got) != 8 {
			t.Fatalf("expected 8 results, got %d", len(got))
		}
		seen := map[int]int{}
		for _, r := range got {
			if r.Err != nil {
				t.Fatalf("unexpected error: %v", r.Err)
			}
			seen[r.Value]++
		}
		for i := 0; i < 8; i++ {
			if seen[i] != 1 {
				t.Errorf("input %d: expected exactly one result, got %d", i, seen[i])
			}
		}
	})

	t.Run("single worker pool preserves order", func(t *testing.T) {
		p := startedPool(t, func(n int) int { return n }, WithWorkerCount(1))

		p.SendAll([]int{1, 2, 3, 4, 5})
		p.Shutdown()

		got := drain(t, p.Out(), 2*time.Second)
		want := []int{1, 2, 3, 4, 5}
		if len(got) != len(want) {
			t.Fatalf("expected %d results, got %d", len(want), len(got))
		}
		for i, r := range got {
			if r.Value != want[i] {
				t.Errorf("result %d: expected %d, got %d", i, want[i], r.Value)
			}
		}
	})

	t.Run("stream closes after all workers drain", func(t *testing.T) {
		p := startedPool(t, func(n int) int { return n }, WithWorkerCount(4))
		p.SendAll([]int{1, 2, 3})
		p.Shutdown()

		drain(t, p.Out(), 2*time.Second) // fails the test if it never closes
	})
}

func TestPool_Shutdown(t *testing.T) {
	t.Run("force shutdown closes merged stream", func(t *testing.T) {
		block := make(chan struct{})
		defer close(block)
		p := startedPool(t, func(n int) int {
			<-block
			return n
		}, WithWorkerCount(2))

		for i := 0; i < 10; i++ {
			p.Send(i)
		}
		p.ForceShutdown()

		drain(t, p.Out(), 2*time.Second)
	})

	t.Run("force shutdown is idempotent", func(t *testing.T) {
		p := startedPool(t, func(n int) int { return n }, WithWorkerCount(2))
		p.ForceShutdown()
		p.ForceShutdown()
		drain(t, p.Out(), 2*time.Second)
	})

	t.Run("sends after shutdown produce nothing", func(t *testing.T) {
		p := startedPool(t, func(n int) int { return n }, WithWorkerCount(2))
		p.SendAll([]int{1, 2})
		p.Shutdown()
		p.SendAll([]int{8, 9})

		got := drain(t, p.Out(), 2*time.Second)
		if len(got) != 2 {
			t.Fatalf("expected 2 results, got %d", len(got))
		}
	})
}

func TestPool_ConcurrentSenders(t *testing.T) {
	const (
		senders = 4
		each    = 100
	)

	p := startedPool(t, func(n int) int { return n }, WithWorkerCount(4))

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				p.Send(base*each + i)
			}
		}(s)
	}
	wg.Wait()
	p.Shutdown()

	got := drain(t, p.Out(), 5*time.Second)
	if len(got) != senders*each {
		t.Fatalf("expected %d results, got %d", senders*each, len(got))
	}
	seen := map[int]bool{}
	for _, r := range got {
		if seen[r.Value] {
			t.Fatalf("duplicate result %d", r.Value)
		}
		seen[r.Value] = true
	}
}

func BenchmarkPoolThroughput(b *testing.B) {
	p := NewPool(func(n int) int { return n * n }, WithWorkerCount(4))
	if err := p.Start(context.Background()); err != nil {
		b.Fatalf("start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range p.Out() {
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Send(i)
	}
	b.StopTimer()

	p.Shutdown()
	<-done
}
