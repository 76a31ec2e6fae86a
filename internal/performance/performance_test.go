package performance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolSubmit(t *testing.T) {
	pool := NewWorkerPool(4)
	if pool.Submit(func() {}) {
		t.Error("Submit before Start should fail")
	}

	pool.Start()
	defer pool.Stop()

	var n atomic.Int64
	done := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		if !pool.Submit(func() { n.Add(1); done <- struct{}{} }) {
			t.Fatal("Submit failed")
		}
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	if n.Load() != 10 {
		t.Errorf("ran %d tasks", n.Load())
	}
	if s := pool.Stats(); s.Workers != 4 || s.TasksTotal != 10 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestRunIndexedKeepsOrder(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		pool := NewWorkerPool(workers)
		pool.Start()

		got, err := RunIndexed(context.Background(), pool, 200, func(_ context.Context, i int) (int, error) {
			return i * i, nil
		})
		pool.Stop()

		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		for i, v := range got {
			if v != i*i {
				t.Fatalf("workers=%d: result[%d] = %d", workers, i, v)
			}
		}
	}
}

func TestRunIndexedError(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Stop()

	boom := errors.New("boom")
	_, err := RunIndexed(context.Background(), pool, 50, func(_ context.Context, i int) (int, error) {
		if i == 7 {
			return 0, boom
		}
		return i, nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestBatchProcessor(t *testing.T) {
	var batches [][]int
	bp := NewBatchProcessor(3, func(items []int) error {
		batches = append(batches, append([]int(nil), items...))
		return nil
	})
	for i := 0; i < 7; i++ {
		if err := bp.Add(i); err != nil {
			t.Fatal(err)
		}
	}
	if err := bp.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(batches) != 3 || len(batches[2]) != 1 {
		t.Errorf("batches = %v", batches)
	}
}

func TestRunIndexedCancelled(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunIndexed(ctx, pool, 10, func(_ context.Context, i int) (int, error) {
		return i, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
