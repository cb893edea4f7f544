package queue

import (
	"math/rand"
	"slices"
	"sync"
	"testing"
)

func TestReorder_InOrder(t *testing.T) {
	r := NewReorder[string](0)
	defer r.Close()

	for i, s := range []string{"a", "b", "c"} {
		ready, err := r.Push(uint64(i), s)
		if err != nil {
			t.Fatalf("Push(%d) failed: %v", i, err)
		}
		if len(ready) != 1 || ready[0] != s {
			t.Errorf("Push(%d) released %v, want [%s]", i, ready, s)
		}
	}

	if size := r.Size(); size != 0 {
		t.Errorf("Expected empty buffer, got size %d", size)
	}
	if next := r.Next(); next != 3 {
		t.Errorf("Next() = %d, want 3", next)
	}
}

func TestReorder_OutOfOrder(t *testing.T) {
	r := NewReorder[int](1)
	defer r.Close()

	steps := []struct {
		seq  uint64
		want []int
	}{
		{3, nil},
		{2, nil},
		{5, nil},
		{1, []int{1, 2, 3}},
		{4, []int{4, 5}},
		{6, []int{6}},
	}

	for _, step := range steps {
		ready, err := r.Push(step.seq, int(step.seq))
		if err != nil {
			t.Fatalf("Push(%d) failed: %v", step.seq, err)
		}
		if !slices.Equal(ready, step.want) {
			t.Errorf("Push(%d) released %v, want %v", step.seq, ready, step.want)
		}
	}

	stats := r.GetStats()
	if stats.TotalPushed != 6 || stats.TotalReleased != 6 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.PeakSize != 3 {
		t.Errorf("PeakSize = %d, want 3", stats.PeakSize)
	}
}

func TestReorder_Duplicate(t *testing.T) {
	r := NewReorder[int](0)
	defer r.Close()

	if _, err := r.Push(2, 2); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if _, err := r.Push(2, 2); err != ErrDuplicate {
		t.Errorf("Expected ErrDuplicate for pending seq, got %v", err)
	}
	if _, err := r.Push(0, 0); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if _, err := r.Push(0, 0); err != ErrDuplicate {
		t.Errorf("Expected ErrDuplicate for released seq, got %v", err)
	}
}

func TestReorder_Closed(t *testing.T) {
	r := NewReorder[int](0)
	if _, err := r.Push(1, 1); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
	if _, err := r.Push(0, 0); err != ErrQueueClosed {
		t.Errorf("Expected ErrQueueClosed, got %v", err)
	}
	if size := r.Size(); size != 0 {
		t.Errorf("Expected closed buffer to be empty, got %d", size)
	}
}

func TestReorder_Concurrent(t *testing.T) {
	const n = 200
	r := NewReorder[int](0)
	defer r.Close()

	order := rand.Perm(n)

	var (
		mu  sync.Mutex
		out []int
		wg  sync.WaitGroup
	)
	for _, seq := range order {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			// Release and append under one lock so concurrent releases
			// cannot interleave.
			mu.Lock()
			defer mu.Unlock()
			ready, err := r.Push(uint64(seq), seq)
			if err != nil {
				t.Errorf("Push(%d) failed: %v", seq, err)
				return
			}
			out = append(out, ready...)
		}(seq)
	}
	wg.Wait()

	if len(out) != n {
		t.Fatalf("Released %d items, want %d", len(out), n)
	}
	for i, v := range out {
		if v != i {
			t.Fatalf("out[%d] = %d, items released out of order", i, v)
		}
	}
}
