package freelist

import (
	"sync"
	"testing"
)

func TestPushPopLIFO(t *testing.T) {
	s := New()
	if _, ok := s.Pop(); ok {
		t.Fatal("pop on empty stack should fail")
	}
	s.Push(1)
	s.Push(2)
	s.Push(3)
	if s.ApproxSize() != 3 {
		t.Fatalf("expected size 3, got %d", s.ApproxSize())
	}
	for _, want := range []uint32{3, 2, 1} {
		got, ok := s.Pop()
		if !ok || got != want {
			t.Fatalf("expected %d, got %d (ok=%v)", want, got, ok)
		}
	}
	if _, ok := s.Pop(); ok {
		t.Fatal("stack should be empty")
	}
	if s.ApproxSize() != 0 {
		t.Fatalf("expected size 0, got %d", s.ApproxSize())
	}
}

func TestConcurrentPushPopNoLoss(t *testing.T) {
	s := New()
	const n = 5000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Push(uint32(i))
		}(i)
	}
	wg.Wait()

	seen := make(map[uint32]bool, n)
	var mu sync.Mutex
	var wg2 sync.WaitGroup
	for i := 0; i < n; i++ {
		wg2.Add(1)
		go func() {
			defer wg2.Done()
			if v, ok := s.Pop(); ok {
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg2.Wait()

	if len(seen) != n {
		t.Fatalf("expected %d distinct popped values, got %d", n, len(seen))
	}
	if _, ok := s.Pop(); ok {
		t.Fatal("stack should be drained")
	}
}
