package pkindex

import (
	"sync"
	"testing"
)

func TestPutLookupRemove(t *testing.T) {
	idx := NewLong()
	idx.Put(1, Entry{RowIndex: 0, Generation: 1})
	e, ok := idx.Lookup(1)
	if !ok || e.RowIndex != 0 || e.Generation != 1 {
		t.Fatalf("got %+v ok=%v", e, ok)
	}
	idx.Remove(1)
	if _, ok := idx.Lookup(1); ok {
		t.Fatalf("expected removed key to be absent")
	}
	idx.Remove(1) // no-op, must not panic
}

func TestPutOverwritesLastWriterWins(t *testing.T) {
	idx := NewString()
	idx.Put("ada", Entry{RowIndex: 0, Generation: 1})
	idx.Put("ada", Entry{RowIndex: 5, Generation: 2})
	e, ok := idx.Lookup("ada")
	if !ok || e.RowIndex != 5 || e.Generation != 2 {
		t.Fatalf("expected last write to win, got %+v", e)
	}
}

func TestConcurrentPutLookup(t *testing.T) {
	idx := NewLong()
	var wg sync.WaitGroup
	const n = 2000
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()
			idx.Put(i, Entry{RowIndex: uint32(i), Generation: 1})
		}(int64(i))
	}
	wg.Wait()
	if idx.Len() != n {
		t.Fatalf("expected %d entries, got %d", n, idx.Len())
	}
}
