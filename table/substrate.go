package table

import (
	"sync/atomic"

	"github.com/Thejuampi/memris-core/freelist"
	"github.com/Thejuampi/memris-core/rowmeta"
)

// substrate implements spec.md §4.2: row allocation/deallocation,
// tombstone with generation, seqlock primitives, row-count bookkeeping.
// It is embedded in Typed rather than exported on its own, since spec.md
// §1 scopes the table substrate and the typed table as one composed
// unit (C5+C7) behind a single external contract (spec.md §6).
type substrate struct {
	capacity int

	nextRowID        atomic.Uint64
	rowCount         atomic.Int64
	globalGeneration atomic.Uint64

	free *freelist.Stack
	meta *rowmeta.Pages
}

func newSubstrate(capacity int, meta *rowmeta.Pages) *substrate {
	return &substrate{
		capacity: capacity,
		free:     freelist.New(),
		meta:     meta,
	}
}

// allocateRow implements spec.md §4.2's allocate_row: pop the free-list
// first; else bump nextRowId; fail with capacity-exceeded if that would
// overrun capacity. Either way the slot gets a fresh, strictly increasing
// generation and a cleared tombstone.
func (s *substrate) allocateRow() (index uint32, generation uint64, err error) {
	if i, ok := s.free.Pop(); ok {
		gen := s.globalGeneration.Add(1)
		if err := s.meta.SetGeneration(int(i), gen); err != nil {
			return 0, 0, err
		}
		if err := s.meta.ClearTombstone(int(i)); err != nil {
			return 0, 0, err
		}
		return i, gen, nil
	}

	for {
		cur := s.nextRowID.Load()
		if int(cur) >= s.capacity {
			return 0, 0, errCapacityExceeded(s.capacity)
		}
		if s.nextRowID.CompareAndSwap(cur, cur+1) {
			gen := s.globalGeneration.Add(1)
			if err := s.meta.SetGeneration(int(cur), gen); err != nil {
				return 0, 0, err
			}
			return uint32(cur), gen, nil
		}
	}
}

// tombstone implements spec.md §4.2's tombstone(ref): a generation
// mismatch means the ref is stale (returns false, no effect); otherwise
// it CAS-flips the tombstone bit, and the flipping caller (and only that
// caller) decrements rowCount and pushes the slot onto the free-list.
// Every caller whose generation still matches gets true, whether or not
// they personally won the flip.
func (s *substrate) tombstone(index uint32, generation uint64) (bool, error) {
	curGen, err := s.meta.Generation(int(index))
	if err != nil {
		return false, err
	}
	if curGen != generation {
		return false, nil
	}
	flipped, err := s.meta.CASTombstoneSet(int(index))
	if err != nil {
		return false, err
	}
	if flipped {
		s.rowCount.Add(-1)
		s.free.Push(index)
	}
	return true, nil
}

// isLive reports whether index currently holds generation and is not
// tombstoned.
func (s *substrate) isLive(index uint32, generation uint64) (bool, error) {
	curGen, err := s.meta.Generation(int(index))
	if err != nil {
		return false, err
	}
	if curGen != generation {
		return false, nil
	}
	tomb, err := s.meta.Tombstoned(int(index))
	if err != nil {
		return false, err
	}
	return !tomb, nil
}

func (s *substrate) incrementRowCount() { s.rowCount.Add(1) }

// RowCount returns the current live row count.
func (s *substrate) RowCount() int64 { return s.rowCount.Load() }

// AllocatedCount returns the number of row slots ever handed out (whether
// currently live, tombstoned, or reborn).
func (s *substrate) AllocatedCount() uint64 { return s.nextRowID.Load() }

// CurrentGeneration returns the process-wide monotonic generation counter.
func (s *substrate) CurrentGeneration() uint64 { return s.globalGeneration.Load() }

// RowGeneration returns the generation currently stamped on index.
func (s *substrate) RowGeneration(index uint32) (uint64, error) {
	return s.meta.Generation(int(index))
}

func (s *substrate) beginSeqlock(index uint32) error { return s.meta.BeginSeqlock(int(index)) }
func (s *substrate) endSeqlock(index uint32) error   { return s.meta.EndSeqlock(int(index)) }

func (s *substrate) withSeqlock(index uint32, f func() error) error {
	return s.meta.WithSeqlock(int(index), f)
}

func (s *substrate) readWithSeqlock(index uint32, f func() error) error {
	return s.meta.ReadWithSeqlock(int(index), f)
}
