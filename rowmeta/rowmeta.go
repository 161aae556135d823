// Package rowmeta implements the per-row metadata pages described in
// spec.md §3/§4.2: for each row index, a 64-bit generation, a 32-bit
// tombstone flag, and a 64-bit seqlock counter, paged and allocated
// lazily like column.PageColumn.
package rowmeta

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
)

// ErrBounds is the out-of-bounds sentinel (spec.md §7).
var ErrBounds = errors.New("rowmeta: index out of bounds")

// ErrConfig is the invalid-configuration sentinel.
var ErrConfig = errors.New("rowmeta: invalid configuration")

type cell struct {
	generation atomic.Uint64
	tombstone  atomic.Uint32
	seqlock    atomic.Uint64
}

type page struct {
	cells []cell
}

func newPage(size int) *page {
	return &page{cells: make([]cell, size)}
}

// Pages is a paged collection of row-meta cells.
type Pages struct {
	pageSize int
	capacity int
	pages    []atomic.Pointer[page]
}

// New creates row-meta storage for the given page geometry. Geometry
// constraints mirror column.New (spec.md §6).
func New(pageSize, maxPages int) (*Pages, error) {
	if pageSize <= 0 || pageSize > 65535 || maxPages <= 0 {
		return nil, ErrConfig
	}
	capacity := pageSize * maxPages
	if capacity <= 0 || capacity > (1<<31)-1 {
		return nil, ErrConfig
	}
	return &Pages{
		pageSize: pageSize,
		capacity: capacity,
		pages:    make([]atomic.Pointer[page], maxPages),
	}, nil
}

// Capacity returns pageSize*maxPages.
func (p *Pages) Capacity() int { return p.capacity }

func (p *Pages) locate(i int) (pageIdx, offset int, err error) {
	if i < 0 || i >= p.capacity {
		return 0, 0, fmt.Errorf("%w: index %d not in [0, %d)", ErrBounds, i, p.capacity)
	}
	return i / p.pageSize, i % p.pageSize, nil
}

func (p *Pages) ensurePage(pageIdx int) *page {
	existing := p.pages[pageIdx].Load()
	if existing != nil {
		return existing
	}
	fresh := newPage(p.pageSize)
	if p.pages[pageIdx].CompareAndSwap(nil, fresh) {
		return fresh
	}
	return p.pages[pageIdx].Load()
}

func (p *Pages) cellAt(i int) (*cell, error) {
	pageIdx, offset, err := p.locate(i)
	if err != nil {
		return nil, err
	}
	pg := p.ensurePage(pageIdx)
	return &pg.cells[offset], nil
}

// readonlyCellAt returns nil (not an error) for a row whose page was never
// allocated, since an unallocated row is equivalent to a freshly zeroed one.
func (p *Pages) readonlyCellAt(i int) (*cell, error) {
	pageIdx, offset, err := p.locate(i)
	if err != nil {
		return nil, err
	}
	pg := p.pages[pageIdx].Load()
	if pg == nil {
		return nil, nil
	}
	return &pg.cells[offset], nil
}

// Generation returns the current generation at row i (0 if never allocated).
func (p *Pages) Generation(i int) (uint64, error) {
	c, err := p.readonlyCellAt(i)
	if err != nil || c == nil {
		return 0, err
	}
	return c.generation.Load(), nil
}

// SetGeneration assigns the generation stamped at (re)allocation time.
func (p *Pages) SetGeneration(i int, gen uint64) error {
	c, err := p.cellAt(i)
	if err != nil {
		return err
	}
	c.generation.Store(gen)
	return nil
}

// Tombstoned reports whether row i is currently tombstoned.
func (p *Pages) Tombstoned(i int) (bool, error) {
	c, err := p.readonlyCellAt(i)
	if err != nil || c == nil {
		return false, err
	}
	return c.tombstone.Load() != 0, nil
}

// CASTombstoneSet attempts the 0->1 tombstone transition and reports
// whether this call was the one that flipped it (spec.md §4.2).
func (p *Pages) CASTombstoneSet(i int) (flipped bool, err error) {
	c, err := p.cellAt(i)
	if err != nil {
		return false, err
	}
	return c.tombstone.CompareAndSwap(0, 1), nil
}

// ClearTombstone resets the tombstone flag to 0, used when a slot is
// reborn from the free-list.
func (p *Pages) ClearTombstone(i int) error {
	c, err := p.cellAt(i)
	if err != nil {
		return err
	}
	c.tombstone.Store(0)
	return nil
}

// backoff implements the bounded spin -> yield -> park ladder from
// spec.md §4.2: <=10 spins yield-spin, <=20 voluntary yield, else 1ns
// park. It is the lock-free generalization of concurrency/lock.go's
// mutex+cond+timeout wait, replacing the blocking wait with a
// non-blocking bounded backoff per spec.md §5 ("no cooperative
// suspension").
func backoff(attempt int) {
	switch {
	case attempt <= 10:
		// yield-spin: busy-wait without surrendering the OS thread.
	case attempt <= 20:
		runtime.Gosched()
	default:
		time.Sleep(time.Nanosecond)
	}
}

// BeginSeqlock acquires the writer slot on row i's seqlock (even -> even+1).
func (p *Pages) BeginSeqlock(i int) error {
	c, err := p.cellAt(i)
	if err != nil {
		return err
	}
	attempt := 0
	for {
		s := c.seqlock.Load()
		if s%2 == 0 {
			if c.seqlock.CompareAndSwap(s, s+1) {
				return nil
			}
		}
		attempt++
		backoff(attempt)
	}
}

// EndSeqlock releases the writer slot (odd -> even).
func (p *Pages) EndSeqlock(i int) error {
	c, err := p.cellAt(i)
	if err != nil {
		return err
	}
	c.seqlock.Add(1)
	return nil
}

// WithSeqlock runs f while holding row i's writer slot, guaranteeing
// EndSeqlock runs even if f panics (spec.md §9's scoped-release idiom),
// via a deferred release rather than a broad recover.
func (p *Pages) WithSeqlock(i int, f func() error) error {
	if err := p.BeginSeqlock(i); err != nil {
		return err
	}
	defer func() { _ = p.EndSeqlock(i) }()
	return f()
}

// ReadWithSeqlock invokes f under optimistic-concurrency validation: if a
// writer is active (odd counter) or mutates the row during f, f is
// retried. f must be idempotent — it may run more than once.
func (p *Pages) ReadWithSeqlock(i int, f func() error) error {
	c, err := p.cellAt(i)
	if err != nil {
		return err
	}
	attempt := 0
	for {
		s0 := c.seqlock.Load()
		if s0%2 != 0 {
			attempt++
			backoff(attempt)
			continue
		}
		if err := f(); err != nil {
			return err
		}
		s1 := c.seqlock.Load()
		if s0 == s1 {
			return nil
		}
		attempt++
		backoff(attempt)
	}
}
