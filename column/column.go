// Package column implements the paged, lazily-allocated column storage
// described in spec.md §4.1 (Page-column<T>): a column of capacity
// pageSize*maxPages rows, with a presence bitmap, a monotonic published
// watermark, and predicate scans over [0, min(published, limit)).
//
// Pages are allocated lazily on first write, installed with a CAS so
// concurrent first-writers to the same page race harmlessly onto the same
// winning page (storage/pager.go's lazy page-table growth, generalized).
package column

import (
	"cmp"
	"sync/atomic"

	"github.com/klauspost/compress/snappy"
)

const (
	flagAbsent     byte = 0
	flagPresent    byte = 1
	flagCompressed byte = 2
)

// CompressionThreshold is the minimum string length, in bytes, at which
// a string-lane cell is snappy-compressed before being stored — the same
// "only if it shrinks" discipline storage/pager.go's compressRecord
// applies when compressing on-disk records. See SPEC_FULL.md §3.
const CompressionThreshold = 64

type page[T any] struct {
	values  []T
	present []byte
}

func newPage[T any](size int) *page[T] {
	return &page[T]{values: make([]T, size), present: make([]byte, size)}
}

// PageColumn is a paged column of T, addressable by row index.
//
// T is constrained to cmp.Ordered so the long-lane (int64), int-lane
// (int32) and string-lane (string) instantiations all support the
// ordering comparisons scan_lt/le/gt/ge/between require.
type PageColumn[T cmp.Ordered] struct {
	pageSize int
	maxPages int
	capacity int

	pages     []atomic.Pointer[page[T]]
	published atomic.Uint64

	// compress is true only for the string-lane instantiation created via
	// NewStringColumn; it gates the snappy compaction path in Set/Get.
	compress bool
}

// New creates an empty PageColumn with the given page geometry.
// capacity = pageSize * maxPages must fit in a non-negative int32
// (spec.md §3: capacity ≤ 2³¹-1); pageSize must be positive and ≤ 65535
// (spec.md §6).
func New[T cmp.Ordered](pageSize, maxPages int) (*PageColumn[T], error) {
	if pageSize <= 0 || pageSize > 65535 {
		return nil, ErrConfig
	}
	if maxPages <= 0 {
		return nil, ErrConfig
	}
	capacity := pageSize * maxPages
	if capacity <= 0 || capacity > (1<<31)-1 {
		return nil, ErrConfig
	}
	return &PageColumn[T]{
		pageSize: pageSize,
		maxPages: maxPages,
		capacity: capacity,
		pages:    make([]atomic.Pointer[page[T]], maxPages),
	}, nil
}

// NewStringColumn is New[string] with snappy compaction enabled for
// long cell values (see CompressionThreshold).
func NewStringColumn(pageSize, maxPages int) (*PageColumn[string], error) {
	c, err := New[string](pageSize, maxPages)
	if err != nil {
		return nil, err
	}
	c.compress = true
	return c, nil
}

// Capacity returns pageSize*maxPages.
func (c *PageColumn[T]) Capacity() int { return c.capacity }

// PageSize returns the configured page size.
func (c *PageColumn[T]) PageSize() int { return c.pageSize }

func (c *PageColumn[T]) locate(i int) (pageIdx, offset int, err error) {
	if i < 0 || i >= c.capacity {
		return 0, 0, errOutOfBounds(i, c.capacity)
	}
	return i / c.pageSize, i % c.pageSize, nil
}

func (c *PageColumn[T]) ensurePage(pageIdx int) *page[T] {
	p := c.pages[pageIdx].Load()
	if p != nil {
		return p
	}
	fresh := newPage[T](c.pageSize)
	if c.pages[pageIdx].CompareAndSwap(nil, fresh) {
		return fresh
	}
	// Lost the race: a concurrent writer installed the page first. Reuse
	// their page rather than discarding our work (spec.md §4.1: "looser
	// contenders reuse the winner's page").
	return c.pages[pageIdx].Load()
}

// IsPresent reports whether row i has a non-null value, per spec.md §4.1.
func (c *PageColumn[T]) IsPresent(i int) (bool, error) {
	pageIdx, offset, err := c.locate(i)
	if err != nil {
		return false, err
	}
	p := c.pages[pageIdx].Load()
	if p == nil {
		return false, nil
	}
	return p.present[offset] != flagAbsent, nil
}

// Get returns the value at row i and whether it is present. Absent rows
// return the lane's zero value and false, per spec.md §3's "present[i]=0
// ⇒ get(i) returns the lane's zero" invariant.
func (c *PageColumn[T]) Get(i int) (T, bool, error) {
	var zero T
	pageIdx, offset, err := c.locate(i)
	if err != nil {
		return zero, false, err
	}
	p := c.pages[pageIdx].Load()
	if p == nil {
		return zero, false, nil
	}
	flag := p.present[offset]
	if flag == flagAbsent {
		return zero, false, nil
	}
	if c.compress && flag == flagCompressed {
		// Only ever true for T=string, see NewStringColumn.
		raw := any(p.values[offset]).(string)
		decoded, decErr := snappyDecode(raw)
		if decErr != nil {
			return zero, false, decErr
		}
		return any(decoded).(T), true, nil
	}
	return p.values[offset], true, nil
}

// Set writes v at row i, lazily allocating the row's page if needed.
func (c *PageColumn[T]) Set(i int, v T) error {
	pageIdx, offset, err := c.locate(i)
	if err != nil {
		return err
	}
	p := c.ensurePage(pageIdx)
	if c.compress {
		s := any(v).(string)
		stored, flag := compressIfSmaller(s)
		p.values[offset] = any(stored).(T)
		p.present[offset] = flag
		return nil
	}
	p.values[offset] = v
	p.present[offset] = flagPresent
	return nil
}

// SetNull clears row i's value, marking it absent.
func (c *PageColumn[T]) SetNull(i int) error {
	var zero T
	pageIdx, offset, err := c.locate(i)
	if err != nil {
		return err
	}
	p := c.ensurePage(pageIdx)
	p.values[offset] = zero
	p.present[offset] = flagAbsent
	return nil
}

// Publish advances the published watermark. It is strictly monotonic:
// publishing w <= the current watermark is a no-op (spec.md §3).
func (c *PageColumn[T]) Publish(w uint64) {
	for {
		cur := c.published.Load()
		if w <= cur {
			return
		}
		if c.published.CompareAndSwap(cur, w) {
			return
		}
	}
}

// PublishedCount returns the current published watermark.
func (c *PageColumn[T]) PublishedCount() uint64 {
	return c.published.Load()
}

func snappyDecode(s string) (string, error) {
	decoded, err := snappy.Decode(nil, []byte(s))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func compressIfSmaller(s string) (string, byte) {
	if len(s) < CompressionThreshold {
		return s, flagPresent
	}
	compressed := snappy.Encode(nil, []byte(s))
	if len(compressed) < len(s) {
		return string(compressed), flagCompressed
	}
	return s, flagPresent
}
