package ref

import "sort"

// Selection is an immutable, ascending-sorted set of packed references,
// with set-algebra operations, per spec.md §4.7.
type Selection struct {
	refs []Ref
}

// Empty is the distinguished empty Selection (spec.md §4.7).
var Empty = Selection{}

// New builds a Selection from refs, normalizing (sorting, deduping) them
// at construction — spec.md §4.7: "Inputs are normalized (sorted) at
// construction. Violations are corrected, never rejected."
func New(refs []Ref) Selection {
	if len(refs) == 0 {
		return Empty
	}
	cp := make([]Ref, len(refs))
	copy(cp, refs)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	cp = dedupeSorted(cp)
	return Selection{refs: cp}
}

// FromIndices builds a Selection by packing each row index with the
// generation genOf reports for it — the usual way a column scan's row
// indices (column.PageColumn.ScanXxx) become a Selection of refs.
func FromIndices(rows []uint32, genOf func(uint32) uint64) Selection {
	packed := make([]Ref, len(rows))
	for i, row := range rows {
		packed[i] = Pack(row, genOf(row))
	}
	return New(packed)
}

func dedupeSorted(sorted []Ref) []Ref {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, r := range sorted[1:] {
		if r != out[len(out)-1] {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of refs in the selection.
func (s Selection) Len() int { return len(s.refs) }

// Contains reports whether ref is a member, via binary search — O(log n).
func (s Selection) Contains(r Ref) bool {
	i := sort.Search(len(s.refs), func(i int) bool { return s.refs[i] >= r })
	return i < len(s.refs) && s.refs[i] == r
}

// ToRefArray returns the refs in ascending order. The caller owns the
// returned slice.
func (s Selection) ToRefArray() []Ref {
	out := make([]Ref, len(s.refs))
	copy(out, s.refs)
	return out
}

// ToIndexArray returns the row indices in ascending order of their refs.
func (s Selection) ToIndexArray() []uint32 {
	out := make([]uint32, len(s.refs))
	for i, r := range s.refs {
		out[i] = r.Index()
	}
	return out
}

// Union returns the set union of s and o, deduping equal refs — O(n+m).
func (s Selection) Union(o Selection) Selection {
	out := make([]Ref, 0, len(s.refs)+len(o.refs))
	i, j := 0, 0
	for i < len(s.refs) && j < len(o.refs) {
		switch {
		case s.refs[i] < o.refs[j]:
			out = append(out, s.refs[i])
			i++
		case s.refs[i] > o.refs[j]:
			out = append(out, o.refs[j])
			j++
		default:
			out = append(out, s.refs[i])
			i++
			j++
		}
	}
	out = append(out, s.refs[i:]...)
	out = append(out, o.refs[j:]...)
	if len(out) == 0 {
		return Empty
	}
	return Selection{refs: out}
}

// Intersect returns the set intersection of s and o — O(n+m).
func (s Selection) Intersect(o Selection) Selection {
	out := make([]Ref, 0, minInt(len(s.refs), len(o.refs)))
	i, j := 0, 0
	for i < len(s.refs) && j < len(o.refs) {
		switch {
		case s.refs[i] < o.refs[j]:
			i++
		case s.refs[i] > o.refs[j]:
			j++
		default:
			out = append(out, s.refs[i])
			i++
			j++
		}
	}
	if len(out) == 0 {
		return Empty
	}
	return Selection{refs: out}
}

// Subtract returns the refs in s that are not in o, removing exactly the
// common elements — O(n+m).
func (s Selection) Subtract(o Selection) Selection {
	out := make([]Ref, 0, len(s.refs))
	i, j := 0, 0
	for i < len(s.refs) && j < len(o.refs) {
		switch {
		case s.refs[i] < o.refs[j]:
			out = append(out, s.refs[i])
			i++
		case s.refs[i] > o.refs[j]:
			j++
		default:
			i++
			j++
		}
	}
	out = append(out, s.refs[i:]...)
	if len(out) == 0 {
		return Empty
	}
	return Selection{refs: out}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
