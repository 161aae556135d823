// Package ref implements the 64-bit packed (row-index, generation)
// reference and the sorted Selection set described in spec.md §3/§4.7.
package ref

// Ref is a packed reference: the low 32 bits hold the row index, the high
// 32 bits hold the (truncated) generation. None represents "no reference"
// — the all-ones bit pattern, matching the two's-complement encoding of
// -1 that spec.md §3 specifies.
type Ref uint64

// None denotes "no reference" (spec.md §3: "-1 denotes no reference").
const None Ref = ^Ref(0)

// Pack builds a Ref from a row index and a generation. Only the low 32
// bits of generation survive — spec.md §3 defines the packed reference as
// 32+32 bits, while row-meta generations (spec.md §4.2) are a full 64-bit
// counter; wraparound of the packed form is accepted the same way
// spec.md §9 accepts 2^63 generation wraparound as "effectively
// infinite".
func Pack(index uint32, generation uint64) Ref {
	return Ref(generation<<32 | uint64(index))
}

// Index extracts the row index from a packed Ref.
func (r Ref) Index() uint32 {
	return uint32(r)
}

// Generation extracts the (truncated) generation from a packed Ref.
func (r Ref) Generation() uint32 {
	return uint32(r >> 32)
}

// IsNone reports whether r is the None sentinel.
func (r Ref) IsNone() bool {
	return r == None
}
