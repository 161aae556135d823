// Package typecode defines the compact byte registry for memris-core's
// logical storage types and the lane each one maps to, plus the
// order-preserving float<->integer bijections used by the long/int lanes.
package typecode

import "math"

// Code is a compact, stable byte identifying a logical physical type.
// Values are stable across versions: they are used as a dispatch key by
// the exec package's specialization cache (see package exec).
type Code byte

const (
	Long Code = iota + 1
	Double
	Instant
	LocalDate
	LocalDateTime
	Date
	Int
	Float
	Boolean
	Byte
	Short
	Char
	String
	BigDecimal
	BigInteger
)

// Lane is the physical representation bucket a Code is stored in.
type Lane byte

const (
	LongLane Lane = iota + 1
	IntLane
	StringLane
)

// LaneOf returns the storage lane for a logical type code.
// The zero Lane is returned for an unrecognized code.
func LaneOf(c Code) Lane {
	switch c {
	case Long, Double, Instant, LocalDate, LocalDateTime, Date:
		return LongLane
	case Int, Float, Boolean, Byte, Short, Char:
		return IntLane
	case String, BigDecimal, BigInteger:
		return StringLane
	default:
		return 0
	}
}

// Name returns a short human-readable name for the code, used in error
// messages. Unknown codes render as "unknown".
func (c Code) Name() string {
	switch c {
	case Long:
		return "long"
	case Double:
		return "double"
	case Instant:
		return "instant"
	case LocalDate:
		return "local-date"
	case LocalDateTime:
		return "local-date-time"
	case Date:
		return "date"
	case Int:
		return "int"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Char:
		return "char"
	case String:
		return "string"
	case BigDecimal:
		return "big-decimal"
	case BigInteger:
		return "big-integer"
	default:
		return "unknown"
	}
}

// DoubleToSortableLong maps a float64 onto an int64 such that the natural,
// signed int64 ordering matches IEEE-754 ordering of the inputs, with
// -0.0 == 0.0 and NaN canonicalized to sort above +Inf. The long lane's
// scans (column.ScanLt/ScanBetween/...) compare the result with ordinary
// signed <, so the bijection must preserve signed order, not unsigned
// order: the raw IEEE bit pattern of a non-negative double, read as
// int64, is already signed-ordered, so it is left untouched; a negative
// double's bit pattern has its sign bit set (making the raw int64
// negative already) but its exponent/mantissa bits increase with
// magnitude, the wrong direction for a more-negative value to sort
// lower, so those 63 non-sign bits are flipped. Both branches are
// self-inverse, so SortableLongToDouble applies the identical XOR.
func DoubleToSortableLong(f float64) int64 {
	bits := int64(math.Float64bits(canonicalizeDouble(f)))
	if bits >= 0 {
		return bits
	}
	return bits ^ math.MaxInt64
}

// SortableLongToDouble is the inverse of DoubleToSortableLong.
func SortableLongToDouble(v int64) float64 {
	if v < 0 {
		return math.Float64frombits(uint64(v ^ math.MaxInt64))
	}
	return math.Float64frombits(uint64(v))
}

// FloatToSortableInt is the float32/int32 analogue of DoubleToSortableLong.
func FloatToSortableInt(f float32) int32 {
	bits := int32(math.Float32bits(canonicalizeFloat(f)))
	if bits >= 0 {
		return bits
	}
	return bits ^ math.MaxInt32
}

// SortableIntToFloat is the inverse of FloatToSortableInt.
func SortableIntToFloat(v int32) float32 {
	if v < 0 {
		return math.Float32frombits(uint32(v ^ math.MaxInt32))
	}
	return math.Float32frombits(uint32(v))
}

// String renders a Lane for error messages.
func (l Lane) String() string {
	switch l {
	case LongLane:
		return "long"
	case IntLane:
		return "int"
	case StringLane:
		return "string"
	default:
		return "unknown"
	}
}

// canonicalizeDouble maps -0.0 to +0.0 and any NaN bit pattern to the
// canonical quiet NaN, so that round-tripping and ordering are well
// defined per spec.md's testable properties (#5, #6).
func canonicalizeDouble(f float64) float64 {
	if f == 0 {
		return 0
	}
	if math.IsNaN(f) {
		return math.NaN()
	}
	return f
}

func canonicalizeFloat(f float32) float32 {
	if f == 0 {
		return 0
	}
	if f != f { // NaN
		return float32(math.NaN())
	}
	return f
}
