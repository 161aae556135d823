package table

import "github.com/Thejuampi/memris-core/typecode"

// Value is a lane-tagged cell value, used at the Typed table boundary for
// Insert arguments and Read results (spec.md §4.4/§6). Exactly one of
// Long/Int/Str is meaningful, selected by Lane; Null overrides all of them.
type Value struct {
	Lane typecode.Lane
	Long int64
	Int  int32
	Str  string
	Null bool
}

// LongValue builds a present long-lane value.
func LongValue(v int64) Value { return Value{Lane: typecode.LongLane, Long: v} }

// IntValue builds a present int-lane value.
func IntValue(v int32) Value { return Value{Lane: typecode.IntLane, Int: v} }

// StringValue builds a present string-lane value.
func StringValue(v string) Value { return Value{Lane: typecode.StringLane, Str: v} }

// NullValue builds an absent value tagged with lane so type-checking still
// applies to nulls written to a typed column.
func NullValue(lane typecode.Lane) Value { return Value{Lane: lane, Null: true} }
