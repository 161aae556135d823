// Package query defines the compiled-query input shape a caller hands to
// memriscore: a predicate list plus an optional result limit (spec.md §6).
// It is a thin carrier type — the actual evaluation lives in cond and exec.
package query

import (
	"github.com/Thejuampi/memris-core/cond"
)

// ArgSlot pairs a condition's position with a raw argument value.
// memriscore.Table.Query does not take ArgSlots: it binds arguments as a
// positional []any, one entry per condition.
type ArgSlot struct {
	ConditionIndex int
	Raw            any
}

// CompiledCondition pairs a column index with an operator. Its lane is
// taken from the table's column at query time, and its argument values are
// bound separately per call, so the same compiled shape can be reused
// across calls with different arguments (spec.md §4.5/§4.6).
type CompiledCondition struct {
	Column int
	Op     cond.Op
}

// CompiledQuery is the input memriscore.Table.Query accepts: a fixed list
// of compiled conditions (ANDed together, spec.md §4.5) and a result
// limit (0 = unlimited).
type CompiledQuery struct {
	Conditions []CompiledCondition
	Limit      int
}
