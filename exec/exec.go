// Package exec implements the executor specialization cache from spec.md
// §4.8 (C9): a column/type/operator keyed cache of compiled matcher
// closures, so repeated evaluation of the same (column, lane, operator)
// shape reuses one closure. Each closure delegates to cond's evaluator,
// so cond's lane/op dispatch still runs on every call.
package exec

import (
	"sync"
	"sync/atomic"

	"github.com/Thejuampi/memris-core/args"
	"github.com/Thejuampi/memris-core/cond"
	"github.com/Thejuampi/memris-core/ref"
	"github.com/Thejuampi/memris-core/typecode"
)

// specKey identifies one (column, lane, operator) shape. It deliberately
// excludes the condition's argument values: two EQ conditions on the same
// long-lane column share a specialized closure, parameterized by Args at
// call time.
type specKey struct {
	column int
	lane   typecode.Lane
	op     cond.Op
}

// Specialized is a cached matcher bound to a fixed (column, lane, op)
// shape; it still takes the row-specific RowSource/Ref/Args at call time.
type Specialized func(src cond.RowSource, r ref.Ref, a args.Decoded) (bool, error)

// Cache is a concurrent specialization cache. memriscore.Table evaluates
// every condition through its Cache; table.Config.SpecializationEnabled is
// not consulted, so the cache cannot be bypassed by configuration. It uses sync.Map
// rather than a mutex-guarded map: the key space is effectively unbounded
// (one entry per distinct column/lane/op shape a caller ever compiles)
// and lookups vastly outnumber inserts once a workload's shapes settle,
// which is exactly sync.Map's documented sweet spot.
type Cache struct {
	entries sync.Map // specKey -> Specialized

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache returns an empty specialization cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the specialized closure for c's (column, lane, op) shape,
// building and caching it on first use.
func (ch *Cache) Get(c cond.Condition) Specialized {
	key := specKey{column: c.Column, lane: c.Lane, op: c.Op}

	if v, ok := ch.entries.Load(key); ok {
		ch.hits.Add(1)
		return v.(Specialized)
	}
	fn := specialize(key)
	actual, loaded := ch.entries.LoadOrStore(key, fn)
	if loaded {
		ch.hits.Add(1)
	} else {
		ch.misses.Add(1)
	}
	return actual.(Specialized)
}

// Match evaluates c against row r via the cached specialized closure for
// c's shape, matching cond.Matcher.Match's single-condition semantics.
func (ch *Cache) Match(src cond.RowSource, r ref.Ref, c cond.Condition) (bool, error) {
	fn := ch.Get(c)
	return fn(src, r, c.Args)
}

// Stats reports cache hit/miss counters, used by tests to confirm reuse.
func (ch *Cache) Stats() (hits, misses int64) {
	return ch.hits.Load(), ch.misses.Load()
}

// specialize builds the one-condition matcher for a (column, lane, op)
// shape by delegating to cond.Compile/Match with a single-element slice.
// This keeps the specialized and generic evaluation paths provably
// consistent: specialization only amortizes the key-lookup/closure-build
// cost, never the comparison semantics themselves.
func specialize(key specKey) Specialized {
	return func(src cond.RowSource, r ref.Ref, a args.Decoded) (bool, error) {
		m := cond.Compile([]cond.Condition{{Column: key.column, Op: key.op, Lane: key.lane, Args: a}})
		return m.Match(src, r)
	}
}
