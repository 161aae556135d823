// Package memriscore is the top-level facade wiring schema.TableMetadata
// into a running table.Typed plus its condition/specialization machinery
// (spec.md §6). Binding an entity's metadata to a table, and compiling a
// logical query language down to CompiledQuery, are both out of scope
// (spec.md §1's Non-goals) — this package is the thin, already-compiled
// boundary those out-of-scope layers would call into.
package memriscore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Thejuampi/memris-core/args"
	"github.com/Thejuampi/memris-core/cond"
	"github.com/Thejuampi/memris-core/exec"
	"github.com/Thejuampi/memris-core/query"
	"github.com/Thejuampi/memris-core/ref"
	"github.com/Thejuampi/memris-core/schema"
	"github.com/Thejuampi/memris-core/table"
)

// ErrUnknownTable is returned when a table name has no registered table.
var ErrUnknownTable = errors.New("memriscore: unknown table")

// ErrTableExists is returned by CreateTable for a duplicate entity name.
var ErrTableExists = errors.New("memriscore: table already exists")

// Table wraps a table.Typed with its own specialization cache.
type Table struct {
	typed *table.Typed
	cache *exec.Cache
}

// Insert delegates to the underlying typed table.
func (t *Table) Insert(values []table.Value) (ref.Ref, error) {
	return t.typed.Insert(values)
}

// Tombstone delegates to the underlying typed table.
func (t *Table) Tombstone(r ref.Ref) (bool, error) {
	return t.typed.Tombstone(r)
}

// IsLive delegates to the underlying typed table.
func (t *Table) IsLive(r ref.Ref) (bool, error) {
	return t.typed.IsLive(r)
}

// Read delegates to the underlying typed table.
func (t *Table) Read(col int, r ref.Ref) (table.Value, error) {
	return t.typed.Read(col, r)
}

// LookupByID delegates to the underlying typed table's long-lane index.
func (t *Table) LookupByID(id int64) (ref.Ref, bool, error) {
	return t.typed.LookupByID(id)
}

// LookupByIDString delegates to the underlying typed table's
// string-lane index.
func (t *Table) LookupByIDString(id string) (ref.Ref, bool, error) {
	return t.typed.LookupByIDString(id)
}

// Query evaluates a compiled, already-planned query against every live
// row (spec.md §4.8/§4.5): rawArgs[i] binds query.Conditions[i]'s
// argument(s), decoded via args.Decode against that column's lane before
// being matched through the executor specialization cache.
func (t *Table) Query(q query.CompiledQuery, rawArgs []any) ([]ref.Ref, error) {
	if len(rawArgs) != len(q.Conditions) {
		return nil, fmt.Errorf("memriscore: query has %d conditions but %d argument bindings", len(q.Conditions), len(rawArgs))
	}
	conds := make([]cond.Condition, len(q.Conditions))
	for i, cc := range q.Conditions {
		lane := t.typed.ColumnLane(cc.Column)
		decoded, err := args.Decode(lane, rawArgs[i])
		if err != nil {
			return nil, err
		}
		conds[i] = cond.Condition{Column: cc.Column, Op: cc.Op, Lane: lane, Args: decoded}
	}

	rows, err := t.typed.ScanAll(0)
	if err != nil {
		return nil, err
	}

	out := make([]ref.Ref, 0, 16)
	for _, row := range rows {
		gen, err := t.typed.RowGeneration(row)
		if err != nil {
			return nil, err
		}
		r := ref.Pack(row, gen)

		matched := true
		for _, c := range conds {
			ok, err := t.cache.Match(t.typed, r, c)
			if err != nil {
				return nil, err
			}
			if !ok {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, r)
			if q.Limit > 0 && len(out) >= q.Limit {
				break
			}
		}
	}
	return out, nil
}

// DB is a named collection of tables.
type DB struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewDB returns an empty DB.
func NewDB() *DB {
	return &DB{tables: make(map[string]*Table)}
}

// CreateTable validates meta and cfg, then registers a new Table under
// meta.EntityName.
func (db *DB) CreateTable(meta schema.TableMetadata, cfg table.Config) (*Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.tables[meta.EntityName]; exists {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, meta.EntityName)
	}
	typed, err := table.NewTyped(meta, cfg)
	if err != nil {
		return nil, err
	}
	t := &Table{typed: typed, cache: exec.NewCache()}
	db.tables[meta.EntityName] = t
	return t, nil
}

// Table returns the registered table for entityName.
func (db *DB) Table(entityName string) (*Table, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	t, ok := db.tables[entityName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, entityName)
	}
	return t, nil
}
