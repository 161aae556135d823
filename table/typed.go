// Package table implements the row substrate (C5) and typed table (C7)
// from spec.md §4.2/§4.4: row allocation with generational reuse,
// tombstoning, a seqlock-guarded column set, and a primary-key index.
package table

import (
	"fmt"

	"github.com/Thejuampi/memris-core/column"
	"github.com/Thejuampi/memris-core/pkindex"
	"github.com/Thejuampi/memris-core/ref"
	"github.com/Thejuampi/memris-core/rowmeta"
	"github.com/Thejuampi/memris-core/schema"
	"github.com/Thejuampi/memris-core/typecode"
)

// anyColumn is the lane-agnostic surface every column.PageColumn[T]
// instantiation already satisfies structurally; Typed dispatches to the
// lane-specific Get/Set/Scan methods via a type assertion keyed by lanes[col].
type anyColumn interface {
	IsPresent(i int) (bool, error)
	SetNull(i int) error
	Publish(w uint64)
	PublishedCount() uint64
	Capacity() int
}

// Typed composes the row substrate, a fixed set of lane-typed columns, and
// an optional primary-key index into the single external contract spec.md
// §6 describes for an entity table.
type Typed struct {
	*substrate

	meta    schema.TableMetadata
	idIndex int
	idLane  typecode.Lane

	idxLong   *pkindex.Long
	idxString *pkindex.String

	columns []anyColumn
	lanes   []typecode.Lane
}

// NewTyped builds a Typed table for the given entity metadata and storage
// geometry (spec.md §6's NewTyped(metadata, config)).
func NewTyped(meta schema.TableMetadata, cfg Config) (*Typed, error) {
	if err := schema.Validate(meta); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	idIndex, err := meta.IDIndex()
	if err != nil {
		return nil, err
	}
	idLane, err := meta.IDLane()
	if err != nil {
		return nil, err
	}

	rm, err := rowmeta.New(cfg.PageSize, cfg.MaxPages)
	if err != nil {
		return nil, err
	}

	t := &Typed{
		substrate: newSubstrate(cfg.Capacity(), rm),
		meta:      meta,
		idIndex:   idIndex,
		idLane:    idLane,
		columns:   make([]anyColumn, len(meta.Fields)),
		lanes:     make([]typecode.Lane, len(meta.Fields)),
	}
	switch idLane {
	case typecode.LongLane:
		t.idxLong = pkindex.NewLong()
	case typecode.StringLane:
		t.idxString = pkindex.NewString()
	}

	for i, f := range meta.Fields {
		lane := typecode.LaneOf(f.Type)
		t.lanes[i] = lane
		switch lane {
		case typecode.LongLane:
			c, err := column.New[int64](cfg.PageSize, cfg.MaxPages)
			if err != nil {
				return nil, err
			}
			t.columns[i] = c
		case typecode.IntLane:
			c, err := column.New[int32](cfg.PageSize, cfg.MaxPages)
			if err != nil {
				return nil, err
			}
			t.columns[i] = c
		case typecode.StringLane:
			c, err := column.NewStringColumn(cfg.PageSize, cfg.MaxPages)
			if err != nil {
				return nil, err
			}
			t.columns[i] = c
		default:
			return nil, errTypeMismatch(i, "known", f.Type.Name())
		}
	}
	return t, nil
}

// ColumnCount returns the number of typed columns.
func (t *Typed) ColumnCount() int { return len(t.columns) }

// ColumnLane returns the storage lane of column col.
func (t *Typed) ColumnLane(col int) typecode.Lane { return t.lanes[col] }

// IDIndex returns the column index of the primary-key field.
func (t *Typed) IDIndex() int { return t.idIndex }

func (t *Typed) checkColumn(col int) error {
	if col < 0 || col >= len(t.columns) {
		return errOutOfBounds("column", col, len(t.columns))
	}
	return nil
}

func (t *Typed) longColumn(col int) (*column.PageColumn[int64], error) {
	if t.lanes[col] != typecode.LongLane {
		return nil, errTypeMismatch(col, "long", t.lanes[col].String())
	}
	return t.columns[col].(*column.PageColumn[int64]), nil
}

func (t *Typed) intColumn(col int) (*column.PageColumn[int32], error) {
	if t.lanes[col] != typecode.IntLane {
		return nil, errTypeMismatch(col, "int", t.lanes[col].String())
	}
	return t.columns[col].(*column.PageColumn[int32]), nil
}

func (t *Typed) stringColumn(col int) (*column.PageColumn[string], error) {
	if t.lanes[col] != typecode.StringLane {
		return nil, errTypeMismatch(col, "string", t.lanes[col].String())
	}
	return t.columns[col].(*column.PageColumn[string]), nil
}

// writeValue writes v into column col at row, honoring PrimitiveNonNull.
func (t *Typed) writeValue(col int, row uint32, v Value) error {
	if v.Lane != t.lanes[col] {
		return errTypeMismatch(col, t.lanes[col].String(), v.Lane.String())
	}
	if v.Null {
		if t.meta.Fields[col].PrimitiveNonNull {
			return errNullInPrimitive(col)
		}
		return t.columns[col].SetNull(int(row))
	}
	switch t.lanes[col] {
	case typecode.LongLane:
		c, err := t.longColumn(col)
		if err != nil {
			return err
		}
		return c.Set(int(row), v.Long)
	case typecode.IntLane:
		c, err := t.intColumn(col)
		if err != nil {
			return err
		}
		return c.Set(int(row), v.Int)
	case typecode.StringLane:
		c, err := t.stringColumn(col)
		if err != nil {
			return err
		}
		return c.Set(int(row), v.Str)
	}
	return errUnsupportedOp(col)
}

func errUnsupportedOp(col int) error {
	return fmt.Errorf("%w: column %d", ErrUnsupportedOp, col)
}

// readValue reads column col at row without seqlock validation; callers
// needing the torn-read guarantee wrap this with ReadWithSeqlock.
func (t *Typed) readValue(col int, row uint32) (Value, error) {
	switch t.lanes[col] {
	case typecode.LongLane:
		c, err := t.longColumn(col)
		if err != nil {
			return Value{}, err
		}
		v, present, err := c.Get(int(row))
		if err != nil {
			return Value{}, err
		}
		if !present {
			return NullValue(typecode.LongLane), nil
		}
		return LongValue(v), nil
	case typecode.IntLane:
		c, err := t.intColumn(col)
		if err != nil {
			return Value{}, err
		}
		v, present, err := c.Get(int(row))
		if err != nil {
			return Value{}, err
		}
		if !present {
			return NullValue(typecode.IntLane), nil
		}
		return IntValue(v), nil
	case typecode.StringLane:
		c, err := t.stringColumn(col)
		if err != nil {
			return Value{}, err
		}
		v, present, err := c.Get(int(row))
		if err != nil {
			return Value{}, err
		}
		if !present {
			return NullValue(typecode.StringLane), nil
		}
		return StringValue(v), nil
	}
	return Value{}, errUnsupportedOp(col)
}

// idKey extracts the current primary-key value at row as an any boxing
// either int64 or string, or ok=false when the id cell is absent.
func (t *Typed) idKey(row uint32) (key any, ok bool) {
	switch t.lanes[t.idIndex] {
	case typecode.LongLane:
		c := t.columns[t.idIndex].(*column.PageColumn[int64])
		v, present, _ := c.Get(int(row))
		if !present {
			return nil, false
		}
		return v, true
	case typecode.IntLane:
		c := t.columns[t.idIndex].(*column.PageColumn[int32])
		v, present, _ := c.Get(int(row))
		if !present {
			return nil, false
		}
		return int64(v), true
	case typecode.StringLane:
		c := t.columns[t.idIndex].(*column.PageColumn[string])
		v, present, _ := c.Get(int(row))
		if !present {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// Insert implements spec.md §6's insert(values): allocate a row, write
// every column under the row's seqlock, index the primary key, publish
// each column's watermark, and return the packed reference.
//
// Every column is published individually rather than gated behind one
// table-wide watermark, per SPEC_FULL.md §9's resolution of the per-row
// publish open question: the watermark is a pre-filter a scan uses to
// bound its walk, and ReadWithSeqlock is what actually guarantees a
// torn-free view, so an off-by-one in the pre-filter is harmless.
func (t *Typed) Insert(values []Value) (ref.Ref, error) {
	if len(values) != len(t.columns) {
		return ref.None, errArgumentShape("insert expects one value per column")
	}
	for i, v := range values {
		if v.Lane != t.lanes[i] {
			return ref.None, errTypeMismatch(i, t.lanes[i].String(), v.Lane.String())
		}
	}
	if values[t.idIndex].Null {
		return ref.None, errNullInPrimitive(t.idIndex)
	}

	row, generation, err := t.substrate.allocateRow()
	if err != nil {
		return ref.None, err
	}

	writeErr := t.substrate.withSeqlock(row, func() error {
		for i, v := range values {
			if err := t.writeValue(i, row, v); err != nil {
				return err
			}
		}
		return nil
	})
	if writeErr != nil {
		return ref.None, writeErr
	}

	switch t.idLane {
	case typecode.LongLane:
		key, _ := t.idKey(row)
		t.idxLong.Put(key.(int64), pkindex.Entry{RowIndex: row, Generation: generation})
	case typecode.StringLane:
		key, _ := t.idKey(row)
		t.idxString.Put(key.(string), pkindex.Entry{RowIndex: row, Generation: generation})
	}

	for _, c := range t.columns {
		c.Publish(uint64(row) + 1)
	}
	t.substrate.incrementRowCount()

	return ref.Pack(row, generation), nil
}

// Tombstone implements spec.md §6's tombstone(ref): a stale ref (its slot's
// generation has moved on) is a no-op returning false; a ref whose
// generation still matches returns true, whether this call or an earlier
// one flipped the tombstone, and its primary-key entry is removed.
func (t *Typed) Tombstone(r ref.Ref) (bool, error) {
	index := r.Index()
	generation := uint64(r.Generation())

	key, hasKey := t.idKey(index)

	ok, err := t.substrate.tombstone(index, generation)
	if err != nil || !ok {
		return ok, err
	}

	if hasKey {
		switch t.idLane {
		case typecode.LongLane:
			t.idxLong.Remove(key.(int64))
		case typecode.StringLane:
			t.idxString.Remove(key.(string))
		}
	}
	return true, nil
}

// IsLive reports whether r still refers to a live (non-tombstoned) row.
func (t *Typed) IsLive(r ref.Ref) (bool, error) {
	return t.substrate.isLive(r.Index(), uint64(r.Generation()))
}

// LookupByID implements spec.md §4.4's lookup(key) for long-lane primary
// keys, filtering out entries whose row has since been tombstoned.
func (t *Typed) LookupByID(id int64) (ref.Ref, bool, error) {
	if t.idxLong == nil {
		return ref.None, false, errUnsupportedOp(t.idIndex)
	}
	e, ok := t.idxLong.Lookup(id)
	if !ok {
		return ref.None, false, nil
	}
	live, err := t.substrate.isLive(e.RowIndex, e.Generation)
	if err != nil || !live {
		return ref.None, false, err
	}
	return ref.Pack(e.RowIndex, e.Generation), true, nil
}

// LookupByIDString is LookupByID for string-lane primary keys.
func (t *Typed) LookupByIDString(id string) (ref.Ref, bool, error) {
	if t.idxString == nil {
		return ref.None, false, errUnsupportedOp(t.idIndex)
	}
	e, ok := t.idxString.Lookup(id)
	if !ok {
		return ref.None, false, nil
	}
	live, err := t.substrate.isLive(e.RowIndex, e.Generation)
	if err != nil || !live {
		return ref.None, false, err
	}
	return ref.Pack(e.RowIndex, e.Generation), true, nil
}

// Read returns column col's value at row r, validated against a
// concurrent writer via ReadWithSeqlock (spec.md §4.2/§9).
func (t *Typed) Read(col int, r ref.Ref) (Value, error) {
	if err := t.checkColumn(col); err != nil {
		return Value{}, err
	}
	index := r.Index()
	var out Value
	err := t.substrate.readWithSeqlock(index, func() error {
		v, err := t.readValue(col, index)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// ReadLong reads a long-lane column, erroring if col is not long-lane.
func (t *Typed) ReadLong(col int, r ref.Ref) (int64, error) {
	v, err := t.Read(col, r)
	if err != nil {
		return 0, err
	}
	if v.Lane != typecode.LongLane {
		return 0, errTypeMismatch(col, "long", v.Lane.String())
	}
	return v.Long, nil
}

// ReadInt reads an int-lane column, erroring if col is not int-lane.
func (t *Typed) ReadInt(col int, r ref.Ref) (int32, error) {
	v, err := t.Read(col, r)
	if err != nil {
		return 0, err
	}
	if v.Lane != typecode.IntLane {
		return 0, errTypeMismatch(col, "int", v.Lane.String())
	}
	return v.Int, nil
}

// ReadString reads a string-lane column, erroring if col is not string-lane.
func (t *Typed) ReadString(col int, r ref.Ref) (string, error) {
	v, err := t.Read(col, r)
	if err != nil {
		return "", err
	}
	if v.Lane != typecode.StringLane {
		return "", errTypeMismatch(col, "string", v.Lane.String())
	}
	return v.Str, nil
}

// IsPresent reports whether column col at row r currently holds a
// non-null value, validated via the row's seqlock.
func (t *Typed) IsPresent(col int, r ref.Ref) (bool, error) {
	if err := t.checkColumn(col); err != nil {
		return false, err
	}
	index := r.Index()
	var present bool
	err := t.substrate.readWithSeqlock(index, func() error {
		p, err := t.columns[col].IsPresent(int(index))
		if err != nil {
			return err
		}
		present = p
		return nil
	})
	return present, err
}

// ScanAll returns ascending live row indices, up to limit (0 = unlimited).
func (t *Typed) ScanAll(limit int) ([]uint32, error) {
	allocated := t.substrate.AllocatedCount()
	out := make([]uint32, 0, 16)
	for i := uint32(0); uint64(i) < allocated; i++ {
		if limit > 0 && len(out) >= limit {
			break
		}
		gen, err := t.substrate.RowGeneration(i)
		if err != nil {
			return nil, err
		}
		live, err := t.substrate.isLive(i, gen)
		if err != nil {
			return nil, err
		}
		if live {
			out = append(out, i)
		}
	}
	return out, nil
}

// ScanEq returns ascending live row indices in column col whose value
// equals target (spec.md §4.1/§4.4's scan_eq, filtered to live rows).
func (t *Typed) ScanEq(col int, target Value, limit int) ([]uint32, error) {
	if err := t.checkColumn(col); err != nil {
		return nil, err
	}
	if target.Lane != t.lanes[col] {
		return nil, errTypeMismatch(col, t.lanes[col].String(), target.Lane.String())
	}
	return t.scanFiltered(col, limit, func() ([]uint32, error) {
		switch t.lanes[col] {
		case typecode.LongLane:
			c, err := t.longColumn(col)
			if err != nil {
				return nil, err
			}
			return c.ScanEq(target.Long, 0), nil
		case typecode.IntLane:
			c, err := t.intColumn(col)
			if err != nil {
				return nil, err
			}
			return c.ScanEq(target.Int, 0), nil
		case typecode.StringLane:
			c, err := t.stringColumn(col)
			if err != nil {
				return nil, err
			}
			return c.ScanEq(target.Str, 0), nil
		}
		return nil, errUnsupportedOp(col)
	})
}

// ScanBetween returns ascending live row indices in column col with
// lo <= value <= hi (spec.md §4.1's scan_between). Long- and int-lane
// columns compare numerically; string-lane columns compare lexically.
func (t *Typed) ScanBetween(col int, lo, hi Value, limit int) ([]uint32, error) {
	if err := t.checkColumn(col); err != nil {
		return nil, err
	}
	if lo.Lane != t.lanes[col] || hi.Lane != t.lanes[col] {
		return nil, errTypeMismatch(col, t.lanes[col].String(), lo.Lane.String())
	}
	return t.scanFiltered(col, limit, func() ([]uint32, error) {
		switch t.lanes[col] {
		case typecode.LongLane:
			c, err := t.longColumn(col)
			if err != nil {
				return nil, err
			}
			return c.ScanBetween(lo.Long, hi.Long, 0), nil
		case typecode.IntLane:
			c, err := t.intColumn(col)
			if err != nil {
				return nil, err
			}
			return c.ScanBetween(lo.Int, hi.Int, 0), nil
		case typecode.StringLane:
			c, err := t.stringColumn(col)
			if err != nil {
				return nil, err
			}
			return c.ScanBetween(lo.Str, hi.Str, 0), nil
		}
		return nil, errUnsupportedOp(col)
	})
}

// ScanIn returns ascending live row indices in column col whose value is
// one of targets (spec.md §4.1's scan_in).
func (t *Typed) ScanIn(col int, targets []Value, limit int) ([]uint32, error) {
	if err := t.checkColumn(col); err != nil {
		return nil, err
	}
	for _, v := range targets {
		if v.Lane != t.lanes[col] {
			return nil, errTypeMismatch(col, t.lanes[col].String(), v.Lane.String())
		}
	}
	return t.scanFiltered(col, limit, func() ([]uint32, error) {
		switch t.lanes[col] {
		case typecode.LongLane:
			c, err := t.longColumn(col)
			if err != nil {
				return nil, err
			}
			vs := make([]int64, len(targets))
			for i, v := range targets {
				vs[i] = v.Long
			}
			return c.ScanIn(vs, 0), nil
		case typecode.IntLane:
			c, err := t.intColumn(col)
			if err != nil {
				return nil, err
			}
			vs := make([]int32, len(targets))
			for i, v := range targets {
				vs[i] = v.Int
			}
			return c.ScanIn(vs, 0), nil
		case typecode.StringLane:
			c, err := t.stringColumn(col)
			if err != nil {
				return nil, err
			}
			vs := make([]string, len(targets))
			for i, v := range targets {
				vs[i] = v.Str
			}
			return c.ScanIn(vs, 0), nil
		}
		return nil, errUnsupportedOp(col)
	})
}

// scanFiltered runs fn to get raw candidate rows, then drops any row that
// has since been tombstoned, and truncates to limit.
func (t *Typed) scanFiltered(col, limit int, fn func() ([]uint32, error)) ([]uint32, error) {
	if err := t.checkColumn(col); err != nil {
		return nil, err
	}
	candidates, err := fn()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, 0, len(candidates))
	for _, row := range candidates {
		if limit > 0 && len(out) >= limit {
			break
		}
		gen, err := t.substrate.RowGeneration(row)
		if err != nil {
			return nil, err
		}
		live, err := t.substrate.isLive(row, gen)
		if err != nil {
			return nil, err
		}
		if live {
			out = append(out, row)
		}
	}
	return out, nil
}
