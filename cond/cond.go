package cond

import (
	"fmt"
	"strings"

	"github.com/Thejuampi/memris-core/args"
	"github.com/Thejuampi/memris-core/ref"
	"github.com/Thejuampi/memris-core/typecode"
)

// RowSource is the read surface a compiled Condition needs. table.Typed
// satisfies this structurally; cond never imports table, so the table
// package can freely depend on cond's Op/Matcher without an import cycle.
type RowSource interface {
	IsPresent(col int, r ref.Ref) (bool, error)
	ReadLong(col int, r ref.Ref) (int64, error)
	ReadInt(col int, r ref.Ref) (int32, error)
	ReadString(col int, r ref.Ref) (string, error)
}

// Condition is one compiled predicate over a single column (spec.md §4.5).
// Null semantics: IsNull/NotNull inspect presence directly; EQ/NE against an
// explicit null argument (Args.IsNull) match an absent/present cell
// respectively; every other comparison is false against an absent cell.
type Condition struct {
	Column int
	Op     Op
	Lane   typecode.Lane
	Args   args.Decoded
}

// Matcher evaluates a compiled Condition tree against one row.
type Matcher struct {
	conds []Condition
}

// Compile builds a Matcher that requires every condition to hold (logical
// AND across the slice), mirroring spec.md §4.5's "a row matches when all
// of its compiled conditions evaluate true".
func Compile(conds []Condition) *Matcher {
	return &Matcher{conds: append([]Condition(nil), conds...)}
}

// Match evaluates every condition against row r via src, short-circuiting
// on the first unmet condition.
func (m *Matcher) Match(src RowSource, r ref.Ref) (bool, error) {
	for _, c := range m.conds {
		ok, err := evalCondition(src, r, c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalCondition(src RowSource, r ref.Ref, c Condition) (bool, error) {
	present, err := src.IsPresent(c.Column, r)
	if err != nil {
		return false, err
	}

	switch c.Op {
	case IsNull:
		return !present, nil
	case NotNull:
		return present, nil
	}

	// spec.md §4.6 / scenario S6: EQ against an explicit null argument is
	// the one value comparison that matches an absent cell, since an
	// absent cell and a null argument both denote "no value". NE mirrors
	// it. Every other operator has no defined meaning against null.
	if c.Args.IsNull {
		switch c.Op {
		case EQ:
			return !present, nil
		case NE:
			return present, nil
		default:
			return false, fmt.Errorf("%w: %s does not accept a null argument", args.ErrArgumentShape, c.Op)
		}
	}

	if !present {
		return false, nil
	}

	if err := checkArity(c.Op, c.Args.Len()); err != nil {
		return false, err
	}

	switch c.Lane {
	case typecode.LongLane:
		return evalLong(src, r, c)
	case typecode.IntLane:
		return evalInt(src, r, c)
	case typecode.StringLane:
		return evalString(src, r, c)
	default:
		return false, nil
	}
}

// arityFor reports the [min,max] number of decoded argument values op
// requires; max of -1 means unbounded.
func arityFor(op Op) (min, max int) {
	switch op {
	case IsNull, NotNull:
		return 0, 0
	case BETWEEN:
		return 2, 2
	case IN, NOTIN:
		// An empty list is valid: IN never matches, NOT_IN always does.
		return 0, -1
	default: // EQ, NE, IgnoreCaseEQ, GT, GTE, LT, LTE, Before, After
		return 1, 1
	}
}

// checkArity validates a decoded argument count against op's arity,
// surfacing spec.md §7's argument-shape error instead of letting
// evalLong/evalInt/evalString index past the slice and panic.
func checkArity(op Op, n int) error {
	min, max := arityFor(op)
	if n < min || (max >= 0 && n > max) {
		want := fmt.Sprintf("exactly %d", min)
		switch {
		case max < 0:
			want = fmt.Sprintf("at least %d", min)
		case min != max:
			want = fmt.Sprintf("between %d and %d", min, max)
		}
		return fmt.Errorf("%w: %s expects %s argument(s), got %d", args.ErrArgumentShape, op, want, n)
	}
	return nil
}

func evalLong(src RowSource, r ref.Ref, c Condition) (bool, error) {
	v, err := src.ReadLong(c.Column, r)
	if err != nil {
		return false, err
	}
	switch c.Op {
	case EQ, Before, After:
		target := c.Args.Longs[0]
		switch c.Op {
		case EQ:
			return v == target, nil
		case Before:
			return v < target, nil
		default: // After
			return v > target, nil
		}
	case NE:
		return v != c.Args.Longs[0], nil
	case GT:
		return v > c.Args.Longs[0], nil
	case GTE:
		return v >= c.Args.Longs[0], nil
	case LT:
		return v < c.Args.Longs[0], nil
	case LTE:
		return v <= c.Args.Longs[0], nil
	case BETWEEN:
		return v >= c.Args.Longs[0] && v <= c.Args.Longs[1], nil
	case IN:
		for _, t := range c.Args.Longs {
			if v == t {
				return true, nil
			}
		}
		return false, nil
	case NOTIN:
		for _, t := range c.Args.Longs {
			if v == t {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, nil
	}
}

func evalInt(src RowSource, r ref.Ref, c Condition) (bool, error) {
	v, err := src.ReadInt(c.Column, r)
	if err != nil {
		return false, err
	}
	switch c.Op {
	case EQ:
		return v == c.Args.Ints[0], nil
	case NE:
		return v != c.Args.Ints[0], nil
	case GT:
		return v > c.Args.Ints[0], nil
	case GTE:
		return v >= c.Args.Ints[0], nil
	case LT:
		return v < c.Args.Ints[0], nil
	case LTE:
		return v <= c.Args.Ints[0], nil
	case BETWEEN:
		return v >= c.Args.Ints[0] && v <= c.Args.Ints[1], nil
	case IN:
		for _, t := range c.Args.Ints {
			if v == t {
				return true, nil
			}
		}
		return false, nil
	case NOTIN:
		for _, t := range c.Args.Ints {
			if v == t {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, nil
	}
}

func evalString(src RowSource, r ref.Ref, c Condition) (bool, error) {
	v, err := src.ReadString(c.Column, r)
	if err != nil {
		return false, err
	}
	switch c.Op {
	case EQ:
		return v == c.Args.Strs[0], nil
	case IgnoreCaseEQ:
		return strings.EqualFold(v, c.Args.Strs[0]), nil
	case NE:
		return v != c.Args.Strs[0], nil
	case GT:
		return v > c.Args.Strs[0], nil
	case GTE:
		return v >= c.Args.Strs[0], nil
	case LT:
		return v < c.Args.Strs[0], nil
	case LTE:
		return v <= c.Args.Strs[0], nil
	case BETWEEN:
		return v >= c.Args.Strs[0] && v <= c.Args.Strs[1], nil
	case IN:
		for _, t := range c.Args.Strs {
			if v == t {
				return true, nil
			}
		}
		return false, nil
	case NOTIN:
		for _, t := range c.Args.Strs {
			if v == t {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, nil
	}
}
