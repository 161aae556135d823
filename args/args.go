// Package args implements the argument-decoding step from spec.md §4.6
// (C11): normalizing the heterogeneous shapes a caller might hand in (a
// single scalar, a slice of a concrete type, or a slice of interface{})
// into the lane-typed array a compiled condition's matcher expects.
package args

import (
	"errors"
	"fmt"

	"github.com/Thejuampi/memris-core/typecode"
)

// ErrArgumentShape is returned when raw cannot be normalized to lane.
var ErrArgumentShape = errors.New("args: unsupported argument shape")

// nullArg is the concrete type behind the NullArg sentinel.
type nullArg struct{}

// NullArg is passed as Decode's raw argument to represent an explicit
// null value (e.g. "name = null"), as distinct from omitting the
// argument entirely (raw == nil, used by zero-arity operators like
// IsNull/NotNull). cond.evalCondition uses Decoded.IsNull to implement
// spec.md §4.6's "EQ against a null argument matches only an absent
// cell" rule.
var NullArg any = nullArg{}

// Decoded holds a lane-typed argument list. Exactly one of Longs/Ints/Strs
// is populated, selected by Lane, unless IsNull is set, in which case the
// argument is the null value itself and carries no lane-typed payload.
type Decoded struct {
	Lane   typecode.Lane
	IsNull bool
	Longs  []int64
	Ints   []int32
	Strs   []string
}

// Len reports the number of decoded argument values. A null argument
// counts as one value, matching the single-argument arity that EQ/NE
// expect.
func (d Decoded) Len() int {
	if d.IsNull {
		return 1
	}
	switch d.Lane {
	case typecode.LongLane:
		return len(d.Longs)
	case typecode.IntLane:
		return len(d.Ints)
	case typecode.StringLane:
		return len(d.Strs)
	default:
		return 0
	}
}

// Decode normalizes raw into a Decoded value for the given lane. raw may
// be a bare scalar (int64, int32, int, string), a concrete slice
// ([]int64, []int32, []string), a []any mixing boxed scalars, NullArg
// (an explicit null argument), or nil (decodes to a zero-length Decoded).
func Decode(lane typecode.Lane, raw any) (Decoded, error) {
	if _, ok := raw.(nullArg); ok {
		return Decoded{Lane: lane, IsNull: true}, nil
	}
	switch lane {
	case typecode.LongLane:
		return decodeLongs(raw)
	case typecode.IntLane:
		return decodeInts(raw)
	case typecode.StringLane:
		return decodeStrings(raw)
	default:
		return Decoded{}, fmt.Errorf("%w: unrecognized lane %v", ErrArgumentShape, lane)
	}
}

func decodeLongs(raw any) (Decoded, error) {
	out := Decoded{Lane: typecode.LongLane}
	switch v := raw.(type) {
	case nil:
	case int64:
		out.Longs = []int64{v}
	case int:
		out.Longs = []int64{int64(v)}
	case []int64:
		out.Longs = append([]int64(nil), v...)
	case []int:
		out.Longs = make([]int64, len(v))
		for i, x := range v {
			out.Longs[i] = int64(x)
		}
	case []any:
		out.Longs = make([]int64, len(v))
		for i, x := range v {
			l, err := toLong(x)
			if err != nil {
				return Decoded{}, err
			}
			out.Longs[i] = l
		}
	default:
		return Decoded{}, fmt.Errorf("%w: cannot decode %T as long-lane arguments", ErrArgumentShape, raw)
	}
	return out, nil
}

func toLong(x any) (int64, error) {
	switch v := x.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: cannot decode %T as a long", ErrArgumentShape, x)
	}
}

func decodeInts(raw any) (Decoded, error) {
	out := Decoded{Lane: typecode.IntLane}
	switch v := raw.(type) {
	case nil:
	case int32:
		out.Ints = []int32{v}
	case int:
		out.Ints = []int32{int32(v)}
	case []int32:
		out.Ints = append([]int32(nil), v...)
	case []int:
		out.Ints = make([]int32, len(v))
		for i, x := range v {
			out.Ints[i] = int32(x)
		}
	case []any:
		out.Ints = make([]int32, len(v))
		for i, x := range v {
			n, err := toInt(x)
			if err != nil {
				return Decoded{}, err
			}
			out.Ints[i] = n
		}
	default:
		return Decoded{}, fmt.Errorf("%w: cannot decode %T as int-lane arguments", ErrArgumentShape, raw)
	}
	return out, nil
}

func toInt(x any) (int32, error) {
	switch v := x.(type) {
	case int32:
		return v, nil
	case int:
		return int32(v), nil
	default:
		return 0, fmt.Errorf("%w: cannot decode %T as an int", ErrArgumentShape, x)
	}
}

func decodeStrings(raw any) (Decoded, error) {
	out := Decoded{Lane: typecode.StringLane}
	switch v := raw.(type) {
	case nil:
	case string:
		out.Strs = []string{v}
	case []string:
		out.Strs = append([]string(nil), v...)
	case []any:
		out.Strs = make([]string, len(v))
		for i, x := range v {
			s, ok := x.(string)
			if !ok {
				return Decoded{}, fmt.Errorf("%w: cannot decode %T as a string", ErrArgumentShape, x)
			}
			out.Strs[i] = s
		}
	default:
		return Decoded{}, fmt.Errorf("%w: cannot decode %T as string-lane arguments", ErrArgumentShape, raw)
	}
	return out, nil
}
