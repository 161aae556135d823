package column

import (
	"errors"
	"fmt"
)

// ErrBounds is the sentinel for the out-of-bounds error kind (spec.md §7).
// Callers should use errors.Is(err, column.ErrBounds) to test for it.
var ErrBounds = errors.New("column: index out of bounds")

// ErrConfig is the sentinel for an invalid (pageSize, maxPages) pair.
var ErrConfig = errors.New("column: invalid configuration")

func errOutOfBounds(i int, capacity int) error {
	return fmt.Errorf("%w: index %d not in [0, %d)", ErrBounds, i, capacity)
}
