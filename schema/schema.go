// Package schema defines TableMetadata, the input the (out-of-scope)
// repository/annotation-scanning layer supplies to the core (spec.md §1,
// §6): the entity name, its fields, and which field is the primary key.
package schema

import (
	"errors"
	"fmt"

	"github.com/Thejuampi/memris-core/typecode"
)

// ErrSchema is the sentinel for an invalid TableMetadata.
var ErrSchema = errors.New("schema: invalid table metadata")

// Field describes one column of an entity.
type Field struct {
	Name             string
	Type             typecode.Code
	IsID             bool
	PrimitiveNonNull bool
}

// TableMetadata is the input consumed by table.NewTyped (spec.md §6).
type TableMetadata struct {
	EntityName string
	Fields     []Field
}

// IDIndex returns the column index of the id field.
func (m TableMetadata) IDIndex() (int, error) {
	for i, f := range m.Fields {
		if f.IsID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s has no id field", ErrSchema, m.EntityName)
}

// IDLane returns the storage lane of the id field — long-lane or
// string-lane per spec.md §4.4 ("K is either integer ... or string").
func (m TableMetadata) IDLane() (typecode.Lane, error) {
	i, err := m.IDIndex()
	if err != nil {
		return 0, err
	}
	lane := typecode.LaneOf(m.Fields[i].Type)
	if lane == typecode.StringLane {
		return typecode.StringLane, nil
	}
	// int-lane ids are promoted to long-lane semantics for PK purposes,
	// per SPEC_FULL.md §6 ("int-lane id columns are promoted to
	// long-lane semantics for PK-index purposes").
	return typecode.LongLane, nil
}

// Validate enforces exactly one id field, whose type resolves to a
// usable PK lane, and non-empty field names.
func Validate(m TableMetadata) error {
	if m.EntityName == "" {
		return fmt.Errorf("%w: empty entity name", ErrSchema)
	}
	if len(m.Fields) == 0 {
		return fmt.Errorf("%w: %s has no fields", ErrSchema, m.EntityName)
	}
	idCount := 0
	for _, f := range m.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s has an unnamed field", ErrSchema, m.EntityName)
		}
		if typecode.LaneOf(f.Type) == 0 {
			return fmt.Errorf("%w: field %s has an unrecognized type code %d", ErrSchema, f.Name, f.Type)
		}
		if f.IsID {
			idCount++
		}
	}
	if idCount != 1 {
		return fmt.Errorf("%w: %s must have exactly one id field, found %d", ErrSchema, m.EntityName, idCount)
	}
	return nil
}
