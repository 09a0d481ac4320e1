// Package settings provides a labeled, heterogeneous, fixed-size record.
//
// A Schema names every field of a peripheral's configuration by a label drawn
// from a small unsigned enumeration and fixes each field's Go type. Containers
// built from a schema hold one value per label. Typed access goes through
// Field handles, so a value of the wrong type is rejected by the compiler;
// the untyped helpers (SetAll, SetValue) check the type at run time instead.
package settings

import (
	"strconv"

	"golang.org/x/exp/constraints"
)

// Label identifies one field of a settings record.
type Label interface {
	constraints.Unsigned
}

type fieldDef struct {
	name     string
	declared bool
	sentinel any
	kind     any // (*T)(nil); equal interfaces iff identical declared types
	accepts  func(any) bool
}

// Schema declares the label set and the per-label field types.
// A schema is built once per driver type, typically in package-level vars.
type Schema[L Label] struct {
	name   string
	fields []fieldDef
	sealed bool
}

// NewSchema returns a schema with room for exactly count labels (0..count-1).
func NewSchema[L Label](name string, count L) *Schema[L] {
	if count == 0 {
		panic("settings: schema " + name + " has no labels")
	}
	return &Schema[L]{name: name, fields: make([]fieldDef, int(count))}
}

// Field is a typed handle on one label of a schema.
type Field[L Label, T comparable] struct {
	schema *Schema[L]
	label  L
}

func (f Field[L, T]) Label() L { return f.label }

// Declare fixes the type and the "unset" sentinel of one label.
// Declaring the same label twice, declaring after the schema was sealed, or
// declaring a label outside the schema's range panics.
func Declare[L Label, T comparable](s *Schema[L], label L, name string, sentinel T) Field[L, T] {
	if s.sealed {
		panic("settings: schema " + s.name + " is sealed")
	}
	i := int(label)
	if i >= len(s.fields) {
		panic("settings: label " + strconv.Itoa(i) + " out of range for " + s.name)
	}
	if s.fields[i].declared {
		panic("settings: label " + name + " declared twice in " + s.name)
	}
	s.fields[i] = fieldDef{
		name:     name,
		declared: true,
		sentinel: sentinel,
		kind:     kindOf[T](),
		accepts:  func(v any) bool { _, ok := v.(T); return ok },
	}
	return Field[L, T]{schema: s, label: label}
}

func kindOf[T any]() any { return (*T)(nil) }

// Seal checks that every label has a declared field. It replaces a
// compile-time count check: a schema whose labels and fields disagree panics
// the first time a container is built from it.
func (s *Schema[L]) Seal() {
	if s.sealed {
		return
	}
	for i, f := range s.fields {
		if !f.declared {
			panic("settings: label " + strconv.Itoa(i) + " has no field in " + s.name)
		}
	}
	s.sealed = true
}

func (s *Schema[L]) Name() string { return s.name }
func (s *Schema[L]) Len() int     { return len(s.fields) }

// Labels returns every label in declaration order.
func (s *Schema[L]) Labels() []L {
	out := make([]L, len(s.fields))
	for i := range s.fields {
		out[i] = L(i)
	}
	return out
}

// FieldName returns the declared name of a label, or its ordinal if unknown.
func (s *Schema[L]) FieldName(label L) string {
	i := int(label)
	if i < len(s.fields) && s.fields[i].declared {
		return s.fields[i].name
	}
	return strconv.Itoa(i)
}

// Sentinel returns the unset value of a label.
func (s *Schema[L]) Sentinel(label L) any { return s.fields[int(label)].sentinel }
