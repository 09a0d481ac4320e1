package settings

import (
	"strconv"

	"periphkit-go/errcode"
)

// Container holds one value per label of its schema.
// It never grows or shrinks; every slot starts at its sentinel.
type Container[L Label] struct {
	schema *Schema[L]
	values []any
}

// New builds a container with every field at its sentinel.
func New[L Label](s *Schema[L]) *Container[L] {
	s.Seal()
	c := &Container[L]{schema: s, values: make([]any, len(s.fields))}
	c.Clear()
	return c
}

// NewWith builds a container and assigns values in label order.
func NewWith[L Label](s *Schema[L], values ...any) (*Container[L], error) {
	c := New(s)
	if err := c.SetAll(values...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container[L]) Schema() *Schema[L] { return c.schema }
func (c *Container[L]) Len() int           { return len(c.values) }

// Get returns the current value of a field.
func Get[L Label, T comparable](c *Container[L], f Field[L, T]) T {
	c.check(f.schema)
	return c.values[int(f.label)].(T)
}

// Set replaces the value of a field.
func Set[L Label, T comparable](c *Container[L], f Field[L, T], v T) {
	c.check(f.schema)
	c.values[int(f.label)] = v
}

func (c *Container[L]) check(s *Schema[L]) {
	if s != c.schema {
		panic("settings: field of schema " + s.name + " used on container of " + c.schema.name)
	}
}

// Value returns the current value of a label as an interface.
func (c *Container[L]) Value(label L) any { return c.values[int(label)] }

// SetValue replaces one field. The dynamic type of v must be the field's
// declared type exactly.
func (c *Container[L]) SetValue(label L, v any) error {
	i := int(label)
	if i >= len(c.values) {
		return errcode.New(errcode.InvalidParams, "set_value", "label "+strconv.Itoa(i)+" out of range")
	}
	if !c.schema.fields[i].accepts(v) {
		return errcode.New(errcode.ArgumentTypeNotAllowed, "set_value", c.schema.fields[i].name)
	}
	c.values[i] = v
	return nil
}

// SetAll replaces every field, in label order. Nothing is written unless the
// count and every type match.
func (c *Container[L]) SetAll(values ...any) error {
	if len(values) != len(c.values) {
		return errcode.New(errcode.InvalidParams, "set_all",
			"want "+strconv.Itoa(len(c.values))+" values, got "+strconv.Itoa(len(values)))
	}
	for i, v := range values {
		if !c.schema.fields[i].accepts(v) {
			return errcode.New(errcode.ArgumentTypeNotAllowed, "set_all", c.schema.fields[i].name)
		}
	}
	copy(c.values, values)
	return nil
}

// Clear resets every field to its sentinel.
func (c *Container[L]) Clear() {
	for i, f := range c.schema.fields {
		c.values[i] = f.sentinel
	}
}

// IsSet reports whether a field differs from its sentinel.
func (c *Container[L]) IsSet(label L) bool {
	i := int(label)
	return c.values[i] != c.schema.fields[i].sentinel
}

// ApplyToAll calls fn once per field, in label order, with the same extra args.
func (c *Container[L]) ApplyToAll(fn func(label L, value any, args ...any), args ...any) {
	for i, v := range c.values {
		fn(L(i), v, args...)
	}
}

// ApplyPairwise calls fn(label_i, value_i, args[i]) for every label.
// The number of args must equal the number of fields.
func (c *Container[L]) ApplyPairwise(fn func(label L, value, arg any), args ...any) error {
	if len(args) != len(c.values) {
		return errcode.New(errcode.InvalidParams, "apply_pairwise",
			"want "+strconv.Itoa(len(c.values))+" args, got "+strconv.Itoa(len(args)))
	}
	for i, v := range c.values {
		fn(L(i), v, args[i])
	}
	return nil
}

// FindByType returns, in label order, the labels whose declared type is T.
func FindByType[T comparable, L Label](c *Container[L]) []L {
	k := kindOf[T]()
	var out []L
	for i, f := range c.schema.fields {
		if f.kind == k {
			out = append(out, L(i))
		}
	}
	return out
}

// FindByTypeAndValue returns, in label order, the labels whose declared type
// is T and whose current value equals v.
func FindByTypeAndValue[T comparable, L Label](c *Container[L], v T) []L {
	k := kindOf[T]()
	var out []L
	for i, f := range c.schema.fields {
		if f.kind == k && c.values[i].(T) == v {
			out = append(out, L(i))
		}
	}
	return out
}

// Clone returns an independent copy.
func (c *Container[L]) Clone() *Container[L] {
	n := &Container[L]{schema: c.schema, values: make([]any, len(c.values))}
	copy(n.values, c.values)
	return n
}

// CopyFrom overwrites every field with the values of src.
func (c *Container[L]) CopyFrom(src *Container[L]) {
	c.check(src.schema)
	copy(c.values, src.values)
}
