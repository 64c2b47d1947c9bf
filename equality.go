// Equality policies: the per-table rule deciding whether two rows are the
// same for change-detection purposes.

package livetable

import (
	"fmt"
	"reflect"
	"strings"
)

// Equality reports whether two rows are the same for change detection. It is
// total and only ever used to compare query results element-wise, never to
// establish row identity anywhere else.
type Equality[T any] func(a, b T) bool

type policyKind int

const (
	policyIdentity policyKind = iota
	policyField
	policyFunc
)

// Policy is a tagged equality rule. It is resolved exactly once, when a
// table is created, and never re-inspected afterward. The zero value is
// [Identity].
type Policy[T any] struct {
	kind  policyKind
	field string
	fn    func(a, b T) bool
}

// Identity compares whole rows with ==. Pointer rows compare by pointer.
// Compiling it fails if T is not a comparable type.
func Identity[T any]() Policy[T] {
	return Policy[T]{kind: policyIdentity}
}

// ByField compares rows by a single named field, shallowly. The field is
// resolved on the row's struct type by Go name or json tag name.
func ByField[T any](name string) Policy[T] {
	return Policy[T]{kind: policyField, field: name}
}

// ByFunc uses fn verbatim.
func ByFunc[T any](fn func(a, b T) bool) Policy[T] {
	return Policy[T]{kind: policyFunc, fn: fn}
}

// compile resolves the policy against the concrete row type.
func (p Policy[T]) compile() (Equality[T], error) {
	switch p.kind {
	case policyIdentity:
		if t := reflect.TypeFor[T](); !t.Comparable() {
			return nil, fmt.Errorf("%w: %s is not comparable", ErrInvalidEquality, t)
		}
		return func(a, b T) bool { return any(a) == any(b) }, nil
	case policyField:
		return compileFieldEquality[T](p.field)
	case policyFunc:
		if p.fn == nil {
			return nil, fmt.Errorf("%w: nil equality function", ErrInvalidEquality)
		}
		return p.fn, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy kind %d", ErrInvalidEquality, p.kind)
	}
}

func compileFieldEquality[T any](name string) (Equality[T], error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty field name", ErrInvalidEquality)
	}
	t := reflect.TypeFor[T]()
	isPtr := t.Kind() == reflect.Ptr
	if isPtr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidEquality, reflect.TypeFor[T]())
	}
	field, ok := fieldByName(t, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrInvalidEquality, t, name)
	}
	if !field.Type.Comparable() {
		return nil, fmt.Errorf("%w: field %q of %s is not comparable", ErrInvalidEquality, name, t)
	}
	idx := field.Index
	return func(a, b T) bool {
		va := reflect.ValueOf(a)
		vb := reflect.ValueOf(b)
		if isPtr {
			if va.IsNil() || vb.IsNil() {
				return va.IsNil() == vb.IsNil()
			}
			va = va.Elem()
			vb = vb.Elem()
		}
		return va.FieldByIndex(idx).Interface() == vb.FieldByIndex(idx).Interface()
	}, nil
}

// fieldByName resolves an exported field by Go name, falling back to json
// tag names so policies can use the same names as the serialized rows.
func fieldByName(t reflect.Type, name string) (reflect.StructField, bool) {
	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return f, true
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		if strings.Split(tag, ",")[0] == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}
