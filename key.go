package oc

import (
	"reflect"

	"github.com/junioryono/oc/internal/reflection"
)

// Declarer is implemented by types that declare the dependency keys their
// constructor needs. Dependencies is called on a fresh zero value, so it
// must not depend on instance state.
//
//	type UserService struct{ db *Database }
//
//	func (*UserService) Dependencies() []any { return []any{"db.primary"} }
type Declarer interface {
	Dependencies() []any
}

var _ reflection.Declarer = Declarer(nil)

// TypeOf returns the reflect.Type of T, usable as a key for Get, Has,
// Provide and Bind. It works for interface types:
//
//	oc.TypeOf[Logger]()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

type keyKind int

const (
	invalidKey keyKind = iota
	stringKey
	typeKey
)

// normalizedKey is the resolved form of a key passed to the container.
type normalizedKey struct {
	kind keyKind
	name string
	typ  reflect.Type

	// ctor is set when the key was a constructor function.
	ctor any
}

// normalizeKey turns a string, reflect.Type, constructor func or nil
// interface pointer into a normalizedKey.
func normalizeKey(key any) normalizedKey {
	switch k := key.(type) {
	case string:
		return normalizedKey{kind: stringKey, name: k}
	case reflect.Type:
		return normalizedKey{kind: typeKey, typ: k}
	}

	v := reflect.ValueOf(key)
	if !v.IsValid() {
		return normalizedKey{}
	}

	switch v.Kind() {
	case reflect.Func:
		if !reflection.IsConstructor(key) {
			return normalizedKey{}
		}
		return normalizedKey{kind: typeKey, typ: v.Type().Out(0), ctor: key}
	case reflect.Pointer:
		if v.IsNil() && v.Type().Elem().Kind() == reflect.Interface {
			return normalizedKey{kind: typeKey, typ: v.Type().Elem()}
		}
	}

	return normalizedKey{}
}

// keysEqual compares two dependency keys. Functions compare by code pointer.
func keysEqual(a, b any) (equal bool) {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return !va.IsValid() && !vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Func {
		return va.Pointer() == vb.Pointer()
	}
	if !va.Type().Comparable() {
		return reflect.DeepEqual(a, b)
	}

	defer func() {
		if recover() != nil {
			equal = reflect.DeepEqual(a, b)
		}
	}()
	return a == b
}

// dependenciesEqual compares two dependency lists element-wise, in order.
func dependenciesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !keysEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
