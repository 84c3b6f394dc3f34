// Package proppath walks dotted property paths through arbitrary Go values.
package proppath

import (
	"reflect"
	"strconv"
	"strings"
)

// Separator splits path segments.
const Separator = "."

// Split splits a dotted path into segments.
func Split(path string) []string {
	return strings.Split(path, Separator)
}

// Join joins segments into a dotted path.
func Join(segments []string) string {
	return strings.Join(segments, Separator)
}

// Ancestors returns every proper dotted prefix of path, longest first.
// "a.b.c" yields "a.b", "a".
func Ancestors(path string) []string {
	segments := Split(path)
	out := make([]string, 0, len(segments)-1)
	for i := len(segments) - 1; i > 0; i-- {
		out = append(out, Join(segments[:i]))
	}
	return out
}

// IsAncestor reports whether ancestor is a proper dotted prefix of path.
func IsAncestor(ancestor, path string) bool {
	return len(path) > len(ancestor) &&
		strings.HasPrefix(path, ancestor) &&
		path[len(ancestor):len(ancestor)+1] == Separator
}

// Lookup walks segments starting at value. Maps are indexed by string keys,
// structs by exported field name, slices and arrays by decimal index.
// Pointers and interfaces are followed, including nil embedded pointers on
// the way to a promoted field. A missing step or a nil result reports false.
func Lookup(value any, segments []string) (any, bool) {
	cur := reflect.ValueOf(value)

	for _, seg := range segments {
		cur = indirect(cur)
		if !cur.IsValid() {
			return nil, false
		}

		switch cur.Kind() {
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			next := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !next.IsValid() {
				return nil, false
			}
			cur = next
		case reflect.Struct:
			field, ok := cur.Type().FieldByName(seg)
			if !ok || !field.IsExported() {
				return nil, false
			}
			next, err := cur.FieldByIndexErr(field.Index)
			if err != nil {
				return nil, false
			}
			cur = next
		case reflect.Slice, reflect.Array:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(i)
		default:
			return nil, false
		}
	}

	if isNil(cur) {
		return nil, false
	}
	return cur.Interface(), true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
