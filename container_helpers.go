package oc

import (
	"fmt"
	"reflect"
)

// Resolve resolves the instance registered for type T.
//
// Example:
//
//	db, err := oc.Resolve[*Database](c)
//	logger, err := oc.Resolve[Logger](c) // interface provider
func Resolve[T any](c *Container) (T, error) {
	return ResolveKey[T](c, TypeOf[T]())
}

// ResolveKey resolves key and asserts the instance to T.
//
// Example:
//
//	host, err := oc.ResolveKey[string](c, "config.db.host")
func ResolveKey[T any](c *Container, key any) (T, error) {
	var zero T

	if c == nil {
		return zero, ErrContainerNil
	}

	instance, err := c.Get(key)
	if err != nil {
		return zero, err
	}

	if instance == nil {
		return zero, nil
	}

	result, ok := instance.(T)
	if !ok {
		return zero, TypeMismatchError{
			Dependency: key,
			Index:      -1,
			Expected:   TypeOf[T](),
			Actual:     reflect.TypeOf(instance),
		}
	}

	return result, nil
}

// MustResolve is like Resolve but panics on error. Useful during startup
// where a missing entry is fatal.
func MustResolve[T any](c *Container) T {
	result, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", formatType(TypeOf[T]()), err))
	}

	return result
}

// MustResolveKey is like ResolveKey but panics on error.
func MustResolveKey[T any](c *Container, key any) T {
	result, err := ResolveKey[T](c, key)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", formatKey(key), err))
	}

	return result
}

// MustGet is like Get but panics on error.
func (c *Container) MustGet(key any) any {
	instance, err := c.Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", formatKey(key), err))
	}

	return instance
}
