// Package digbridge connects an object container with go.uber.org/dig.
//
// Export makes container entries injectable into dig constructors, Import
// registers dig-built types in the container, and Invoke runs a function
// whose parameters are resolved from the container.
//
//	dc := dig.New()
//	if err := digbridge.Export(c, dc, (*Logger)(nil), NewDatabase); err != nil {
//	    return err
//	}
//	err := dc.Invoke(func(logger Logger, db *Database) { ... })
package digbridge

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/dig"

	"github.com/junioryono/oc"
)

var (
	// ErrUnsupportedKey is returned for keys that do not identify a type.
	ErrUnsupportedKey = errors.New("key does not identify a type")

	// ErrNotFunction is returned when Invoke is given something other than a function.
	ErrNotFunction = errors.New("invoke target must be a function")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Export provides every key to dc as a lazy constructor that resolves it
// from c. Keys are type keys: a reflect.Type, a constructor function or a
// nil interface pointer. Keys c cannot resolve fail immediately.
func Export(c *oc.Container, dc *dig.Container, keys ...any) error {
	if c == nil {
		return oc.ErrContainerNil
	}

	for _, key := range keys {
		typ, err := typeOf(key)
		if err != nil {
			return err
		}

		if err := provide(c, dc, key, typ); err != nil {
			return err
		}
	}

	return nil
}

// ExportNamed provides the entry c resolves for name to dc as a named value
// of the type identified by target. Consumers receive it through a dig.In
// field tagged `name:"<name>"`.
func ExportNamed(c *oc.Container, dc *dig.Container, name string, target any) error {
	if c == nil {
		return oc.ErrContainerNil
	}

	typ, err := typeOf(target)
	if err != nil {
		return err
	}

	return provide(c, dc, name, typ, dig.Name(name))
}

func provide(c *oc.Container, dc *dig.Container, key any, typ reflect.Type, opts ...dig.ProvideOption) error {
	if !c.Has(key) {
		return oc.NotFoundError{Key: key}
	}

	fnType := reflect.FuncOf(nil, []reflect.Type{typ, errorType}, false)
	fn := reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		instance, err := c.Get(key)
		if err != nil {
			return failure(typ, err)
		}

		if instance == nil {
			return []reflect.Value{reflect.Zero(typ), reflect.Zero(errorType)}
		}

		v := reflect.ValueOf(instance)
		if !v.Type().AssignableTo(typ) {
			return failure(typ, oc.TypeMismatchError{
				Dependency: key,
				Index:      -1,
				Expected:   typ,
				Actual:     v.Type(),
			})
		}

		return []reflect.Value{v, reflect.Zero(errorType)}
	})

	if err := dc.Provide(fn.Interface(), opts...); err != nil {
		return fmt.Errorf("export %v to dig: %w", typ, err)
	}
	return nil
}

// Import registers each target type in c's registry with a constructor
// that extracts the value from dc. Targets are type keys as for Export.
func Import(c *oc.Container, dc *dig.Container, targets ...any) error {
	if c == nil {
		return oc.ErrContainerNil
	}

	for _, target := range targets {
		typ, err := typeOf(target)
		if err != nil {
			return err
		}

		if err := c.Inject(extractor(dc, typ)); err != nil {
			return err
		}
	}

	return nil
}

// extractor builds a func() (T, error) that invokes dc to obtain T.
func extractor(dc *dig.Container, typ reflect.Type) any {
	fnType := reflect.FuncOf(nil, []reflect.Type{typ, errorType}, false)
	consumerType := reflect.FuncOf([]reflect.Type{typ}, nil, false)

	return reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		result := reflect.Zero(typ)
		consumer := reflect.MakeFunc(consumerType, func(args []reflect.Value) []reflect.Value {
			result = args[0]
			return nil
		})

		if err := dc.Invoke(consumer.Interface()); err != nil {
			return failure(typ, err)
		}
		return []reflect.Value{result, reflect.Zero(errorType)}
	}).Interface()
}

// Invoke calls fn with its parameters resolved from c by type. fn may
// return an error, which is passed through.
func Invoke(c *oc.Container, fn any, opts ...dig.InvokeOption) error {
	if c == nil {
		return oc.ErrContainerNil
	}

	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return ErrNotFunction
	}

	dc := dig.New()
	exported := make(map[reflect.Type]bool, fnType.NumIn())
	for i := range fnType.NumIn() {
		in := fnType.In(i)
		if exported[in] {
			continue
		}
		exported[in] = true

		if err := Export(c, dc, in); err != nil {
			return err
		}
	}

	return dc.Invoke(fn, opts...)
}

func typeOf(key any) (reflect.Type, error) {
	if typ, ok := key.(reflect.Type); ok {
		return typ, nil
	}

	v := reflect.ValueOf(key)
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: <nil>", ErrUnsupportedKey)
	}

	t := v.Type()
	switch {
	case t.Kind() == reflect.Func && t.NumOut() > 0:
		return t.Out(0), nil
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface && v.IsNil():
		return t.Elem(), nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
}

func failure(typ reflect.Type, err error) []reflect.Value {
	return []reflect.Value{reflect.Zero(typ), reflect.ValueOf(&err).Elem()}
}
