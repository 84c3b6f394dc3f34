package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
)

// Declarer is implemented by types that list their own constructor dependencies.
// The container's exported Declarer has the same method set.
type Declarer interface {
	Dependencies() []any
}

var (
	errType      = reflect.TypeOf((*error)(nil)).Elem()
	declarerType = reflect.TypeOf((*Declarer)(nil)).Elem()
)

var (
	ErrNilConstructor = errors.New("constructor cannot be nil")
	ErrNotFunc        = errors.New("constructor must be a function")
	ErrNoReturn       = errors.New("constructor must return a value")
	ErrBadReturns     = errors.New("constructor must return T or (T, error)")
)

// Signature is the cached analysis of a constructor function type.
type Signature struct {
	Func     reflect.Type
	Out      reflect.Type
	Params   []reflect.Type
	HasError bool
	Variadic bool
}

// Constructor pairs a constructor function value with its signature.
type Constructor struct {
	Value reflect.Value
	*Signature
}

// Identity identifies a constructor function. Closures created from the
// same function literal share an identity.
type Identity struct {
	Code uintptr
	Type reflect.Type
}

type cacheKey struct {
	code uintptr
	typ  reflect.Type
}

// Analyzer analyzes constructor functions and caches their signatures.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[cacheKey]*Signature
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[cacheKey]*Signature),
	}
}

// IsConstructor reports whether fn can be analyzed as a constructor.
func IsConstructor(fn any) bool {
	_, err := analyzeType(reflect.TypeOf(fn), reflect.ValueOf(fn))
	return err == nil
}

// Analyze validates fn and returns its constructor description.
func (a *Analyzer) Analyze(fn any) (*Constructor, error) {
	if fn == nil {
		return nil, ErrNilConstructor
	}

	val := reflect.ValueOf(fn)
	typ := val.Type()
	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %s", ErrNotFunc, typ)
	}
	if val.IsNil() {
		return nil, ErrNilConstructor
	}

	key := cacheKey{code: val.Pointer(), typ: typ}

	a.mu.RLock()
	sig, ok := a.cache[key]
	a.mu.RUnlock()
	if ok {
		return &Constructor{Value: val, Signature: sig}, nil
	}

	sig, err := analyzeType(typ, val)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.cache[key] = sig
	a.mu.Unlock()

	return &Constructor{Value: val, Signature: sig}, nil
}

func analyzeType(typ reflect.Type, val reflect.Value) (*Signature, error) {
	if typ == nil {
		return nil, ErrNilConstructor
	}
	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %s", ErrNotFunc, typ)
	}
	if val.IsValid() && val.IsNil() {
		return nil, ErrNilConstructor
	}

	sig := &Signature{
		Func:     typ,
		Variadic: typ.IsVariadic(),
		Params:   make([]reflect.Type, typ.NumIn()),
	}

	for i := range typ.NumIn() {
		sig.Params[i] = typ.In(i)
	}

	switch typ.NumOut() {
	case 0:
		return nil, ErrNoReturn
	case 1:
		if typ.Out(0) == errType {
			return nil, ErrNoReturn
		}
	case 2:
		if typ.Out(1) != errType || typ.Out(0) == errType {
			return nil, ErrBadReturns
		}
		sig.HasError = true
	default:
		return nil, ErrBadReturns
	}

	sig.Out = typ.Out(0)
	return sig, nil
}

// makeFuncCode is the code pointer shared by every function built with
// reflect.MakeFunc.
var makeFuncCode = reflect.MakeFunc(reflect.TypeOf(func() {}), nil).Pointer()

// Identity returns the identity of the constructor function.
func (c *Constructor) Identity() Identity {
	return Identity{Code: c.Value.Pointer(), Type: c.Func}
}

// Synthetic reports whether the constructor was built with reflect.MakeFunc.
// Such functions share one code pointer, so Identity cannot tell them apart.
func (c *Constructor) Synthetic() bool {
	return c.Value.Pointer() == makeFuncCode
}

// ValidateArgs checks that n positional arguments fit the constructor.
func (c *Constructor) ValidateArgs(n int) error {
	fixed := len(c.Params)
	if c.Variadic {
		fixed--
		if n < fixed {
			return fmt.Errorf("constructor %s needs at least %d dependencies, got %d", c.Func, fixed, n)
		}
		return nil
	}

	if n != fixed {
		return fmt.Errorf("constructor %s needs %d dependencies, got %d", c.Func, fixed, n)
	}
	return nil
}

// ParamType returns the type expected at argument position i.
func (c *Constructor) ParamType(i int) reflect.Type {
	last := len(c.Params) - 1
	if c.Variadic && i >= last {
		return c.Params[last].Elem()
	}
	return c.Params[i]
}

// DefaultDependencies returns the parameter types as dependency keys.
// The variadic tail contributes no dependency.
func (c *Constructor) DefaultDependencies() []any {
	n := len(c.Params)
	if c.Variadic {
		n--
	}

	deps := make([]any, n)
	for i := range n {
		deps[i] = c.Params[i]
	}
	return deps
}

// DeclaredDependencies returns the dependency list declared by the produced type.
func (c *Constructor) DeclaredDependencies() ([]any, bool) {
	return DeclaredDependencies(c.Out)
}

// DeclaredDependencies calls Dependencies on a fresh zero value of t when t
// implements Declarer. A nil declaration counts as an empty list.
func DeclaredDependencies(t reflect.Type) (deps []any, ok bool) {
	if t == nil || !t.Implements(declarerType) {
		return nil, false
	}

	var v reflect.Value
	switch t.Kind() {
	case reflect.Interface:
		return nil, false
	case reflect.Pointer:
		v = reflect.New(t.Elem())
	default:
		v = reflect.New(t).Elem()
	}

	defer func() {
		if recover() != nil {
			deps, ok = nil, false
		}
	}()

	deps = v.Interface().(Declarer).Dependencies()
	if deps == nil {
		deps = []any{}
	}
	return deps, true
}

// ArgumentError reports a resolved dependency that does not fit its parameter.
type ArgumentError struct {
	Index    int
	Expected reflect.Type
	Actual   reflect.Type
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %d: %s is not assignable to %s", e.Index, e.Actual, e.Expected)
}

// PanicError carries a panic raised by a constructor.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("constructor panicked: %v", e.Value)
}

// ReturnedError wraps the error returned by a constructor.
type ReturnedError struct {
	Cause error
}

func (e *ReturnedError) Error() string {
	return e.Cause.Error()
}

func (e *ReturnedError) Unwrap() error {
	return e.Cause
}

// Invoke calls the constructor with args in order.
func (c *Constructor) Invoke(args []any) (instance any, err error) {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := c.ParamType(i)
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}

		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) {
			return nil, &ArgumentError{Index: i, Expected: want, Actual: v.Type()}
		}
		in[i] = v
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	out := c.Value.Call(in)

	if c.HasError && !out[1].IsNil() {
		return nil, &ReturnedError{Cause: out[1].Interface().(error)}
	}

	return out[0].Interface(), nil
}
