package oc

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/junioryono/oc/internal/graph"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Typed errors below match these through errors.Is.

var (
	// Resolution errors.
	ErrNotFound   = errors.New("entry not found")
	ErrInvalidKey = errors.New("invalid key")

	// Phase errors.
	ErrLocked    = errors.New("object container is locked")
	ErrNotLocked = errors.New("object container is not locked")

	// Registration errors.
	ErrInvalidConstructor = errors.New("value is not a constructor")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrConstantFrozen     = errors.New("constant is already set")
	ErrNotConformant      = errors.New("implementation does not satisfy the interface")

	ErrContainerNil       = errors.New("object container cannot be nil")
	ErrNoContainer        = errors.New("no object container in context")
	ErrCircularDependency = graph.ErrCircularDependency
)

var (
	_ error = InvalidArgumentError{}
	_ error = AlreadyRegisteredError{}
	_ error = ConstantConflictError{}
	_ error = ConformanceError{}
	_ error = PhaseError{}
	_ error = InvalidBindingStateError{}
	_ error = NotFoundError{}
	_ error = ResolutionError{}
	_ error = TypeMismatchError{}
	_ error = ConstructorInvocationError{}
	_ error = ConstructorPanicError{}
	_ error = ModuleError{}
	_ error = CircularDependencyError{}
)

// CircularDependencyError is returned when an entry depends on itself, directly or not.
type CircularDependencyError = graph.CircularDependencyError

// MaxDepthError is returned when a resolution chain exceeds the configured depth.
type MaxDepthError = graph.MaxDepthError

// InvalidArgumentError indicates a registration argument of the wrong kind,
// typically a non-constructor where a constructor was required.
type InvalidArgumentError struct {
	Operation string
	Argument  any
	Cause     error
}

func (e InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument %s: %v", e.Operation, formatKey(e.Argument), e.Cause)
}

func (e InvalidArgumentError) Unwrap() error {
	return e.Cause
}

// AlreadyRegisteredError indicates a second Inject of the same type or a
// second Provide of the same interface.
type AlreadyRegisteredError struct {
	Operation string
	Type      reflect.Type
}

func (e AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("%s: %s is already registered", e.Operation, formatType(e.Type))
}

func (e AlreadyRegisteredError) Is(target error) bool {
	return target == ErrAlreadyRegistered
}

// ConstantConflictError indicates an attempt to overwrite a constant, either at
// the same name or along a dotted path that overlaps an existing constant.
type ConstantConflictError struct {
	Name     string
	Existing string
}

func (e ConstantConflictError) Error() string {
	if e.Existing == "" || e.Existing == e.Name {
		return fmt.Sprintf("constant %q is already set; constants are write-once", e.Name)
	}
	return fmt.Sprintf("constant %q conflicts with existing constant %q", e.Name, e.Existing)
}

func (e ConstantConflictError) Is(target error) bool {
	return target == ErrConstantFrozen
}

// ConformanceError indicates that a provided implementation cannot be used as its interface.
type ConformanceError struct {
	Interface      reflect.Type
	Implementation reflect.Type
}

func (e ConformanceError) Error() string {
	return fmt.Sprintf("provide: %s does not satisfy %s",
		formatType(e.Implementation), formatType(e.Interface))
}

func (e ConformanceError) Is(target error) bool {
	return target == ErrNotConformant
}

// PhaseError indicates an operation attempted in the wrong lock state.
type PhaseError struct {
	Operation string
	Cause     error
}

func (e PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e PhaseError) Unwrap() error {
	return e.Cause
}

// InvalidBindingStateError indicates an unknown binding state value.
type InvalidBindingStateError struct {
	Value any
}

func (e InvalidBindingStateError) Error() string {
	return fmt.Sprintf("invalid binding state: %v", e.Value)
}

// NotFoundError indicates that no lookup strategy produced an entry for Key.
type NotFoundError struct {
	Key any
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("entry not found: %s", formatKey(e.Key))
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ResolutionError wraps a failure that happened while building the instance for Key.
type ResolutionError struct {
	Key   any
	Cause error
}

func (e ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", formatKey(e.Key), e.Cause)
}

func (e ResolutionError) Unwrap() error {
	return e.Cause
}

// TypeMismatchError indicates a resolved dependency that does not fit the
// constructor parameter it is passed to.
type TypeMismatchError struct {
	Dependency any
	Index      int
	Expected   reflect.Type
	Actual     reflect.Type
}

func (e TypeMismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: expected %s, got %s",
			formatKey(e.Dependency), formatType(e.Expected), formatType(e.Actual))
	}
	return fmt.Sprintf("dependency %d (%s): expected %s, got %s",
		e.Index, formatKey(e.Dependency), formatType(e.Expected), formatType(e.Actual))
}

// ConstructorInvocationError wraps the error returned by a constructor.
type ConstructorInvocationError struct {
	Constructor reflect.Type
	Cause       error
}

func (e ConstructorInvocationError) Error() string {
	return fmt.Sprintf("constructor %s failed: %v", formatType(e.Constructor), e.Cause)
}

func (e ConstructorInvocationError) Unwrap() error {
	return e.Cause
}

// ConstructorPanicError indicates a constructor panicked during invocation.
// It captures the panic value and stack trace for debugging.
type ConstructorPanicError struct {
	Constructor reflect.Type
	Panic       any
	Stack       []byte
}

func (e ConstructorPanicError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("constructor %s panicked: %v\n", formatType(e.Constructor), e.Panic))

	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}

	return b.String()
}

// ModuleError wraps errors from module registration.
type ModuleError struct {
	Module string
	Cause  error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e ModuleError) Unwrap() error {
	return e.Cause
}

// formatKey formats any accepted key for error messages.
func formatKey(key any) string {
	switch k := key.(type) {
	case nil:
		return "<nil>"
	case string:
		return fmt.Sprintf("%q", k)
	case reflect.Type:
		return formatType(k)
	}

	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.Func:
		if v.IsNil() {
			return "<nil func>"
		}
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			return fn.Name()
		}
		return formatType(v.Type())
	case reflect.Pointer:
		if v.IsNil() && v.Type().Elem().Kind() == reflect.Interface {
			return formatType(v.Type().Elem())
		}
	}

	return fmt.Sprintf("%v (%T)", key, key)
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Interface, reflect.Struct:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	case reflect.Func:
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
