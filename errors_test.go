package oc

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/oc/internal/graph"
)

func TestSentinelErrors(t *testing.T) {
	sentinelErrors := []struct {
		err     error
		message string
	}{
		{ErrNotFound, "entry not found"},
		{ErrInvalidKey, "invalid key"},
		{ErrLocked, "object container is locked"},
		{ErrNotLocked, "object container is not locked"},
		{ErrInvalidConstructor, "value is not a constructor"},
		{ErrAlreadyRegistered, "already registered"},
		{ErrConstantFrozen, "constant is already set"},
		{ErrNotConformant, "implementation does not satisfy the interface"},
		{ErrContainerNil, "object container cannot be nil"},
		{ErrNoContainer, "no object container in context"},
		{ErrCircularDependency, "circular dependency detected"},
	}

	for _, tt := range sentinelErrors {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestTypedErrors(t *testing.T) {
	cause := errors.New("cause")
	dbType := reflect.TypeOf(&TDatabase{})
	loggerType := reflect.TypeOf((*TLogger)(nil)).Elem()

	tests := []struct {
		name     string
		err      error
		expected string
		is       error
	}{
		{
			name:     "invalid argument",
			err:      InvalidArgumentError{Operation: "inject", Argument: 42, Cause: ErrInvalidConstructor},
			expected: "inject: invalid argument 42 (int): value is not a constructor",
			is:       ErrInvalidConstructor,
		},
		{
			name:     "already registered",
			err:      AlreadyRegisteredError{Operation: "inject", Type: dbType},
			expected: "inject: *TDatabase is already registered",
			is:       ErrAlreadyRegistered,
		},
		{
			name:     "constant frozen",
			err:      ConstantConflictError{Name: "a"},
			expected: `constant "a" is already set; constants are write-once`,
			is:       ErrConstantFrozen,
		},
		{
			name:     "constant overlap",
			err:      ConstantConflictError{Name: "a.b.c", Existing: "a.b"},
			expected: `constant "a.b.c" conflicts with existing constant "a.b"`,
			is:       ErrConstantFrozen,
		},
		{
			name:     "conformance",
			err:      ConformanceError{Interface: loggerType, Implementation: dbType},
			expected: "provide: *TDatabase does not satisfy TLogger",
			is:       ErrNotConformant,
		},
		{
			name:     "phase",
			err:      PhaseError{Operation: "bind", Cause: ErrLocked},
			expected: "bind: object container is locked",
			is:       ErrLocked,
		},
		{
			name:     "not found",
			err:      NotFoundError{Key: "db.primary"},
			expected: `entry not found: "db.primary"`,
			is:       ErrNotFound,
		},
		{
			name:     "resolution",
			err:      ResolutionError{Key: loggerType, Cause: cause},
			expected: "failed to resolve TLogger: cause",
			is:       cause,
		},
		{
			name:     "constructor invocation",
			err:      ConstructorInvocationError{Constructor: reflect.TypeOf(NewTFailing), Cause: cause},
			expected: "constructor func() (*oc.TDatabase, error) failed: cause",
			is:       cause,
		},
		{
			name:     "module",
			err:      ModuleError{Module: "storage", Cause: cause},
			expected: `module "storage": cause`,
			is:       cause,
		},
		{
			name:     "type mismatch",
			err:      TypeMismatchError{Dependency: "port", Index: 0, Expected: reflect.TypeOf(""), Actual: reflect.TypeOf(0)},
			expected: `dependency 0 ("port"): expected string, got int`,
		},
		{
			name:     "binding state",
			err:      InvalidBindingStateError{Value: "boot"},
			expected: "invalid binding state: boot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			if tt.is != nil {
				assert.ErrorIs(t, tt.err, tt.is)
			}
		})
	}
}

func TestConstructorPanicError(t *testing.T) {
	err := ConstructorPanicError{
		Constructor: reflect.TypeOf(NewTPanicking),
		Panic:       "boom",
		Stack:       []byte("goroutine 1 [running]:"),
	}

	assert.Contains(t, err.Error(), "constructor func() *oc.TDatabase panicked: boom")
	assert.Contains(t, err.Error(), "Stack trace:\ngoroutine 1 [running]:")
}

func TestCircularDependencyError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", CircularDependencyError{
		Node: graph.NodeKey{ID: 1, Label: "a"},
		Path: []graph.NodeKey{{ID: 1, Label: "a"}, {ID: 2, Label: "b"}},
	})

	assert.ErrorIs(t, err, ErrCircularDependency)

	var cycle CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Contains(t, cycle.Error(), "    a\n      ↓\n    b\n      ↓\n    a (cycle)")
}

func TestFormatKey(t *testing.T) {
	tests := []struct {
		name     string
		key      any
		expected string
	}{
		{name: "nil", key: nil, expected: "<nil>"},
		{name: "string", key: "app.name", expected: `"app.name"`},
		{name: "type", key: reflect.TypeOf(&TDatabase{}), expected: "*TDatabase"},
		{name: "interface pointer", key: (*TLogger)(nil), expected: "TLogger"},
		{name: "function", key: NewTDatabase, expected: "github.com/junioryono/oc.NewTDatabase"},
		{name: "nil function", key: (func() *TDatabase)(nil), expected: "<nil func>"},
		{name: "other", key: 42, expected: "42 (int)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatKey(tt.key))
		})
	}
}

func TestFormatType(t *testing.T) {
	tests := []struct {
		name     string
		typ      reflect.Type
		expected string
	}{
		{name: "nil", typ: nil, expected: "<nil>"},
		{name: "pointer", typ: reflect.TypeOf(&TDatabase{}), expected: "*TDatabase"},
		{name: "struct", typ: reflect.TypeOf(TConfig{}), expected: "TConfig"},
		{name: "slice", typ: reflect.TypeOf([]TConfig{}), expected: "[]TConfig"},
		{name: "builtin", typ: reflect.TypeOf(0), expected: "int"},
		{name: "map", typ: reflect.TypeOf(map[string]any{}), expected: "map[string]interface {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatType(tt.typ))
		})
	}
}
