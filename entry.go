package oc

import (
	"reflect"
	"sync"

	"github.com/junioryono/oc/internal/graph"
	"github.com/junioryono/oc/internal/reflection"
)

// entry is the binding record behind every key: a constructor, the keys of
// its dependencies, and the shared instance once built.
//
// constructor and dependencies never change after creation. instance moves
// from unset to set at most once, and only for shared entries.
type entry struct {
	constructor  *reflection.Constructor
	dependencies []any
	shared       bool
	state        BindingState

	mu          sync.Mutex
	instance    any
	hasInstance bool
	inflight    chan struct{}

	// builder and builderChain identify the goroutine holding the claim
	// and the resolution path it is building on.
	builder      uint64
	builderChain *graph.Chain
}

// newEntry creates a shared entry built by constructor.
func newEntry(constructor *reflection.Constructor, dependencies []any, state BindingState) *entry {
	return &entry{
		constructor:  constructor,
		dependencies: dependencies,
		shared:       true,
		state:        state,
	}
}

// newTransientEntry creates an entry whose instances are never cached.
func newTransientEntry(constructor *reflection.Constructor, dependencies []any, state BindingState) *entry {
	e := newEntry(constructor, dependencies, state)
	e.shared = false
	return e
}

// newConstantEntry creates an entry that already holds value.
func newConstantEntry(value any, state BindingState) *entry {
	return &entry{
		shared:      true,
		state:       state,
		instance:    value,
		hasInstance: true,
	}
}

// cached returns the shared instance. Presence is tracked explicitly so
// false, 0 and nil are valid cached values.
func (e *entry) cached() (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instance, e.hasInstance
}

// begin returns the cached instance if there is one. Otherwise the caller
// becomes the builder and must call finish. Callers arriving while another
// goroutine builds wait for it; if that build fails the next waiter takes over.
//
// A caller on the goroutine that holds the claim would wait on itself. It
// gets the cycle on the builder's path instead.
func (e *entry) begin(node graph.NodeKey, chain *graph.Chain) (any, bool, error) {
	gid := graph.GoroutineID()

	for {
		e.mu.Lock()
		if e.hasInstance {
			instance := e.instance
			e.mu.Unlock()
			return instance, true, nil
		}

		if e.inflight == nil {
			e.inflight = make(chan struct{})
			e.builder = gid
			e.builderChain = chain
			e.mu.Unlock()
			return nil, false, nil
		}

		if gid != 0 && e.builder == gid {
			builderChain := e.builderChain
			e.mu.Unlock()
			return nil, false, reentrant(node, builderChain)
		}

		wait := e.inflight
		e.mu.Unlock()
		<-wait
	}
}

// reentrant reports node as a cycle on the path that is building it.
func reentrant(node graph.NodeKey, builderChain *graph.Chain) error {
	if builderChain != nil {
		if err := builderChain.Push(node); err != nil {
			return err
		}
		builderChain.Pop()
	}
	return graph.CircularDependencyError{Node: node}
}

// finish publishes the outcome of a build claimed with begin.
func (e *entry) finish(instance any, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ok {
		e.instance = instance
		e.hasInstance = true
	}

	if e.inflight != nil {
		close(e.inflight)
		e.inflight = nil
	}
	e.builder = 0
	e.builderChain = nil
}

// isConstant reports whether the entry wraps a plain value.
func (e *entry) isConstant() bool {
	return e.constructor == nil
}

// producedType is the type the entry builds, or the dynamic type of a constant.
func (e *entry) producedType() reflect.Type {
	if e.constructor != nil {
		return e.constructor.Out
	}
	if v, ok := e.cached(); ok && v != nil {
		return reflect.TypeOf(v)
	}
	return nil
}

// sameValues reports whether the entry was created from constructor with an
// equal dependency list. Constructors built with reflect.MakeFunc never match.
func (e *entry) sameValues(constructor *reflection.Constructor, dependencies []any) bool {
	if e.constructor == nil || constructor == nil {
		return false
	}
	if e.constructor.Synthetic() || constructor.Synthetic() {
		return false
	}
	return e.constructor.Identity() == constructor.Identity() &&
		dependenciesEqual(e.dependencies, dependencies)
}
