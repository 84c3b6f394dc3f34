package oc

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junioryono/oc/internal/reflection"
	"github.com/junioryono/oc/namespace"
)

// Container is the object container: a registry that resolves string names
// and type keys to shared instances.
//
// It holds four mappings:
//   - constants: write-once values addressed by dotted names;
//   - aliases: names bound to an entry, last write wins;
//   - registry: entries keyed by the type their constructor produces;
//   - providers: entries keyed by an interface type they implement.
//
// Registration is only allowed while the container is unlocked. Lookups
// work in both states. A Container is safe for concurrent use.
type Container struct {
	id string

	// mu guards the mappings, the lock flag and the binding state.
	// It is never held while a constructor runs.
	mu        sync.RWMutex
	constants map[string]*entry
	aliases   map[string]*entry
	registry  map[reflect.Type]*entry
	providers map[reflect.Type]*entry
	locked    bool
	state     BindingState

	namespace *namespace.Namespace
	analyzer  *reflection.Analyzer
	logger    *zap.Logger
	metrics   *metrics
	maxDepth  int
}

// Counts reports the size of each mapping.
type Counts struct {
	Constants int
	Aliases   int
	Registry  int
	Providers int
}

// New creates an empty, unlocked container.
//
// Example:
//
//	c := oc.New(oc.WithLogger(logger), oc.WithNamespace(ns))
//	if err := c.Inject(NewDatabase); err != nil {
//	    return err
//	}
func New(opts ...Option) *Container {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	id := uuid.NewString()
	c := &Container{
		id:        id,
		namespace: o.namespace,
		analyzer:  reflection.New(),
		logger:    o.logger.With(zap.String("container", id)),
		metrics:   newMetrics(o.registerer, id),
		maxDepth:  o.maxDepth,
	}
	c.resetMappings()

	return c
}

// ID returns the identifier generated when the container was created.
func (c *Container) ID() string {
	return c.id
}

// Namespace returns the namespace the container falls back to, or nil.
func (c *Container) Namespace() *namespace.Namespace {
	return c.namespace
}

// Lock ends the configuration phase. Registration fails until Unlock.
func (c *Container) Lock() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return PhaseError{Operation: "lock", Cause: ErrLocked}
	}

	c.locked = true
	c.logger.Debug("container locked", zap.Stringer("bindingState", c.state))
	return nil
}

// Unlock reopens the container for registration.
func (c *Container) Unlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.locked {
		return PhaseError{Operation: "unlock", Cause: ErrNotLocked}
	}

	c.locked = false
	c.logger.Debug("container unlocked", zap.Stringer("bindingState", c.state))
	return nil
}

// IsLocked reports whether the container is locked.
func (c *Container) IsLocked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locked
}

// SetBindingState switches the phase recorded on entries registered from now on.
func (c *Container) SetBindingState(state BindingState) error {
	if !state.IsValid() {
		return InvalidBindingStateError{Value: state}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return PhaseError{Operation: "set binding state", Cause: ErrLocked}
	}

	c.logger.Debug("binding state changed",
		zap.Stringer("from", c.state),
		zap.Stringer("to", state),
	)
	c.state = state
	return nil
}

// BindingState returns the current binding state.
func (c *Container) BindingState() BindingState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Clear removes every constant, alias, registry entry and provider.
// The lock flag and binding state are left as they are.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetMappings()
	c.logger.Debug("container cleared")
}

// Count returns the number of entries in each mapping.
func (c *Container) Count() Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Counts{
		Constants: len(c.constants),
		Aliases:   len(c.aliases),
		Registry:  len(c.registry),
		Providers: len(c.providers),
	}
}

func (c *Container) resetMappings() {
	c.constants = make(map[string]*entry)
	c.aliases = make(map[string]*entry)
	c.registry = make(map[reflect.Type]*entry)
	c.providers = make(map[reflect.Type]*entry)
}

// checkUnlocked must be called with mu held.
func (c *Container) checkUnlocked(operation string) error {
	if c.locked {
		return PhaseError{Operation: operation, Cause: ErrLocked}
	}
	return nil
}
