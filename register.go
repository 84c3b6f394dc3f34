package oc

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/junioryono/oc/internal/proppath"
	"github.com/junioryono/oc/internal/reflection"
)

// Constant stores value under name. Constants are write-once: name must not
// exist yet, and it must not overlap an existing constant along a dotted
// path ("a.b" blocks both "a.b.c" and "a").
//
// Nested values are reachable by path once stored:
//
//	_ = c.Constant("config", map[string]any{"db": map[string]any{"host": "localhost"}})
//	host, _ := c.Get("config.db.host")
func (c *Container) Constant(name string, value any) error {
	if name == "" {
		return InvalidArgumentError{Operation: "constant", Argument: name, Cause: ErrInvalidKey}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnlocked("constant"); err != nil {
		return err
	}

	if existing, ok := c.constantOverlap(name); ok {
		return ConstantConflictError{Name: name, Existing: existing}
	}

	c.constants[name] = newConstantEntry(value, c.state)
	c.logger.Debug("constant registered",
		zap.String("name", name),
		zap.Stringer("bindingState", c.state),
	)
	return nil
}

// Inject registers constructor in the registry under the type it produces.
//
// Dependencies are taken from the arguments, or from the produced type's
// Dependencies method, or default to the constructor's parameter types.
// If an alias already holds an entry with the same constructor and
// dependencies, that entry is registered so both keys share one instance.
func (c *Container) Inject(constructor any, dependencies ...any) error {
	ctor, err := c.analyzer.Analyze(constructor)
	if err != nil {
		return InvalidArgumentError{Operation: "inject", Argument: constructor, Cause: invalidConstructor(err)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnlocked("inject"); err != nil {
		return err
	}

	_, err = c.inject("inject", ctor, dependencies)
	return err
}

// inject must be called with mu held.
func (c *Container) inject(operation string, ctor *reflection.Constructor, dependencies []any) (*entry, error) {
	if _, ok := c.registry[ctor.Out]; ok {
		return nil, AlreadyRegisteredError{Operation: operation, Type: ctor.Out}
	}

	deps, err := dependenciesFor(ctor, dependencies)
	if err != nil {
		return nil, InvalidArgumentError{Operation: operation, Argument: ctor.Value.Interface(), Cause: err}
	}

	e := c.aliasWithValues(ctor, deps)
	if e == nil {
		e = newEntry(ctor, deps, c.state)
	}

	c.registry[ctor.Out] = e
	c.logger.Debug("type registered",
		zap.String("operation", operation),
		zap.String("type", formatType(ctor.Out)),
		zap.Int("dependencies", len(deps)),
		zap.Stringer("bindingState", c.state),
	)
	return e, nil
}

// Bind sets name as an alias for target, replacing any previous alias.
//
// target is a constructor or a type key. Without dependencies the alias
// reuses the registry entry for the produced type, or failing that the
// provider entry, so they share one instance. With dependencies, or when
// nothing is registered, a new entry is created; a bare type key cannot be
// constructed and fails.
func (c *Container) Bind(name string, target any, dependencies ...any) error {
	if name == "" {
		return InvalidArgumentError{Operation: "bind", Argument: name, Cause: ErrInvalidKey}
	}

	key := normalizeKey(target)
	if key.kind != typeKey {
		return InvalidArgumentError{Operation: "bind", Argument: target, Cause: ErrInvalidConstructor}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnlocked("bind"); err != nil {
		return err
	}

	if existing, ok := c.constantShadow(name); ok {
		return ConstantConflictError{Name: name, Existing: existing}
	}

	var e *entry
	if len(dependencies) == 0 {
		e = c.registry[key.typ]
		if e == nil {
			e = c.providers[key.typ]
		}
	}

	if e == nil {
		if key.ctor == nil {
			return InvalidArgumentError{Operation: "bind", Argument: target, Cause: ErrInvalidConstructor}
		}

		ctor, err := c.analyzer.Analyze(key.ctor)
		if err != nil {
			return InvalidArgumentError{Operation: "bind", Argument: target, Cause: invalidConstructor(err)}
		}

		deps, err := dependenciesFor(ctor, dependencies)
		if err != nil {
			return InvalidArgumentError{Operation: "bind", Argument: target, Cause: err}
		}

		e = newEntry(ctor, deps, c.state)
	}

	if _, ok := c.aliases[name]; ok {
		c.logger.Warn("alias overwritten", zap.String("name", name))
	}

	c.aliases[name] = e
	c.logger.Debug("alias registered",
		zap.String("name", name),
		zap.String("type", formatType(key.typ)),
		zap.Stringer("bindingState", c.state),
	)
	return nil
}

// Provide registers implementation as the provider of iface, an interface
// type key such as (*Logger)(nil) or oc.TypeOf[Logger](). The type produced
// by implementation must be assignable to iface.
func (c *Container) Provide(iface any, implementation any, dependencies ...any) error {
	key := normalizeKey(iface)
	if key.kind != typeKey {
		return InvalidArgumentError{Operation: "provide", Argument: iface, Cause: ErrInvalidKey}
	}

	ctor, err := c.analyzer.Analyze(implementation)
	if err != nil {
		return InvalidArgumentError{Operation: "provide", Argument: implementation, Cause: invalidConstructor(err)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnlocked("provide"); err != nil {
		return err
	}

	if _, ok := c.providers[key.typ]; ok {
		return AlreadyRegisteredError{Operation: "provide", Type: key.typ}
	}

	if !ctor.Out.AssignableTo(key.typ) {
		return ConformanceError{Interface: key.typ, Implementation: ctor.Out}
	}

	deps, err := dependenciesFor(ctor, dependencies)
	if err != nil {
		return InvalidArgumentError{Operation: "provide", Argument: implementation, Cause: err}
	}

	c.providers[key.typ] = newEntry(ctor, deps, c.state)
	c.logger.Debug("provider registered",
		zap.String("interface", formatType(key.typ)),
		zap.String("implementation", formatType(ctor.Out)),
		zap.Stringer("bindingState", c.state),
	)
	return nil
}

// dependenciesFor picks the dependency list for ctor: explicit, then
// declared, then the parameter types.
func dependenciesFor(ctor *reflection.Constructor, explicit []any) ([]any, error) {
	deps := slices.Clone(explicit)
	if len(deps) == 0 {
		if declared, ok := ctor.DeclaredDependencies(); ok {
			deps = declared
		} else {
			deps = ctor.DefaultDependencies()
		}
	}

	if err := ctor.ValidateArgs(len(deps)); err != nil {
		return nil, err
	}
	return deps, nil
}

// aliasWithValues must be called with mu held.
func (c *Container) aliasWithValues(ctor *reflection.Constructor, deps []any) *entry {
	for _, e := range c.aliases {
		if e.sameValues(ctor, deps) {
			return e
		}
	}
	return nil
}

// constantShadow returns the constant that would hide an alias called name.
// It must be called with mu held.
func (c *Container) constantShadow(name string) (string, bool) {
	if _, ok := c.constants[name]; ok {
		return name, true
	}
	for _, ancestor := range proppath.Ancestors(name) {
		if _, ok := c.constants[ancestor]; ok {
			return ancestor, true
		}
	}
	return "", false
}

// constantOverlap extends constantShadow with constants nested below name.
// It must be called with mu held.
func (c *Container) constantOverlap(name string) (string, bool) {
	if existing, ok := c.constantShadow(name); ok {
		return existing, true
	}
	for existing := range c.constants {
		if proppath.IsAncestor(name, existing) {
			return existing, true
		}
	}
	return "", false
}

func invalidConstructor(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidConstructor, err)
}
