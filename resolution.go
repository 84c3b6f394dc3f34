package oc

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/junioryono/oc/internal/graph"
	"github.com/junioryono/oc/internal/proppath"
	"github.com/junioryono/oc/internal/reflection"
)

var errBuildAborted = errors.New("construction aborted")

// Get returns the instance for key, constructing it on first use.
//
// key is a string (alias, dotted constant path or dotted namespace path),
// a reflect.Type, a constructor function, or a nil interface pointer such
// as (*Logger)(nil). Lookup order is constants, aliases, registry,
// providers, namespace, then the declared-dependencies convention.
func (c *Container) Get(key any) (any, error) {
	instance, err := c.get(key, graph.NewChain(c.maxDepth))
	if err != nil {
		c.metrics.failed()
		return nil, err
	}
	return instance, nil
}

// Has reports whether Get would find an entry for key. It never registers,
// constructs or caches anything.
func (c *Container) Has(key any) bool {
	_, _, err := c.lookup(key, false)
	return err == nil
}

// Create builds a fresh instance for key without caching it. A non-empty
// dependencies list replaces the entry's own. Constants return their value.
func (c *Container) Create(key any, dependencies ...any) (any, error) {
	instance, err := c.create(key, dependencies)
	if err != nil {
		c.metrics.failed()
		return nil, err
	}
	return instance, nil
}

func (c *Container) create(key any, dependencies []any) (any, error) {
	e, strategy, err := c.lookup(key, true)
	if err != nil {
		return nil, err
	}
	c.metrics.resolved(strategy)

	if e.isConstant() {
		instance, _ := e.cached()
		return instance, nil
	}

	deps := e.dependencies
	if len(dependencies) > 0 {
		if err := e.constructor.ValidateArgs(len(dependencies)); err != nil {
			return nil, InvalidArgumentError{Operation: "create", Argument: key, Cause: err}
		}
		deps = dependencies
	}

	chain := graph.NewChain(c.maxDepth)
	if err := chain.Push(nodeFor(key, e)); err != nil {
		return nil, err
	}
	defer chain.Pop()

	return c.build(key, e, deps, chain)
}

// get resolves key on chain, the path of entries being constructed by the
// calling goroutine.
func (c *Container) get(key any, chain *graph.Chain) (any, error) {
	e, strategy, err := c.lookup(key, true)
	if err != nil {
		return nil, err
	}
	c.metrics.resolved(strategy)

	if instance, ok := e.cached(); ok {
		return instance, nil
	}

	node := nodeFor(key, e)
	if err := chain.Push(node); err != nil {
		return nil, err
	}
	defer chain.Pop()

	if !e.shared {
		return c.build(key, e, e.dependencies, chain)
	}

	instance, ok, err := e.begin(node, chain)
	if err != nil || ok {
		return instance, err
	}

	err = errBuildAborted
	defer func() {
		e.finish(instance, err == nil)
	}()

	instance, err = c.build(key, e, e.dependencies, chain)
	return instance, err
}

// build resolves deps in order and invokes the entry's constructor.
func (c *Container) build(key any, e *entry, deps []any, chain *graph.Chain) (any, error) {
	args := make([]any, len(deps))
	for i, dep := range deps {
		arg, err := c.get(dep, chain)
		if err != nil {
			var cycle CircularDependencyError
			var depth MaxDepthError
			if errors.As(err, &cycle) || errors.As(err, &depth) {
				return nil, err
			}
			return nil, ResolutionError{Key: key, Cause: err}
		}
		args[i] = arg
	}

	instance, err := e.constructor.Invoke(args)
	if err != nil {
		return nil, c.invocationError(key, e, deps, err)
	}

	c.metrics.instanceCreated()
	c.logger.Debug("instance created",
		zap.String("key", formatKey(key)),
		zap.String("type", formatType(e.constructor.Out)),
		zap.Bool("shared", e.shared),
	)
	return instance, nil
}

func (c *Container) invocationError(key any, e *entry, deps []any, err error) error {
	var argErr *reflection.ArgumentError
	var panicErr *reflection.PanicError
	var returned *reflection.ReturnedError

	switch {
	case errors.As(err, &argErr):
		return ResolutionError{Key: key, Cause: TypeMismatchError{
			Dependency: deps[argErr.Index],
			Index:      argErr.Index,
			Expected:   argErr.Expected,
			Actual:     argErr.Actual,
		}}
	case errors.As(err, &panicErr):
		c.logger.Error("constructor panicked",
			zap.String("key", formatKey(key)),
			zap.Any("panic", panicErr.Value),
		)
		return ResolutionError{Key: key, Cause: ConstructorPanicError{
			Constructor: e.constructor.Func,
			Panic:       panicErr.Value,
			Stack:       panicErr.Stack,
		}}
	case errors.As(err, &returned):
		return ResolutionError{Key: key, Cause: ConstructorInvocationError{
			Constructor: e.constructor.Func,
			Cause:       returned.Cause,
		}}
	default:
		return ResolutionError{Key: key, Cause: err}
	}
}

// lookup finds the entry for key. With register set, entries found through
// the namespace or the declared-dependencies convention are added to the
// registry; that is resolution-time caching, so it ignores the lock.
func (c *Container) lookup(key any, register bool) (*entry, lookupStrategy, error) {
	k := normalizeKey(key)
	if k.kind == invalidKey {
		return nil, "", NotFoundError{Key: key}
	}

	e, strategy, pending := c.findLocked(k)

	if e == nil {
		return nil, "", NotFoundError{Key: key}
	}

	if pending && register {
		c.mu.Lock()
		if existing, ok := c.registry[e.constructor.Out]; ok {
			e = existing
		} else {
			c.registry[e.constructor.Out] = e
			c.logger.Debug("type registered implicitly",
				zap.String("key", formatKey(key)),
				zap.String("strategy", string(strategy)),
				zap.String("type", formatType(e.constructor.Out)),
			)
		}
		c.mu.Unlock()
	}

	return e, strategy, nil
}

func (c *Container) findLocked(k normalizedKey) (*entry, lookupStrategy, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.find(k)
}

// find walks the lookup order. pending reports an entry that belongs in the
// registry but is not there yet. It must be called with mu held.
func (c *Container) find(k normalizedKey) (e *entry, strategy lookupStrategy, pending bool) {
	if k.kind == stringKey {
		if e := c.constantAt(k.name); e != nil {
			return e, strategyConstant, false
		}
		if e, ok := c.aliases[k.name]; ok {
			return e, strategyAlias, false
		}
		if strings.Contains(k.name, proppath.Separator) {
			if e, pending := c.namespaceEntry(k.name); e != nil {
				return e, strategyNamespace, pending
			}
		}
		return nil, "", false
	}

	if e, ok := c.registry[k.typ]; ok {
		return e, strategyRegistry, false
	}
	if e, ok := c.providers[k.typ]; ok {
		return e, strategyProvider, false
	}
	if k.ctor != nil {
		if e := c.conventionEntry(k.ctor); e != nil {
			return e, strategyConvention, true
		}
	}
	return nil, "", false
}

// constantAt returns the constant stored under name, or the value found by
// walking the remainder of name through the longest constant prefix.
func (c *Container) constantAt(name string) *entry {
	if e, ok := c.constants[name]; ok {
		return e
	}

	segments := proppath.Split(name)
	for i := len(segments) - 1; i > 0; i-- {
		root, ok := c.constants[proppath.Join(segments[:i])]
		if !ok {
			continue
		}

		base, _ := root.cached()
		value, ok := proppath.Lookup(base, segments[i:])
		if !ok {
			return nil
		}
		return newConstantEntry(value, root.state)
	}
	return nil
}

// namespaceEntry wraps the value at path in the namespace.
func (c *Container) namespaceEntry(path string) (*entry, bool) {
	if c.namespace == nil {
		return nil, false
	}

	value, ok := c.namespace.Get(path)
	if !ok {
		return nil, false
	}

	if !reflection.IsConstructor(value) {
		return newConstantEntry(value, c.state), false
	}

	ctor, err := c.analyzer.Analyze(value)
	if err != nil {
		return nil, false
	}

	if e, ok := c.registry[ctor.Out]; ok {
		return e, false
	}

	if declared, ok := ctor.DeclaredDependencies(); ok {
		if ctor.ValidateArgs(len(declared)) != nil {
			return nil, false
		}
		return newEntry(ctor, declared, c.state), true
	}

	deps := ctor.DefaultDependencies()
	if ctor.ValidateArgs(len(deps)) != nil {
		return nil, false
	}
	return newTransientEntry(ctor, deps, c.state), false
}

// conventionEntry builds an unregistered entry for a constructor whose type
// declares its dependencies.
func (c *Container) conventionEntry(fn any) *entry {
	ctor, err := c.analyzer.Analyze(fn)
	if err != nil {
		return nil
	}

	declared, ok := ctor.DeclaredDependencies()
	if !ok || ctor.ValidateArgs(len(declared)) != nil {
		return nil
	}
	return newEntry(ctor, declared, c.state)
}

func nodeFor(key any, e *entry) graph.NodeKey {
	return graph.NodeKey{ID: e, Label: formatKey(key)}
}
