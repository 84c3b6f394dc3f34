// Package oc provides the object container at the heart of an application
// runtime: a registry that resolves names and types to shared instances.
//
// # Overview
//
// The container keeps four mappings:
//   - Constants: write-once values, addressable by dotted path
//   - Aliases: names bound to a constructor entry
//   - Registry: entries keyed by the type a constructor produces
//   - Providers: entries keyed by an interface the implementation satisfies
//
// A constructor is any function returning T or (T, error). Its dependencies
// are keys resolved recursively and passed positionally. They come from the
// registration call, from a Dependencies method on T (see Declarer), or
// default to the constructor's parameter types.
//
// # Basic Usage
//
//	c := oc.New()
//
//	_ = c.Constant("config", Config{DSN: "postgres://localhost/app"})
//	_ = c.Inject(NewDatabase, "config.DSN")
//	_ = c.Provide((*UserRepository)(nil), NewSQLUserRepository)
//	_ = c.Bind("users", NewUserService)
//
//	if err := c.Lock(); err != nil {
//	    log.Fatal(err)
//	}
//
//	users, err := c.Get("users")
//	repo, err := oc.Resolve[UserRepository](c)
//
// # Lookup Order
//
// Get, Has and Create look a key up in this order, first match wins:
//  1. constants, including nested property paths below a constant
//  2. aliases
//  3. registry, by produced type
//  4. providers, by interface type
//  5. the namespace, for dotted string keys (see WithNamespace)
//  6. constructors whose type declares its dependencies, registered on first use
//
// Shared instances are built once and cached, even when the value is false,
// zero or nil. Create always builds a fresh instance.
//
// # Phases
//
// Configuration happens while the container is unlocked. SetBindingState
// records which phase (framework, plugin or app) registered an entry. After
// Lock, registration fails with a PhaseError while lookups keep working.
//
// # Modules
//
// Modules group registrations and make them reusable:
//
//	var StorageModule = oc.NewModule("storage",
//	    oc.Inject(NewDatabase),
//	    oc.Provide((*UserRepository)(nil), NewSQLUserRepository),
//	)
//
//	if err := c.Apply(StorageModule); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Handling
//
// Errors are typed and match sentinels through errors.Is:
//
//	_, err := c.Get("missing")
//	if errors.Is(err, oc.ErrNotFound) {
//	    // no lookup strategy matched
//	}
//
//	var cycle oc.CircularDependencyError
//	if errors.As(err, &cycle) {
//	    log.Printf("cycle: %v", cycle.Path)
//	}
package oc
