package oc

// Module is a registration step applied to a container. Modules make
// configuration chainable and reusable across containers.
type Module func(*Container) error

// NewModule groups modules under name. The first failing module stops the
// group and its error is wrapped in a ModuleError.
//
// Example:
//
//	var StorageModule = oc.NewModule("storage",
//	    oc.Constant("db.dsn", "postgres://localhost/app"),
//	    oc.Inject(NewDatabase, "db.dsn"),
//	    oc.Provide((*UserRepository)(nil), NewSQLUserRepository),
//	)
//
//	var AppModule = oc.NewModule("app",
//	    StorageModule,
//	    oc.Bind("users", NewUserService),
//	)
func NewModule(name string, modules ...Module) Module {
	return func(c *Container) error {
		for _, module := range modules {
			if module == nil {
				continue
			}

			if err := module(c); err != nil {
				return ModuleError{Module: name, Cause: err}
			}
		}

		return nil
	}
}

// Apply runs modules in order and stops at the first error.
func (c *Container) Apply(modules ...Module) error {
	for _, module := range modules {
		if module == nil {
			continue
		}

		if err := module(c); err != nil {
			return err
		}
	}

	return nil
}

// Bind creates a Module calling Container.Bind.
func Bind(name string, target any, dependencies ...any) Module {
	return func(c *Container) error {
		return c.Bind(name, target, dependencies...)
	}
}

// Constant creates a Module calling Container.Constant.
func Constant(name string, value any) Module {
	return func(c *Container) error {
		return c.Constant(name, value)
	}
}

// Inject creates a Module calling Container.Inject.
func Inject(constructor any, dependencies ...any) Module {
	return func(c *Container) error {
		return c.Inject(constructor, dependencies...)
	}
}

// Provide creates a Module calling Container.Provide.
func Provide(iface any, implementation any, dependencies ...any) Module {
	return func(c *Container) error {
		return c.Provide(iface, implementation, dependencies...)
	}
}
