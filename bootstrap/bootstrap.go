// Package bootstrap drives an object container through its configuration
// phases: settings, framework bindings, plugin bindings, application
// bindings, service initialisation and finally the lock.
//
//	c := oc.New(oc.WithNamespace(ns))
//	err := bootstrap.New(c).Run(&bootstrap.Config{
//	    Environment:   bootstrap.EnvironmentFromDotenv(),
//	    Settings:      settings,
//	    BindFramework: framework.Bind,
//	    BindApp:       app.Bind,
//	    Lock:          true,
//	})
package bootstrap

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/junioryono/oc"
	"github.com/junioryono/oc/namespace"
)

// Container keys under which Run stores its results.
const (
	SettingsKey    = "settings"
	EnvironmentKey = "environment"
)

// Bootstrap steps, reported in StepError.
const (
	StepValidate      = "validate"
	StepSettings      = "settings"
	StepBindFramework = "bind framework"
	StepBindPlugins   = "bind plugins"
	StepBindApp       = "bind app"
	StepInitServices  = "init services"
	StepLock          = "lock"
)

// BindFunc registers entries in c. settings are the merged settings of the
// active environment.
type BindFunc func(ns *namespace.Namespace, c *oc.Container, settings map[string]any) error

// Plugin contributes bindings between the framework and the application.
type Plugin interface {
	InitBind(ns *namespace.Namespace, c *oc.Container, settings map[string]any) error
}

// SettingsProvider is implemented by plugins that ship default settings.
// They are merged before the application's own settings.
type SettingsProvider interface {
	InitSettings() Settings
}

// Config describes one bootstrap run.
type Config struct {
	Environment string   `validate:"required,oneof=prod test dev"`
	Settings    Settings `validate:"-"`
	Plugins     []Plugin `validate:"dive,required"`

	BindFramework BindFunc
	BindApp       BindFunc
	InitServices  BindFunc

	// Lock ends the configuration phase once every step succeeded.
	Lock bool
}

// StepError reports the bootstrap step that failed.
type StepError struct {
	Step  string
	Cause error
}

func (e StepError) Error() string {
	return fmt.Sprintf("bootstrap %s: %v", e.Step, e.Cause)
}

func (e StepError) Unwrap() error {
	return e.Cause
}

// Bootstrap runs configuration phases against one container.
type Bootstrap struct {
	container *oc.Container
	namespace *namespace.Namespace
	logger    *zap.Logger
	validate  *validator.Validate
}

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithLogger sets the logger for step progress.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bootstrap) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Bootstrap for c. Bind functions receive c's namespace, or
// an empty one when c has none.
func New(c *oc.Container, opts ...Option) *Bootstrap {
	b := &Bootstrap{
		container: c,
		logger:    zap.NewNop(),
		validate:  validator.New(),
	}

	if c != nil {
		b.namespace = c.Namespace()
	}
	if b.namespace == nil {
		b.namespace = namespace.New()
	}

	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes every step of cfg in order and stops at the first failure.
func (b *Bootstrap) Run(cfg *Config) error {
	if b.container == nil {
		return StepError{Step: StepValidate, Cause: oc.ErrContainerNil}
	}
	if cfg == nil {
		return StepError{Step: StepValidate, Cause: fmt.Errorf("config cannot be nil")}
	}

	if err := b.validate.Struct(cfg); err != nil {
		return StepError{Step: StepValidate, Cause: err}
	}

	settings := b.settings(cfg)
	if err := b.step(StepSettings, func() error {
		if err := b.container.Constant(EnvironmentKey, cfg.Environment); err != nil {
			return err
		}
		return b.container.Constant(SettingsKey, settings)
	}); err != nil {
		return err
	}

	if err := b.bindPhase(StepBindFramework, oc.FrameworkBindingState, func() error {
		return call(cfg.BindFramework, b.namespace, b.container, settings)
	}); err != nil {
		return err
	}

	if err := b.bindPhase(StepBindPlugins, oc.PluginBindingState, func() error {
		for _, plugin := range cfg.Plugins {
			if err := plugin.InitBind(b.namespace, b.container, settings); err != nil {
				return fmt.Errorf("plugin %T: %w", plugin, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := b.bindPhase(StepBindApp, oc.AppBindingState, func() error {
		return call(cfg.BindApp, b.namespace, b.container, settings)
	}); err != nil {
		return err
	}

	if err := b.step(StepInitServices, func() error {
		return call(cfg.InitServices, b.namespace, b.container, settings)
	}); err != nil {
		return err
	}

	if cfg.Lock {
		if err := b.step(StepLock, b.container.Lock); err != nil {
			return err
		}
	}

	b.logger.Info("bootstrap complete",
		zap.String("environment", cfg.Environment),
		zap.Int("plugins", len(cfg.Plugins)),
		zap.Bool("locked", b.container.IsLocked()),
	)
	return nil
}

// Run bootstraps c with cfg.
func Run(c *oc.Container, cfg *Config, opts ...Option) error {
	return New(c, opts...).Run(cfg)
}

// settings merges plugin defaults and then the application settings, each
// resolved for the active environment.
func (b *Bootstrap) settings(cfg *Config) map[string]any {
	merged := make(map[string]any)

	for _, plugin := range cfg.Plugins {
		if provider, ok := plugin.(SettingsProvider); ok {
			mergeTree(merged, provider.InitSettings().ForEnvironment(cfg.Environment))
		}
	}
	mergeTree(merged, cfg.Settings.ForEnvironment(cfg.Environment))

	return merged
}

func (b *Bootstrap) bindPhase(step string, state oc.BindingState, fn func() error) error {
	return b.step(step, func() error {
		if err := b.container.SetBindingState(state); err != nil {
			return err
		}
		return fn()
	})
}

func (b *Bootstrap) step(step string, fn func() error) error {
	b.logger.Debug("bootstrap step", zap.String("step", step))

	if err := fn(); err != nil {
		b.logger.Error("bootstrap step failed", zap.String("step", step), zap.Error(err))
		return StepError{Step: step, Cause: err}
	}
	return nil
}

func call(fn BindFunc, ns *namespace.Namespace, c *oc.Container, settings map[string]any) error {
	if fn == nil {
		return nil
	}
	return fn(ns, c, settings)
}
