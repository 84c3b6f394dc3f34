// Package chi provides object container integration for the Chi router.
//
// The container is configured once at startup and shared by every request.
// The middleware attaches it to the request context, and Handle resolves
// controllers from it with type safety.
//
// Example usage:
//
//	c := oc.New()
//	_ = c.Inject(NewUserController)
//	_ = c.Lock()
//
//	r := occhi.NewRouter(c, occhi.RequireLocked())
//	r.Get("/users/{id}", occhi.Handle((*UserController).GetByID))
package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/junioryono/oc"
)

// Config holds the configuration for the container middleware.
type Config struct {
	// RequireLocked rejects requests while the container is still in its
	// configuration phase.
	RequireLocked bool

	// ErrorHandler is called when a request is rejected or a middleware fails.
	// If nil, a default handler returning 503 Service Unavailable is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Middlewares are functions that run after the container is attached.
	// They can be used to initialize request context, set user data, etc.
	Middlewares []func(*oc.Container, *http.Request) error

	// Logger receives request rejections. Defaults to zap.L().
	Logger *zap.Logger
}

// Option configures the container middleware.
type Option func(*Config)

// RequireLocked makes the middleware reject requests until the container is locked.
func RequireLocked() Option {
	return func(c *Config) {
		c.RequireLocked = true
	}
}

// WithErrorHandler sets the handler for rejected requests and middleware failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithMiddleware adds a middleware function that runs after the container is attached.
// Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(*oc.Container, *http.Request) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

// WithLogger sets the logger used by the default handlers.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func defaultConfig() *Config {
	return &Config{
		Logger: zap.L(),
	}
}

// ContainerMiddleware creates a Chi middleware that attaches c to the
// request context. Handlers retrieve it with oc.FromContext.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(occhi.ContainerMiddleware(c))
func ContainerMiddleware(c *oc.Container, opts ...Option) func(http.Handler) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	if cfg.ErrorHandler == nil {
		logger := cfg.Logger
		cfg.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c == nil {
				cfg.ErrorHandler(w, r, oc.ErrContainerNil)
				return
			}

			if cfg.RequireLocked && !c.IsLocked() {
				cfg.ErrorHandler(w, r, oc.ErrNotLocked)
				return
			}

			r = r.WithContext(oc.WithContainer(r.Context(), c))

			for _, mw := range cfg.Middlewares {
				if err := mw(c, r); err != nil {
					cfg.ErrorHandler(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewRouter returns a Chi router with ContainerMiddleware installed.
func NewRouter(c *oc.Container, opts ...Option) gochi.Router {
	r := gochi.NewRouter()
	r.Use(ContainerMiddleware(c, opts...))
	return r
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// ContainerErrorHandler is called when the request carries no container.
	ContainerErrorHandler func(http.ResponseWriter, *http.Request, error)

	// ResolutionErrorHandler is called when controller resolution fails.
	ResolutionErrorHandler func(http.ResponseWriter, *http.Request, error)
}

// HandlerOption configures the Handle wrapper.
type HandlerOption func(*HandlerConfig)

// WithPanicRecovery enables or disables panic recovery in the handler.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics.
func WithPanicHandler(h func(http.ResponseWriter, *http.Request, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithContainerErrorHandler sets the handler for requests without a container.
func WithContainerErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ContainerErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for controller resolution failures.
func WithResolutionErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicRecovery: false,
		PanicHandler: func(w http.ResponseWriter, r *http.Request, v any) {
			zap.L().Error("panic in handler", zap.Any("panic", v))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		ContainerErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			zap.L().Error("failed to get container from context", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		ResolutionErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			zap.L().Error("failed to resolve controller", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
}

// Handle wraps a controller method for type-safe resolution from the
// container attached to the request context. T is resolved by type.
//
// The method signature should be: func(T, http.ResponseWriter, *http.Request)
//
// Example:
//
//	r.Get("/users/{id}", occhi.Handle((*UserController).GetByID))
func Handle[T any](method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	return handle(oc.TypeOf[T](), method, opts)
}

// HandleKey is like Handle but resolves the controller by key, for example
// an alias or a constructor that declares its dependencies.
func HandleKey[T any](key any, method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	return handle(key, method, opts)
}

func handle[T any](key any, method func(T, http.ResponseWriter, *http.Request), opts []HandlerOption) http.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					cfg.PanicHandler(w, r, v)
				}
			}()
		}

		c, err := oc.FromContext(r.Context())
		if err != nil {
			cfg.ContainerErrorHandler(w, r, err)
			return
		}

		controller, err := oc.ResolveKey[T](c, key)
		if err != nil {
			cfg.ResolutionErrorHandler(w, r, err)
			return
		}

		method(controller, w, r)
	}
}
