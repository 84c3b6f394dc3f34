package oc

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/junioryono/oc/namespace"
)

// DefaultMaxDepth bounds the length of a resolution chain.
const DefaultMaxDepth = 100

// Option configures a Container.
type Option interface {
	apply(*options)
}

// options holds container configuration.
type options struct {
	logger     *zap.Logger
	namespace  *namespace.Namespace
	registerer prometheus.Registerer
	maxDepth   int
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

func defaultOptions() *options {
	return &options{
		logger:   zap.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
}

// WithLogger sets the logger used for registration, phase and construction
// events. A nil logger keeps the no-op default.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	})
}

// WithNamespace sets the namespace consulted for dotted string keys that
// match no constant or alias.
func WithNamespace(ns *namespace.Namespace) Option {
	return optionFunc(func(opts *options) {
		opts.namespace = ns
	})
}

// WithMetrics registers resolution counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(opts *options) {
		opts.registerer = reg
	})
}

// WithMaxDepth limits how deep a dependency chain may go before resolution
// fails with MaxDepthError. Values below 1 keep the default.
func WithMaxDepth(depth int) Option {
	return optionFunc(func(opts *options) {
		if depth > 0 {
			opts.maxDepth = depth
		}
	})
}
