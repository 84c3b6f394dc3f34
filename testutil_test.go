package oc

import (
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TConfig is a plain settings value stored as a constant.
type TConfig struct {
	DSN  string
	Port int
}

// TDatabase is a basic service with a string dependency.
type TDatabase struct {
	DSN string
}

func NewTDatabase(dsn string) *TDatabase {
	return &TDatabase{DSN: dsn}
}

// TLogger is a basic interface for provider tests.
type TLogger interface {
	Log(msg string)
}

// TConsoleLogger implements TLogger.
type TConsoleLogger struct {
	Prefix string
}

func (l *TConsoleLogger) Log(string) {}

func NewTConsoleLogger() *TConsoleLogger {
	return &TConsoleLogger{Prefix: "console"}
}

// TNotLogger does not implement TLogger.
type TNotLogger struct{}

func NewTNotLogger() *TNotLogger {
	return &TNotLogger{}
}

// TUserService depends on a database and a logger.
type TUserService struct {
	DB     *TDatabase
	Logger TLogger
}

func NewTUserService(db *TDatabase, logger TLogger) *TUserService {
	return &TUserService{DB: db, Logger: logger}
}

// TDeclaredService declares its own dependency keys.
type TDeclaredService struct {
	DSN string
}

func (*TDeclaredService) Dependencies() []any {
	return []any{"config.DSN"}
}

func NewTDeclaredService(dsn string) *TDeclaredService {
	return &TDeclaredService{DSN: dsn}
}

// TCycleA and TCycleB depend on each other.
type TCycleA struct{ B *TCycleB }
type TCycleB struct{ A *TCycleA }

func NewTCycleA(b *TCycleB) *TCycleA { return &TCycleA{B: b} }
func NewTCycleB(a *TCycleA) *TCycleB { return &TCycleB{A: a} }

// TCounter is built by counting constructors.
type TCounter struct {
	N int32
}

// newCountingConstructor returns a constructor that records how often it ran.
func newCountingConstructor() (func() *TCounter, *atomic.Int32) {
	calls := &atomic.Int32{}
	return func() *TCounter {
		return &TCounter{N: calls.Add(1)}
	}, calls
}

var errTConstructor = errors.New("constructor failed")

func NewTFailing() (*TDatabase, error) {
	return nil, errTConstructor
}

func NewTPanicking() *TDatabase {
	panic("boom")
}

// ============================================================================
// Helpers
// ============================================================================

func newTestContainer(t *testing.T, opts ...Option) *Container {
	t.Helper()
	return New(append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}
