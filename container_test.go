package oc

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/oc/namespace"
)

func TestNew(t *testing.T) {
	t.Run("starts unlocked and empty", func(t *testing.T) {
		t.Parallel()

		c := newTestContainer(t)

		assert.False(t, c.IsLocked())
		assert.Equal(t, NoBindingState, c.BindingState())
		assert.Equal(t, Counts{}, c.Count())
		assert.Nil(t, c.Namespace())
	})

	t.Run("assigns a unique id", func(t *testing.T) {
		t.Parallel()

		a, b := New(), New()

		_, err := uuid.Parse(a.ID())
		require.NoError(t, err)
		assert.NotEqual(t, a.ID(), b.ID())
	})

	t.Run("ignores nil options", func(t *testing.T) {
		t.Parallel()

		ns := namespace.New()
		c := New(nil, WithNamespace(ns), WithLogger(nil), WithMaxDepth(0))

		assert.Same(t, ns, c.Namespace())
		assert.Equal(t, DefaultMaxDepth, c.maxDepth)
		assert.NotNil(t, c.logger)
	})
}

func TestContainer_Lock(t *testing.T) {
	t.Run("lock and unlock toggle the state", func(t *testing.T) {
		t.Parallel()

		c := newTestContainer(t)

		require.NoError(t, c.Lock())
		assert.True(t, c.IsLocked())

		require.NoError(t, c.Unlock())
		assert.False(t, c.IsLocked())
	})

	t.Run("double lock fails", func(t *testing.T) {
		t.Parallel()

		c := newTestContainer(t)
		require.NoError(t, c.Lock())

		err := c.Lock()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLocked)

		var phaseErr PhaseError
		require.ErrorAs(t, err, &phaseErr)
		assert.Equal(t, "lock", phaseErr.Operation)
	})

	t.Run("unlock while unlocked fails", func(t *testing.T) {
		t.Parallel()

		err := newTestContainer(t).Unlock()
		assert.ErrorIs(t, err, ErrNotLocked)
	})

	t.Run("mutations fail while locked", func(t *testing.T) {
		t.Parallel()

		c := newTestContainer(t)
		require.NoError(t, c.Constant("app.name", "Demo"))
		require.NoError(t, c.Inject(NewTConsoleLogger))
		require.NoError(t, c.Lock())

		assert.ErrorIs(t, c.Bind("x", NewTConsoleLogger), ErrLocked)
		assert.ErrorIs(t, c.Constant("other", 1), ErrLocked)
		assert.ErrorIs(t, c.Inject(NewTDatabase), ErrLocked)
		assert.ErrorIs(t, c.Provide((*TLogger)(nil), NewTConsoleLogger), ErrLocked)
		assert.ErrorIs(t, c.SetBindingState(AppBindingState), ErrLocked)

		assert.True(t, c.Has("app.name"))
		name, err := c.Get("app.name")
		require.NoError(t, err)
		assert.Equal(t, "Demo", name)

		logger, err := c.Get(NewTConsoleLogger)
		require.NoError(t, err)
		assert.IsType(t, &TConsoleLogger{}, logger)
	})

	t.Run("unlock reopens registration", func(t *testing.T) {
		t.Parallel()

		c := newTestContainer(t)
		require.NoError(t, c.Lock())
		require.NoError(t, c.Unlock())

		assert.NoError(t, c.Constant("late", true))
	})
}

func TestContainer_SetBindingState(t *testing.T) {
	t.Run("records the phase on new entries", func(t *testing.T) {
		t.Parallel()

		c := newTestContainer(t)

		require.NoError(t, c.SetBindingState(FrameworkBindingState))
		require.NoError(t, c.Constant("framework", 1))
		require.NoError(t, c.SetBindingState(PluginBindingState))
		require.NoError(t, c.Inject(NewTConsoleLogger))
		require.NoError(t, c.SetBindingState(AppBindingState))
		require.NoError(t, c.Bind("db", NewTDatabase, "dsn"))

		assert.Equal(t, AppBindingState, c.BindingState())
		assert.Equal(t, FrameworkBindingState, c.constants["framework"].state)
		assert.Equal(t, PluginBindingState, c.registry[TypeOf[*TConsoleLogger]()].state)
		assert.Equal(t, AppBindingState, c.aliases["db"].state)
	})

	t.Run("rejects unknown states", func(t *testing.T) {
		t.Parallel()

		c := newTestContainer(t)

		for _, state := range []BindingState{NoBindingState, BindingState(42)} {
			err := c.SetBindingState(state)

			var stateErr InvalidBindingStateError
			require.ErrorAs(t, err, &stateErr)
			assert.Equal(t, state, stateErr.Value)
		}
		assert.Equal(t, NoBindingState, c.BindingState())
	})
}

func TestContainer_Clear(t *testing.T) {
	t.Parallel()

	c := newTestContainer(t)
	require.NoError(t, c.SetBindingState(PluginBindingState))
	require.NoError(t, c.Constant("app.name", "Demo"))
	require.NoError(t, c.Inject(NewTConsoleLogger))
	require.NoError(t, c.Bind("logger", NewTConsoleLogger))
	require.NoError(t, c.Provide((*TLogger)(nil), NewTConsoleLogger))
	require.NoError(t, c.Lock())

	assert.Equal(t, Counts{Constants: 1, Aliases: 1, Registry: 1, Providers: 1}, c.Count())

	c.Clear()

	assert.Equal(t, Counts{}, c.Count())
	assert.True(t, c.IsLocked())
	assert.Equal(t, PluginBindingState, c.BindingState())
	assert.False(t, c.Has("app.name"))
}

func TestContainer_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := newTestContainer(t, WithMetrics(reg))

	require.NoError(t, c.Constant("app.name", "Demo"))
	require.NoError(t, c.Inject(NewTConsoleLogger))
	require.NoError(t, c.Bind("logger", NewTConsoleLogger))

	_, err := c.Get("app.name")
	require.NoError(t, err)
	_, err = c.Get("logger")
	require.NoError(t, err)
	_, err = c.Get(NewTConsoleLogger)
	require.NoError(t, err)
	_, err = c.Get("missing")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.resolutions.WithLabelValues("constant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.resolutions.WithLabelValues("alias")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.resolutions.WithLabelValues("registry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.failures))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.created))

	t.Run("containers share a registry", func(t *testing.T) {
		other := New(WithMetrics(reg))
		require.NoError(t, other.Constant("x", 1))
		_, err := other.Get("x")
		require.NoError(t, err)

		assert.Equal(t, 1.0, testutil.ToFloat64(other.metrics.resolutions.WithLabelValues("constant")))
		assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.resolutions.WithLabelValues("constant")))
	})
}

func TestContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		c := newTestContainer(t)
		ctx := WithContainer(context.Background(), c)

		got, err := FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, c, got)
	})

	t.Run("missing container", func(t *testing.T) {
		t.Parallel()

		_, err := FromContext(context.Background())
		assert.ErrorIs(t, err, ErrNoContainer)
	})
}
