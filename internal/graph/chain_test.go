package graph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/oc/internal/graph"
)

func node(id string) graph.NodeKey {
	return graph.NodeKey{ID: id, Label: id}
}

func TestChain_PushPop(t *testing.T) {
	c := graph.NewChain(0)

	require.NoError(t, c.Push(node("a")))
	require.NoError(t, c.Push(node("b")))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []graph.NodeKey{node("a"), node("b")}, c.Path())

	c.Pop()
	assert.Equal(t, 1, c.Len())

	// b left the chain so it can be entered again
	require.NoError(t, c.Push(node("b")))

	c.Pop()
	c.Pop()
	c.Pop()
	assert.Equal(t, 0, c.Len())
}

func TestChain_DetectsCycle(t *testing.T) {
	c := graph.NewChain(0)

	require.NoError(t, c.Push(node("root")))
	require.NoError(t, c.Push(node("a")))
	require.NoError(t, c.Push(node("b")))

	err := c.Push(node("a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrCircularDependency))

	var cycle graph.CircularDependencyError
	require.True(t, errors.As(err, &cycle))
	assert.Equal(t, node("a"), cycle.Node)
	assert.Equal(t, []graph.NodeKey{node("a"), node("b")}, cycle.Path)
	assert.Contains(t, err.Error(), "a (cycle)")

	// the failed push leaves the chain untouched
	assert.Equal(t, 3, c.Len())
}

func TestChain_SelfCycle(t *testing.T) {
	c := graph.NewChain(0)
	require.NoError(t, c.Push(node("self")))

	err := c.Push(node("self"))

	var cycle graph.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Len(t, cycle.Path, 1)
}

func TestChain_MaxDepth(t *testing.T) {
	c := graph.NewChain(2)
	require.NoError(t, c.Push(node("a")))
	require.NoError(t, c.Push(node("b")))

	err := c.Push(node("c"))

	var depth graph.MaxDepthError
	require.ErrorAs(t, err, &depth)
	assert.Equal(t, 2, depth.Depth)
	assert.Contains(t, err.Error(), "a -> b")
}

func TestCircularDependencyError_EmptyPath(t *testing.T) {
	err := graph.CircularDependencyError{Node: node("lonely")}
	assert.Contains(t, err.Error(), "lonely (cycle)")
}

func TestNodeKey_String(t *testing.T) {
	assert.Equal(t, "<unnamed>", graph.NodeKey{ID: 1}.String())
	assert.Equal(t, "x", node("x").String())
}

func TestGoroutineID(t *testing.T) {
	id := graph.GoroutineID()
	require.NotZero(t, id)
	assert.Equal(t, id, graph.GoroutineID())

	other := make(chan uint64)
	go func() { other <- graph.GoroutineID() }()

	otherID := <-other
	assert.NotZero(t, otherID)
	assert.NotEqual(t, id, otherID)
}
