package graph

// NodeKey identifies one entry on a resolution path.
// ID must be comparable; Label is only used for error messages.
type NodeKey struct {
	ID    any
	Label string
}

func (k NodeKey) String() string {
	if k.Label == "" {
		return "<unnamed>"
	}
	return k.Label
}

// Chain tracks the entries currently under construction on a single resolution path.
// It replaces a static dependency graph: the container's graph is only known lazily,
// so cycles are detected at the moment an entry is entered twice.
//
// A Chain is owned by one goroutine and is not safe for concurrent use.
type Chain struct {
	nodes    []NodeKey
	index    map[any]int
	maxDepth int
}

// NewChain creates an empty chain. A maxDepth <= 0 disables the depth guard.
func NewChain(maxDepth int) *Chain {
	return &Chain{
		nodes:    make([]NodeKey, 0, 8),
		index:    make(map[any]int),
		maxDepth: maxDepth,
	}
}

// Push enters node. It fails if node is already on the chain or if the chain is too deep.
func (c *Chain) Push(node NodeKey) error {
	if at, ok := c.index[node.ID]; ok {
		cycle := make([]NodeKey, len(c.nodes)-at)
		copy(cycle, c.nodes[at:])
		return CircularDependencyError{Node: node, Path: cycle}
	}

	if c.maxDepth > 0 && len(c.nodes) >= c.maxDepth {
		return MaxDepthError{Depth: c.maxDepth, Path: c.Path()}
	}

	c.index[node.ID] = len(c.nodes)
	c.nodes = append(c.nodes, node)
	return nil
}

// Pop leaves the most recently entered node.
func (c *Chain) Pop() {
	if len(c.nodes) == 0 {
		return
	}

	last := c.nodes[len(c.nodes)-1]
	delete(c.index, last.ID)
	c.nodes = c.nodes[:len(c.nodes)-1]
}

// Len returns the number of nodes currently on the chain.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Path returns a copy of the current chain, outermost first.
func (c *Chain) Path() []NodeKey {
	path := make([]NodeKey, len(c.nodes))
	copy(path, c.nodes)
	return path
}
