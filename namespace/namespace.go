// Package namespace provides a hierarchical, dot-addressed table of values
// that the object container can resolve by path.
//
// Paths such as "app.service.UserService" address leaves of a tree whose
// inner nodes are map[string]any. The table is populated explicitly at
// startup:
//
//	ns := namespace.New()
//	_ = ns.Set("app.service.UserService", NewUserService)
//	_ = ns.Set("app.config.Defaults", defaults)
package namespace

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrEmptyPath is returned for paths with an empty segment.
	ErrEmptyPath = errors.New("namespace path cannot be empty")

	// ErrPathBlocked is returned when a leaf value sits where a node is required.
	ErrPathBlocked = errors.New("namespace path is blocked by a value")
)

// Namespace is a tree of values addressed by dotted paths.
// It is safe for concurrent use.
type Namespace struct {
	mu   sync.RWMutex
	root map[string]any
}

// New creates an empty namespace.
func New() *Namespace {
	return &Namespace{root: make(map[string]any)}
}

// Namespace ensures every node along path exists and returns the last node.
// It returns nil if a leaf value blocks the path. The returned node is live:
// writes to it are visible to later lookups but are not synchronised.
func (n *Namespace) Namespace(path string) map[string]any {
	segments, err := split(path)
	if err != nil {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	node, err := n.ensure(segments)
	if err != nil {
		return nil
	}
	return node
}

// Set stores value at path, creating intermediate nodes. An existing leaf
// at path is replaced.
func (n *Namespace) Set(path string, value any) error {
	segments, err := split(path)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	parent, err := n.ensure(segments[:len(segments)-1])
	if err != nil {
		return fmt.Errorf("set %q: %w", path, err)
	}

	parent[segments[len(segments)-1]] = value
	return nil
}

// Get returns the value at path. Inner nodes are returned as map[string]any.
func (n *Namespace) Get(path string) (any, bool) {
	segments, err := split(path)
	if err != nil {
		return nil, false
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	var cur any = n.root
	for _, seg := range segments {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether path addresses a node or a value.
func (n *Namespace) Has(path string) bool {
	_, ok := n.Get(path)
	return ok
}

func (n *Namespace) ensure(segments []string) (map[string]any, error) {
	node := n.root
	for i, seg := range segments {
		next, ok := node[seg]
		if !ok {
			child := make(map[string]any)
			node[seg] = child
			node = child
			continue
		}

		child, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w at %q", ErrPathBlocked, strings.Join(segments[:i+1], "."))
		}
		node = child
	}
	return node, nil
}

func split(path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("%w: %q", ErrEmptyPath, path)
		}
	}
	return segments, nil
}
