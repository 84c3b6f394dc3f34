package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCircularDependency is matched by CircularDependencyError through errors.Is.
var ErrCircularDependency = errors.New("circular dependency detected")

// CircularDependencyError represents a dependency cycle found while resolving an entry.
type CircularDependencyError struct {
	Node NodeKey
	Path []NodeKey
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	if len(e.Path) == 0 {
		b.WriteString(fmt.Sprintf("    %s\n", e.Node.String()))
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %s (cycle)\n", e.Node.String()))
	} else {
		for i, node := range e.Path {
			b.WriteString(fmt.Sprintf("    %s\n", node.String()))
			if i < len(e.Path)-1 {
				b.WriteString("      ↓\n")
			}
		}
		b.WriteString("      ↓\n")
		b.WriteString(fmt.Sprintf("    %s (cycle)\n", e.Path[0].String()))
	}

	b.WriteString("\nTo resolve this:\n")
	b.WriteString("  • Bind one side of the cycle to an interface provided later\n")
	b.WriteString("  • Resolve the dependency lazily from the container inside a method\n")
	b.WriteString("  • Restructure to remove the circular relationship\n")

	return b.String()
}

func (e CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// MaxDepthError is returned when a resolution chain grows past its configured depth.
type MaxDepthError struct {
	Depth int
	Path  []NodeKey
}

func (e MaxDepthError) Error() string {
	labels := make([]string, len(e.Path))
	for i, node := range e.Path {
		labels[i] = node.String()
	}
	return fmt.Sprintf("resolution depth exceeded %d: %s", e.Depth, strings.Join(labels, " -> "))
}
