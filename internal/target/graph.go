package target

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrDuplicateTarget = errors.New("target already declared")
	ErrUnknownTarget   = errors.New("unknown target")
	ErrCycle           = errors.New("link would create a dependency cycle")
	ErrImmutableTarget = errors.New("imported targets are read-only")
)

// LinkEdge is a directed consumer -> dependency relation. The visibility
// qualifier controls how the dependency's usage surface lands on the
// consumer: public edges apply it to the consumer and re-export it,
// private edges apply it to the consumer only, interface edges re-export
// it without applying it to the consumer itself.
type LinkEdge struct {
	Dependency string
	Visibility Visibility
}

// Graph holds targets and their link edges. It is not safe for
// concurrent mutation; see ResolveAll for parallel read-side resolution.
type Graph struct {
	targets map[string]*Target
	order   []string
	edges   map[string][]LinkEdge
}

func NewGraph() *Graph {
	return &Graph{
		targets: make(map[string]*Target),
		edges:   make(map[string][]LinkEdge),
	}
}

// AddTarget declares a new mutable target.
func (g *Graph) AddTarget(name string, kind Kind) (*Target, error) {
	if name == "" {
		return nil, errors.New("target name must not be empty")
	}
	if _, ok := g.targets[name]; ok {
		return nil, fmt.Errorf("target %q: %w", name, ErrDuplicateTarget)
	}
	t := &Target{Name: name, Kind: kind, props: NewPropertyBag()}
	g.targets[name] = t
	g.order = append(g.order, name)
	return t, nil
}

// Attach inserts an externally constructed target (typically an imported
// one). Name collisions with existing targets are rejected.
func (g *Graph) Attach(t *Target) error {
	if _, ok := g.targets[t.Name]; ok {
		return fmt.Errorf("target %q: %w", t.Name, ErrDuplicateTarget)
	}
	g.targets[t.Name] = t
	g.order = append(g.order, t.Name)
	return nil
}

func (g *Graph) Target(name string) (*Target, bool) {
	t, ok := g.targets[name]
	return t, ok
}

// Names returns target names in declaration order.
func (g *Graph) Names() []string {
	return slices.Clone(g.order)
}

// Targets returns all targets in declaration order.
func (g *Graph) Targets() []*Target {
	out := make([]*Target, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.targets[name])
	}
	return out
}

// Edges returns the link edges of a target in link order.
func (g *Graph) Edges(name string) []LinkEdge {
	return slices.Clone(g.edges[name])
}

// Link adds a consumer -> dependency edge. The link graph must stay
// acyclic: an edge that would close a cycle is rejected up front rather
// than detected during a later resolve.
func (g *Graph) Link(consumer, dependency string, vis Visibility) error {
	if _, ok := g.targets[consumer]; !ok {
		return fmt.Errorf("link consumer %q: %w", consumer, ErrUnknownTarget)
	}
	if _, ok := g.targets[dependency]; !ok {
		return fmt.Errorf("link dependency %q: %w", dependency, ErrUnknownTarget)
	}
	if consumer == dependency || g.reaches(dependency, consumer) {
		return fmt.Errorf("linking %q against %q: %w", consumer, dependency, ErrCycle)
	}
	g.edges[consumer] = append(g.edges[consumer], LinkEdge{Dependency: dependency, Visibility: vis})
	return nil
}

// reaches reports whether dependency edges lead from `from` to `to`.
func (g *Graph) reaches(from, to string) bool {
	stack := []string{from}
	seen := make(map[string]bool)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		for _, e := range g.edges[n] {
			stack = append(stack, e.Dependency)
		}
	}
	return false
}

// Snapshot deep-copies the graph. Snapshots are what parallel
// configuration passes resolve against while the original keeps mutating.
func (g *Graph) Snapshot() *Graph {
	c := NewGraph()
	c.order = slices.Clone(g.order)
	for name, t := range g.targets {
		c.targets[name] = t.clone()
	}
	for name, edges := range g.edges {
		c.edges[name] = slices.Clone(edges)
	}
	return c
}
