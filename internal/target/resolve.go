package target

import (
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// View is the effective, deduplicated property view of one target after
// folding in everything inherited over its link edges.
type View struct {
	Target string

	order []string
	props map[string][]string
	seen  map[string]map[string]bool
}

func newView(name string) *View {
	return &View{
		Target: name,
		props:  make(map[string][]string),
		seen:   make(map[string]map[string]bool),
	}
}

// add appends a value unless the property already holds it; first-seen
// order wins, which keeps repeated resolution idempotent.
func (v *View) add(name, value string) {
	dups, ok := v.seen[name]
	if !ok {
		v.order = append(v.order, name)
		dups = make(map[string]bool)
		v.seen[name] = dups
	}
	if dups[value] {
		return
	}
	dups[value] = true
	v.props[name] = append(v.props[name], value)
}

// Get returns the resolved values of a property in resolution order.
func (v *View) Get(name string) []string {
	return slices.Clone(v.props[name])
}

// Properties returns the resolved property names in resolution order.
func (v *View) Properties() []string {
	return slices.Clone(v.order)
}

type propEntry struct {
	prop  string
	value string
}

// usage computes the propagating surface of a target: its own PUBLIC and
// INTERFACE values plus, transitively, the surface of every dependency
// linked public or interface. Private links stop propagation.
func (g *Graph) usage(name string, memo map[string][]propEntry) []propEntry {
	if got, ok := memo[name]; ok {
		return got
	}
	t := g.targets[name]
	var out []propEntry
	for _, prop := range t.props.Names() {
		for _, pv := range t.props.Entries(prop) {
			if pv.Visibility.in(FilterUsage) {
				out = append(out, propEntry{prop: prop, value: pv.Value})
			}
		}
	}
	for _, e := range g.edges[name] {
		if e.Visibility == Private {
			continue
		}
		out = append(out, g.usage(e.Dependency, memo)...)
	}
	memo[name] = out
	return out
}

// Resolve computes the target's own effective view: its PRIVATE and
// PUBLIC values (INTERFACE never applies to the owner) plus the usage
// surface of every dependency linked public or private, siblings in link
// order, duplicates removed first-seen.
func (g *Graph) Resolve(name string) (*View, error) {
	t, ok := g.targets[name]
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", name, ErrUnknownTarget)
	}

	v := newView(name)
	for _, prop := range t.props.Names() {
		for _, pv := range t.props.Entries(prop) {
			if pv.Visibility.in(FilterSelf) {
				v.add(prop, pv.Value)
			}
		}
	}

	memo := make(map[string][]propEntry)
	for _, e := range g.edges[name] {
		if e.Visibility == Interface {
			continue
		}
		for _, pe := range g.usage(e.Dependency, memo) {
			v.add(pe.prop, pe.value)
		}
	}
	return v, nil
}

// Usage resolves the surface a dependent of the named target would
// inherit over a public link edge. This is the view consumers of an
// exported or imported target see.
func (g *Graph) Usage(name string) (*View, error) {
	if _, ok := g.targets[name]; !ok {
		return nil, fmt.Errorf("usage of %q: %w", name, ErrUnknownTarget)
	}
	v := newView(name)
	memo := make(map[string][]propEntry)
	for _, pe := range g.usage(name, memo) {
		v.add(pe.prop, pe.value)
	}
	return v, nil
}

// ResolveAll resolves many targets concurrently. The graph is snapshotted
// once, so the caller may keep mutating the original while resolution
// runs against the immutable copy.
func (g *Graph) ResolveAll(names []string) (map[string]*View, error) {
	snap := g.Snapshot()
	views := make([]*View, len(names))

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, name := range names {
		eg.Go(func() error {
			v, err := snap.Resolve(name)
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*View, len(names))
	for i, name := range names {
		out[name] = views[i]
	}
	return out, nil
}
