package target

import (
	"fmt"
	"slices"
	"strings"
)

// Visibility controls whether a property value applies to the owning
// target, to its dependents, or to both.
type Visibility int

const (
	// Private values apply to the owning target only and never cross a
	// link edge.
	Private Visibility = iota
	// Public values apply to the owner and propagate to dependents.
	Public
	// Interface values apply to dependents only, never to the owner.
	Interface
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Public:
		return "public"
	case Interface:
		return "interface"
	}
	return fmt.Sprintf("visibility(%d)", int(v))
}

func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(s) {
	case "private":
		return Private, nil
	case "public":
		return Public, nil
	case "interface":
		return Interface, nil
	}
	return 0, fmt.Errorf("unknown visibility %q (want private, public or interface)", s)
}

// Filter selects property values by their visibility tag.
type Filter uint8

const (
	FilterPrivate Filter = 1 << iota
	FilterPublic
	FilterInterface

	// FilterSelf is the view the owning target itself is built with.
	FilterSelf = FilterPrivate | FilterPublic
	// FilterUsage is the surface a dependent inherits over a link edge.
	FilterUsage = FilterPublic | FilterInterface
	FilterAll   = FilterPrivate | FilterPublic | FilterInterface
)

func (v Visibility) in(f Filter) bool {
	switch v {
	case Private:
		return f&FilterPrivate != 0
	case Public:
		return f&FilterPublic != 0
	case Interface:
		return f&FilterInterface != 0
	}
	return false
}

// PropertyValue is a single tagged value of a target property.
type PropertyValue struct {
	Value      string
	Visibility Visibility
}

// PropertyBag stores the properties of one target as ordered value
// sequences. Set never overwrites: values accumulate in insertion order,
// so a property behaves like an append-only flag list.
type PropertyBag struct {
	order []string
	props map[string][]PropertyValue
}

func NewPropertyBag() *PropertyBag {
	return &PropertyBag{props: make(map[string][]PropertyValue)}
}

func (b *PropertyBag) Set(name, value string, vis Visibility) {
	if _, ok := b.props[name]; !ok {
		b.order = append(b.order, name)
	}
	b.props[name] = append(b.props[name], PropertyValue{Value: value, Visibility: vis})
}

// Get returns the values of a property that match the filter, in
// insertion order. Unknown properties yield an empty slice, not an error.
func (b *PropertyBag) Get(name string, f Filter) []string {
	var out []string
	for _, pv := range b.props[name] {
		if pv.Visibility.in(f) {
			out = append(out, pv.Value)
		}
	}
	return out
}

// Entries returns every tagged value of a property in insertion order.
func (b *PropertyBag) Entries(name string) []PropertyValue {
	return slices.Clone(b.props[name])
}

// Names returns the property names in first-set order.
func (b *PropertyBag) Names() []string {
	return slices.Clone(b.order)
}

func (b *PropertyBag) Clone() *PropertyBag {
	c := &PropertyBag{
		order: slices.Clone(b.order),
		props: make(map[string][]PropertyValue, len(b.props)),
	}
	for name, values := range b.props {
		c.props[name] = slices.Clone(values)
	}
	return c
}
