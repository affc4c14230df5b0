package export

import (
	"fmt"
	"strings"

	"github.com/crest-build/crest/internal/target"
	"golang.org/x/mod/semver"
)

// Policy selects how a descriptor's version is checked against an
// importer-supplied minimum requirement.
type Policy int

const (
	// PolicyExact accepts only the exact required version.
	PolicyExact Policy = iota
	// PolicyAnyNewer accepts the required version or anything newer.
	PolicyAnyNewer
	// PolicySameMajor accepts newer versions within the same major.
	PolicySameMajor
)

func (p Policy) String() string {
	switch p {
	case PolicyExact:
		return "exact"
	case PolicyAnyNewer:
		return "any-newer"
	case PolicySameMajor:
		return "same-major"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "exact":
		return PolicyExact, nil
	case "any-newer":
		return PolicyAnyNewer, nil
	case "same-major":
		return PolicySameMajor, nil
	}
	return 0, fmt.Errorf("unknown compatibility policy %q", s)
}

// Requirement is the importer's version constraint. An empty MinVersion
// accepts any descriptor version.
type Requirement struct {
	MinVersion string
	Policy     Policy
}

func (r Requirement) check(version string) error {
	if r.MinVersion == "" {
		return nil
	}
	want := canonVersion(r.MinVersion)
	got := canonVersion(version)
	if !semver.IsValid(want) {
		return fmt.Errorf("invalid version requirement %q", r.MinVersion)
	}
	if !semver.IsValid(got) {
		return fmt.Errorf("descriptor carries invalid version %q", version)
	}

	cmp := semver.Compare(got, want)
	switch r.Policy {
	case PolicyExact:
		if cmp != 0 {
			return fmt.Errorf("have %s, need exactly %s: %w", version, r.MinVersion, ErrVersionMismatch)
		}
	case PolicyAnyNewer:
		if cmp < 0 {
			return fmt.Errorf("have %s, need at least %s: %w", version, r.MinVersion, ErrVersionMismatch)
		}
	case PolicySameMajor:
		if cmp < 0 || semver.Major(got) != semver.Major(want) {
			return fmt.Errorf("have %s, need at least %s within major %s: %w",
				version, r.MinVersion, semver.Major(want), ErrVersionMismatch)
		}
	}
	return nil
}

// Import reconstructs the descriptor's targets in the consuming graph as
// read-only imported targets. A name collision with any existing target
// fails the whole import; nothing is attached unless every target fits.
func Import(g *target.Graph, d *Descriptor, req Requirement) ([]*target.Target, error) {
	if d.Format != FormatVersion {
		return nil, fmt.Errorf("descriptor format %d, this build reads format %d: %w",
			d.Format, FormatVersion, ErrVersionMismatch)
	}
	if len(d.Targets) == 0 {
		return nil, errEmptyDescriptor
	}
	if err := req.check(d.Version); err != nil {
		return nil, fmt.Errorf("import %q: %w", d.Namespace, err)
	}

	reconstructed := make([]*target.Target, 0, len(d.Targets))
	for _, entry := range d.Targets {
		kind, err := target.ParseKind(entry.Kind)
		if err != nil {
			return nil, fmt.Errorf("imported target %q: %w", entry.Name, err)
		}
		props := target.NewPropertyBag()
		for _, pe := range entry.Properties {
			vis, err := target.ParseVisibility(pe.Visibility)
			if err != nil {
				return nil, fmt.Errorf("imported target %q, property %s: %w", entry.Name, pe.Name, err)
			}
			props.Set(pe.Name, pe.Value, vis)
		}
		reconstructed = append(reconstructed, target.NewImported(entry.Name, kind, entry.Artifact, props))
	}

	for _, t := range reconstructed {
		if _, exists := g.Target(t.Name); exists {
			return nil, fmt.Errorf("import %q: target %q: %w", d.Namespace, t.Name, target.ErrDuplicateTarget)
		}
	}
	for _, t := range reconstructed {
		if err := g.Attach(t); err != nil {
			return nil, err
		}
	}
	return reconstructed, nil
}
