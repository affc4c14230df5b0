package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crest-build/crest/internal/target"
	"github.com/google/uuid"
	"golang.org/x/mod/semver"
)

var (
	ErrNonExportable   = errors.New("target has no artifact and no usage surface")
	ErrVersionMismatch = errors.New("descriptor version does not satisfy requirement")
)

// NamespaceSep joins the export namespace and a target name, e.g.
// "mypkg::mylib".
const NamespaceSep = "::"

// canonVersion normalizes user-facing versions ("1.2", "v1.2.3") into the
// canonical v-prefixed form semver understands.
func canonVersion(v string) string {
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Export snapshots the named targets' public contract: only PUBLIC and
// INTERFACE property values are copied (private values are not part of
// the contract offered to consumers) and every target name is prefixed
// with the namespace so it cannot collide with a consumer's own targets.
func Export(g *target.Graph, names []string, namespace, version string) (*Descriptor, error) {
	if namespace == "" {
		return nil, errors.New("export namespace must not be empty")
	}
	if !semver.IsValid(canonVersion(version)) {
		return nil, fmt.Errorf("invalid package version %q", version)
	}

	d := &Descriptor{
		Format:    FormatVersion,
		ID:        uuid.New().String(),
		Namespace: namespace,
		Version:   version,
	}

	for _, name := range names {
		t, ok := g.Target(name)
		if !ok {
			return nil, fmt.Errorf("export %q: %w", name, target.ErrUnknownTarget)
		}

		entry := TargetEntry{
			Name: namespace + NamespaceSep + name,
			Kind: t.Kind.String(),
		}
		if t.Kind.HasArtifact() {
			entry.Artifact = t.ArtifactName()
		}
		for _, prop := range t.PropertyNames() {
			for _, pv := range t.PropertyEntries(prop) {
				if pv.Visibility == target.Private {
					continue
				}
				entry.Properties = append(entry.Properties, PropertyEntry{
					Name:       prop,
					Value:      pv.Value,
					Visibility: pv.Visibility.String(),
				})
			}
		}

		if entry.Artifact == "" && len(entry.Properties) == 0 {
			return nil, fmt.Errorf("target %q: %w", name, ErrNonExportable)
		}
		d.Targets = append(d.Targets, entry)
	}

	if len(d.Targets) == 0 {
		return nil, errEmptyDescriptor
	}
	return d, nil
}
