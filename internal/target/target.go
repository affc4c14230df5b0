package target

import (
	"fmt"
	"runtime"
	"strings"
)

// Kind classifies what a target produces.
type Kind int

const (
	Executable Kind = iota
	StaticLibrary
	SharedLibrary
	// InterfaceLibrary produces no artifact; it only carries usage
	// properties for its dependents.
	InterfaceLibrary
)

func (k Kind) String() string {
	switch k {
	case Executable:
		return "executable"
	case StaticLibrary:
		return "static-library"
	case SharedLibrary:
		return "shared-library"
	case InterfaceLibrary:
		return "interface"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "executable", "":
		return Executable, nil
	case "static-library":
		return StaticLibrary, nil
	case "shared-library":
		return SharedLibrary, nil
	case "interface":
		return InterfaceLibrary, nil
	}
	return 0, fmt.Errorf("unknown target kind %q", s)
}

func (k Kind) HasArtifact() bool {
	return k != InterfaceLibrary
}

// Target is a named buildable or consumable unit in the graph.
type Target struct {
	Name string
	Kind Kind

	// Artifact is a caller-supplied location hint for the produced file.
	// Empty for targets that haven't been placed yet; ArtifactName falls
	// back to a platform-conventional name.
	Artifact string

	imported bool
	props    *PropertyBag
}

// NewImported constructs a read-only target reconstructed from an export
// descriptor. Its properties are sealed: SetProperty refuses further
// mutation.
func NewImported(name string, kind Kind, artifact string, props *PropertyBag) *Target {
	if props == nil {
		props = NewPropertyBag()
	}
	return &Target{Name: name, Kind: kind, Artifact: artifact, imported: true, props: props}
}

func (t *Target) Imported() bool { return t.imported }

// SetProperty appends a tagged value to one of the target's properties.
func (t *Target) SetProperty(name, value string, vis Visibility) error {
	if t.imported {
		return fmt.Errorf("set %s on target %q: %w", name, t.Name, ErrImmutableTarget)
	}
	t.props.Set(name, value, vis)
	return nil
}

// Property returns the target's own values for a property under a
// visibility filter. This does not include anything inherited over link
// edges; use Graph.Resolve for the effective view.
func (t *Target) Property(name string, f Filter) []string {
	return t.props.Get(name, f)
}

func (t *Target) PropertyNames() []string {
	return t.props.Names()
}

func (t *Target) PropertyEntries(name string) []PropertyValue {
	return t.props.Entries(name)
}

// ArtifactName returns the artifact location hint, or the conventional
// file name for the target's kind (e.g. `app.exe` or `libfoo.a`).
func (t *Target) ArtifactName() string {
	if t.Artifact != "" {
		return t.Artifact
	}
	switch t.Kind {
	case StaticLibrary:
		if runtime.GOOS == "windows" {
			return t.Name + ".lib"
		}
		return "lib" + t.Name + ".a"
	case SharedLibrary:
		switch runtime.GOOS {
		case "windows":
			return t.Name + ".dll"
		case "darwin":
			return "lib" + t.Name + ".dylib"
		}
		return "lib" + t.Name + ".so"
	case Executable:
		if runtime.GOOS == "windows" {
			return t.Name + ".exe"
		}
		return t.Name
	}
	return ""
}

func (t *Target) clone() *Target {
	return &Target{
		Name:     t.Name,
		Kind:     t.Kind,
		Artifact: t.Artifact,
		imported: t.imported,
		props:    t.props.Clone(),
	}
}
