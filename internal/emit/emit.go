// Package emit renders resolved targets into consumable output formats.
// It is the tail end of a resolve: by the time an emitter sees a target,
// every deferred expression has collapsed into literal flags.
package emit

const (
	FormatFlags = "flags"
	FormatJSON  = "json"
)

// Target is one fully resolved target handed to an emitter.
type Target struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Artifact string   `json:"artifact,omitempty"`
	Sources  []string `json:"sources,omitempty"`
	Cflags   []string `json:"cflags,omitempty"`
	Ldflags  []string `json:"ldflags,omitempty"`
	Deps     []string `json:"deps,omitempty"`
}

type Emitter interface {
	AddTarget(t Target)
	Generate() string
	OutputFile() string
}

func New(format, configuration string) Emitter {
	switch format {
	case FormatFlags:
		return &FlagsEmitter{configuration: configuration}
	case FormatJSON:
		return &JSONEmitter{configuration: configuration}
	}
	panic("emit.New: unreachable")
}
