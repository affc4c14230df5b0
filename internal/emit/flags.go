package emit

import "strings"

// FlagsEmitter writes a plain-text listing of each target's resolved
// flags, one block per target in add order.
type FlagsEmitter struct {
	configuration string
	targets       []Target
}

func (g *FlagsEmitter) OutputFile() string { return "crest_flags.txt" }

func (g *FlagsEmitter) AddTarget(t Target) {
	g.targets = append(g.targets, t)
}

func write(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
}

func writeln(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
	sb.WriteByte('\n')
}

func (g *FlagsEmitter) Generate() string {
	var sb strings.Builder

	writeln(&sb, "# resolved by crest")
	writeln(&sb, "configuration = ", g.configuration)
	writeln(&sb)

	for _, t := range g.targets {
		writeln(&sb, "target ", t.Name)
		writeln(&sb, "  kind = ", t.Kind)
		if t.Artifact != "" {
			writeln(&sb, "  artifact = ", t.Artifact)
		}
		if len(t.Sources) > 0 {
			writeln(&sb, "  sources = ", strings.Join(t.Sources, " "))
		}
		if len(t.Cflags) > 0 {
			writeln(&sb, "  cflags = ", strings.Join(t.Cflags, " "))
		}
		if len(t.Ldflags) > 0 {
			writeln(&sb, "  ldflags = ", strings.Join(t.Ldflags, " "))
		}
		if len(t.Deps) > 0 {
			writeln(&sb, "  deps = ", strings.Join(t.Deps, " "))
		}
		writeln(&sb)
	}

	return sb.String()
}
