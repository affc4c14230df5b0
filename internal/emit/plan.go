package emit

import "encoding/json"

// JSONEmitter writes the resolve plan as an indented JSON document for
// downstream tooling.
type JSONEmitter struct {
	configuration string
	targets       []Target
}

type plan struct {
	Configuration string   `json:"configuration"`
	Targets       []Target `json:"targets"`
}

func (g *JSONEmitter) OutputFile() string { return "crest_plan.json" }

func (g *JSONEmitter) AddTarget(t Target) {
	g.targets = append(g.targets, t)
}

func (g *JSONEmitter) Generate() string {
	data, err := json.MarshalIndent(plan{
		Configuration: g.configuration,
		Targets:       g.targets,
	}, "", "  ")
	if err != nil {
		panic(err) // plan contains only plain strings and slices
	}
	return string(data) + "\n"
}
