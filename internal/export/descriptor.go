// Package export serializes the public contract of a target set into a
// portable descriptor and reconstructs equivalent read-only targets in a
// consuming graph.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// DescriptorFilename is the conventional descriptor name inside a
	// package directory or repository.
	DescriptorFilename = "crest_export.json"

	// FormatVersion is the descriptor format this build reads and writes.
	FormatVersion = 1
)

// PropertyEntry is one exported property value with its visibility tag.
// Private values never appear in a descriptor.
type PropertyEntry struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	Visibility string `json:"visibility"`
}

// TargetEntry is one exported target. Name is already namespace-prefixed.
type TargetEntry struct {
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Artifact   string          `json:"artifact,omitempty"`
	Properties []PropertyEntry `json:"properties,omitempty"`
}

// Descriptor is the serialized snapshot one export action produces. It is
// immutable once written and may be consumed by any number of imports.
type Descriptor struct {
	Format    int           `json:"format"`
	ID        string        `json:"id"`
	Namespace string        `json:"namespace"`
	Version   string        `json:"version"`
	Targets   []TargetEntry `json:"targets"`
}

func ParseDescriptor(rdr io.Reader) (*Descriptor, error) {
	var d Descriptor
	if err := json.NewDecoder(bufio.NewReader(rdr)).Decode(&d); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}
	return &d, nil
}

// Load reads a descriptor from a file, or from the conventional file name
// inside a directory.
func Load(path string) (*Descriptor, error) {
	if stat, err := os.Stat(path); err == nil && stat.IsDir() {
		path = filepath.Join(path, DescriptorFilename)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDescriptor(bufio.NewReader(f))
}

// Save writes the descriptor to a file, creating parent directories.
func (d *Descriptor) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return d.encode(f)
}

// encode writes the indented JSON form. The flush error is returned so
// short writes surface instead of reporting success.
func (d *Descriptor) encode(w io.Writer) error {
	bufw := bufio.NewWriter(w)
	enc := json.NewEncoder(bufw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return err
	}
	return bufw.Flush()
}

// TargetNames returns the (namespaced) names of all exported targets.
func (d *Descriptor) TargetNames() []string {
	names := make([]string, len(d.Targets))
	for i, t := range d.Targets {
		names[i] = t.Name
	}
	return names
}

var errEmptyDescriptor = errors.New("descriptor contains no targets")
