// Package registry keeps a per-user mapping from export namespaces to
// installed descriptor paths, so `crest import mypkg` can find a package
// exported earlier on the same machine.
package registry

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
)

const RegistryFilename = "crest_registry.json"

type Registry struct {
	// on windows: %LocalAppData%/crest
	// on linux: ~/.cache/crest
	basePath string
	// export namespace -> descriptor path
	Packages map[string]string
}

func Parse(rdr io.Reader, basePath string) (*Registry, error) {
	var packages map[string]string
	if err := json.NewDecoder(bufio.NewReader(rdr)).Decode(&packages); err != nil {
		return nil, err
	}
	return &Registry{basePath: basePath, Packages: packages}, nil
}

// Load reads the registry in basePath; a missing file yields an empty
// registry rather than an error.
func Load(basePath string) (*Registry, error) {
	path := filepath.Join(basePath, RegistryFilename)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Registry{basePath: basePath, Packages: make(map[string]string)}, nil
		}
		return nil, err
	}
	defer f.Close()
	return Parse(bufio.NewReader(f), basePath)
}

func (r *Registry) Save() error {
	if err := os.MkdirAll(r.basePath, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(r.basePath, RegistryFilename))
	if err != nil {
		return err
	}
	defer f.Close()
	return r.encode(f)
}

// encode writes the package map as indented JSON, surfacing flush
// errors so a short write never reports success.
func (r *Registry) encode(w io.Writer) error {
	bufw := bufio.NewWriter(w)
	enc := json.NewEncoder(bufw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Packages); err != nil {
		return err
	}
	return bufw.Flush()
}

func (r *Registry) Add(namespace, descriptorPath string) {
	if r.Packages == nil {
		r.Packages = make(map[string]string)
	}
	r.Packages[namespace] = descriptorPath
}

func (r *Registry) Remove(namespace string) bool {
	if _, ok := r.Packages[namespace]; ok {
		delete(r.Packages, namespace)
		return true
	}
	return false
}

// PathFor returns the installed descriptor path for a namespace.
func (r *Registry) PathFor(namespace string) (string, bool) {
	path, ok := r.Packages[namespace]
	return path, ok
}

// Default opens the per-user registry under the OS cache directory.
func Default() (*Registry, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(cacheDir, "crest"))
}
