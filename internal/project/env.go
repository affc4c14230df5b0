package project

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Env is the typed environment manifest expressions are compiled
// against, both for conditional section keys and `{{...}}` interpolation.
type Env struct {
	TargetOS      string            `expr:"target_os"`
	TargetArch    string            `expr:"target_arch"`
	Configuration string            `expr:"configuration"`
	Compiler      string            `expr:"compiler"`
	Environ       map[string]string `expr:"environ"`
	basedir       string
}

func NewEnv(basedir, configuration, compiler string) Env {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if i := strings.Index(e, "="); i >= 0 {
			environ[e[:i]] = e[i+1:]
		}
	}

	return Env{
		TargetOS:      runtime.GOOS,
		TargetArch:    runtime.GOARCH,
		Configuration: configuration,
		Compiler:      compiler,
		Environ:       environ,
		basedir:       basedir,
	}
}

// ReadFile lets manifest expressions pull small files (version stamps and
// the like) from inside the package directory. Paths escaping the
// package directory are rejected.
func (env Env) ReadFile(path string) (string, error) {
	fullPath := filepath.Join(env.basedir, path)
	rel, err := filepath.Rel(env.basedir, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside of package directory %q", path, env.basedir)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
