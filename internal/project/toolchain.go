package project

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var compilerIdentities = []struct {
	name string
	id   string
}{
	{"clang++", "Clang"},
	{"clang", "Clang"},
	{"g++", "GNU"},
	{"gcc", "GNU"},
	{"icpx", "IntelLLVM"},
	{"icx", "IntelLLVM"},
	{"icc", "Intel"},
	{"tcc", "TinyCC"},
	{"cl", "MSVC"},
}

// DetectCompilerID guesses the compiler identity for the resolution
// context: CC/CXX first, then the first common compiler found on PATH.
// Returns "" when nothing is found; $<COMPILER_ID:...> then fails loudly
// instead of matching nothing.
func DetectCompilerID() string {
	for _, envvar := range []string{"CC", "CXX"} {
		if cc := os.Getenv(envvar); cc != "" {
			if id := identifyCompiler(cc); id != "" {
				return id
			}
		}
	}

	for _, c := range compilerIdentities {
		if _, err := exec.LookPath(c.name); err == nil {
			return c.id
		}
	}

	return ""
}

func identifyCompiler(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	for _, c := range compilerIdentities {
		if base == c.name {
			return c.id
		}
	}
	// versioned and cross-prefixed spellings: clang-18, aarch64-linux-gnu-gcc-13
	for _, c := range compilerIdentities {
		if len(c.name) >= 3 && strings.Contains(base, c.name) {
			return c.id
		}
	}
	return ""
}
