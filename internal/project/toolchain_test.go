package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifyCompiler(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"clang", "Clang"},
		{"/usr/bin/clang++", "Clang"},
		{"clang-18", "Clang"},
		{"gcc", "GNU"},
		{"aarch64-linux-gnu-gcc-13", "GNU"},
		{"g++", "GNU"},
		{"cl", "MSVC"},
		{"cl.exe", "MSVC"},
		{"icx", "IntelLLVM"},
		{"tcc", "TinyCC"},
		{"ld", ""},
		// "cl" must not substring-match longer names
		{"clipper", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, identifyCompiler(tt.path))
		})
	}
}
