package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyBag_SetAccumulates(t *testing.T) {
	b := NewPropertyBag()
	b.Set("COMPILE_OPTIONS", "-Wall", Private)
	b.Set("COMPILE_OPTIONS", "-Wextra", Private)
	b.Set("COMPILE_OPTIONS", "-Wall", Private)

	// Set never overwrites: values accumulate in insertion order,
	// including repeats
	assert.Equal(t, []string{"-Wall", "-Wextra", "-Wall"}, b.Get("COMPILE_OPTIONS", FilterAll))
}

func TestPropertyBag_VisibilityFilters(t *testing.T) {
	b := NewPropertyBag()
	b.Set("INCLUDE_DIRECTORIES", "src", Private)
	b.Set("INCLUDE_DIRECTORIES", "include", Public)
	b.Set("INCLUDE_DIRECTORIES", "contract", Interface)

	t.Run("self view sees private and public", func(t *testing.T) {
		assert.Equal(t, []string{"src", "include"}, b.Get("INCLUDE_DIRECTORIES", FilterSelf))
	})

	t.Run("usage view sees public and interface", func(t *testing.T) {
		assert.Equal(t, []string{"include", "contract"}, b.Get("INCLUDE_DIRECTORIES", FilterUsage))
	})

	t.Run("single filters", func(t *testing.T) {
		assert.Equal(t, []string{"src"}, b.Get("INCLUDE_DIRECTORIES", FilterPrivate))
		assert.Equal(t, []string{"include"}, b.Get("INCLUDE_DIRECTORIES", FilterPublic))
		assert.Equal(t, []string{"contract"}, b.Get("INCLUDE_DIRECTORIES", FilterInterface))
	})
}

func TestPropertyBag_UnknownProperty(t *testing.T) {
	b := NewPropertyBag()
	// unknown names are an empty list, not an error
	assert.Empty(t, b.Get("NO_SUCH_PROPERTY", FilterAll))
	assert.Empty(t, b.Entries("NO_SUCH_PROPERTY"))
}

func TestPropertyBag_NamesInFirstSetOrder(t *testing.T) {
	b := NewPropertyBag()
	b.Set("B", "1", Public)
	b.Set("A", "1", Public)
	b.Set("B", "2", Public)

	assert.Equal(t, []string{"B", "A"}, b.Names())
}

func TestPropertyBag_CloneIsIndependent(t *testing.T) {
	b := NewPropertyBag()
	b.Set("X", "1", Public)

	c := b.Clone()
	c.Set("X", "2", Public)
	c.Set("Y", "1", Private)

	assert.Equal(t, []string{"1"}, b.Get("X", FilterAll))
	assert.Equal(t, []string{"X"}, b.Names())
	assert.Equal(t, []string{"1", "2"}, c.Get("X", FilterAll))
}

func TestParseVisibility(t *testing.T) {
	for s, want := range map[string]Visibility{
		"private":   Private,
		"PUBLIC":    Public,
		"Interface": Interface,
	} {
		got, err := ParseVisibility(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseVisibility("protected")
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	got, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Executable, got, "empty kind defaults to executable")

	got, err = ParseKind("static-library")
	require.NoError(t, err)
	assert.Equal(t, StaticLibrary, got)

	_, err = ParseKind("object-library")
	assert.Error(t, err)
}

func TestKind_HasArtifact(t *testing.T) {
	assert.True(t, Executable.HasArtifact())
	assert.True(t, StaticLibrary.HasArtifact())
	assert.True(t, SharedLibrary.HasArtifact())
	assert.False(t, InterfaceLibrary.HasArtifact())
}
