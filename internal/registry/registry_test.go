package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	r, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, r.Packages)

	_, ok := r.PathFor("anything")
	assert.False(t, ok)
}

func TestRegistry_SaveLoadRoundTrip(t *testing.T) {
	base := t.TempDir()

	r, err := Load(base)
	require.NoError(t, err)
	r.Add("mypkg", "/somewhere/build/crest_export.json")
	r.Add("other", "/elsewhere/crest_export.json")
	require.NoError(t, r.Save())

	got, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, r.Packages, got.Packages)

	path, ok := got.PathFor("mypkg")
	require.True(t, ok)
	assert.Equal(t, "/somewhere/build/crest_export.json", path)
}

func TestRegistry_AddOverwrites(t *testing.T) {
	r := &Registry{basePath: t.TempDir()}
	r.Add("mypkg", "/old")
	r.Add("mypkg", "/new")

	path, ok := r.PathFor("mypkg")
	require.True(t, ok)
	assert.Equal(t, "/new", path)
}

func TestRegistry_Remove(t *testing.T) {
	r := &Registry{basePath: t.TempDir()}
	r.Add("mypkg", "/somewhere")

	assert.True(t, r.Remove("mypkg"))
	assert.False(t, r.Remove("mypkg"))
	_, ok := r.PathFor("mypkg")
	assert.False(t, ok)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("device full") }

func TestRegistry_WriteErrorsSurface(t *testing.T) {
	r := &Registry{basePath: t.TempDir(), Packages: map[string]string{"p": "/x"}}
	assert.Error(t, r.encode(brokenWriter{}), "a short write must not report success")
}

func TestRegistry_SaveCreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "crest")
	r := &Registry{basePath: base, Packages: map[string]string{"p": "/x"}}
	require.NoError(t, r.Save())

	_, err := os.Stat(filepath.Join(base, RegistryFilename))
	assert.NoError(t, err)
}
