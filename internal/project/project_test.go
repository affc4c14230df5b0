package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crest-build/crest/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoManifest = `
[package]
name = "demo"
version = "0.1.0"

[target.app]
sources = ["src/main.c"]

[target.app.private]
options = ["-Wall", "$<$<CONFIG:Debug>:-g>", "$<$<CONFIG:Release>:-O2>"]

[[target.app.link]]
target = "util"

[target.util]
kind = "static-library"
sources = ["src/util.c"]

[target.util.public]
include-dirs = ["include"]
defines = { USE_UTIL = "" }

[target.util.interface]
libs = ["m"]
`

func writeDemoPackage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "include"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFilename), []byte(demoManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.c"), []byte("int main(void){return 0;}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "util.c"), []byte("int util(void){return 1;}\n"), 0o644))
	return dir
}

func TestLoadProject(t *testing.T) {
	dir := writeDemoPackage(t)
	p, err := LoadProject(dir, "Debug", "Clang")
	require.NoError(t, err)

	assert.Equal(t, "demo", p.Name())
	assert.Equal(t, "0.1.0", p.Version())
	assert.Equal(t, []string{"app", "util"}, p.Graph().Names())

	app, ok := p.Graph().Target("app")
	require.True(t, ok)
	srcs := app.Property(PropSources, target.FilterPrivate)
	require.Len(t, srcs, 1)
	assert.Equal(t, filepath.Join(p.BaseDir(), "src", "main.c"), srcs[0],
		"globbed sources come back as absolute paths")

	edges := p.Graph().Edges("app")
	require.Len(t, edges, 1)
	assert.Equal(t, target.LinkEdge{Dependency: "util", Visibility: target.Public}, edges[0],
		"a link entry without a visibility defaults to public")
}

func TestLoadProject_MissingManifest(t *testing.T) {
	_, err := LoadProject(t.TempDir(), "Debug", "Clang")
	assert.Error(t, err)
}

func TestResolveTargets_Debug(t *testing.T) {
	dir := writeDemoPackage(t)
	p, err := LoadProject(dir, "Debug", "Clang")
	require.NoError(t, err)

	resolved, err := p.ResolveTargets()
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	app := resolved[0]
	require.Equal(t, "app", app.Name)

	util, ok := p.Graph().Target("util")
	require.True(t, ok)

	assert.Equal(t, []string{
		"-I" + filepath.Join(p.BaseDir(), "include"),
		"-DUSE_UTIL",
		"-Wall",
		"-g",
	}, app.Cflags, "the Release guard must vanish, the Debug one must collapse to its payload")
	assert.Equal(t, []string{"-lm"}, app.Ldflags, "interface libs of a dependency reach the consumer")
	assert.Equal(t, []string{util.ArtifactName()}, app.Deps)
	assert.Equal(t, []string{filepath.Join(p.BaseDir(), "src", "main.c")}, app.Sources,
		"a dependency's private sources must not leak into the consumer")
}

func TestResolveTargets_Release(t *testing.T) {
	dir := writeDemoPackage(t)
	p, err := LoadProject(dir, "Release", "Clang")
	require.NoError(t, err)

	resolved, err := p.ResolveTargets()
	require.NoError(t, err)

	app := resolved[0]
	require.Equal(t, "app", app.Name)
	assert.Contains(t, app.Cflags, "-O2")
	assert.NotContains(t, app.Cflags, "-g")
}

func TestResolveTargets_BadExpressionPoisonsOneTarget(t *testing.T) {
	dir := t.TempDir()
	manifest := `
[package]
name = "demo"

[target.bad]
sources = []

[target.bad.private]
options = ["$<BOOL:NO_SUCH_VAR>"]

[target.good]
sources = []

[target.good.private]
options = ["-Wall"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFilename), []byte(manifest), 0o644))

	p, err := LoadProject(dir, "Debug", "Clang")
	require.NoError(t, err)

	resolved, err := p.ResolveTargets()
	assert.ErrorContains(t, err, "bad")

	// the sibling still resolves
	require.Len(t, resolved, 1)
	assert.Equal(t, "good", resolved[0].Name)
	assert.Equal(t, []string{"-Wall"}, resolved[0].Cflags)
}

func TestProjectExport_Defaults(t *testing.T) {
	dir := writeDemoPackage(t)
	p, err := LoadProject(dir, "Debug", "Clang")
	require.NoError(t, err)

	d, err := p.Export(nil, "", "")
	require.NoError(t, err)

	assert.Equal(t, "demo", d.Namespace)
	assert.Equal(t, "0.1.0", d.Version)
	assert.Equal(t, []string{"demo::app", "demo::util"}, d.TargetNames())
}

func TestCollectFiles_Globbing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "sub"), 0o755))
	for _, name := range []string{"src/a.c", "src/b.c", "src/sub/c.c", "src/skip.h"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), nil, 0o644))
	}

	files, err := collectFiles(dir, []string{"src/**/*.c"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "src", "a.c"),
		filepath.Join(dir, "src", "b.c"),
		filepath.Join(dir, "src", "sub", "c.c"),
	}, files)

	t.Run("deferred expressions pass through", func(t *testing.T) {
		files, err := collectFiles(dir, []string{"$<$<CONFIG:Debug>:extra.c>"})
		require.NoError(t, err)
		assert.Equal(t, []string{"$<$<CONFIG:Debug>:extra.c>"}, files)
	})
}

func TestEnvReadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte("1.4.2\n"), 0o644))
	env := NewEnv(dir, "Debug", "Clang")

	got, err := env.ReadFile("VERSION")
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", got, "trailing whitespace is trimmed")

	_, err = env.ReadFile("../outside")
	assert.Error(t, err, "paths escaping the package directory are rejected")
}
