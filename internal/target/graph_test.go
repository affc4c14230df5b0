package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddTarget(t *testing.T) {
	g := NewGraph()

	_, err := g.AddTarget("app", Executable)
	require.NoError(t, err)

	_, err = g.AddTarget("app", StaticLibrary)
	assert.ErrorIs(t, err, ErrDuplicateTarget)

	_, err = g.AddTarget("", Executable)
	assert.Error(t, err)
}

func TestGraph_LinkUnknownTarget(t *testing.T) {
	g := NewGraph()
	_, err := g.AddTarget("app", Executable)
	require.NoError(t, err)

	assert.ErrorIs(t, g.Link("app", "ghost", Public), ErrUnknownTarget)
	assert.ErrorIs(t, g.Link("ghost", "app", Public), ErrUnknownTarget)
}

func TestGraph_LinkRejectsCycles(t *testing.T) {
	g := NewGraph()
	for _, name := range []string{"x", "y", "z"} {
		_, err := g.AddTarget(name, StaticLibrary)
		require.NoError(t, err)
	}

	require.NoError(t, g.Link("x", "y", Public))
	require.NoError(t, g.Link("y", "z", Public))

	t.Run("direct cycle", func(t *testing.T) {
		assert.ErrorIs(t, g.Link("y", "x", Public), ErrCycle)
	})

	t.Run("transitive cycle", func(t *testing.T) {
		assert.ErrorIs(t, g.Link("z", "x", Public), ErrCycle)
	})

	t.Run("self link", func(t *testing.T) {
		assert.ErrorIs(t, g.Link("x", "x", Public), ErrCycle)
	})

	// rejected edges must leave the graph untouched
	assert.Len(t, g.Edges("y"), 1)
	assert.Empty(t, g.Edges("z"))
}

func TestGraph_ImportedTargetsAreReadOnly(t *testing.T) {
	imp := NewImported("pkg::lib", StaticLibrary, "libpkg.a", nil)
	err := imp.SetProperty("COMPILE_OPTIONS", "-O2", Public)
	assert.ErrorIs(t, err, ErrImmutableTarget)

	g := NewGraph()
	require.NoError(t, g.Attach(imp))

	got, ok := g.Target("pkg::lib")
	require.True(t, ok)
	assert.True(t, got.Imported())
}

func mustTarget(t *testing.T, g *Graph, name string, kind Kind) *Target {
	t.Helper()
	tgt, err := g.AddTarget(name, kind)
	require.NoError(t, err)
	return tgt
}

func mustSet(t *testing.T, tgt *Target, prop, value string, vis Visibility) {
	t.Helper()
	require.NoError(t, tgt.SetProperty(prop, value, vis))
}

// A -> B -> C, everything linked public. C's public surface must reach A.
func TestResolve_TransitivePropagation(t *testing.T) {
	g := NewGraph()
	a := mustTarget(t, g, "a", Executable)
	b := mustTarget(t, g, "b", StaticLibrary)
	c := mustTarget(t, g, "c", StaticLibrary)

	mustSet(t, a, "COMPILE_OPTIONS", "-a", Private)
	mustSet(t, b, "COMPILE_OPTIONS", "-b", Public)
	mustSet(t, c, "COMPILE_OPTIONS", "-c", Public)

	require.NoError(t, g.Link("a", "b", Public))
	require.NoError(t, g.Link("b", "c", Public))

	v, err := g.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"-a", "-b", "-c"}, v.Get("COMPILE_OPTIONS"))
}

func TestResolve_PrivateDoesNotPropagate(t *testing.T) {
	g := NewGraph()
	app := mustTarget(t, g, "app", Executable)
	lib := mustTarget(t, g, "lib", StaticLibrary)

	mustSet(t, app, "COMPILE_OPTIONS", "-app", Private)
	mustSet(t, lib, "COMPILE_OPTIONS", "-impl", Private)
	mustSet(t, lib, "COMPILE_OPTIONS", "-api", Public)

	require.NoError(t, g.Link("app", "lib", Public))

	v, err := g.Resolve("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"-app", "-api"}, v.Get("COMPILE_OPTIONS"),
		"a dependency's private values must not leak to the consumer")
}

func TestResolve_InterfaceAppliesToDependentsOnly(t *testing.T) {
	g := NewGraph()
	mustTarget(t, g, "app", Executable)
	hdr := mustTarget(t, g, "hdr", InterfaceLibrary)

	mustSet(t, hdr, "COMPILE_DEFINITIONS", "HDR_ONLY", Interface)
	require.NoError(t, g.Link("app", "hdr", Public))

	own, err := g.Resolve("hdr")
	require.NoError(t, err)
	assert.Empty(t, own.Get("COMPILE_DEFINITIONS"), "interface values never apply to the owner")

	consumer, err := g.Resolve("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"HDR_ONLY"}, consumer.Get("COMPILE_DEFINITIONS"))
}

// A privately linked dependency applies to its consumer but is not
// re-exported; an interface-linked one is re-exported without applying
// to the consumer.
func TestResolve_EdgeVisibility(t *testing.T) {
	g := NewGraph()
	mustTarget(t, g, "top", Executable)
	mustTarget(t, g, "mid", StaticLibrary)
	leaf := mustTarget(t, g, "leaf", StaticLibrary)

	mustSet(t, leaf, "LINK_LIBRARIES", "m", Public)

	t.Run("private edge stops propagation", func(t *testing.T) {
		require.NoError(t, g.Link("mid", "leaf", Private))
		require.NoError(t, g.Link("top", "mid", Public))

		midView, err := g.Resolve("mid")
		require.NoError(t, err)
		assert.Equal(t, []string{"m"}, midView.Get("LINK_LIBRARIES"))

		topView, err := g.Resolve("top")
		require.NoError(t, err)
		assert.Empty(t, topView.Get("LINK_LIBRARIES"))
	})

	t.Run("interface edge skips the consumer", func(t *testing.T) {
		g2 := NewGraph()
		mustTarget(t, g2, "top", Executable)
		mustTarget(t, g2, "mid", StaticLibrary)
		l := mustTarget(t, g2, "leaf", StaticLibrary)
		mustSet(t, l, "LINK_LIBRARIES", "m", Public)

		require.NoError(t, g2.Link("mid", "leaf", Interface))
		require.NoError(t, g2.Link("top", "mid", Public))

		midView, err := g2.Resolve("mid")
		require.NoError(t, err)
		assert.Empty(t, midView.Get("LINK_LIBRARIES"))

		topView, err := g2.Resolve("top")
		require.NoError(t, err)
		assert.Equal(t, []string{"m"}, topView.Get("LINK_LIBRARIES"))
	})
}

// Diamond: app links lib1 and lib2, both link base. base's surface must
// appear exactly once, at its first-seen position.
func TestResolve_DiamondDeduplicates(t *testing.T) {
	g := NewGraph()
	mustTarget(t, g, "app", Executable)
	l1 := mustTarget(t, g, "lib1", StaticLibrary)
	l2 := mustTarget(t, g, "lib2", StaticLibrary)
	base := mustTarget(t, g, "base", StaticLibrary)

	mustSet(t, l1, "COMPILE_OPTIONS", "-l1", Public)
	mustSet(t, l2, "COMPILE_OPTIONS", "-l2", Public)
	mustSet(t, base, "COMPILE_OPTIONS", "-base", Public)

	require.NoError(t, g.Link("lib1", "base", Public))
	require.NoError(t, g.Link("lib2", "base", Public))
	require.NoError(t, g.Link("app", "lib1", Public))
	require.NoError(t, g.Link("app", "lib2", Public))

	v, err := g.Resolve("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"-l1", "-base", "-l2"}, v.Get("COMPILE_OPTIONS"))
}

func TestResolve_Idempotent(t *testing.T) {
	g := NewGraph()
	mustTarget(t, g, "app", Executable)
	lib := mustTarget(t, g, "lib", StaticLibrary)
	mustSet(t, lib, "COMPILE_OPTIONS", "-O2", Public)
	mustSet(t, lib, "INCLUDE_DIRECTORIES", "include", Public)
	require.NoError(t, g.Link("app", "lib", Public))

	first, err := g.Resolve("app")
	require.NoError(t, err)
	second, err := g.Resolve("app")
	require.NoError(t, err)

	assert.Equal(t, first.Properties(), second.Properties())
	for _, prop := range first.Properties() {
		assert.Equal(t, first.Get(prop), second.Get(prop))
	}
}

func TestResolve_UnknownTarget(t *testing.T) {
	g := NewGraph()
	_, err := g.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownTarget)
	_, err = g.Usage("nope")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestUsage_ExcludesPrivate(t *testing.T) {
	g := NewGraph()
	lib := mustTarget(t, g, "lib", StaticLibrary)
	mustSet(t, lib, "COMPILE_OPTIONS", "-impl", Private)
	mustSet(t, lib, "COMPILE_OPTIONS", "-api", Public)
	mustSet(t, lib, "COMPILE_DEFINITIONS", "USE_LIB", Interface)

	v, err := g.Usage("lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"-api"}, v.Get("COMPILE_OPTIONS"))
	assert.Equal(t, []string{"USE_LIB"}, v.Get("COMPILE_DEFINITIONS"))
}

func TestResolveAll(t *testing.T) {
	g := NewGraph()
	for i := 0; i < 8; i++ {
		tgt := mustTarget(t, g, string(rune('a'+i)), StaticLibrary)
		mustSet(t, tgt, "COMPILE_OPTIONS", "-f"+tgt.Name, Public)
	}
	require.NoError(t, g.Link("a", "b", Public))
	require.NoError(t, g.Link("b", "c", Public))
	require.NoError(t, g.Link("d", "c", Public))

	views, err := g.ResolveAll(g.Names())
	require.NoError(t, err)
	require.Len(t, views, 8)

	assert.Equal(t, []string{"-fa", "-fb", "-fc"}, views["a"].Get("COMPILE_OPTIONS"))
	assert.Equal(t, []string{"-fd", "-fc"}, views["d"].Get("COMPILE_OPTIONS"))
}

func TestSnapshot_IsIndependent(t *testing.T) {
	g := NewGraph()
	lib := mustTarget(t, g, "lib", StaticLibrary)
	mustSet(t, lib, "COMPILE_OPTIONS", "-O2", Public)

	snap := g.Snapshot()
	mustSet(t, lib, "COMPILE_OPTIONS", "-g", Public)
	mustTarget(t, g, "extra", Executable)

	snapLib, ok := snap.Target("lib")
	require.True(t, ok)
	assert.Equal(t, []string{"-O2"}, snapLib.Property("COMPILE_OPTIONS", FilterAll))

	_, ok = snap.Target("extra")
	assert.False(t, ok)
}
