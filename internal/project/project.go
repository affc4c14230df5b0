package project

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/crest-build/crest/internal/export"
	"github.com/crest-build/crest/internal/genex"
	"github.com/crest-build/crest/internal/target"
)

// Well-known property names the manifest populates and resolution reads.
const (
	PropSources            = "SOURCES"
	PropIncludeDirectories = "INCLUDE_DIRECTORIES"
	PropCompileDefinitions = "COMPILE_DEFINITIONS"
	PropCompileOptions     = "COMPILE_OPTIONS"
	PropLinkOptions        = "LINK_OPTIONS"
	PropLinkLibraries      = "LINK_LIBRARIES"
)

// Project ties a manifest, its target graph and the evaluation
// environment together.
type Project struct {
	man     *Manifest
	basedir string
	env     Env
	graph   *target.Graph
}

// LoadProject parses the manifest in path and populates the target
// graph. An empty compiler identity is auto-detected from the toolchain.
func LoadProject(path, configuration, compiler string) (*Project, error) {
	var err error
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if compiler == "" {
		compiler = DetectCompilerID()
	}
	env := NewEnv(path, configuration, compiler)

	man, err := ParseManifestFromFile(filepath.Join(path, ManifestFilename), env)
	if err != nil {
		return nil, err
	}

	g, err := buildGraph(man, path)
	if err != nil {
		return nil, err
	}

	return &Project{man: man, basedir: path, env: env, graph: g}, nil
}

func (p *Project) Name() string         { return p.man.Package.Name }
func (p *Project) Version() string      { return p.man.Package.Version }
func (p *Project) Graph() *target.Graph { return p.graph }
func (p *Project) Env() Env             { return p.env }
func (p *Project) Manifest() *Manifest  { return p.man }
func (p *Project) BaseDir() string      { return p.basedir }

// buildGraph declares every manifest target, fills its property bag, and
// then links edges in a second pass so link order follows the manifest.
func buildGraph(man *Manifest, basedir string) (*target.Graph, error) {
	g := target.NewGraph()
	names := man.TargetNames()

	for _, name := range names {
		sec := man.Targets[name]
		kind, err := target.ParseKind(sec.Kind)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", name, err)
		}
		t, err := g.AddTarget(name, kind)
		if err != nil {
			return nil, err
		}

		sources, err := collectFiles(basedir, sec.Sources)
		if err != nil {
			return nil, fmt.Errorf("failed to collect sources for %q: %w", name, err)
		}
		for _, src := range sources {
			if err := t.SetProperty(PropSources, src, target.Private); err != nil {
				return nil, err
			}
		}

		for _, block := range []struct {
			set PropertySet
			vis target.Visibility
		}{
			{sec.Private, target.Private},
			{sec.Public, target.Public},
			{sec.Interface, target.Interface},
		} {
			if err := applyPropertySet(t, block.set, block.vis, basedir); err != nil {
				return nil, fmt.Errorf("target %q: %w", name, err)
			}
		}
	}

	for _, name := range names {
		for _, link := range man.Targets[name].Link {
			if link.Target == "" {
				return nil, fmt.Errorf("target %q has a link entry without a target", name)
			}
			vis := target.Public
			if link.Visibility != "" {
				var err error
				vis, err = target.ParseVisibility(link.Visibility)
				if err != nil {
					return nil, fmt.Errorf("target %q: %w", name, err)
				}
			}
			if err := g.Link(name, link.Target, vis); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}

func applyPropertySet(t *target.Target, ps PropertySet, vis target.Visibility, basedir string) error {
	for _, dir := range ps.IncludeDirs {
		if err := t.SetProperty(PropIncludeDirectories, resolveDir(basedir, dir), vis); err != nil {
			return err
		}
	}

	defineKeys := make([]string, 0, len(ps.Defines))
	for k := range ps.Defines {
		defineKeys = append(defineKeys, k)
	}
	slices.Sort(defineKeys)
	for _, k := range defineKeys {
		val := k
		if v := ps.Defines[k]; v != "" {
			val = k + "=" + v
		}
		if err := t.SetProperty(PropCompileDefinitions, val, vis); err != nil {
			return err
		}
	}

	for _, opt := range ps.Options {
		if err := t.SetProperty(PropCompileOptions, opt, vis); err != nil {
			return err
		}
	}
	for _, opt := range ps.LinkOptions {
		if err := t.SetProperty(PropLinkOptions, opt, vis); err != nil {
			return err
		}
	}
	for _, lib := range ps.Libs {
		if err := t.SetProperty(PropLinkLibraries, lib, vis); err != nil {
			return err
		}
	}
	return nil
}

// resolveDir anchors manifest-relative directories to the package dir.
// Values holding generator expressions are deferred untouched.
func resolveDir(basedir, dir string) string {
	if filepath.IsAbs(dir) || strings.Contains(dir, "$<") {
		return dir
	}
	return filepath.Join(basedir, dir)
}

// collectFiles expands glob patterns relative to the package directory.
// Absolute paths and deferred expressions pass through unexpanded.
func collectFiles(basedir string, patterns []string) ([]string, error) {
	var files []string
	fsys := os.DirFS(basedir)

	for _, pat := range patterns {
		if filepath.IsAbs(pat) {
			files = append(files, filepath.Clean(pat))
			continue
		}
		if strings.Contains(pat, "$<") {
			files = append(files, pat)
			continue
		}
		matches, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			absPath, err := filepath.Abs(filepath.Join(basedir, match))
			if err != nil {
				return nil, fmt.Errorf("while globbing %s: %w", match, err)
			}
			files = append(files, filepath.Clean(absPath))
		}
	}

	return files, nil
}

// ResolvedTarget is one target with every deferred expression collapsed
// into literal flag lists for the active configuration.
type ResolvedTarget struct {
	Name     string
	Kind     target.Kind
	Artifact string
	Sources  []string
	Cflags   []string
	Ldflags  []string
	Deps     []string
}

// ResolveTargets folds link-edge property propagation and then expands
// generator expressions for every non-imported target. A bad expression
// poisons its own target only; siblings still resolve, and all failures
// come back joined.
func (p *Project) ResolveTargets() ([]ResolvedTarget, error) {
	names := p.graph.Names()
	views, err := p.graph.ResolveAll(names)
	if err != nil {
		return nil, err
	}

	vars := make(map[string]string, len(p.man.Vars))
	maps.Copy(vars, p.man.Vars)

	var resolved []ResolvedTarget
	var errs []error
	for _, name := range names {
		t, _ := p.graph.Target(name)
		if t.Imported() {
			continue
		}
		rt, err := p.resolveOne(t, views[name], vars)
		if err != nil {
			errs = append(errs, fmt.Errorf("target %q: %w", name, err))
			continue
		}
		resolved = append(resolved, rt)
	}
	return resolved, errors.Join(errs...)
}

func (p *Project) resolveOne(t *target.Target, view *target.View, vars map[string]string) (ResolvedTarget, error) {
	ctx := &genex.Context{
		Configuration: p.env.Configuration,
		CompilerID:    p.env.Compiler,
		Vars:          vars,
		Graph:         p.graph,
		Subject:       t.Name,
	}

	expand := func(prop string) ([]string, error) {
		values, err := genex.ExpandAll(view.Get(prop), ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", prop, err)
		}
		return values, nil
	}

	sources, err := expand(PropSources)
	if err != nil {
		return ResolvedTarget{}, err
	}
	includes, err := expand(PropIncludeDirectories)
	if err != nil {
		return ResolvedTarget{}, err
	}
	defines, err := expand(PropCompileDefinitions)
	if err != nil {
		return ResolvedTarget{}, err
	}
	options, err := expand(PropCompileOptions)
	if err != nil {
		return ResolvedTarget{}, err
	}
	linkOptions, err := expand(PropLinkOptions)
	if err != nil {
		return ResolvedTarget{}, err
	}
	libs, err := expand(PropLinkLibraries)
	if err != nil {
		return ResolvedTarget{}, err
	}

	rt := ResolvedTarget{
		Name:    t.Name,
		Kind:    t.Kind,
		Sources: sources,
	}
	if t.Kind.HasArtifact() {
		rt.Artifact = t.ArtifactName()
	}

	for _, dir := range includes {
		rt.Cflags = append(rt.Cflags, "-I"+dir)
	}
	for _, def := range defines {
		rt.Cflags = append(rt.Cflags, "-D"+def)
	}
	rt.Cflags = append(rt.Cflags, options...)

	rt.Ldflags = append(rt.Ldflags, linkOptions...)
	for _, lib := range libs {
		rt.Ldflags = append(rt.Ldflags, "-l"+lib)
	}

	for _, e := range p.graph.Edges(t.Name) {
		if dep, ok := p.graph.Target(e.Dependency); ok && dep.Kind.HasArtifact() {
			rt.Deps = append(rt.Deps, dep.ArtifactName())
		}
	}

	return rt, nil
}

// Export snapshots the given targets (all own targets when empty) into a
// descriptor. Namespace and version default to the package section.
func (p *Project) Export(names []string, namespace, version string) (*export.Descriptor, error) {
	if namespace == "" {
		namespace = p.man.Package.Name
	}
	if version == "" {
		version = p.man.Package.Version
	}
	if version == "" {
		version = "0.0.0"
	}

	if len(names) == 0 {
		for _, t := range p.graph.Targets() {
			if !t.Imported() {
				names = append(names, t.Name)
			}
		}
	}

	return export.Export(p.graph, names, namespace, version)
}
