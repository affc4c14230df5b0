// crest import <source>
package cmd

import (
	"os"
	"path/filepath"

	"github.com/crest-build/crest/internal/export"
	"github.com/crest-build/crest/internal/msg"
	"github.com/crest-build/crest/internal/project"
	"github.com/crest-build/crest/internal/registry"
	"github.com/crest-build/crest/internal/target"
	"github.com/spf13/cobra"
)

var (
	flagImportPath string
	flagMinVersion string
	flagPolicy     Choice = NewChoice("any-newer", map[string]string{
		"exact":      "Require exactly the given version",
		"any-newer":  "Accept the given version or anything newer (default)",
		"same-major": "Accept newer versions within the same major",
	})
)

func doImport(cmd *cobra.Command, args []string) {
	source := args[0]

	// names registered via `crest export --install` resolve through the
	// per-user registry first
	if reg, err := registry.Default(); err == nil {
		if path, ok := reg.PathFor(source); ok {
			source = path
		}
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		msg.Fatal("could not determine cache directory: %v", err)
	}
	d, err := export.Fetch(source, filepath.Join(cacheDir, "crest", "imports"))
	if err != nil {
		msg.Fatal("%v", err)
	}

	policy, err := export.ParsePolicy(flagPolicy.Value())
	if err != nil {
		msg.Fatal("%v", err)
	}

	g := target.NewGraph()
	if _, err := os.Stat(filepath.Join(flagImportPath, project.ManifestFilename)); err == nil {
		p, err := project.LoadProject(flagImportPath, flagConfig, flagCompiler)
		if err != nil {
			msg.Fatal("%v", err)
		}
		g = p.Graph()
	}

	added, err := export.Import(g, d, export.Requirement{
		MinVersion: flagMinVersion,
		Policy:     policy,
	})
	if err != nil {
		msg.Fatal("%v", err)
	}

	msg.Info("imported %q version %s (%d targets)", d.Namespace, d.Version, len(added))
	for _, t := range added {
		if t.Kind.HasArtifact() {
			msg.Info("  %s (%s, artifact %s)", t.Name, t.Kind, t.ArtifactName())
		} else {
			msg.Info("  %s (%s)", t.Name, t.Kind)
		}
	}
}

var importCmd = &cobra.Command{
	Use:   "import <source>",
	Short: "Import an exported descriptor",
	Long:  `Import an exported descriptor into the current package graph. The source is a registered namespace, a local path, a git: URL, or a hosting shortcut like gh:someone/libfoo.`,
	Args:  cobra.ExactArgs(1),
	Run:   doImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	addConfigFlags(importCmd)
	importCmd.Flags().StringVarP(&flagImportPath, "path", "p", ".", "Package path to import into")
	importCmd.Flags().StringVar(&flagMinVersion, "min-version", "", "Minimum acceptable descriptor version")
	importCmd.Flags().Var(&flagPolicy, "policy", "Version compatibility policy, one of "+flagPolicy.HelpString())
	importCmd.RegisterFlagCompletionFunc("policy", flagPolicy.CompletionFunc())
}
