// crest export [target...]
package cmd

import (
	"path/filepath"

	"github.com/crest-build/crest/internal/export"
	"github.com/crest-build/crest/internal/msg"
	"github.com/crest-build/crest/internal/project"
	"github.com/crest-build/crest/internal/registry"
	"github.com/spf13/cobra"
)

var (
	flagExportPath string
	flagNamespace  string
	flagVersion    string
	flagPrefix     string
	flagInstall    bool
)

func doExport(cmd *cobra.Command, args []string) {
	p, err := project.LoadProject(flagExportPath, flagConfig, flagCompiler)
	if err != nil {
		msg.Fatal("%v", err)
	}

	d, err := p.Export(args, flagNamespace, flagVersion)
	if err != nil {
		msg.Fatal("%v", err)
	}

	outDir := flagPrefix
	if outDir == "" {
		outDir = filepath.Join(p.BaseDir(), "build")
	}
	outPath := filepath.Join(outDir, export.DescriptorFilename)
	if err := d.Save(outPath); err != nil {
		msg.Fatal("failed to write descriptor: %v", err)
	}
	msg.Info("exported %d targets as %q version %s -> %s", len(d.Targets), d.Namespace, d.Version, outPath)

	if flagInstall {
		reg, err := registry.Default()
		if err != nil {
			msg.Fatal("failed to open registry: %v", err)
		}
		if _, exists := reg.PathFor(d.Namespace); exists {
			msg.Warn("overwriting registry entry for %q", d.Namespace)
		}
		reg.Add(d.Namespace, outPath)
		if err := reg.Save(); err != nil {
			msg.Fatal("failed to save registry: %v", err)
		}
		msg.Info("registered %q for import by name", d.Namespace)
	}
}

var exportCmd = &cobra.Command{
	Use:   "export [target...]",
	Short: "Export the public contract of targets into a descriptor",
	Long:  `Export the public contract of the named targets (all targets when none are given) into a namespaced descriptor other packages can import.`,
	Args:  cobra.ArbitraryArgs,
	Run:   doExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addConfigFlags(exportCmd)
	exportCmd.Flags().StringVarP(&flagExportPath, "path", "p", ".", "Package path to export from")
	exportCmd.Flags().StringVarP(&flagNamespace, "namespace", "n", "", "Namespace prefix (defaults to the package name)")
	exportCmd.Flags().StringVar(&flagVersion, "version", "", "Descriptor version (defaults to package.version)")
	exportCmd.Flags().StringVar(&flagPrefix, "prefix", "", "Install prefix for the descriptor (defaults to <package>/build)")
	exportCmd.Flags().BoolVar(&flagInstall, "install", false, "Register the descriptor in the per-user registry")
}
