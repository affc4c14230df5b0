// crest [path], crest resolve [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crest-build/crest/internal/emit"
	"github.com/crest-build/crest/internal/msg"
	"github.com/crest-build/crest/internal/project"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagCompiler string
	flagOut      string
	flagEmit     Choice = NewChoice("flags", map[string]string{
		"flags": "Plain text flag listing (default)",
		"json":  "JSON resolve plan",
	})
)

func doResolve(cmd *cobra.Command, args []string) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	p, err := project.LoadProject(dir, flagConfig, flagCompiler)
	if err != nil {
		msg.Fatal("%v", err)
	}

	resolved, err := p.ResolveTargets()
	if err != nil {
		msg.Fatal("%v", err)
	}

	em := emit.New(flagEmit.Value(), flagConfig)
	for _, rt := range resolved {
		em.AddTarget(emit.Target{
			Name:     rt.Name,
			Kind:     rt.Kind.String(),
			Artifact: rt.Artifact,
			Sources:  rt.Sources,
			Cflags:   rt.Cflags,
			Ldflags:  rt.Ldflags,
			Deps:     rt.Deps,
		})
	}
	out := em.Generate()

	if flagOut == "-" {
		fmt.Print(out)
		return
	}
	outPath := filepath.Join(flagOut, em.OutputFile())
	if err := os.MkdirAll(flagOut, 0o755); err != nil {
		msg.Fatal("%v", err)
	}
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		msg.Fatal("%v", err)
	}
	msg.Info("resolved %d targets for configuration %q -> %s", len(resolved), flagConfig, outPath)
}

var rootCmd = &cobra.Command{
	Use:   "crest [package path]",
	Short: "Conditional build-configuration and package-export resolver",
	Long:  `Crest resolves target property graphs and deferred generator expressions into concrete flag lists, and exports the result for other packages to import.`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doResolve,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [package path]",
	Short: "Resolve target properties for a configuration",
	Long:  `Resolve target properties for a configuration. If no package path is given, uses "."`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doResolve,
}

func init() {
	addResolveFlags(rootCmd)

	// crest resolve subcommand
	rootCmd.AddCommand(resolveCmd)
	addResolveFlags(resolveCmd)
}

// addConfigFlags registers the flags every command that loads a project
// needs: conditional manifest sections depend on both values.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "Debug", "Active build configuration")
	cmd.Flags().StringVar(&flagCompiler, "compiler", "", "Compiler identity (auto-detected if empty)")
}

func addResolveFlags(cmd *cobra.Command) {
	addConfigFlags(cmd)
	cmd.Flags().StringVarP(&flagOut, "out", "o", "build", `Output directory, or "-" for stdout`)
	cmd.Flags().VarP(&flagEmit, "emit", "e", "Output format, one of "+flagEmit.HelpString())
	cmd.RegisterFlagCompletionFunc("emit", flagEmit.CompletionFunc())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
