// crest init [name], crest new [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crest-build/crest/internal/msg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// scaffold writes a file unless it already exists, so re-running init
// never clobbers user edits.
func scaffold(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); err == nil {
		return
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		msg.Fatal("create file %s: %v", path, err)
	}
	fmt.Printf("%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
}

func ensureDir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal("mkdir %s: %v", path, err)
	}
}

func programName() string {
	if len(os.Args) == 0 {
		return "crest"
	}
	base := filepath.Base(os.Args[0])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// initIn scaffolds a package in an existing directory.
func initIn(dir, name string, lib bool) {
	var manifest strings.Builder
	manifest.WriteString("[package]\nname = \"" + name + "\"\nversion = \"0.1.0\"\n")
	if lib {
		manifest.WriteString(`
[target.` + name + `]
kind = "static-library"
sources = ["src/**.c"]

[target.` + name + `.public]
include-dirs = ["include"]

[target.` + name + `.private]
options = ["-Wall", "$<$<CONFIG:Debug>:-g>"]
`)
	} else {
		manifest.WriteString(`
[target.` + name + `]
sources = ["src/**.c"]

[target.` + name + `.private]
options = ["-Wall", "$<$<CONFIG:Debug>:-g>", "$<$<CONFIG:Release>:-O2>"]
`)
	}
	scaffold(manifest.String(), dir, "Crest.toml")

	ensureDir(dir, "src")
	if lib {
		ensureDir(dir, "include")
		guard := strings.ToUpper(name) + "_H"
		scaffold("#include \""+name+".h\"\n\nint "+name+"_answer(void) {\n    return 42;\n}\n",
			dir, "src", name+".c")
		scaffold("#ifndef "+guard+"\n#define "+guard+"\n\nint "+name+"_answer(void);\n\n#endif\n",
			dir, "include", name+".h")
	} else {
		scaffold("#include <stdio.h>\n\nint main(void) {\n    puts(\"Hello, World!\");\n    return 0;\n}\n",
			dir, "src", "main.c")
	}
	scaffold("build/\n", dir, ".gitignore")

	prog := programName()
	fmt.Printf("You can now do %s to resolve, or %s to export the package.\n",
		color.HiCyanString(prog+" "+dir), color.HiCyanString(prog+" export -p "+dir))
}

var library bool

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new package in the current directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initIn(".", args[0], library)
	},
}

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create a new package in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureDir(args[0])
		initIn(args[0], filepath.Base(args[0]), library)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&library, "lib", "l", false, "Create a library target")

	rootCmd.AddCommand(newCmd)
	newCmd.Flags().BoolVarP(&library, "lib", "l", false, "Create a library target")
}
