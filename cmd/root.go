package cmd

import (
	"github.com/spf13/cobra"
)

var (
	outPath string
	keepCpp bool
	shaderc string
)

var rootCmd = &cobra.Command{
	Use:   "lumenc",
	Short: "Lumen compiler: .lm sources to C++17",
	Long: `lumenc compiles Lumen (.lm) source files into C++17 translation units
for the engine runtime.

Commands:
  compile  Compile a .lm source file into a .cpp next to it
  run      Compile, build with the system C++ toolchain, and execute
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "output path for the generated C++ file")
	rootCmd.PersistentFlags().StringVar(&shaderc, "shaderc", "glslc", "shader compiler binary for pipeline stages")

	rootCmd.AddCommand(CompileCmd, RunCmd)
}
