package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/internal/compiler"
)

var CompileCmd = &cobra.Command{
	Use:   "compile [file.lm]",
	Short: "Compile a Lumen source file into C++",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := compiler.CompileAndWrite(args[0], compileOptions())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func compileOptions() compiler.Options {
	return compiler.Options{
		OutPath: outPath,
		Shaders: compiler.NewGlslc(shaderc),
	}
}
