package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lumen-lang/lumen/internal/compiler"
)

var RunCmd = &cobra.Command{
	Use:   "run [file.lm]",
	Short: "Compile a Lumen source file, build it, and run the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return compiler.Run(args[0], compileOptions(), keepCpp)
	},
}

func init() {
	RunCmd.Flags().BoolVar(&keepCpp, "keep-cpp", false, "keep the intermediate .cpp file")
}
