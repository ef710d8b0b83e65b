package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lumen-lang/lumen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimRight(err.Error(), "\n"))
		os.Exit(1)
	}
}
