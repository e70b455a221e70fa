package main

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/academy-shift-go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "shiftctl:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
