package main

import (
	"fmt"
	"os"

	"github.com/temirov/ghmonitor/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the gh-monitor command-line application.
func main() {
	os.Exit(run())
}

func run() int {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		return 1
	}
	return 0
}
