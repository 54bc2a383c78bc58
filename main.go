package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/ppactl/ppactl/cmd/cli"
	"github.com/ppactl/ppactl/internal/ppa"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the ppactl command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		errorPrinter := color.New(color.FgRed)
		if _, printError := errorPrinter.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError); printError != nil {
			fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		}
		os.Exit(ppa.ExitCodeForError(executionError))
	}
}
