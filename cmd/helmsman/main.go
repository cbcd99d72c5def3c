// Command helmsman runs and validates naval-combat plans against an
// Android device over adb.
//
// Usage:
//
//	helmsman <command> [options]
//
// Commands:
//
//	fight      Run a combat plan to completion on a connected device
//	validate   Parse a plan file and report errors without touching a device
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

var version = "dev"

type globalOptions struct {
	Version func() `short:"V" long:"version" description:"Print version and exit"`
}

func main() {
	var globals globalOptions
	globals.Version = func() {
		fmt.Printf("helmsman %s\n", version)
		os.Exit(0)
	}

	parser := flags.NewParser(&globals, flags.Default)
	parser.Name = "helmsman"
	parser.LongDescription = "Drives and validates naval-combat automation plans"

	addFightCommand(parser)
	addValidateCommand(parser)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			if flagsErr.Type == flags.ErrCommandRequired {
				parser.WriteHelp(os.Stderr)
				os.Exit(1)
			}
		}
		os.Exit(1)
	}
}
