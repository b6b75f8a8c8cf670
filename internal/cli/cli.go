// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/subchip8/subchip8/chip8"
	"github.com/subchip8/subchip8/internal/config"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (config.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts config.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Load == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if len(args) > 0 {
		opts.ROM = args[0]
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: subchip8 [options] <program image>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after the program image, please pass the program image as last argument", arg),
			}
		}
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *config.Program) {
	flags.IntVar(&opts.Steps, "steps", 10000, "maximum number of instruction steps to execute")
	flags.UintVar(&opts.CyclesPerTick, "tick", chip8.DefaultCyclesPerTick, "instructions executed per timer tick")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for the deterministic random generator")
	flags.StringVar(&opts.Load, "load", "", "snapshot file to restore before running")
	flags.StringVar(&opts.Save, "save", "", "snapshot file to write after the run")
	flags.BoolVar(&opts.Watch, "watch", false, "run under an interactive terminal viewer")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
