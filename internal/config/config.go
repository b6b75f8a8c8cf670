// Package config handles application configuration and setup
package config

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// Program contains the host program options.
type Program struct {
	ROM  string // program image to load at the program start address
	Load string // snapshot file to restore instead of loading a ROM
	Save string // snapshot file to write after the run

	Steps         int    // maximum number of instruction steps to execute
	CyclesPerTick uint   // instructions executed per timer tick
	Seed          uint64 // seed for the deterministic random generator

	Watch bool
	Debug bool
	Quiet bool
}

// Validate checks option values and combinations.
func (p *Program) Validate() error {
	if p.ROM == "" && p.Load == "" {
		return errors.New("no program image or snapshot given")
	}
	if p.ROM != "" && p.Load != "" {
		return errors.New("-load replaces the program image, do not pass both")
	}
	if p.Steps <= 0 {
		return fmt.Errorf("invalid step count %d", p.Steps)
	}
	if p.CyclesPerTick == 0 {
		return errors.New("cycles per timer tick must be at least 1")
	}
	return nil
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
