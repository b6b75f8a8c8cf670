// Package runner drives a machine on behalf of the command line host.
package runner

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/subchip8/subchip8/chip8"
	"github.com/subchip8/subchip8/internal/config"
	"github.com/subchip8/subchip8/internal/view"
)

// batchSize bounds the steps executed between cancellation checks.
const batchSize = 256

// Run sets up a machine from the options, executes it within the configured
// step budget and writes the requested outputs. The machine itself never
// observes real time; pacing exists only in the interactive viewer.
func Run(ctx context.Context, logger *log.Logger, opts config.Program) error {
	m, err := setupMachine(logger, opts)
	if err != nil {
		return fmt.Errorf("setting up machine: %w", err)
	}

	if opts.Watch {
		err = view.Run(ctx, m, opts.Steps)
	} else {
		err = runMachine(ctx, logger, m, opts.Steps)
	}
	if err != nil {
		return err
	}

	if !opts.Quiet && !opts.Watch {
		if _, err := os.Stdout.WriteString(renderDisplay(m)); err != nil {
			return fmt.Errorf("writing display: %w", err)
		}
	}

	if opts.Save != "" {
		if err := saveSnapshot(m, opts.Save); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		logger.Info("Snapshot written", log.String("file", opts.Save))
	}
	return nil
}

// setupMachine restores the machine from a snapshot file or creates a fresh
// one with the ROM loaded.
func setupMachine(logger *log.Logger, opts config.Program) (*chip8.Machine, error) {
	machineOptions := chip8.Options{
		Seed:          opts.Seed,
		CyclesPerTick: uint32(opts.CyclesPerTick),
	}
	if opts.Debug {
		machineOptions.Logger = logger
	}

	if opts.Load != "" {
		data, err := os.ReadFile(opts.Load)
		if err != nil {
			return nil, fmt.Errorf("reading snapshot file %s: %w", opts.Load, err)
		}
		var snapshot chip8.Snapshot
		if err := snapshot.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		return chip8.Restore(&snapshot, machineOptions)
	}

	program, err := os.ReadFile(opts.ROM)
	if err != nil {
		return nil, fmt.Errorf("reading program image %s: %w", opts.ROM, err)
	}

	m := chip8.New(machineOptions)
	if err := m.LoadProgram(program); err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	return m, nil
}

// runMachine executes up to the step budget in bounded batches. Without a
// viewer no key presses ever arrive, so a key-wait ends the run instead of
// burning the remaining budget.
func runMachine(ctx context.Context, logger *log.Logger, m *chip8.Machine, steps int) error {
	executed := 0
	for executed < steps {
		if err := ctx.Err(); err != nil {
			m.Stop()
			return err
		}

		batch := min(steps-executed, batchSize)
		result := m.RunCycles(batch)
		executed += result.Steps

		switch result.State {
		case chip8.StateHalted:
			if result.Fault.Kind != chip8.FaultStopped {
				return fmt.Errorf("program halted after %d steps: %w", executed, result.Fault)
			}
			return nil
		case chip8.StateWaitingForKey:
			logger.Info("Program is waiting for a key press, stopping",
				log.Int("steps", executed))
			return nil
		}
	}

	logger.Info("Step budget exhausted",
		log.Int("steps", executed),
		log.String("state", m.State().String()))
	return nil
}

// renderDisplay formats the pixel buffer as text, one character per pixel.
func renderDisplay(m *chip8.Machine) string {
	var sb strings.Builder
	sb.Grow((chip8.DisplayWidth + 1) * chip8.DisplayHeight)

	for _, row := range m.Display() {
		for _, lit := range row {
			if lit {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func saveSnapshot(m *chip8.Machine, file string) error {
	data, err := m.Snapshot().MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot file %s: %w", file, err)
	}
	return nil
}
