// Package view implements an interactive terminal front end for a machine.
// All wall-clock pacing lives here; the machine itself only ever advances
// through its logical step and tick counters.
package view

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/subchip8/subchip8/chip8"
)

// keyMap maps keyboard runes onto the 16-key keypad using the common
// 4x4 layout:
//
//	1 2 3 4        1 2 3 C
//	q w e r   ->   4 5 6 D
//	a s d f        7 8 9 E
//	z x c v        A 0 B F
var keyMap = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

const (
	frameInterval = time.Second / 60

	// keyHoldFrames is how many frames a key stays pressed after its event.
	// Terminals report no key releases, so releases are synthesized.
	keyHoldFrames = 6
)

// Run drives the machine under a terminal viewer until the program halts,
// the step budget is exhausted, the context is cancelled or Escape is
// pressed. The step budget is spread evenly over display frames.
func Run(ctx context.Context, m *chip8.Machine, steps int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	stepsPerFrame := max(steps/int(time.Second/frameInterval), 1)
	held := map[uint8]int{}
	executed := 0
	render(screen, m)

	for executed < steps {
		select {
		case <-ctx.Done():
			m.Stop()
			return ctx.Err()

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
				if key, ok := keyMap[ev.Rune()]; ok {
					m.SetKey(key, true)
					held[key] = keyHoldFrames
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			for key, frames := range held {
				frames--
				if frames == 0 {
					m.SetKey(key, false)
					delete(held, key)
					continue
				}
				held[key] = frames
			}

			result := m.RunCycles(min(stepsPerFrame, steps-executed))
			executed += result.Steps
			if result.DisplayUpdated {
				render(screen, m)
			}
			if result.State == chip8.StateHalted {
				if result.Fault.Kind != chip8.FaultStopped {
					return fmt.Errorf("program halted: %w", result.Fault)
				}
				return nil
			}
		}
	}
	return nil
}

func render(screen tcell.Screen, m *chip8.Machine) {
	style := tcell.StyleDefault
	for y, row := range m.Display() {
		for x, lit := range row {
			r := ' '
			if lit {
				r = '█'
			}
			screen.SetContent(x, y, r, nil, style)
		}
	}
	screen.Show()
}
