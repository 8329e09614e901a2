// Package tui is an interactive step debugger for a simulator.Simulator,
// rendering the register bank, the phase about to run, and cache
// statistics to a terminal screen, re-drawing once per phase transition.
// It plays the role the teacher's gio-based VirtualMachine package plays
// for its desktop build, translated to a terminal-native toolkit since
// this project ships a CLI tool, not a desktop app.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"dubcc16/report"
	"dubcc16/simulator"
)

var (
	styleHeader = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray).Bold(true)
	styleNormal = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	styleZebra  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack + 1)
	styleHalt   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Run drives sim one phase at a time, pausing for a keypress between
// phases: space/enter/n advances one phase, r free-runs to completion,
// q quits early (returning nil). It returns the simulator's terminal
// error once the sequencer actually halts.
func Run(sim *simulator.Simulator) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	defer screen.Fini()

	phase := simulator.FetchInstr
	freeRun := false

	for {
		draw(screen, sim, phase)
		screen.Show()

		if !freeRun {
			switch waitKey(screen) {
			case 'q':
				return nil
			case 'r':
				freeRun = true
			}
		}

		next, err := sim.Step(phase)
		if err != nil {
			draw(screen, sim, phase)
			drawHalt(screen, err)
			screen.Show()
			waitKey(screen)
			return err
		}
		phase = next
	}
}

func waitKey(screen tcell.Screen) rune {
	for {
		ev := screen.PollEvent()
		if k, ok := ev.(*tcell.EventKey); ok {
			if k.Key() == tcell.KeyEnter {
				return ' '
			}
			return k.Rune()
		}
	}
}

func draw(screen tcell.Screen, sim *simulator.Simulator, phase simulator.Phase) {
	screen.Clear()
	m := sim.Mach

	putLine(screen, 0, styleHeader, fmt.Sprintf(" dubcc16 step debugger -- next phase: %-14s [space] step  [r] run  [q] quit", phase))

	row := 2
	putLine(screen, row, styleNormal, fmt.Sprintf(" PC=%04x  MAR=%04x  MDR=%04x  IR=%02x%02x  ALUx=%04x ALUy=%04x ALUz=%04x",
		m.PC, m.MAR, m.MDR, m.IR[0], m.IR[1], m.ALUX, m.ALUY, m.ALUZ))
	row += 2

	putLine(screen, row, styleHeader, " Reg   Value")
	row++
	for i, v := range m.Registers {
		style := styleNormal
		if i%2 == 1 {
			style = styleZebra
		}
		info := report.GPRInfo(i)
		putLine(screen, row, style, fmt.Sprintf(" %-4s 0x%04x  %s", info.Name, v, info.Desc))
		row++
	}

	row++
	stats := sim.Cache.Stats()
	putLine(screen, row, styleNormal, fmt.Sprintf(" cache hits=%d misses=%d hit-rate=%.3f branches=%d",
		stats.Hits, stats.Misses, stats.HitRate(), sim.BranchCount))
}

func drawHalt(screen tcell.Screen, err error) {
	w, h := screen.Size()
	putLine(screen, h-2, styleHalt, fmt.Sprintf(" halted: %v", err))
	_ = w
}

func putLine(screen tcell.Screen, row int, style tcell.Style, s string) {
	for col, r := range []rune(s) {
		screen.SetContent(col, row, r, nil, style)
	}
}
