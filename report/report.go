// Package report formats simulator output for a terminal: halt
// diagnostics, the cache hit-rate summary, and the hex+ASCII data-memory
// dump that caching.cpp's print_memory produces. Output is colorized when
// stdout is a real terminal and plain otherwise, the way pp/v3 gates its
// own coloring via go-isatty.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/message"

	"dubcc16/cache"
	"dubcc16/machine"
)

// lineLength matches LINE_LENGTH in caching.cpp: bytes of ASCII text per
// printed memory line (16 words).
const lineLength = 32

// Writer formats simulation results to an underlying stream, colorizing
// when that stream is a terminal.
type Writer struct {
	out     io.Writer
	color   bool
	printer *message.Printer
}

// New wraps w, detecting terminal-ness via go-isatty when w is an *os.File
// (stdout/stderr); anything else is treated as non-interactive.
func New(w io.Writer) *Writer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if color {
			w = colorable.NewColorable(f)
		}
	}
	return &Writer{out: w, color: color, printer: message.NewPrinter(message.MatchLanguage("en"))}
}

func (w *Writer) colorize(code, s string) string {
	if !w.color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Halt reports the terminal condition a simulation run ended with, or a
// clean completion if err is nil (which should not normally happen, since
// the sequencer always halts via one of the three terminal errors).
func (w *Writer) Halt(err error) {
	if err == nil {
		fmt.Fprintln(w.out, w.colorize("32", "simulation completed"))
		return
	}
	fmt.Fprintln(w.out, w.colorize("31", err.Error()))
}

// CacheSummary prints hit/miss/hit-rate statistics with locale-aware
// number grouping, mirroring caching.cpp's final printf.
func (w *Writer) CacheSummary(s cache.Stats) {
	w.printer.Fprintf(w.out, "There were a total of %d cache hits and %d cache misses, for a hit rate of %.3f.\n",
		s.Hits, s.Misses, s.HitRate())
}

// MemoryDump writes data memory as hex+ASCII, grouping lineLength bytes
// per printed line, matching print_memory's layout.
func (w *Writer) MemoryDump(m *machine.Machine) {
	var text []byte
	col := 0
	for i := 0; i < len(m.Data); i++ {
		word := m.Data[i]
		fmt.Fprintf(w.out, "%02x%02x ", word[0], word[1])
		text = append(text, validASCII(word[0]), validASCII(word[1]))
		col += 2
		if col == lineLength {
			fmt.Fprintf(w.out, "\t'%s'\n", text)
			text = text[:0]
			col = 0
		}
	}
}

func validASCII(b byte) byte {
	if b < 0x21 || b > 0x7e {
		return '.'
	}
	return b
}

// Dump pretty-prints any Go value (decoded instructions, the register
// bank, cache dictionaries) through pp, for -v tracing.
func (w *Writer) Dump(label string, v any) {
	fmt.Fprintf(w.out, "%s: ", label)
	pp.Fprintln(w.out, v)
}

// RegisterDump writes every general-purpose and internal register's name,
// value, and description, for a -v run's final state report.
func (w *Writer) RegisterDump(m *machine.Machine) {
	for i, v := range m.Registers {
		info := GPRInfo(i)
		fmt.Fprintf(w.out, "%-6s 0x%04x  %s\n", info.Name, v, info.Desc)
	}
	internal := map[string]uint16{
		"PC":    m.PC,
		"MAR":   m.MAR,
		"MDR":   m.MDR,
		"IR":    uint16(m.IR[0])<<8 | uint16(m.IR[1]),
		"ALU_x": m.ALUX,
		"ALU_y": m.ALUY,
		"ALU_z": m.ALUZ,
	}
	for _, info := range InternalRegisters() {
		fmt.Fprintf(w.out, "%-6s 0x%04x  %s\n", info.Name, internal[info.Name], info.Desc)
	}
}
