// Command sim loads a code file and a data file and runs the dubcc16
// phase-sequencer simulator to completion, reporting the terminal
// condition, cache hit-rate statistics, and a hex+ASCII dump of data
// memory, matching caching.cpp's own output shape.
package main

import (
	"flag"
	"log"
	"os"

	"dubcc16/cache"
	"dubcc16/machine"
	"dubcc16/report"
	"dubcc16/simulator"
	"dubcc16/tui"
)

func main() {
	var (
		cacheBlocks = flag.Int("blocks", cache.DefaultCacheBlocks, "number of cache blocks")
		blockSize   = flag.Int("blocksize", cache.DefaultBlockSize, "words per cache block")
		trace       = flag.Bool("trace", false, "print one line per phase transition")
		verbose     = flag.Bool("v", false, "pretty-print machine state via pp")
		useTUI      = flag.Bool("tui", false, "run the interactive step debugger instead of free-running")
	)
	flag.Parse()

	if flag.NArg() != 2 {
		log.Fatalf("usage: sim [-blocks N] [-blocksize N] [-trace] [-v] [-tui] <code file> <data file>")
	}

	m := machine.New()

	codeBytes, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("sim: loading code file: %v", err)
	}
	n := m.LoadCode(codeBytes)
	log.Printf("sim: loaded %d bytes of code", n)

	dataFile, err := os.Open(flag.Arg(1))
	if err != nil {
		log.Fatalf("sim: loading data file: %v", err)
	}
	words, truncated, err := m.LoadData(dataFile)
	dataFile.Close()
	if err != nil {
		log.Fatalf("sim: %v", err)
	}
	if truncated {
		log.Printf("sim: warning: data exceeds allocated memory size")
	}
	log.Printf("sim: loaded %d data words", words)

	c := cache.New(m, *cacheBlocks, *blockSize, machine.DataBound)
	sim := simulator.New(m, c)

	w := report.New(os.Stdout)

	if *trace {
		sim.Trace = func(phase simulator.Phase, mach *machine.Machine) {
			log.Printf("%-14s PC=%04x IR=%02x%02x MAR=%04x MDR=%04x",
				phase, mach.PC, mach.IR[0], mach.IR[1], mach.MAR, mach.MDR)
		}
	}

	if *verbose {
		prev := sim.Trace
		sim.Trace = func(phase simulator.Phase, mach *machine.Machine) {
			if prev != nil {
				prev(phase, mach)
			}
			w.Dump(phase.String(), mach)
		}
	}

	var runErr error
	if *useTUI {
		runErr = tui.Run(sim)
	} else {
		runErr = sim.Run()
	}

	w.Halt(runErr)
	w.CacheSummary(c.Stats())
	if *verbose {
		w.RegisterDump(m)
	}
	w.MemoryDump(m)
}
