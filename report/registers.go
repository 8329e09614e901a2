package report

import "fmt"

// RegisterInfo describes one architectural or internal register for
// verbose dumps, adapted from the teacher's named-register metadata table
// down to this machine's flat 16-register GPR bank plus its internal
// latches.
type RegisterInfo struct {
	Name     string
	Desc     string
	Internal bool // not part of the visible register file (latch/IR/ALU)
}

// GPRInfo returns metadata for general-purpose register n (0-15). R0 is
// called out since every conditional branch compares against it.
func GPRInfo(n int) RegisterInfo {
	if n == 0 {
		return RegisterInfo{Name: "R0", Desc: "general purpose; implicit comparison operand for conditional branches"}
	}
	return RegisterInfo{Name: fmt.Sprintf("R%d", n), Desc: "general purpose"}
}

// internalRegisters describes the processor's internal latches, in the
// order caching.cpp declares them in struct STATE.
var internalRegisters = []RegisterInfo{
	{Name: "PC", Desc: "program counter: address of the next instruction to fetch", Internal: true},
	{Name: "MAR", Desc: "memory address register: latched address for a code or data access", Internal: true},
	{Name: "MDR", Desc: "memory data register: latched value read from or destined for memory", Internal: true},
	{Name: "IR", Desc: "instruction register: the two raw bytes of the instruction under decode", Internal: true},
	{Name: "ALU_x", Desc: "ALU left operand", Internal: true},
	{Name: "ALU_y", Desc: "ALU right operand", Internal: true},
	{Name: "ALU_z", Desc: "ALU result, latched to its destination at WRITE_BACK", Internal: true},
}

// InternalRegisters returns metadata for all internal (non-GPR) state.
func InternalRegisters() []RegisterInfo {
	return internalRegisters
}
