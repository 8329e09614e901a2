// Package simulator drives the six-phase instruction cycle over a
// machine.Machine and a cache.Cache: FETCH_INSTR, DECODE_INSTR,
// CALCULATE_EA, FETCH_OPERANDS, EXECUTE_INSTR, WRITE_BACK. The sequencer is
// an exhaustive switch over a closed Phase enum rather than a function
// pointer table, since Go has no natural equivalent of a C array of function
// pointers indexed by enum and a switch says the same thing more directly.
package simulator

import (
	"fmt"

	"dubcc16/cache"
	"dubcc16/isa"
	"dubcc16/machine"
)

// Phase names one step of the instruction cycle, or one of the three
// terminal halt conditions.
type Phase uint8

const (
	FetchInstr Phase = iota
	DecodeInstr
	CalculateEA
	FetchOperands
	ExecuteInstr
	WriteBack
	numPhases

	haltIllegalOpcode
	haltIllegalAddress
	haltInfiniteLoop
)

func (p Phase) String() string {
	switch p {
	case FetchInstr:
		return "FETCH_INSTR"
	case DecodeInstr:
		return "DECODE_INSTR"
	case CalculateEA:
		return "CALCULATE_EA"
	case FetchOperands:
		return "FETCH_OPERANDS"
	case ExecuteInstr:
		return "EXECUTE_INSTR"
	case WriteBack:
		return "WRITE_BACK"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// IllegalOpcodeError is returned when DECODE_INSTR rejects the (opcode,
// mode) pair fetched at PC.
type IllegalOpcodeError struct {
	PC uint16
	IR [2]byte
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal instruction %02x%02x detected at address %04x", e.IR[0], e.IR[1], e.PC)
}

// IllegalAddressError is returned when a code or data access falls outside
// its addressable bound.
type IllegalAddressError struct {
	PC  uint16
	MAR uint16
	IR  [2]byte
}

func (e *IllegalAddressError) Error() string {
	return fmt.Sprintf("illegal address %04x detected with instruction %02x%02x at address %04x", e.MAR, e.IR[0], e.IR[1], e.PC)
}

// InfiniteLoopError is returned once the number of taken branches/jumps
// exceeds machine.BranchLimit.
type InfiniteLoopError struct {
	PC          uint16
	IR          [2]byte
	BranchCount int
}

func (e *InfiniteLoopError) Error() string {
	return fmt.Sprintf("possible infinite loop detected with instruction %02x%02x at address %04x", e.IR[0], e.IR[1], e.PC)
}

// TraceFunc is called once per phase transition when tracing is enabled.
type TraceFunc func(phase Phase, m *machine.Machine)

// Simulator owns the machine and cache for one run and threads the phase
// sequencer over them.
type Simulator struct {
	Mach        *machine.Machine
	Cache       *cache.Cache
	BranchCount int
	Trace       TraceFunc
}

// New builds a Simulator over an already-loaded machine and cache.
func New(m *machine.Machine, c *cache.Cache) *Simulator {
	return &Simulator{Mach: m, Cache: c}
}

func (s *Simulator) opcode() isa.Opcode {
	return isa.Opcode(s.Mach.IR[0] >> 5)
}

func (s *Simulator) mode() uint8 {
	return (s.Mach.IR[0] >> 2) & 0x07
}

// reg1 extracts the r1 field straight out of the raw IR bytes, matching
// get_reg1's bit-fiddling rather than going through isa.Decode; reg2 and
// literal below read their fields the same way.
func (s *Simulator) reg1() uint8 {
	return ((s.Mach.IR[0] & 0x03) << 2) | (s.Mach.IR[1] >> 6)
}

func (s *Simulator) reg2() uint8 {
	return (s.Mach.IR[1] >> 2) & 0x0F
}

func (s *Simulator) literal() int16 {
	return int16(isa.SignExtendLiteral(s.Mach.IR[1] & 0x3F))
}

// Run executes the phase sequencer to completion, returning the terminal
// error (always non-nil: one of IllegalOpcodeError, IllegalAddressError, or
// InfiniteLoopError).
func (s *Simulator) Run() error {
	phase := FetchInstr
	for phase < numPhases {
		if s.Trace != nil {
			s.Trace(phase, s.Mach)
		}
		next, err := s.step(phase)
		if err != nil {
			s.Cache.FlushAll()
			return err
		}
		phase = next
	}
	panic("unreachable: step never returns numPhases without an error")
}

// Step runs exactly one phase and reports the next phase to run, or a
// terminal error. Like Run, it flushes the cache when the sequencer halts.
// It is exported for the interactive step debugger.
func (s *Simulator) Step(phase Phase) (Phase, error) {
	next, err := s.step(phase)
	if err != nil {
		s.Cache.FlushAll()
	}
	return next, err
}

func (s *Simulator) step(phase Phase) (Phase, error) {
	switch phase {
	case FetchInstr:
		return s.fetchInstr()
	case DecodeInstr:
		return s.decodeInstr()
	case CalculateEA:
		return s.calculateEA()
	case FetchOperands:
		return s.fetchOperands()
	case ExecuteInstr:
		return s.executeInstr()
	case WriteBack:
		return s.writeBack()
	default:
		panic(fmt.Sprintf("simulator: step called with non-cycle phase %v", phase))
	}
}

func (s *Simulator) fetchInstr() (Phase, error) {
	m := s.Mach
	if m.PC >= machine.CodeWords {
		return 0, &IllegalAddressError{PC: m.PC, MAR: m.PC, IR: m.IR}
	}
	m.MAR = m.PC
	m.MDR = m.CodeWord(m.MAR)
	m.IR = isa.Bytes(m.MDR)
	return DecodeInstr, nil
}

func (s *Simulator) decodeInstr() (Phase, error) {
	op := s.opcode()
	mode := s.mode()
	switch op {
	case isa.OpAdd, isa.OpSub, isa.OpAnd, isa.OpOr, isa.OpXor, isa.OpShift:
		if mode > 1 {
			return 0, s.illegalOpcode()
		}
		return FetchOperands, nil
	case isa.OpMove:
		if !isa.Valid(op, mode) {
			return 0, s.illegalOpcode()
		}
		return CalculateEA, nil
	case isa.OpBranch:
		if mode == 0x07 {
			return 0, s.illegalOpcode()
		}
		return FetchOperands, nil
	default:
		return 0, s.illegalOpcode()
	}
}

func (s *Simulator) illegalOpcode() error {
	return &IllegalOpcodeError{PC: s.Mach.PC, IR: s.Mach.IR}
}

// calculateEA loads MAR from a register whenever the addressing mode
// indicates a memory operand. Mode bit 2 (0x04) means r1 holds the address
// (MOVE store); mode bit 0 (0x01) means r2 holds it (MOVE load). Only MOVE
// reaches this phase (see decodeInstr), and its valid modes make the two
// bits mutually exclusive.
func (s *Simulator) calculateEA() (Phase, error) {
	m := s.Mach
	mode := s.mode()
	switch {
	case mode&0x04 != 0:
		m.MAR = m.Registers[s.reg1()]
	case mode&0x01 != 0:
		m.MAR = m.Registers[s.reg2()]
	}
	return FetchOperands, nil
}

func (s *Simulator) fetchOperands() (Phase, error) {
	m := s.Mach
	op := s.opcode()
	mode := s.mode()

	if op != isa.OpMove {
		m.ALUX = m.Registers[s.reg1()]
	}

	switch op {
	case isa.OpAdd, isa.OpSub, isa.OpAnd, isa.OpOr, isa.OpXor:
		if mode == isa.ModeImmediate {
			m.ALUY = uint16(s.literal())
		} else {
			m.ALUY = m.Registers[s.reg2()]
		}
		return ExecuteInstr, nil

	case isa.OpShift:
		return ExecuteInstr, nil

	case isa.OpMove:
		switch mode {
		case isa.ModeMoveImmediate:
			m.MDR = uint16(s.literal())
			return WriteBack, nil
		case isa.ModeMoveStore:
			m.MDR = m.Registers[s.reg2()]
			return WriteBack, nil
		case isa.ModeMoveLoad:
			if err := s.cacheRead(); err != nil {
				return 0, err
			}
			return WriteBack, nil
		default:
			return 0, s.illegalOpcode()
		}

	case isa.OpBranch:
		m.ALUY = uint16(s.literal())
		return ExecuteInstr, nil

	default:
		return 0, s.illegalOpcode()
	}
}

func (s *Simulator) executeInstr() (Phase, error) {
	m := s.Mach
	mode := s.mode()

	switch s.opcode() {
	case isa.OpAdd:
		m.ALUZ = uint16(int16(m.ALUX) + int16(m.ALUY))
	case isa.OpSub:
		m.ALUZ = uint16(int16(m.ALUX) - int16(m.ALUY))
	case isa.OpAnd:
		m.ALUZ = m.ALUX & m.ALUY
	case isa.OpOr:
		m.ALUZ = m.ALUX | m.ALUY
	case isa.OpXor:
		m.ALUZ = m.ALUX ^ m.ALUY
	case isa.OpShift:
		if mode == isa.ModeShiftRight {
			m.ALUZ = m.ALUX >> 1
		} else {
			m.ALUZ = m.ALUX << 1
		}
	case isa.OpBranch:
		return s.executeBranch()
	}
	return WriteBack, nil
}

func (s *Simulator) executeBranch() (Phase, error) {
	m := s.Mach
	mode := s.mode()

	if mode == isa.ModeJump {
		m.ALUZ = m.ALUX
		s.BranchCount++
		if s.BranchCount > machine.BranchLimit {
			return 0, &InfiniteLoopError{PC: m.PC, IR: m.IR, BranchCount: s.BranchCount}
		}
		return WriteBack, nil
	}

	r0 := int16(m.Registers[0])
	x := int16(m.ALUX)
	branch := false
	switch mode {
	case isa.ModeBEQ:
		branch = x == r0
	case isa.ModeBNE:
		branch = x != r0
	case isa.ModeBLT:
		branch = x < r0
	case isa.ModeBGT:
		branch = x > r0
	case isa.ModeBLE:
		branch = x <= r0
	case isa.ModeBGE:
		branch = x >= r0
	}

	if branch {
		// PC + imm - 1: write_back's unconditional PC++ then lands on
		// PC + imm, which is where the assembler's label arithmetic
		// expects the branch to land.
		m.ALUZ = uint16(int16(m.PC) + int16(m.ALUY) - 1)
		s.BranchCount++
		if s.BranchCount > machine.BranchLimit {
			return 0, &InfiniteLoopError{PC: m.PC, IR: m.IR, BranchCount: s.BranchCount}
		}
	} else {
		m.ALUZ = m.PC
	}
	return WriteBack, nil
}

func (s *Simulator) writeBack() (Phase, error) {
	m := s.Mach
	op := s.opcode()
	mode := s.mode()
	reg := s.reg1()

	switch op {
	case isa.OpAdd, isa.OpSub, isa.OpAnd, isa.OpOr, isa.OpXor, isa.OpShift:
		m.Registers[reg] = m.ALUZ
	case isa.OpBranch:
		m.PC = m.ALUZ
	case isa.OpMove:
		if mode&0x04 != 0 {
			if err := s.cacheWrite(); err != nil {
				return 0, err
			}
		} else {
			m.Registers[reg] = m.MDR
		}
	}

	m.PC++
	return FetchInstr, nil
}

func (s *Simulator) cacheRead() error {
	v, err := s.Cache.Read(s.Mach.MAR)
	if err != nil {
		return s.illegalAddress()
	}
	s.Mach.MDR = v
	return nil
}

func (s *Simulator) cacheWrite() error {
	if err := s.Cache.Write(s.Mach.MAR, s.Mach.MDR); err != nil {
		return s.illegalAddress()
	}
	return nil
}

func (s *Simulator) illegalAddress() error {
	return &IllegalAddressError{PC: s.Mach.PC, MAR: s.Mach.MAR, IR: s.Mach.IR}
}
