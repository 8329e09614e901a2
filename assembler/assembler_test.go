package assembler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"dubcc16/isa"
)

func assembleOK(t *testing.T, src string) *Result {
	t.Helper()
	result, err := New().Assemble(strings.NewReader(src))
	assert.NoError(t, err)
	return result
}

func word(code []byte, addr int) uint16 {
	return uint16(code[addr*2])<<8 | uint16(code[addr*2+1])
}

func TestAssembleArithmetic(t *testing.T) {
	assert := assert.New(t)
	r := assembleOK(t, "ADD R1, R2\nSUB R3, $(10+2)\n")

	w0 := isa.Decode(word(r.Code, 0))
	assert.Equal(isa.OpAdd, w0.Opcode)
	assert.Equal(uint8(isa.ModeRegister), w0.Mode)
	assert.Equal(uint8(1), w0.R1)
	assert.Equal(uint8(2), w0.R2)

	w1 := isa.Decode(word(r.Code, 1))
	assert.Equal(isa.OpSub, w1.Opcode)
	assert.Equal(uint8(isa.ModeImmediate), w1.Mode)
	assert.Equal(uint8(3), w1.R1)
	assert.EqualValues(12, w1.Imm)
}

func TestAssembleMoveForms(t *testing.T) {
	assert := assert.New(t)
	r := assembleOK(t, "MOVE R1, 5\nMOVE R2, [R1]\nMOVE [R2], R3\n")

	w0 := isa.Decode(word(r.Code, 0))
	assert.Equal(isa.OpMove, w0.Opcode)
	assert.Equal(uint8(isa.ModeMoveImmediate), w0.Mode)
	assert.Equal(uint8(1), w0.R1)
	assert.EqualValues(5, w0.Imm)

	w1 := isa.Decode(word(r.Code, 1))
	assert.Equal(uint8(isa.ModeMoveLoad), w1.Mode)
	assert.Equal(uint8(2), w1.R1)
	assert.Equal(uint8(1), w1.R2)

	w2 := isa.Decode(word(r.Code, 2))
	assert.Equal(uint8(isa.ModeMoveStore), w2.Mode)
	assert.Equal(uint8(2), w2.R1)
	assert.Equal(uint8(3), w2.R2)
}

func TestAssembleShift(t *testing.T) {
	assert := assert.New(t)
	r := assembleOK(t, "SHIFT R4, LEFT\nSHIFT R5, RIGHT\n")

	w0 := isa.Decode(word(r.Code, 0))
	assert.Equal(isa.OpShift, w0.Opcode)
	assert.Equal(uint8(isa.ModeShiftLeft), w0.Mode)
	assert.Equal(uint8(4), w0.R1)

	w1 := isa.Decode(word(r.Code, 1))
	assert.Equal(uint8(isa.ModeShiftRight), w1.Mode)
	assert.Equal(uint8(5), w1.R1)
}

func TestAssembleConditionalBranchToLabel(t *testing.T) {
	assert := assert.New(t)
	r := assembleOK(t, "loop:\nADD R1, R1\nBEQ R1, loop\n")

	w1 := isa.Decode(word(r.Code, 1))
	assert.Equal(isa.OpBranch, w1.Opcode)
	assert.Equal(uint8(isa.ModeBEQ), w1.Mode)
	assert.EqualValues(-1, w1.Imm)
	assert.Equal(0, r.Labels["loop"])
}

func TestAssembleJumpRequiresRegisterOperand(t *testing.T) {
	assert := assert.New(t)
	r := assembleOK(t, "target:\nMOVE R1, $(target - 1)\nJUMP R1\n")

	w1 := isa.Decode(word(r.Code, 1))
	assert.Equal(isa.OpBranch, w1.Opcode)
	assert.Equal(uint8(isa.ModeJump), w1.Mode)
	assert.Equal(uint8(1), w1.R1)
}

func TestAssembleConstAndSpace(t *testing.T) {
	assert := assert.New(t)
	r := assembleOK(t, "SIZE: .const 4\n.space SIZE\nADD R0, R0\n")

	assert.EqualValues(4, r.Consts["SIZE"])
	w4 := isa.Decode(word(r.Code, 4))
	assert.Equal(isa.OpAdd, w4.Opcode)
}

func TestAssembleEndDirective(t *testing.T) {
	assert := assert.New(t)
	r := assembleOK(t, "ADD R0, R0\n.end\nADD R1, R1\n")
	assert.Equal(1, r.EndAddr)
}

func TestAssembleMacro(t *testing.T) {
	assert := assert.New(t)
	r := assembleOK(t, "MACRO INC reg\nADD reg, $(1)\nMEND\nINC R2\nINC R3\n")

	w0 := isa.Decode(word(r.Code, 0))
	w1 := isa.Decode(word(r.Code, 1))
	assert.Equal(uint8(2), w0.R1)
	assert.Equal(uint8(3), w1.R1)
	assert.EqualValues(1, w0.Imm)
	assert.EqualValues(1, w1.Imm)
}

func TestAssembleDuplicateLabelError(t *testing.T) {
	_, err := New().Assemble(strings.NewReader("a:\nADD R0,R0\na:\nADD R0,R0\n"))
	assert.Error(t, err)
}

func TestAssembleUnknownMnemonicError(t *testing.T) {
	_, err := New().Assemble(strings.NewReader("FROB R1, R2\n"))
	assert.Error(t, err)
}

func TestAssembleLiteralOutOfRange(t *testing.T) {
	_, err := New().Assemble(strings.NewReader("MOVE R1, 100\n"))
	assert.Error(t, err)
}

func TestMapFile(t *testing.T) {
	assert := assert.New(t)
	r := assembleOK(t, "loop:\nN: .const 3\nADD R0, R0\n")

	var buf strings.Builder
	assert.NoError(r.WriteMapFile(&buf))
	out := buf.String()
	assert.Contains(out, "loop = 0x")
	assert.Contains(out, "N := 3")
}
