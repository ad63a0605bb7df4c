// Package trace provides a reference emulator for the representative
// RV32IM instruction subset the AIR constrains, turning an assembled
// Program into a *air.Trace the prover can commit to: decode, execute,
// record.
package trace

import "fmt"

// Op names the representative opcode each instruction selector column
// demonstrates. This is deliberately the same 21-opcode subset air's
// column layout carries a selector for, not the full RV32IM ISA.
type Op int

const (
	OpADD Op = iota
	OpADDI
	OpSUB
	OpAND
	OpOR
	OpXOR
	OpSLL
	OpSLT
	OpSLTU
	OpBEQ
	OpJAL
	OpJALR
	OpMUL
	OpMULH
	OpDIV
	OpDIVU
	OpREM
	OpLW
	OpLH
	OpLB
	OpSW
)

func (o Op) String() string {
	names := [...]string{
		"add", "addi", "sub", "and", "or", "xor", "sll", "slt", "sltu",
		"beq", "jal", "jalr", "mul", "mulh", "div", "divu", "rem",
		"lw", "lh", "lb", "sw",
	}
	if int(o) < 0 || int(o) >= len(names) {
		return fmt.Sprintf("op(%d)", int(o))
	}
	return names[o]
}

// Instruction is one decoded program word. RD/RS1/RS2 are register
// indices in [0,32); Imm is a signed byte-level immediate (branch and
// jump offsets are relative to the instruction's own address).
type Instruction struct {
	Op       Op
	RD       int
	RS1, RS2 int
	Imm      int32
}

// Program is a sequence of 4-byte-aligned instructions, indexed by
// word: the instruction at byte address pc lives at Instructions[pc/4].
type Program struct {
	Instructions []Instruction
}

func NewProgram(insts ...Instruction) *Program {
	return &Program{Instructions: insts}
}

// Assembler helpers, one per representative opcode, to keep test
// programs readable instead of hand-building Instruction literals.

func Add(rd, rs1, rs2 int) Instruction  { return Instruction{Op: OpADD, RD: rd, RS1: rs1, RS2: rs2} }
func Addi(rd, rs1 int, imm int32) Instruction {
	return Instruction{Op: OpADDI, RD: rd, RS1: rs1, Imm: imm}
}
func Sub(rd, rs1, rs2 int) Instruction { return Instruction{Op: OpSUB, RD: rd, RS1: rs1, RS2: rs2} }
func And(rd, rs1, rs2 int) Instruction { return Instruction{Op: OpAND, RD: rd, RS1: rs1, RS2: rs2} }
func Or(rd, rs1, rs2 int) Instruction  { return Instruction{Op: OpOR, RD: rd, RS1: rs1, RS2: rs2} }
func Xor(rd, rs1, rs2 int) Instruction { return Instruction{Op: OpXOR, RD: rd, RS1: rs1, RS2: rs2} }
func Sll(rd, rs1 int, shamt int32) Instruction {
	return Instruction{Op: OpSLL, RD: rd, RS1: rs1, Imm: shamt}
}
func Slt(rd, rs1, rs2 int) Instruction  { return Instruction{Op: OpSLT, RD: rd, RS1: rs1, RS2: rs2} }
func Sltu(rd, rs1, rs2 int) Instruction { return Instruction{Op: OpSLTU, RD: rd, RS1: rs1, RS2: rs2} }
func Beq(rs1, rs2 int, imm int32) Instruction {
	return Instruction{Op: OpBEQ, RS1: rs1, RS2: rs2, Imm: imm}
}
func Jal(rd int, imm int32) Instruction { return Instruction{Op: OpJAL, RD: rd, Imm: imm} }
func Jalr(rd, rs1 int, imm int32) Instruction {
	return Instruction{Op: OpJALR, RD: rd, RS1: rs1, Imm: imm}
}
func Mul(rd, rs1, rs2 int) Instruction  { return Instruction{Op: OpMUL, RD: rd, RS1: rs1, RS2: rs2} }
func Mulh(rd, rs1, rs2 int) Instruction { return Instruction{Op: OpMULH, RD: rd, RS1: rs1, RS2: rs2} }
func Div(rd, rs1, rs2 int) Instruction  { return Instruction{Op: OpDIV, RD: rd, RS1: rs1, RS2: rs2} }
func Divu(rd, rs1, rs2 int) Instruction { return Instruction{Op: OpDIVU, RD: rd, RS1: rs1, RS2: rs2} }
func Rem(rd, rs1, rs2 int) Instruction  { return Instruction{Op: OpREM, RD: rd, RS1: rs1, RS2: rs2} }
func Lw(rd, rs1 int, imm int32) Instruction {
	return Instruction{Op: OpLW, RD: rd, RS1: rs1, Imm: imm}
}
func Lh(rd, rs1 int, imm int32) Instruction {
	return Instruction{Op: OpLH, RD: rd, RS1: rs1, Imm: imm}
}
func Lb(rd, rs1 int, imm int32) Instruction {
	return Instruction{Op: OpLB, RD: rd, RS1: rs1, Imm: imm}
}
func Sw(rs1, rs2 int, imm int32) Instruction {
	return Instruction{Op: OpSW, RS1: rs1, RS2: rs2, Imm: imm}
}
