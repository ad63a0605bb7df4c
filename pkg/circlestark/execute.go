package circlestark

import "github.com/ZippelLabs/ZP1/internal/circlestark/trace"

// Program is a sequence of representative RV32IM-subset instructions,
// assembled with the trace.* helpers (trace.Add, trace.Beq, ...).
type Program = trace.Program

// Instruction is one decoded program word.
type Instruction = trace.Instruction

// NewProgram assembles a Program from a sequence of instructions built
// with the trace package's per-opcode helpers.
func NewProgram(insts ...Instruction) *Program {
	return trace.NewProgram(insts...)
}

// Run executes prog from pc=0 until it falls off the end of
// Instructions, returning the padded execution trace Prove commits to.
// maxSteps bounds runaway programs that never terminate.
func Run(prog *Program, maxSteps int) (*Trace, error) {
	return trace.Run(prog, maxSteps)
}

// Assembler helpers, re-exported from the trace package so callers of
// this module never need to import internal/.
var (
	Add  = trace.Add
	Addi = trace.Addi
	Sub  = trace.Sub
	And  = trace.And
	Or   = trace.Or
	Xor  = trace.Xor
	Sll  = trace.Sll
	Slt  = trace.Slt
	Sltu = trace.Sltu
	Beq  = trace.Beq
	Jal  = trace.Jal
	Jalr = trace.Jalr
	Mul  = trace.Mul
	Mulh = trace.Mulh
	Div  = trace.Div
	Divu = trace.Divu
	Rem  = trace.Rem
	Lw   = trace.Lw
	Lh   = trace.Lh
	Lb   = trace.Lb
	Sw   = trace.Sw
)
