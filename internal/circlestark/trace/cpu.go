package trace

import (
	"github.com/cockroachdb/errors"

	"github.com/ZippelLabs/ZP1/internal/circlestark/air"
	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

// ErrUnreachableHalt describes a program counter that runs past the end
// of the program. Run does not return it: Run treats running past the
// last instruction as the program's normal halt.
var ErrUnreachableHalt = errors.New("trace: program counter ran past the end of the program without halting")

// CPU holds the RV32IM-subset machine state between steps: the register
// file (x0 hardwired to zero), byte-addressable memory, the program
// counter, and a logical clock used to timestamp register and memory
// channel events for the LogUp consistency argument.
type CPU struct {
	Regs  [32]uint32
	PC    uint32
	Mem   map[uint32]byte
	Clock uint64
}

func NewCPU() *CPU {
	return &CPU{Mem: make(map[uint32]byte)}
}

func (c *CPU) readReg(i int) uint32 {
	if i == 0 {
		return 0
	}
	return c.Regs[i]
}

func (c *CPU) writeReg(i int, v uint32) {
	if i != 0 {
		c.Regs[i] = v
	}
}

func (c *CPU) loadWord(addr uint32) uint32 {
	return uint32(c.Mem[addr]) | uint32(c.Mem[addr+1])<<8 | uint32(c.Mem[addr+2])<<16 | uint32(c.Mem[addr+3])<<24
}

func (c *CPU) storeWord(addr uint32, v uint32) {
	c.Mem[addr] = byte(v)
	c.Mem[addr+1] = byte(v >> 8)
	c.Mem[addr+2] = byte(v >> 16)
	c.Mem[addr+3] = byte(v >> 24)
}

func splitLimbs(v uint32) (lo, hi field.M31) {
	return field.M31(v & 0xFFFF), field.M31((v >> 16) & 0xFFFF)
}

func tsLimbs(clock uint64) (lo, hi field.M31) {
	return field.M31(clock & 0xFFFF), field.M31((clock >> 16) & 0xFFFF)
}

// setByteBits decomposes a byte into its 8 boolean columns starting at
// first, the witness memoryConstraints' slot-A/slot-B range checks
// reconstruct and compare against the byte-witness columns.
func setByteBits(r *air.Row, b byte, first air.Column) {
	for i := 0; i < 8; i++ {
		r[int(first)+i] = field.M31((b >> i) & 1)
	}
}

// x0Witness fills the is-zero gadget air.x0HardwireConstraints expects
// for the register this row's ColRDIdx names: ColEqBit set to 1 iff
// regIdx is zero, ColRangeCheckWitness its inverse-or-zero witness.
func x0Witness(regIdx int) (eqBit, inv field.M31) {
	if regIdx == 0 {
		return field.One, field.Zero
	}
	iv, err := field.M31(regIdx).Inv()
	if err != nil {
		return field.One, field.Zero
	}
	return field.Zero, iv
}

// Run executes prog from pc=0 until the instruction pointer runs past
// the last instruction, recording one trace row per executed
// instruction, then pads the trace to the next power of two with
// padding rows that satisfy every constraint trivially.
func Run(prog *Program, maxSteps int) (*air.Trace, error) {
	cpu := NewCPU()
	var rows []air.Row

	for steps := 0; ; steps++ {
		idx := int(cpu.PC / 4)
		if idx >= len(prog.Instructions) {
			break
		}
		if steps >= maxSteps {
			return nil, errors.Newf("trace: exceeded %d steps without halting", maxSteps)
		}
		row, err := cpu.step(prog.Instructions[idx])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		cpu.Clock++
	}

	n := nextPow2(len(rows) + 1)
	if n < 2 {
		n = 2
	}
	tr := air.NewTrace(n)
	copy(tr.Rows, rows)
	if len(tr.Rows) > 0 {
		tr.Rows[0][air.ColIsFirstRow] = field.One
	}
	for i := len(rows); i < n; i++ {
		if i == len(rows) && len(rows) > 0 {
			// The transition constraint checks that the row right
			// after the last real (non-padding) row starts its pc
			// where that row's pc_next said it would; every later
			// pad-to-pad transition is unchecked because its source
			// row's padding selector is already active.
			last := rows[len(rows)-1]
			tr.Rows[i] = padRowAt(last[air.ColPCNextLo], last[air.ColPCNextHi])
		} else {
			tr.Rows[i] = padRow()
		}
	}
	return tr, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// padRow is a self-consistent row satisfying every constraint
// regardless of its neighbors: the padding selector active, the x0
// gadget witnessing rd=0, and a pc/pc_next pair obeying the
// straight-line update identity (pcUpdateConstraints's "next row must
// match" clause is itself gated off by the padding selector, so this
// row's actual pc has no bearing on its neighbors).
func padRow() air.Row {
	return padRowAt(field.Zero, field.Zero)
}

// padRowAt builds a padding row whose pc starts at (pcLo,pcHi), the
// value needed right after the last real instruction so the transition
// constraint out of that row is satisfied.
func padRowAt(pcLo, pcHi field.M31) air.Row {
	var r air.Row
	r[air.SelPAD] = field.One
	r[air.ColEqBit] = field.One
	r[air.ColPCLo], r[air.ColPCHi] = pcLo, pcHi
	npLo, carryBit := splitLimbs(uint32(pcLo) + 4)
	r[air.ColPCNextLo] = npLo
	r[air.ColPCNextHi] = pcHi.Add(carryBit)
	r[air.ColCarry2] = carryBit
	return r
}
