// Package air encodes RV32IM execution semantics as a fixed 93-column
// algebraic intermediate representation over M31, plus the LogUp
// multiset argument that ties the CPU trace's memory and register
// accesses to independently-sorted consistency tables. 93 columns
// covers one representative opcode per constraint group plus its
// sub-word witnesses; a baseline layout covering only the constraint
// groups themselves (no representative-opcode expansion) fits in 77.
package air

import "github.com/ZippelLabs/ZP1/internal/circlestark/field"

// Column indexes the fixed 93-column trace layout. Reordering or
// resizing this table is an AIR version change and must be paired with
// a new transcript domain separator, since column semantics are part of
// what the verifier re-derives independently.
type Column int

const (
	// Control.
	ColPCLo Column = iota
	ColPCHi
	ColPCNextLo
	ColPCNextHi
	ColInstrWord
	ColRS1Idx
	ColRS2Idx
	ColRDIdx
	ColImm

	// Opcode/flag selectors. Exactly one of the opcode selectors (and
	// the padding selector) is nonzero per row. Coverage here is
	// deliberately one representative opcode per RV32IM constraint
	// group rather than the full 47-instruction ISA.
	SelADD
	SelADDI
	SelSUB
	SelAND
	SelOR
	SelXOR
	SelSLL
	SelSLT
	SelSLTU
	SelBEQ
	SelJAL
	SelJALR
	SelMUL
	SelMULH
	SelDIV
	SelDIVU
	SelREM
	SelLW
	SelLH
	SelLB
	SelSW
	SelPAD

	// Register file: two 16-bit limbs of each of rs1, rs2, rd.
	ColRS1Lo
	ColRS1Hi
	ColRS2Lo
	ColRS2Hi
	ColRDLo
	ColRDHi

	// ALU / comparison / control-flow auxiliary witnesses.
	ColCarry
	ColCarry2
	ColBorrow
	ColLSB
	ColEqBit
	ColLtBit
	ColQuotientLo
	ColQuotientHi
	ColRemainderLo
	ColRemainderHi
	ColDivCase // 0 = normal, 1 = divide-by-zero, 2 = signed overflow

	// MUL/MULH extended product witnesses: rd holds MUL's result via
	// ColRDLo/ColRDHi; these hold MULH's claimed result, which the trace
	// generator fills with the low 32 bits of the product and
	// mulConstraints checks against the same value as MUL.
	ColProdHiLo
	ColProdHiHi

	// Bitwise identity demonstration at a representative bit position:
	// AND = a*b, OR = a+b-a*b, XOR = a+b-2*a*b.
	ColBitA
	ColBitB

	// Shift witnesses: result = operand * 2^shift_amount with a
	// range-checked remainder below 2^shift_amount.
	ColShiftPow
	ColShiftRem

	// Memory channel: bound to the memory-consistency table via LogUp.
	ColMemAddr
	ColMemValueLo
	ColMemValueHi
	ColMemTSLo
	ColMemTSHi
	ColMemIsWrite
	ColMemSignByte

	// Sub-word load/store extraction witnesses (LB/LH sign-extension,
	// SW's byte/half write masking).
	ColLoadByte0
	ColLoadByte1
	ColStoreByte0
	ColStoreByte1

	// Bit decompositions range-checking the two byte-witness slots above
	// into [0,256): slot A covers ColLoadByte0/ColStoreByte0, slot B
	// covers ColLoadByte1/ColStoreByte1 (load and store selectors are
	// one-hot, so each slot's reconstruction identity is gated onto
	// whichever column is live in the current row). Bit 7 of each slot
	// doubles as that byte's sign bit for LB/LH sign extension.
	ColByteABit0
	ColByteABit1
	ColByteABit2
	ColByteABit3
	ColByteABit4
	ColByteABit5
	ColByteABit6
	ColByteABit7
	ColByteBBit0
	ColByteBBit1
	ColByteBBit2
	ColByteBBit3
	ColByteBBit4
	ColByteBBit5
	ColByteBBit6
	ColByteBBit7

	// Register channel: bound to the register-consistency table via
	// LogUp, alongside ColRS1Idx/ColRS2Idx/ColRDIdx and the register
	// limb columns above.
	ColRegTSLo
	ColRegTSHi

	// Running LogUp sums, held in the main trace as 4 M31 limbs each
	// (a QM31 value) per channel.
	ColMemLogUp0
	ColMemLogUp1
	ColMemLogUp2
	ColMemLogUp3
	ColRegLogUp0
	ColRegLogUp1
	ColRegLogUp2
	ColRegLogUp3

	// Generic range-check helper shared by the 16-bit limb identities.
	ColRangeCheckWitness

	// Row-position boundary flags for initial/final constraints.
	ColIsFirstRow

	numColumns
)

// NumColumns is the fixed trace width the AIR evaluator, the LDE, and
// the Merkle commitment all agree on.
const NumColumns = int(numColumns)

func init() {
	if NumColumns != 93 {
		panic("air: column layout must be exactly 93 columns")
	}
}

// Row is one row of the execution trace: NumColumns field elements.
type Row [NumColumns]field.M31
