package air

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

func blankRow() Row {
	var r Row
	r[SelPAD] = field.One
	r[ColEqBit] = field.One // rdIdx defaults to 0, so the x0 indicator must be 1
	return r
}

func TestOneHotConstraintPadRow(t *testing.T) {
	r := blankRow()
	require.True(t, oneHotConstraint(r).IsZero())
}

func TestOneHotConstraintRejectsTwoSelectors(t *testing.T) {
	r := blankRow()
	r[SelADD] = field.One
	require.False(t, oneHotConstraint(r).IsZero())
}

func TestX0HardwirePassesWhenRDZero(t *testing.T) {
	r := blankRow()
	for _, v := range x0HardwireConstraints(r) {
		require.True(t, v.IsZero())
	}
}

func TestX0HardwireRejectsForgedX0(t *testing.T) {
	r := blankRow()
	r[ColRDLo] = field.M31(7)
	violated := false
	for _, v := range x0HardwireConstraints(r) {
		if !v.IsZero() {
			violated = true
		}
	}
	require.True(t, violated)
}

func TestX0HardwireInactiveForNonzeroIndex(t *testing.T) {
	r := blankRow()
	r[ColRDIdx] = field.M31(5)
	r[ColRangeCheckWitness] = mustInv(t, field.M31(5))
	r[ColEqBit] = field.Zero
	r[ColRDLo] = field.M31(123) // any value is fine once rdIdx != 0
	for _, v := range x0HardwireConstraints(r) {
		require.True(t, v.IsZero())
	}
}

func mustInv(t *testing.T, v field.M31) field.M31 {
	inv, err := v.Inv()
	require.NoError(t, err)
	return inv
}

func TestALUAddConstraint(t *testing.T) {
	r := blankRow()
	r[SelADD] = field.One
	r[ColRS1Lo] = field.M31(40000)
	r[ColRS1Hi] = field.M31(1)
	r[ColRS2Lo] = field.M31(30000)
	r[ColRS2Hi] = field.M31(2)
	// 40000+30000 = 70000 = 1*65536 + 4464, so carry=1.
	r[ColCarry] = field.One
	r[ColRDLo] = field.M31(4464)
	r[ColRDHi] = field.M31(1 + 2 + 1)
	for _, v := range aluConstraints(r) {
		require.True(t, v.IsZero())
	}
}

func TestALUAddConstraintRejectsWrongCarry(t *testing.T) {
	r := blankRow()
	r[SelADD] = field.One
	r[ColRS1Lo] = field.M31(40000)
	r[ColRS2Lo] = field.M31(30000)
	r[ColCarry] = field.Zero // wrong: should be 1
	r[ColRDLo] = field.M31(4464)
	violated := false
	for _, v := range aluConstraints(r) {
		if !v.IsZero() {
			violated = true
		}
	}
	require.True(t, violated)
}

func TestBitwiseXORConstraint(t *testing.T) {
	r := blankRow()
	r[SelXOR] = field.One
	r[ColBitA] = field.One
	r[ColBitB] = field.Zero
	r[ColRDLo] = field.One // 1 XOR 0 = 1
	for _, v := range bitwiseConstraints(r) {
		require.True(t, v.IsZero())
	}
}

func setByteWitness(r *Row, bit0 Column, b byte) {
	for i := 0; i < 8; i++ {
		r[int(bit0)+i] = field.M31((b >> i) & 1)
	}
}

func TestMemoryLBSignExtendsNegativeByte(t *testing.T) {
	r := blankRow()
	r[SelLB] = field.One
	r[ColLoadByte0] = field.M31(0xFF) // -1 as a signed byte
	setByteWitness(&r, ColByteABit0, 0xFF)
	r[ColRDLo] = field.M31(0xFFFF)
	r[ColRDHi] = field.M31(0xFFFF)
	for _, v := range memoryConstraints(r) {
		require.True(t, v.IsZero())
	}
}

func TestMemoryLBRejectsMissingSignExtension(t *testing.T) {
	r := blankRow()
	r[SelLB] = field.One
	r[ColLoadByte0] = field.M31(0xFF)
	setByteWitness(&r, ColByteABit0, 0xFF)
	r[ColRDLo] = field.M31(0xFF) // wrong: not sign-extended
	r[ColRDHi] = field.Zero
	violated := false
	for _, v := range memoryConstraints(r) {
		if !v.IsZero() {
			violated = true
		}
	}
	require.True(t, violated)
}

func TestMemoryLHSignExtendsNegativeHalf(t *testing.T) {
	r := blankRow()
	r[SelLH] = field.One
	r[ColLoadByte0] = field.M31(0x34)
	r[ColLoadByte1] = field.M31(0x80) // high byte's sign bit set
	setByteWitness(&r, ColByteABit0, 0x34)
	setByteWitness(&r, ColByteBBit0, 0x80)
	r[ColRDLo] = field.M31(0x34 + 0x80*256)
	r[ColRDHi] = field.M31(0xFFFF)
	for _, v := range memoryConstraints(r) {
		require.True(t, v.IsZero())
	}
}

func TestMemoryByteWitnessRejectsOutOfRangeReconstruction(t *testing.T) {
	r := blankRow()
	r[SelLB] = field.One
	r[ColLoadByte0] = field.M31(5)
	setByteWitness(&r, ColByteABit0, 5)
	r[ColByteABit0] = field.M31(9) // forged: bits no longer reconstruct to 5
	r[ColRDLo] = field.M31(5)
	violated := false
	for _, v := range memoryConstraints(r) {
		if !v.IsZero() {
			violated = true
		}
	}
	require.True(t, violated)
}

func TestOneHotAllowsPaddingAlone(t *testing.T) {
	r := blankRow()
	require.True(t, oneHotConstraint(r).IsZero())
	for _, v := range booleanConstraints(r) {
		require.True(t, v.IsZero())
	}
}
