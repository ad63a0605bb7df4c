package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/circlestark/air"
	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
	"github.com/ZippelLabs/ZP1/internal/circlestark/protocol"
	"github.com/ZippelLabs/ZP1/internal/circlestark/trace"
)

func smallProgram() *trace.Program {
	return trace.NewProgram(
		trace.Addi(1, 0, 5),
		trace.Addi(2, 0, 7),
		trace.Add(3, 1, 2),
	)
}

func TestProveRejectsForgedX0Write(t *testing.T) {
	tr, err := trace.Run(smallProgram(), 8)
	require.NoError(t, err)

	// Forge a row that writes a nonzero value to x0 while keeping every
	// boolean/one-hot column valid, the way trace.Validate alone cannot
	// catch (spec scenario: x0 forgery rejection).
	tr.Rows[0][air.ColRDIdx] = field.Zero
	tr.Rows[0][air.ColEqBit] = field.One
	tr.Rows[0][air.ColRDLo] = field.M31(123)

	_, err = protocol.Prove(tr, nil, protocol.DefaultSecurityConfig())
	require.Error(t, err)

	var proveErr *protocol.ProveError
	require.ErrorAs(t, err, &proveErr)
	require.Equal(t, protocol.KindConstraintViolation, proveErr.Kind)
	require.Equal(t, "x0_nonzero", proveErr.AIRKind)
}

func TestProveAcceptsHonestTrace(t *testing.T) {
	tr, err := trace.Run(smallProgram(), 8)
	require.NoError(t, err)

	_, err = protocol.Prove(tr, nil, protocol.DefaultSecurityConfig())
	require.NoError(t, err)
}
