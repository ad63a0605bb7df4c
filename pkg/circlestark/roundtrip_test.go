package circlestark_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	circlestark "github.com/ZippelLabs/ZP1/pkg/circlestark"
)

func fibProgram() *circlestark.Program {
	return circlestark.NewProgram(
		circlestark.Addi(1, 0, 0),
		circlestark.Addi(2, 0, 1),
		circlestark.Addi(3, 0, 0),
		circlestark.Addi(4, 0, 9),
		circlestark.Beq(3, 4, 24),
		circlestark.Add(5, 1, 2),
		circlestark.Add(1, 2, 0),
		circlestark.Add(2, 5, 0),
		circlestark.Addi(3, 3, 1),
		circlestark.Beq(0, 0, -20),
	)
}

func TestProveVerifyRoundTrip(t *testing.T) {
	tr, err := circlestark.Run(fibProgram(), 256)
	require.NoError(t, err)

	cfg := circlestark.DefaultConfig()
	publicInputs := []byte("fib(10)=55")

	proof, err := circlestark.Prove(tr, publicInputs, cfg)
	require.NoError(t, err)

	err = circlestark.Verify(proof, publicInputs, cfg, circlestark.TraceLogN(tr))
	require.NoError(t, err)
}

func TestProveVerifyRoundTrip_EncodeDecode(t *testing.T) {
	tr, err := circlestark.Run(fibProgram(), 256)
	require.NoError(t, err)

	cfg := circlestark.DefaultConfig()
	proof, err := circlestark.Prove(tr, nil, cfg)
	require.NoError(t, err)

	wire := circlestark.Encode(proof)
	decoded, err := circlestark.Decode(wire)
	require.NoError(t, err)

	err = circlestark.Verify(decoded, nil, cfg, circlestark.TraceLogN(tr))
	require.NoError(t, err)
}

func TestVerifyRejectsWrongPublicInputs(t *testing.T) {
	tr, err := circlestark.Run(fibProgram(), 256)
	require.NoError(t, err)

	cfg := circlestark.DefaultConfig()
	proof, err := circlestark.Prove(tr, []byte("claimed-output=55"), cfg)
	require.NoError(t, err)

	err = circlestark.Verify(proof, []byte("claimed-output=56"), cfg, circlestark.TraceLogN(tr))
	require.Error(t, err)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	tr, err := circlestark.Run(fibProgram(), 256)
	require.NoError(t, err)

	cfg := circlestark.DefaultConfig()
	proof, err := circlestark.Prove(tr, nil, cfg)
	require.NoError(t, err)

	proof.TraceRoot[0] ^= 0xFF

	err = circlestark.Verify(proof, nil, cfg, circlestark.TraceLogN(tr))
	require.Error(t, err)
}
