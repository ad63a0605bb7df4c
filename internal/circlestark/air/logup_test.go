package air

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

func TestRunningSumTelescopesForMatchingMultiset(t *testing.T) {
	alpha := field.QM31{C0: field.NewCM31(field.M31(3), field.M31(5))}
	beta := field.QM31{C0: field.NewCM31(field.M31(11), field.M31(0))}

	mainEvents := []MemoryEvent{
		{Addr: field.M31(4), ValueLo: field.M31(9), TSLo: field.M31(0), TSHi: field.M31(0), IsWrite: field.One},
		{Addr: field.M31(0), ValueLo: field.M31(1), TSLo: field.M31(1), TSHi: field.M31(0), IsWrite: field.Zero},
	}
	// sortedEvents is a permutation of mainEvents (here: reversed).
	sortedEvents := []MemoryEvent{mainEvents[1], mainEvents[0]}

	mainFp := make([]field.QM31, len(mainEvents))
	for i, e := range mainEvents {
		mainFp[i] = Fingerprint(e.Addr, e.ValueLo, e.TSLo, e.TSHi, e.IsWrite, alpha, beta)
	}
	sortedFp := make([]field.QM31, len(sortedEvents))
	for i, e := range sortedEvents {
		sortedFp[i] = Fingerprint(e.Addr, e.ValueLo, e.TSLo, e.TSHi, e.IsWrite, alpha, beta)
	}

	sum, err := RunningSum(mainFp, sortedFp)
	require.NoError(t, err)
	require.NoError(t, CheckTelescoping(sum))
}

func TestRunningSumRejectsMismatchedMultiset(t *testing.T) {
	alpha := field.QM31{C0: field.NewCM31(field.M31(3), field.M31(5))}
	beta := field.QM31{C0: field.NewCM31(field.M31(11), field.M31(0))}

	mainFp := []field.QM31{Fingerprint(field.M31(4), field.M31(9), field.Zero, field.Zero, field.One, alpha, beta)}
	sortedFp := []field.QM31{Fingerprint(field.M31(5), field.M31(9), field.Zero, field.Zero, field.One, alpha, beta)}

	sum, err := RunningSum(mainFp, sortedFp)
	require.NoError(t, err)
	require.Error(t, CheckTelescoping(sum))
}

func TestDelegationBusRoundTrip(t *testing.T) {
	alpha := field.QM31{C0: field.NewCM31(field.M31(7), field.M31(2))}
	beta := field.QM31{C0: field.NewCM31(field.M31(13), field.M31(0))}

	entry := DelegationEntry{
		Channel:      "keccak",
		SyscallID:    field.M31(1),
		InputDigest:  field.QM31FromM31(field.M31(42)),
		OutputDigest: field.QM31FromM31(field.M31(99)),
		TSLo:         field.M31(3),
		TSHi:         field.Zero,
	}
	fp := DelegationFingerprint(entry, alpha, beta)

	bus := NewDelegationBus()
	bus.RegisterMainCalls("keccak", []field.QM31{fp})
	require.NoError(t, bus.Close("keccak", []DelegationEntry{entry}, alpha, beta))
}

func TestDelegationBusRejectsUnknownChannel(t *testing.T) {
	bus := NewDelegationBus()
	err := bus.Close("keccak", nil, field.QM31Zero, field.QM31Zero)
	require.Error(t, err)
}

func TestDelegationBusRejectsCountMismatch(t *testing.T) {
	alpha := field.QM31{C0: field.NewCM31(field.M31(7), field.M31(2))}
	beta := field.QM31{C0: field.NewCM31(field.M31(13), field.M31(0))}
	entry := DelegationEntry{Channel: "keccak", SyscallID: field.One}
	fp := DelegationFingerprint(entry, alpha, beta)

	bus := NewDelegationBus()
	bus.RegisterMainCalls("keccak", []field.QM31{fp, fp})
	require.Error(t, bus.Close("keccak", []DelegationEntry{entry}, alpha, beta))
}
