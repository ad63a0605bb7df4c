package air

import (
	"github.com/cockroachdb/errors"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

// ErrUnknownChannel is returned when a delegation entry names a channel
// tag the bus was never told about.
var ErrUnknownChannel = errors.New("air: delegation entry references unregistered channel tag")

// DelegationEntry is one row a precompile circuit (Keccak, SHA-256,
// ECRecover, ...) reports back to the main trace: a claim that it
// performed one operation identified by (syscallID, input, output) at a
// given timestamp. The core never inspects input/output itself — only
// that the fingerprint this produces matches one emitted by the main
// trace's delegation-call site.
type DelegationEntry struct {
	Channel      string
	SyscallID    field.M31
	InputDigest  field.QM31
	OutputDigest field.QM31
	TSLo         field.M31
	TSHi         field.M31
}

// DelegationFingerprint folds a delegation entry into a single QM31
// value the same way Fingerprint does for memory/register accesses,
// binding every field with its own power of alpha so two entries that
// differ in any single field never collide except with negligible
// probability over the challenge's draw.
func DelegationFingerprint(e DelegationEntry, alpha, beta field.QM31) field.QM31 {
	a2 := alpha.Mul(alpha)
	a3 := a2.Mul(alpha)
	a4 := a3.Mul(alpha)
	sum := field.QM31FromM31(e.SyscallID).Mul(a4)
	sum = sum.Add(e.InputDigest.Mul(a3))
	sum = sum.Add(e.OutputDigest.Mul(a2))
	sum = sum.Add(field.QM31FromM31(e.TSLo).Mul(alpha))
	sum = sum.Add(field.QM31FromM31(e.TSHi))
	return sum.Add(beta)
}

// DelegationBus binds the main trace's delegation call sites to the
// independently-produced precompile traces that claim to have serviced
// them, one multiset argument per channel tag. The bus holds no opinion
// about what a precompile circuit's trace looks like internally; it
// only requires that each side, per channel, produce the same multiset
// of fingerprints.
type DelegationBus struct {
	channels map[string][]field.QM31
}

// NewDelegationBus creates a bus with no channels registered yet.
func NewDelegationBus() *DelegationBus {
	return &DelegationBus{channels: make(map[string][]field.QM31)}
}

// RegisterMainCalls records the fingerprints the main trace emitted for
// calls into the given channel, in main-trace row order.
func (b *DelegationBus) RegisterMainCalls(channel string, fingerprints []field.QM31) {
	b.channels[channel] = append(b.channels[channel], fingerprints...)
}

// Close consumes the precompile trace's entries for channel and checks
// that they form exactly the same multiset as the main-trace calls
// registered for that channel, via the same running-sum telescoping
// LogUp uses for memory and register consistency.
func (b *DelegationBus) Close(channel string, entries []DelegationEntry, alpha, beta field.QM31) error {
	mainFingerprints, ok := b.channels[channel]
	if !ok {
		return errors.Wrapf(ErrUnknownChannel, "channel %q", channel)
	}
	delegationFingerprints := make([]field.QM31, len(entries))
	for i, e := range entries {
		delegationFingerprints[i] = DelegationFingerprint(e, alpha, beta)
	}
	if len(mainFingerprints) != len(delegationFingerprints) {
		return errors.Newf("air: channel %q call count mismatch: main=%d delegation=%d",
			channel, len(mainFingerprints), len(delegationFingerprints))
	}
	sum, err := RunningSum(mainFingerprints, delegationFingerprints)
	if err != nil {
		return errors.Wrapf(err, "air: delegation channel %q", channel)
	}
	return CheckTelescoping(sum)
}
