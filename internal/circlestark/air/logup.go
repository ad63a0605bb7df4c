package air

import (
	"github.com/cockroachdb/errors"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

// ErrLogUpMismatch is returned when a channel's running sum fails to
// telescope to zero, meaning the main trace and its sorted consistency
// table disagree on the multiset of accesses they claim to share.
var ErrLogUpMismatch = errors.New("air: logup running sum does not telescope to zero")

// MemoryEvent is one row of the address/timestamp-sorted memory
// consistency table, kept separate from the 93-column main trace so the
// main trace's width stays fixed regardless of how the sort is proved.
type MemoryEvent struct {
	Addr    field.M31
	ValueLo field.M31
	ValueHi field.M31
	TSLo    field.M31
	TSHi    field.M31
	IsWrite field.M31
}

// RegisterEvent is the analogous sorted-table row for the register file.
type RegisterEvent struct {
	RegIdx field.M31
	ValLo  field.M31
	ValHi  field.M31
	TSLo   field.M31
	TSHi   field.M31
}

// Fingerprint computes f(row) = addr*alpha^4 + value_lo*alpha^3 +
// ts_lo*alpha^2 + ts_hi*alpha + is_write, then adds beta, in QM31; the
// value's high limb is not part of the fingerprint. Both
// the main trace's memory channel and the sorted memory table must
// produce the same fingerprint for matching accesses for LogUp to bind
// them into one multiset argument.
func Fingerprint(addr, valueLo, ts_lo, ts_hi, isWrite field.M31, alpha, beta field.QM31) field.QM31 {
	a2 := alpha.Mul(alpha)
	a3 := a2.Mul(alpha)
	a4 := a3.Mul(alpha)
	sum := field.QM31FromM31(addr).Mul(a4)
	sum = sum.Add(field.QM31FromM31(valueLo).Mul(a3))
	sum = sum.Add(field.QM31FromM31(ts_lo).Mul(a2))
	sum = sum.Add(field.QM31FromM31(ts_hi).Mul(alpha))
	sum = sum.Add(field.QM31FromM31(isWrite))
	return sum.Add(beta)
}

// RegisterFingerprint mirrors Fingerprint for the register channel,
// using regIdx in place of addr and dropping is_write.
func RegisterFingerprint(regIdx, valLo, tsLo, tsHi field.M31, alpha, beta field.QM31) field.QM31 {
	a2 := alpha.Mul(alpha)
	a3 := a2.Mul(alpha)
	sum := field.QM31FromM31(regIdx).Mul(a3)
	sum = sum.Add(field.QM31FromM31(valLo).Mul(a2))
	sum = sum.Add(field.QM31FromM31(tsLo).Mul(alpha))
	sum = sum.Add(field.QM31FromM31(tsHi))
	return sum.Add(beta)
}

// RunningSum builds the LogUp partial-sum column: S[0] = 1/f_0 - 1/g_0,
// S[i] = S[i-1] + 1/f_i - 1/g_i, where f_i is mainFingerprints[i] and
// g_i is sortedFingerprints[i], paired by position. Both slices must be
// the same length; when the sorted slice is a permutation of the main
// one, the last entry of the column is zero.
func RunningSum(mainFingerprints, sortedFingerprints []field.QM31) ([]field.QM31, error) {
	if len(mainFingerprints) != len(sortedFingerprints) {
		return nil, errors.New("air: logup channel length mismatch")
	}
	n := len(mainFingerprints)
	sum := make([]field.QM31, n)
	mainInv, err := field.BatchInvQM31(mainFingerprints)
	if err != nil {
		return nil, errors.Wrap(err, "air: main channel fingerprint collided with zero")
	}
	sortedInv, err := field.BatchInvQM31(sortedFingerprints)
	if err != nil {
		return nil, errors.Wrap(err, "air: sorted channel fingerprint collided with zero")
	}
	running := field.QM31Zero
	for i := 0; i < n; i++ {
		running = running.Add(mainInv[i]).Sub(sortedInv[i])
		sum[i] = running
	}
	return sum, nil
}

// CheckTelescoping verifies the running sum returns to zero at the last
// row, the algebraic statement that the main trace's channel accesses
// and the sorted table's rows form the same multiset.
func CheckTelescoping(sum []field.QM31) error {
	if len(sum) == 0 {
		return nil
	}
	if !sum[len(sum)-1].IsZero() {
		return ErrLogUpMismatch
	}
	return nil
}

// MemoryEventsFromTrace projects the main trace's memory channel
// columns into the row-order access list; the caller separately sorts a
// copy of this list by (addr, timestamp) to build the consistency table
// that RunningSum binds against.
func MemoryEventsFromTrace(t *Trace) []MemoryEvent {
	out := make([]MemoryEvent, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = MemoryEvent{
			Addr:    row[ColMemAddr],
			ValueLo: row[ColMemValueLo],
			ValueHi: row[ColMemValueHi],
			TSLo:    row[ColMemTSLo],
			TSHi:    row[ColMemTSHi],
			IsWrite: row[ColMemIsWrite],
		}
	}
	return out
}

// RegisterEventsFromTrace is the register-channel analogue of
// MemoryEventsFromTrace.
func RegisterEventsFromTrace(t *Trace) []RegisterEvent {
	out := make([]RegisterEvent, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = RegisterEvent{
			RegIdx: row[ColRDIdx],
			ValLo:  row[ColRDLo],
			ValHi:  row[ColRDHi],
			TSLo:   row[ColRegTSLo],
			TSHi:   row[ColRegTSHi],
		}
	}
	return out
}
