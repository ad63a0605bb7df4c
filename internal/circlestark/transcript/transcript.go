// Package transcript implements the Fiat-Shamir channel that turns the
// interactive circle-STARK protocol into a non-interactive proof: a
// running SHA-256 state absorbs every value the prover sends, and every
// challenge the verifier would have sent is instead squeezed
// deterministically out of that state.
package transcript

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

// domainSeparator is mixed into the very first absorb so that a
// transcript built for this protocol can never collide with one for a
// different wire format or version.
const domainSeparator = "circle-stark-core/v1"

// maxRejectionAttempts bounds the rejection-sampling retries for
// SqueezeIndex and SqueezeQM31, so a pathological modulus can never spin
// the transcript forever.
const maxRejectionAttempts = 256

// ErrRejectionBudgetExceeded is returned when a bounded number of
// rejection-sampling draws all land outside the accepted range.
var ErrRejectionBudgetExceeded = errors.New("transcript: exceeded rejection-sampling retry budget")

// Transcript is a single-owner, strictly sequential Fiat-Shamir channel.
// It is not safe for concurrent use: every protocol phase that absorbs
// into or squeezes from it must do so in the fixed order the protocol
// defines, which is itself the soundness property a transcript exists
// to enforce.
type Transcript struct {
	state   [32]byte
	counter uint64
}

// New starts a fresh transcript, absorbing the domain separator and an
// arbitrary caller-supplied context (e.g. the public inputs) first.
func New(context []byte) *Transcript {
	t := &Transcript{}
	t.absorb([]byte(domainSeparator))
	t.absorb(context)
	return t
}

// Absorb mixes a labeled message into the transcript state. The label
// enforces strict absorb ordering: swapping the order of two absorbs
// with different labels changes the resulting state.
func (t *Transcript) Absorb(label string, data []byte) {
	t.absorb([]byte(label))
	t.absorb(data)
}

func (t *Transcript) absorb(data []byte) {
	h := sha256.New()
	h.Write(t.state[:])
	h.Write(data)
	copy(t.state[:], h.Sum(nil))
}

// draw advances the state deterministically and returns 32 fresh bytes,
// used as the raw material for every Squeeze* method.
func (t *Transcript) draw() [32]byte {
	h := sha256.New()
	h.Write(t.state[:])
	var ctr [8]byte
	binary.LittleEndian.PutUint64(ctr[:], t.counter)
	h.Write(ctr[:])
	t.counter++
	var out [32]byte
	copy(out[:], h.Sum(nil))
	copy(t.state[:], out[:])
	return out
}

// SqueezeM31 draws a uniformly random base-field element by rejection
// sampling against P, so the result is not biased toward the low end of
// the uint32 range.
func (t *Transcript) SqueezeM31() (field.M31, error) {
	for attempt := 0; attempt < maxRejectionAttempts; attempt++ {
		out := t.draw()
		v := binary.LittleEndian.Uint32(out[:4]) >> 1 // clear top bit: <= 2^31-1
		if v < field.P {
			return field.M31(v), nil
		}
	}
	return field.M31(0), ErrRejectionBudgetExceeded
}

// SqueezeQM31 draws a uniformly random extension-field challenge, one
// rejection-sampled M31 limb at a time. Used for the LogUp fingerprinting
// challenges and the composition/DEEP coefficients.
func (t *Transcript) SqueezeQM31() (field.QM31, error) {
	limbs := make([]field.M31, 4)
	for i := range limbs {
		v, err := t.SqueezeM31()
		if err != nil {
			return field.QM31{}, err
		}
		limbs[i] = v
	}
	return field.QM31{
		C0: field.NewCM31(limbs[0], limbs[1]),
		C1: field.NewCM31(limbs[2], limbs[3]),
	}, nil
}

// SqueezeIndex draws a uniformly random index in [0, bound) by rejection
// sampling, used to pick FRI and Merkle query positions.
func (t *Transcript) SqueezeIndex(bound uint64) (uint64, error) {
	if bound == 0 {
		return 0, errors.New("transcript: index bound must be positive")
	}
	// Largest multiple of bound that fits in 64 bits, to reject draws
	// that would otherwise bias the low residues.
	limit := (^uint64(0) / bound) * bound
	for attempt := 0; attempt < maxRejectionAttempts; attempt++ {
		out := t.draw()
		v := binary.LittleEndian.Uint64(out[:8])
		if v < limit {
			return v % bound, nil
		}
	}
	return 0, ErrRejectionBudgetExceeded
}

// SqueezeIndices draws n distinct query indices in [0, bound) — distinct
// so FRI's query phase never wastes a round re-checking the same path.
func (t *Transcript) SqueezeIndices(n int, bound uint64) ([]uint64, error) {
	if uint64(n) > bound {
		return nil, errors.New("transcript: cannot draw more distinct indices than the bound")
	}
	seen := bitset.New(uint(bound))
	out := make([]uint64, 0, n)
	for len(out) < n {
		idx, err := t.SqueezeIndex(bound)
		if err != nil {
			return nil, err
		}
		if seen.Test(uint(idx)) {
			continue
		}
		seen.Set(uint(idx))
		out = append(out, idx)
	}
	return out, nil
}
