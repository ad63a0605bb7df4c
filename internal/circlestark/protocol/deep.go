package protocol

import (
	"github.com/cockroachdb/errors"

	"github.com/ZippelLabs/ZP1/internal/circlestark/circle"
	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
	"github.com/ZippelLabs/ZP1/internal/circlestark/transcript"
)

// barycentricWeights computes the barycentric weights for Lagrange
// evaluation at the given interpolation nodes: w_i = 1 / prod_{j!=i}
// (x_i - x_j). Quadratic in the node count, which is acceptable for the
// trace-sized (not LDE-sized) domain this is evaluated against.
func barycentricWeights(xs []field.M31) ([]field.M31, error) {
	n := len(xs)
	diffs := make([]field.M31, n)
	for i := 0; i < n; i++ {
		acc := field.One
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			acc = acc.Mul(xs[i].Sub(xs[j]))
		}
		diffs[i] = acc
	}
	return field.BatchInv(diffs)
}

// EvalBarycentric evaluates the unique degree-(<n) polynomial through
// (xs[i], ys[i]) at an out-of-domain point z, using precomputed
// barycentric weights. This stands in for a full out-of-domain
// circle-FFT-basis evaluation, treating the trace as a function of its
// domain points' x-coordinate alone; see the design notes for why this
// simplification was chosen over the two-variable circle basis.
func EvalBarycentric(xs, ys, weights []field.M31, z field.QM31) (field.QM31, error) {
	n := len(xs)
	if n == 0 || len(ys) != n || len(weights) != n {
		return field.QM31Zero, errors.New("protocol: barycentric evaluation requires matching non-empty slices")
	}
	num := field.QM31Zero
	den := field.QM31Zero
	for i := 0; i < n; i++ {
		diff := z.Sub(field.QM31FromM31(xs[i]))
		if diff.IsZero() {
			return field.QM31FromM31(ys[i]), nil
		}
		diffInv, err := diff.Inv()
		if err != nil {
			return field.QM31Zero, err
		}
		term := diffInv.MulM31(weights[i])
		num = num.Add(term.MulM31(ys[i]))
		den = den.Add(term)
	}
	denInv, err := den.Inv()
	if err != nil {
		return field.QM31Zero, errors.Wrap(err, "protocol: barycentric denominator vanished")
	}
	return num.Mul(denInv), nil
}

// OutOfDomainPoint is the DEEP step's challenge z, together with its
// shift z*g used for transition-constraint openings.
type OutOfDomainPoint struct {
	Z  field.QM31
	ZG field.QM31
}

// SampleOutOfDomainPoint draws z from the transcript and rejects it if
// it collides with a trace-domain x-coordinate, which would make the
// DEEP quotient's denominator vanish in-domain.
func SampleOutOfDomainPoint(tr *transcript.Transcript, traceDomain circle.Domain, shift field.M31) (OutOfDomainPoint, error) {
	for attempts := 0; attempts < 256; attempts++ {
		z, err := tr.SqueezeQM31()
		if err != nil {
			return OutOfDomainPoint{}, err
		}
		if onDomain(traceDomain, z) {
			continue
		}
		return OutOfDomainPoint{Z: z, ZG: z.Add(field.QM31FromM31(shift))}, nil
	}
	return OutOfDomainPoint{}, errors.New("protocol: exhausted retries sampling an out-of-domain point")
}

func onDomain(d circle.Domain, z field.QM31) bool {
	for i := 0; i < d.Size(); i++ {
		if field.QM31FromM31(d.At(i).X).Equal(z) {
			return true
		}
	}
	return false
}

// DeepQuotient combines every trace-column opening and the composition
// opening into one low-degree target, per column evaluated pointwise
// across the LDE domain.
type DeepQuotient struct {
	Values []field.QM31
}

// ComputeDeepQuotient builds D(X) at every LDE-domain point from:
//   - ldeColumns: each trace column's LDE evaluations (length M)
//   - colAtZ, colAtZG: the claimed out-of-domain openings per column
//   - compositionLDE: the composition polynomial's LDE evaluations
//   - compAtZ: the composition polynomial's opening at z
//   - alphaCol, alphaColShift: per-column DEEP combination challenges
//   - alphaC: the composition term's DEEP combination challenge
func ComputeDeepQuotient(
	ldeDomain circle.Domain,
	ldeColumns [][]field.M31,
	colAtZ, colAtZG []field.QM31,
	compositionLDE []field.QM31,
	compAtZ field.QM31,
	ood OutOfDomainPoint,
	alphaCol, alphaColShift []field.QM31,
	alphaC field.QM31,
) ([]field.QM31, error) {
	numCols := len(ldeColumns)
	if len(colAtZ) != numCols || len(colAtZG) != numCols || len(alphaCol) != numCols || len(alphaColShift) != numCols {
		return nil, errors.New("protocol: deep quotient column-count mismatch")
	}
	m := ldeDomain.Size()
	out := make([]field.QM31, m)

	zInv, err := invDenominators(ldeDomain, ood.Z)
	if err != nil {
		return nil, err
	}
	zgInv, err := invDenominators(ldeDomain, ood.ZG)
	if err != nil {
		return nil, err
	}

	for i := 0; i < m; i++ {
		acc := field.QM31Zero
		for c := 0; c < numCols; c++ {
			diff := field.QM31FromM31(ldeColumns[c][i]).Sub(colAtZ[c])
			acc = acc.Add(alphaCol[c].Mul(diff.Mul(zInv[i])))

			diffG := field.QM31FromM31(ldeColumns[c][i]).Sub(colAtZG[c])
			acc = acc.Add(alphaColShift[c].Mul(diffG.Mul(zgInv[i])))
		}
		compDiff := compositionLDE[i].Sub(compAtZ)
		acc = acc.Add(alphaC.Mul(compDiff.Mul(zInv[i])))
		out[i] = acc
	}
	return out, nil
}

// DeepQuotientAtPoint evaluates the same combination ComputeDeepQuotient
// builds across the whole LDE domain, but at a single queried point —
// used by the verifier, which only has that one row's opened values.
func DeepQuotientAtPoint(
	x field.M31,
	traceValuesAtX []field.M31,
	colAtZ, colAtZG []field.QM31,
	compValueAtX field.QM31,
	compAtZ field.QM31,
	ood OutOfDomainPoint,
	alphaCol, alphaColShift []field.QM31,
	alphaC field.QM31,
) (field.QM31, error) {
	numCols := len(traceValuesAtX)
	if len(colAtZ) != numCols || len(colAtZG) != numCols || len(alphaCol) != numCols || len(alphaColShift) != numCols {
		return field.QM31Zero, errors.New("protocol: deep quotient column-count mismatch at query point")
	}
	xq := field.QM31FromM31(x)
	zDiff := xq.Sub(ood.Z)
	zInv, err := zDiff.Inv()
	if err != nil {
		return field.QM31Zero, errors.Wrap(err, "protocol: query point collided with the out-of-domain point")
	}
	zgDiff := xq.Sub(ood.ZG)
	zgInv, err := zgDiff.Inv()
	if err != nil {
		return field.QM31Zero, errors.Wrap(err, "protocol: query point collided with the shifted out-of-domain point")
	}

	acc := field.QM31Zero
	for c := 0; c < numCols; c++ {
		diff := field.QM31FromM31(traceValuesAtX[c]).Sub(colAtZ[c])
		acc = acc.Add(alphaCol[c].Mul(diff.Mul(zInv)))

		diffG := field.QM31FromM31(traceValuesAtX[c]).Sub(colAtZG[c])
		acc = acc.Add(alphaColShift[c].Mul(diffG.Mul(zgInv)))
	}
	compDiff := compValueAtX.Sub(compAtZ)
	acc = acc.Add(alphaC.Mul(compDiff.Mul(zInv)))
	return acc, nil
}

// invDenominators batch-inverts (x(p) - target) across every LDE point.
func invDenominators(ldeDomain circle.Domain, target field.QM31) ([]field.QM31, error) {
	m := ldeDomain.Size()
	diffs := make([]field.QM31, m)
	for i := 0; i < m; i++ {
		diffs[i] = field.QM31FromM31(ldeDomain.At(i).X).Sub(target)
	}
	return field.BatchInvQM31(diffs)
}
