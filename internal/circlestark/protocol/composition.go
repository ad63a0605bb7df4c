package protocol

import (
	"github.com/cockroachdb/errors"

	"github.com/ZippelLabs/ZP1/internal/circlestark/air"
	"github.com/ZippelLabs/ZP1/internal/circlestark/circle"
	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

// embedM31 lifts a base-field LDE-domain point into QPoint, the
// representation circle.Domain.Vanishing expects.
func embedM31(p circle.Point) circle.QPoint { return circle.Embed(p) }

// vanishingOnLDE evaluates traceDomain's vanishing polynomial at every
// point of ldeDomain. Since ldeDomain is a disjoint larger coset (a
// different shift of the same subgroup), every value is guaranteed
// nonzero, which is what lets CombineConstraints divide by it directly.
func vanishingOnLDE(traceDomain, ldeDomain circle.Domain) ([]field.M31, error) {
	n := ldeDomain.Size()
	out := make([]field.M31, n)
	for i := 0; i < n; i++ {
		p := ldeDomain.At(i)
		z := traceDomain.Vanishing(embedM31(p))
		if !z.C1.IsZero() {
			return nil, errors.Newf("protocol: vanishing polynomial left the base field at LDE index %d", i)
		}
		out[i] = z.C0.A
	}
	return out, nil
}

// ConstraintEvaluationsOnLDE re-evaluates every AIR constraint at each
// point of an LDE'd trace, using the trace columns already extended
// onto ldeDomain. next wraps cyclically (the last point's "next" is
// point 0), and the last point is evaluated with isLastRow set, so
// EvaluateRow drops the transition terms that would read across the wrap.
func ConstraintEvaluationsOnLDE(ldeColumns [air.NumColumns][]field.M31) [][]field.M31 {
	n := len(ldeColumns[0])
	var rows int
	// Number of constraints is fixed by air.EvaluateRow's shape; probe it
	// once against row 0 rather than hard-coding a count here.
	probe := air.EvaluateRow(rowAt(ldeColumns, 0), rowAt(ldeColumns, 1%n), false, false)
	rows = len(probe)

	out := make([][]field.M31, rows)
	for i := range out {
		out[i] = make([]field.M31, n)
	}
	for i := 0; i < n; i++ {
		cur := rowAt(ldeColumns, i)
		next := rowAt(ldeColumns, (i+1)%n)
		vals := air.EvaluateRow(cur, next, i == 0, i == n-1)
		for g, v := range vals {
			out[g][i] = v
		}
	}
	return out
}

func rowAt(cols [air.NumColumns][]field.M31, i int) air.Row {
	var r air.Row
	for c := 0; c < air.NumColumns; c++ {
		r[c] = cols[c][i]
	}
	return r
}

// CombineConstraints forms C(X) = sum_i gamma_i * constraint_i(X) /
// Z_H(X), evaluated pointwise on the LDE domain.
func CombineConstraints(groupEvals [][]field.M31, gamma []field.QM31, vanishing []field.M31) ([]field.QM31, error) {
	if len(groupEvals) != len(gamma) {
		return nil, errors.New("protocol: constraint-group count does not match gamma challenge count")
	}
	n := len(vanishing)
	vanishingInv, err := field.BatchInv(vanishing)
	if err != nil {
		return nil, errors.Wrap(err, "protocol: vanishing polynomial has a zero on the LDE domain")
	}
	out := make([]field.QM31, n)
	for i := 0; i < n; i++ {
		acc := field.QM31Zero
		for g := range groupEvals {
			term := field.QM31FromM31(groupEvals[g][i].Mul(vanishingInv[i]))
			acc = acc.Add(gamma[g].Mul(term))
		}
		out[i] = acc
	}
	return out, nil
}
