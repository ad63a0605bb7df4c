package protocol

import (
	"github.com/ZippelLabs/ZP1/internal/circlestark/air"
	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
	"github.com/ZippelLabs/ZP1/internal/circlestark/merkle"
)

// buildQueryOpening gathers every value and Merkle path a verifier needs
// to check one query index: the trace row and its successor (so the
// verifier can re-run the AIR's transition constraints), the LogUp
// limbs, the composition value, and the index's path through each FRI
// layer.
func buildQueryOpening(
	idx int,
	ldeColumns [][]field.M31,
	traceTree *merkle.Tree,
	logUpColumns [][]field.M31,
	logUpLDE [][]field.M31,
	logUpTree *merkle.Tree,
	compositionLDE []field.QM31,
	compositionTree *merkle.Tree,
	friLayers []FRILayer,
	friProof FRIProof,
	domainSize int,
) (QueryOpening, error) {
	q := QueryOpening{Index: idx}

	q.TraceValues = make([]field.M31, air.NumColumns)
	for c := 0; c < air.NumColumns; c++ {
		q.TraceValues[c] = ldeColumns[c][idx]
	}
	tracePath, err := traceTree.Open(idx)
	if err != nil {
		return q, err
	}
	q.TracePath = tracePath

	nextIdx := (idx + 1) % domainSize
	q.NextTraceValues = make([]field.M31, air.NumColumns)
	for c := 0; c < air.NumColumns; c++ {
		q.NextTraceValues[c] = ldeColumns[c][nextIdx]
	}
	nextTracePath, err := traceTree.Open(nextIdx)
	if err != nil {
		return q, err
	}
	q.NextTracePath = nextTracePath

	q.LogUpValues = make([]field.M31, len(logUpLDE))
	for c := range logUpLDE {
		q.LogUpValues[c] = logUpLDE[c][idx]
	}
	logUpPath, err := logUpTree.Open(idx)
	if err != nil {
		return q, err
	}
	q.LogUpPath = logUpPath

	q.CompositionValue = compositionLDE[idx]
	compPath, err := compositionTree.Open(idx)
	if err != nil {
		return q, err
	}
	q.CompositionPath = compPath

	cur := idx
	size := domainSize
	for _, layer := range friLayers {
		half := size / 2
		pos, sib := cur, size-1-cur
		if pos >= half {
			pos, sib = sib, pos
		}
		pa, err := layer.Tree.Open(pos)
		if err != nil {
			return q, err
		}
		pb, err := layer.Tree.Open(sib)
		if err != nil {
			return q, err
		}
		q.FRIValues = append(q.FRIValues, [2]field.QM31{layer.Values[pos], layer.Values[sib]})
		q.FRIPaths = append(q.FRIPaths, [2]merkle.Path{pa, pb})

		cur = pos
		size = half
	}
	return q, nil
}
