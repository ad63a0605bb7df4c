package protocol

import (
	"math/bits"

	"golang.org/x/sync/errgroup"

	"github.com/cockroachdb/errors"

	"github.com/ZippelLabs/ZP1/internal/circlestark/air"
	"github.com/ZippelLabs/ZP1/internal/circlestark/circle"
	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
	"github.com/ZippelLabs/ZP1/internal/circlestark/merkle"
	"github.com/ZippelLabs/ZP1/internal/circlestark/transcript"
)

// traceShiftX returns the x-coordinate difference between the trace
// domain's first two points; the z*g transition-point opening is derived
// by adding it to the out-of-domain point's x-coordinate, standing in
// for the "next row" relationship the AIR's transition constraints read
// across.
func traceShiftX(traceDomain circle.Domain) field.M31 {
	return traceDomain.At(1).X.Sub(traceDomain.At(0).X)
}

// Prove runs the full prover orchestration of §4.10: commit the trace,
// derive and commit the LogUp running sums, commit the composition
// polynomial, open everything at an out-of-domain point, fold the DEEP
// quotient through FRI, and assemble the query openings.
func Prove(trace *air.Trace, publicInputs []byte, cfg SecurityConfig) (*Proof, error) {
	if err := cfg.Validate(); err != nil {
		return nil, newProveError(KindInsufficientSecurity, err.Error())
	}
	if err := trace.Validate(); err != nil {
		return nil, newProveError(KindConstraintViolation, err.Error())
	}
	if err := checkConstraintsVanish(trace); err != nil {
		return nil, err
	}

	n := trace.Len()
	logN := uint(bits.Len(uint(n)) - 1)
	logM := logN + cfg.LogBlowup()
	traceDomain := circle.NewDomain(logN)
	ldeDomain := circle.NewDomain(logM)

	tr := transcript.New(publicInputs)

	ldeColumns, traceTree, err := commitTraceColumns(trace, traceDomain, ldeDomain)
	if err != nil {
		return nil, newProveError(KindBadSize, err.Error())
	}
	traceRoot := traceTree.Root()
	tr.Absorb("trace-root", traceRoot[:])

	alpha, err := tr.SqueezeQM31()
	if err != nil {
		return nil, newProveError(KindChallengeRejection, err.Error())
	}
	beta, err := tr.SqueezeQM31()
	if err != nil {
		return nil, newProveError(KindChallengeRejection, err.Error())
	}

	logUpColumns, logUpLDE, logUpTree, err := commitLogUp(trace, traceDomain, ldeDomain, alpha, beta)
	if err != nil {
		return nil, newProveError(KindMemoryPermutationFail, err.Error())
	}
	logUpRoot := logUpTree.Root()
	tr.Absorb("logup-root", logUpRoot[:])

	groupEvals := ConstraintEvaluationsOnLDE(toColumnArray(ldeColumns))
	gamma := make([]field.QM31, len(groupEvals))
	for i := range gamma {
		gamma[i], err = tr.SqueezeQM31()
		if err != nil {
			return nil, newProveError(KindChallengeRejection, err.Error())
		}
	}
	vanishing, err := vanishingOnLDE(traceDomain, ldeDomain)
	if err != nil {
		return nil, newProveError(KindOutOfDomain, err.Error())
	}
	compositionLDE, err := CombineConstraints(groupEvals, gamma, vanishing)
	if err != nil {
		return nil, newProveError(KindBadSize, err.Error())
	}
	compositionTree, err := commitQM31Layer(compositionLDE)
	if err != nil {
		return nil, newProveError(KindBadSize, err.Error())
	}
	compositionRoot := compositionTree.Root()
	tr.Absorb("composition-root", compositionRoot[:])

	shift := traceShiftX(traceDomain)
	ood, err := SampleOutOfDomainPoint(tr, traceDomain, shift)
	if err != nil {
		return nil, newProveError(KindChallengeRejection, err.Error())
	}

	traceXs := make([]field.M31, traceDomain.Size())
	for i := range traceXs {
		traceXs[i] = traceDomain.At(i).X
	}
	weights, err := barycentricWeights(traceXs)
	if err != nil {
		return nil, newProveError(KindOutOfDomain, err.Error())
	}

	columnsAtZ := make([]field.QM31, air.NumColumns)
	columnsAtZG := make([]field.QM31, air.NumColumns)
	traceEvalsOnTraceDomain := make([][]field.M31, air.NumColumns)
	for c := 0; c < air.NumColumns; c++ {
		traceEvalsOnTraceDomain[c] = trace.Column(air.Column(c))
		columnsAtZ[c], err = EvalBarycentric(traceXs, traceEvalsOnTraceDomain[c], weights, ood.Z)
		if err != nil {
			return nil, newProveError(KindOutOfDomain, err.Error())
		}
		columnsAtZG[c], err = EvalBarycentric(traceXs, traceEvalsOnTraceDomain[c], weights, ood.ZG)
		if err != nil {
			return nil, newProveError(KindOutOfDomain, err.Error())
		}
	}
	for _, v := range columnsAtZ {
		tr.Absorb("column-at-z", qm31ToBytes(v))
	}
	for _, v := range columnsAtZG {
		tr.Absorb("column-at-zg", qm31ToBytes(v))
	}

	ldeXs := make([]field.M31, ldeDomain.Size())
	for i := range ldeXs {
		ldeXs[i] = ldeDomain.At(i).X
	}
	ldeWeights, err := barycentricWeights(ldeXs)
	if err != nil {
		return nil, newProveError(KindOutOfDomain, err.Error())
	}
	compAtZ, err := evalQM31Barycentric(ldeXs, compositionLDE, ldeWeights, ood.Z)
	if err != nil {
		return nil, newProveError(KindOutOfDomain, err.Error())
	}
	tr.Absorb("composition-at-z", qm31ToBytes(compAtZ))

	alphaCol := make([]field.QM31, air.NumColumns)
	alphaColShift := make([]field.QM31, air.NumColumns)
	for i := range alphaCol {
		alphaCol[i], err = tr.SqueezeQM31()
		if err != nil {
			return nil, newProveError(KindChallengeRejection, err.Error())
		}
		alphaColShift[i], err = tr.SqueezeQM31()
		if err != nil {
			return nil, newProveError(KindChallengeRejection, err.Error())
		}
	}
	alphaC, err := tr.SqueezeQM31()
	if err != nil {
		return nil, newProveError(KindChallengeRejection, err.Error())
	}

	deep, err := ComputeDeepQuotient(ldeDomain, ldeColumns, columnsAtZ, columnsAtZG, compositionLDE, compAtZ, ood, alphaCol, alphaColShift, alphaC)
	if err != nil {
		return nil, newProveError(KindOutOfDomain, err.Error())
	}

	friLayers, friProof, err := FoldFRI(ldeDomain, deep, cfg, tr)
	if err != nil {
		return nil, newProveError(KindBadSize, err.Error())
	}

	queryIdxs, err := tr.SqueezeIndices(cfg.NumQueries(), uint64(ldeDomain.Size()))
	if err != nil {
		return nil, newProveError(KindChallengeRejection, err.Error())
	}

	queries := make([]QueryOpening, len(queryIdxs))
	for i, idx := range queryIdxs {
		q, err := buildQueryOpening(int(idx), ldeColumns, traceTree, logUpColumns, logUpLDE, logUpTree, compositionLDE, compositionTree, friLayers, friProof, ldeDomain.Size())
		if err != nil {
			return nil, newProveError(KindBadSize, err.Error())
		}
		queries[i] = q
	}

	proof := &Proof{
		Version:         proofVersion,
		TraceRoot:       traceRoot,
		LogUpRoot:       logUpRoot,
		CompositionRoot: compositionRoot,
		ColumnsAtZ:      columnsAtZ,
		ColumnsAtZG:     columnsAtZG,
		CompAtZ:         compAtZ,
		FRI:             friProof,
		Queries:         queries,
	}
	return proof, nil
}

// checkConstraintsVanish re-evaluates every AIR constraint group against
// the trace's own rows before committing to anything built from it.
// trace.Validate only checks booleans/one-hot selection; a forged row
// that stays boolean-valid (e.g. a nonzero x0 write) would otherwise
// slip past into a proof that a correct verifier would reject, leaving
// the caller to discover the forgery only after paying for a proof.
func checkConstraintsVanish(trace *air.Trace) error {
	n := trace.Len()
	for i, row := range trace.Rows {
		next := trace.Rows[(i+1)%n]
		vals := air.EvaluateRow(row, next, i == 0, i == n-1)
		for g, v := range vals {
			if !v.IsZero() {
				return newProveErrorAt(KindConstraintViolation, "air constraint failed to vanish on the trace domain", i, air.ConstraintGroupName(g))
			}
		}
	}
	return nil
}

func toColumnArray(ldeColumns [][]field.M31) [air.NumColumns][]field.M31 {
	var out [air.NumColumns][]field.M31
	for i := 0; i < air.NumColumns; i++ {
		out[i] = ldeColumns[i]
	}
	return out
}

// commitTraceColumns LDEs every column in parallel and commits the
// result row-major (one leaf per LDE-domain index, covering every
// column), the representation FRI and the query phase need.
func commitTraceColumns(trace *air.Trace, traceDomain, ldeDomain circle.Domain) ([][]field.M31, *merkle.Tree, error) {
	ldeColumns := make([][]field.M31, air.NumColumns)
	var g errgroup.Group
	for c := 0; c < air.NumColumns; c++ {
		c := c
		g.Go(func() error {
			values := trace.Column(air.Column(c))
			extended, err := circle.LDE(traceDomain.LogN, ldeDomain.LogN, values)
			if err != nil {
				return err
			}
			ldeColumns[c] = extended
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	tree, err := commitRows(ldeColumns, ldeDomain.Size())
	if err != nil {
		return nil, nil, err
	}
	return ldeColumns, tree, nil
}

// commitRows serializes a column-major matrix into row-major Merkle
// leaves: leaf i is the concatenation of every column's i-th value.
func commitRows(columns [][]field.M31, n int) (*merkle.Tree, error) {
	rows := make([][]byte, n)
	for i := 0; i < n; i++ {
		row := make([]byte, 0, 4*len(columns))
		for _, col := range columns {
			b := col[i].Bytes()
			row = append(row, b[:]...)
		}
		rows[i] = row
	}
	return merkle.Commit(rows)
}

// commitLogUp builds the memory and register running-sum columns (4 M31
// limbs each), LDEs and commits them as one 8-column matrix, the
// "LogUp commitment" step kept separate from the main trace commitment
// so the main trace's width stays fixed at NumColumns regardless of how
// the sorted consistency view is proved.
func commitLogUp(trace *air.Trace, traceDomain, ldeDomain circle.Domain, alpha, beta field.QM31) ([][]field.M31, [][]field.M31, *merkle.Tree, error) {
	memEvents := air.MemoryEventsFromTrace(trace)
	regEvents := air.RegisterEventsFromTrace(trace)

	memFp := make([]field.QM31, len(memEvents))
	for i, e := range memEvents {
		memFp[i] = air.Fingerprint(e.Addr, e.ValueLo, e.TSLo, e.TSHi, e.IsWrite, alpha, beta)
	}
	sortedMem := append([]air.MemoryEvent(nil), memEvents...)
	sortMemoryEvents(sortedMem)
	sortedMemFp := make([]field.QM31, len(sortedMem))
	for i, e := range sortedMem {
		sortedMemFp[i] = air.Fingerprint(e.Addr, e.ValueLo, e.TSLo, e.TSHi, e.IsWrite, alpha, beta)
	}
	memSum, err := air.RunningSum(memFp, sortedMemFp)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := air.CheckTelescoping(memSum); err != nil {
		return nil, nil, nil, err
	}

	regFp := make([]field.QM31, len(regEvents))
	for i, e := range regEvents {
		regFp[i] = air.RegisterFingerprint(e.RegIdx, e.ValLo, e.TSLo, e.TSHi, alpha, beta)
	}
	sortedReg := append([]air.RegisterEvent(nil), regEvents...)
	sortRegisterEvents(sortedReg)
	sortedRegFp := make([]field.QM31, len(sortedReg))
	for i, e := range sortedReg {
		sortedRegFp[i] = air.RegisterFingerprint(e.RegIdx, e.ValLo, e.TSLo, e.TSHi, alpha, beta)
	}
	regSum, err := air.RunningSum(regFp, sortedRegFp)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := air.CheckTelescoping(regSum); err != nil {
		return nil, nil, nil, err
	}

	columns := qm31ColumnsToLimbs(memSum, regSum)
	ldeColumns := make([][]field.M31, len(columns))
	for i, col := range columns {
		extended, err := circle.LDE(traceDomain.LogN, ldeDomain.LogN, col)
		if err != nil {
			return nil, nil, nil, err
		}
		ldeColumns[i] = extended
	}
	tree, err := commitRows(ldeColumns, ldeDomain.Size())
	if err != nil {
		return nil, nil, nil, err
	}
	return columns, ldeColumns, tree, nil
}

// qm31ColumnsToLimbs splits two QM31 running-sum columns into their 8
// M31 limbs (4 each), the representation committed via Merkle the same
// way the base-field trace columns are.
func qm31ColumnsToLimbs(mem, reg []field.QM31) [][]field.M31 {
	n := len(mem)
	out := make([][]field.M31, 8)
	for i := range out {
		out[i] = make([]field.M31, n)
	}
	for i := 0; i < n; i++ {
		out[0][i], out[1][i] = mem[i].C0.A, mem[i].C0.B
		out[2][i], out[3][i] = mem[i].C1.A, mem[i].C1.B
	}
	for i := 0; i < len(reg); i++ {
		out[4][i], out[5][i] = reg[i].C0.A, reg[i].C0.B
		out[6][i], out[7][i] = reg[i].C1.A, reg[i].C1.B
	}
	return out
}

func sortMemoryEvents(events []air.MemoryEvent) {
	key := func(e air.MemoryEvent) (uint64, uint64) {
		addr := uint64(uint32(e.Addr))
		ts := uint64(uint32(e.TSHi))<<32 | uint64(uint32(e.TSLo))
		return addr, ts
	}
	insertionSortMemory(events, key)
}

func insertionSortMemory(events []air.MemoryEvent, key func(air.MemoryEvent) (uint64, uint64)) {
	for i := 1; i < len(events); i++ {
		for j := i; j > 0; j-- {
			a1, a2 := key(events[j-1])
			b1, b2 := key(events[j])
			if a1 < b1 || (a1 == b1 && a2 <= b2) {
				break
			}
			events[j-1], events[j] = events[j], events[j-1]
		}
	}
}

func sortRegisterEvents(events []air.RegisterEvent) {
	for i := 1; i < len(events); i++ {
		for j := i; j > 0; j-- {
			ra := uint64(uint32(events[j-1].RegIdx))
			rb := uint64(uint32(events[j].RegIdx))
			ta := uint64(uint32(events[j-1].TSHi))<<32 | uint64(uint32(events[j-1].TSLo))
			tb := uint64(uint32(events[j].TSHi))<<32 | uint64(uint32(events[j].TSLo))
			if ra < rb || (ra == rb && ta <= tb) {
				break
			}
			events[j-1], events[j] = events[j], events[j-1]
		}
	}
}

func evalQM31Barycentric(xs []field.M31, ys []field.QM31, weights []field.M31, z field.QM31) (field.QM31, error) {
	n := len(xs)
	if n == 0 || len(ys) != n || len(weights) != n {
		return field.QM31Zero, errors.New("protocol: barycentric evaluation requires matching non-empty slices")
	}
	num := field.QM31Zero
	den := field.QM31Zero
	for i := 0; i < n; i++ {
		diff := z.Sub(field.QM31FromM31(xs[i]))
		if diff.IsZero() {
			return ys[i], nil
		}
		diffInv, err := diff.Inv()
		if err != nil {
			return field.QM31Zero, err
		}
		term := diffInv.MulM31(weights[i])
		num = num.Add(term.Mul(ys[i]))
		den = den.Add(term)
	}
	denInv, err := den.Inv()
	if err != nil {
		return field.QM31Zero, err
	}
	return num.Mul(denInv), nil
}
