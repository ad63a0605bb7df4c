package circle

import (
	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

// twiddleTable precomputes, for each of the logN butterfly layers of a
// circle FFT over a domain of size 2^logN, the divisor used by that
// layer's reversal-pairing butterfly.
//
// Layer 0 pairs values[i] with values[n-1-i] (i < n/2), which share an
// x-coordinate and differ only in the sign of y — the even/odd-in-y
// split — so its twiddle is the domain's half y-coordinates.
//
// Every later layer operates on the x-coordinates alone. Because the
// domain's half x-coordinates satisfy halfX[half-1-i] = -halfX[i], the
// same reversal pairing now splits even/odd in x, and the resulting
// x-value sequence for the next layer is sigma(x) = 2x^2-1 applied to
// the first half of the current one — the doubling map that descends
// one level of the circle group at each layer.
func twiddleTable(d Domain) [][]field.M31 {
	logN := d.LogN
	table := make([][]field.M31, logN)
	table[0] = d.halfYCoords()
	cur := d.halfXCoords()
	for l := uint(1); l < logN; l++ {
		half := len(cur) / 2
		table[l] = cur[:half]
		next := make([]field.M31, half)
		for i, x := range cur[:half] {
			next[i] = doubleMap(x)
		}
		cur = next
	}
	return table
}

var two = field.M31(2)

// foldLayer runs one reversal-pairing butterfly, splitting arr (even
// length) into its even and odd halves using tw and invTw as divisor
// and its precomputed inverse.
func foldLayer(arr []field.M31, tw, invTw []field.M31) (even, odd []field.M31) {
	half := len(arr) / 2
	even = make([]field.M31, half)
	odd = make([]field.M31, half)
	inv2, _ := two.Inv()
	for i := 0; i < half; i++ {
		a, b := arr[i], arr[len(arr)-1-i]
		even[i] = a.Add(b).Mul(inv2)
		odd[i] = a.Sub(b).Mul(inv2).Mul(invTw[i])
	}
	return even, odd
}

// unfoldLayer is the inverse of foldLayer: given the even and odd halves
// and the same twiddle (not its inverse), reconstructs the full array.
func unfoldLayer(even, odd, tw []field.M31) []field.M31 {
	half := len(even)
	out := make([]field.M31, 2*half)
	for i := 0; i < half; i++ {
		ot := odd[i].Mul(tw[i])
		out[i] = even[i].Add(ot)
		out[2*half-1-i] = even[i].Sub(ot)
	}
	return out
}

// Interpolate converts domain-point evaluations into circle-FFT
// coefficients (coefficients in the recursive even/odd butterfly basis,
// not the monomial basis). len(values) must equal the domain size.
func Interpolate(d Domain, values []field.M31) ([]field.M31, error) {
	n := d.Size()
	if len(values) != n {
		return nil, field.ErrBadSize
	}
	if n == 1 {
		out := make([]field.M31, 1)
		copy(out, values)
		return out, nil
	}
	table := twiddleTable(d)
	invTable, err := invertTable(table)
	if err != nil {
		return nil, err
	}
	return interpolateRec(values, table, invTable, 0)
}

func interpolateRec(arr []field.M31, table, invTable [][]field.M31, layer int) ([]field.M31, error) {
	if len(arr) == 1 {
		out := make([]field.M31, 1)
		copy(out, arr)
		return out, nil
	}
	even, odd := foldLayer(arr, table[layer], invTable[layer])
	eCoef, err := interpolateRec(even, table, invTable, layer+1)
	if err != nil {
		return nil, err
	}
	oCoef, err := interpolateRec(odd, table, invTable, layer+1)
	if err != nil {
		return nil, err
	}
	return append(eCoef, oCoef...), nil
}

// Evaluate converts circle-FFT coefficients back into domain-point
// evaluations; the exact inverse of Interpolate over the same domain.
func Evaluate(d Domain, coeffs []field.M31) ([]field.M31, error) {
	n := d.Size()
	if len(coeffs) != n {
		return nil, field.ErrBadSize
	}
	if n == 1 {
		out := make([]field.M31, 1)
		copy(out, coeffs)
		return out, nil
	}
	table := twiddleTable(d)
	return evaluateRec(coeffs, table, 0)
}

func evaluateRec(coeffs []field.M31, table [][]field.M31, layer int) ([]field.M31, error) {
	if len(coeffs) == 1 {
		out := make([]field.M31, 1)
		copy(out, coeffs)
		return out, nil
	}
	half := len(coeffs) / 2
	eCoef, oCoef := coeffs[:half], coeffs[half:]
	even, err := evaluateRec(eCoef, table, layer+1)
	if err != nil {
		return nil, err
	}
	odd, err := evaluateRec(oCoef, table, layer+1)
	if err != nil {
		return nil, err
	}
	return unfoldLayer(even, odd, table[layer]), nil
}

func invertTable(table [][]field.M31) ([][]field.M31, error) {
	inv := make([][]field.M31, len(table))
	for i, row := range table {
		r, err := field.BatchInv(row)
		if err != nil {
			return nil, err
		}
		inv[i] = r
	}
	return inv, nil
}

// LDE re-expresses values given on the size-2^srcLogN domain as
// evaluations over the larger size-2^dstLogN domain, by interpolating to
// coefficients, placing coefficient j at slot j<<(dstLogN-srcLogN) so it
// keeps the same basis function on the bigger domain (the extra slots,
// which belong to the extra doubling layers, stay zero), and evaluating
// there — the low-degree extension every trace column goes through
// before Merkle commitment.
func LDE(srcLogN, dstLogN uint, values []field.M31) ([]field.M31, error) {
	if dstLogN < srcLogN {
		return nil, field.ErrBadSize
	}
	src := NewDomain(srcLogN)
	coeffs, err := Interpolate(src, values)
	if err != nil {
		return nil, err
	}
	if dstLogN == srcLogN {
		dst := NewDomain(dstLogN)
		return Evaluate(dst, coeffs)
	}
	padded := make([]field.M31, 1<<dstLogN)
	shift := dstLogN - srcLogN
	for j, c := range coeffs {
		padded[j<<shift] = c
	}
	dst := NewDomain(dstLogN)
	return Evaluate(dst, padded)
}
