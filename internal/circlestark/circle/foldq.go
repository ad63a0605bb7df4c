package circle

import "github.com/ZippelLabs/ZP1/internal/circlestark/field"

// TwiddleTable exposes twiddleTable to other packages; FRI folds a QM31-
// valued function over the same layer structure the base-field circle
// FFT uses, so it needs the same divisors.
func TwiddleTable(d Domain) [][]field.M31 {
	return twiddleTable(d)
}

// FoldLayerQ is the QM31-valued analogue of foldLayer: splits arr into
// its even and odd halves under the reversal-pairing butterfly at this
// layer, dividing the odd half by the (base-field) twiddle.
func FoldLayerQ(arr []field.QM31, tw, invTw []field.M31) (even, odd []field.QM31) {
	half := len(arr) / 2
	even = make([]field.QM31, half)
	odd = make([]field.QM31, half)
	inv2, _ := two.Inv()
	for i := 0; i < half; i++ {
		a, b := arr[i], arr[len(arr)-1-i]
		even[i] = a.Add(b).MulM31(inv2)
		odd[i] = a.Sub(b).MulM31(inv2).MulM31(invTw[i])
	}
	return even, odd
}
