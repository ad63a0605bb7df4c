package field

// BatchInvQM31 inverts every element of vs using Montgomery's trick,
// generalized from BatchInv to the QM31 challenge field so the DEEP
// quotient and FRI fold can batch-invert (X - z) denominators without
// paying one inversion per column.
func BatchInvQM31(vs []QM31) ([]QM31, error) {
	n := len(vs)
	if n == 0 {
		return nil, nil
	}
	prefix := make([]QM31, n)
	acc := QM31One
	for i, v := range vs {
		if v.IsZero() {
			return nil, ErrNotInvertible
		}
		prefix[i] = acc
		acc = acc.Mul(v)
	}
	accInv, err := acc.Inv()
	if err != nil {
		return nil, err
	}
	out := make([]QM31, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(vs[i])
	}
	return out, nil
}
