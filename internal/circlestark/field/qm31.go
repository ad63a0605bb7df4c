package field

import "fmt"

// qm31NonResidue is 2+i, verified a quadratic non-residue of CM31 so
// that u^2 = qm31NonResidue gives a genuine degree-2 extension.
var qm31NonResidue = CM31{A: M31(2), B: M31(1)}

// QM31 is the quartic extension CM31(u), u^2 = 2+i, of size ~2^124.
// This is the field used for every Fiat-Shamir challenge and for the
// composition/DEEP/FRI machinery, since M31 itself is too small
// (2^31) to give adequate Schwartz-Zippel soundness.
type QM31 struct {
	C0, C1 CM31 // C0 + C1*u
}

var (
	QM31Zero = QM31{}
	QM31One  = QM31{C0: CM31One}
)

// NewQM31 builds c0 + c1*u.
func NewQM31(c0, c1 CM31) QM31 { return QM31{C0: c0, C1: c1} }

// QM31FromM31 embeds a base-field element into QM31.
func QM31FromM31(a M31) QM31 { return QM31{C0: FromM31(a)} }

// QM31FromCM31 embeds a CM31 element into QM31.
func QM31FromCM31(z CM31) QM31 { return QM31{C0: z} }

func (z QM31) Add(w QM31) QM31 { return QM31{C0: z.C0.Add(w.C0), C1: z.C1.Add(w.C1)} }
func (z QM31) Sub(w QM31) QM31 { return QM31{C0: z.C0.Sub(w.C0), C1: z.C1.Sub(w.C1)} }
func (z QM31) Neg() QM31       { return QM31{C0: z.C0.Neg(), C1: z.C1.Neg()} }

// Mul computes (c0+c1 u)(d0+d1 u) = (c0 d0 + c1 d1 (2+i)) + (c0 d1 + c1 d0) u.
func (z QM31) Mul(w QM31) QM31 {
	c0d0 := z.C0.Mul(w.C0)
	c1d1 := z.C1.Mul(w.C1)
	c0d1 := z.C0.Mul(w.C1)
	c1d0 := z.C1.Mul(w.C0)
	return QM31{
		C0: c0d0.Add(c1d1.Mul(qm31NonResidue)),
		C1: c0d1.Add(c1d0),
	}
}

// MulM31 multiplies a QM31 challenge by an M31 trace value in place,
// without allocating or round-tripping through a full QM31 wrapper of
// the scalar — the in-place base-to-extension scalar multiply the
// composition step needs when combining M31 trace columns with QM31
// coefficients.
func (z QM31) MulM31(s M31) QM31 {
	return QM31{C0: z.C0.MulM31(s), C1: z.C1.MulM31(s)}
}

// MulCM31 multiplies by a CM31 scalar.
func (z QM31) MulCM31(s CM31) QM31 {
	return QM31{C0: z.C0.Mul(s), C1: z.C1.Mul(s)}
}

// Conj returns the conjugate over the u-extension: c0 - c1*u.
func (z QM31) Conj() QM31 { return QM31{C0: z.C0, C1: z.C1.Neg()} }

// Norm returns the CM31-valued norm c0^2 - (2+i) c1^2.
func (z QM31) Norm() CM31 {
	return z.C0.Mul(z.C0).Sub(z.C1.Mul(z.C1).Mul(qm31NonResidue))
}

// Inv returns the multiplicative inverse.
func (z QM31) Inv() (QM31, error) {
	n := z.Norm()
	nInv, err := n.Inv()
	if err != nil {
		return QM31{}, err
	}
	return z.Conj().MulCM31(nInv), nil
}

// Pow computes z^e by square-and-multiply.
func (z QM31) Pow(e uint64) QM31 {
	result := QM31One
	base := z
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

func (z QM31) IsZero() bool      { return z.C0.IsZero() && z.C1.IsZero() }
func (z QM31) Equal(w QM31) bool { return z.C0.Equal(w.C0) && z.C1.Equal(w.C1) }

func (z QM31) String() string {
	return fmt.Sprintf("(%s + %s*u)", z.C0, z.C1)
}

// Bytes returns the 16-byte little-endian encoding (4 limbs of M31).
func (z QM31) Bytes() [16]byte {
	var out [16]byte
	a := z.C0.A.Bytes()
	b := z.C0.B.Bytes()
	c := z.C1.A.Bytes()
	d := z.C1.B.Bytes()
	copy(out[0:4], a[:])
	copy(out[4:8], b[:])
	copy(out[8:12], c[:])
	copy(out[12:16], d[:])
	return out
}

// QM31FromBytes decodes a 16-byte little-endian encoding.
func QM31FromBytes(b [16]byte) QM31 {
	var a, bb, c, d [4]byte
	copy(a[:], b[0:4])
	copy(bb[:], b[4:8])
	copy(c[:], b[8:12])
	copy(d[:], b[12:16])
	return QM31{
		C0: CM31{A: FromBytes(a), B: FromBytes(bb)},
		C1: CM31{A: FromBytes(c), B: FromBytes(d)},
	}
}
