package field

import "fmt"

// CM31 is the quadratic extension M31(i), i^2 = -1.
type CM31 struct {
	A, B M31 // A + B*i
}

var (
	CM31Zero = CM31{}
	CM31One  = CM31{A: One}
)

// NewCM31 builds a + b*i.
func NewCM31(a, b M31) CM31 { return CM31{A: a, B: b} }

// FromM31 embeds a base-field element as a CM31 with zero imaginary part.
func FromM31(a M31) CM31 { return CM31{A: a} }

func (z CM31) Add(w CM31) CM31 { return CM31{A: z.A.Add(w.A), B: z.B.Add(w.B)} }
func (z CM31) Sub(w CM31) CM31 { return CM31{A: z.A.Sub(w.A), B: z.B.Sub(w.B)} }
func (z CM31) Neg() CM31       { return CM31{A: z.A.Neg(), B: z.B.Neg()} }

// Mul computes (a+bi)(c+di) = (ac-bd) + (ad+bc)i.
func (z CM31) Mul(w CM31) CM31 {
	ac := z.A.Mul(w.A)
	bd := z.B.Mul(w.B)
	ad := z.A.Mul(w.B)
	bc := z.B.Mul(w.A)
	return CM31{A: ac.Sub(bd), B: ad.Add(bc)}
}

// MulM31 multiplies by a base-field scalar in place of a full
// extension multiplication, avoiding allocation of a wrapped CM31.
func (z CM31) MulM31(s M31) CM31 {
	return CM31{A: z.A.Mul(s), B: z.B.Mul(s)}
}

// Conj returns the Galois conjugate a - bi.
func (z CM31) Conj() CM31 { return CM31{A: z.A, B: z.B.Neg()} }

// Norm returns a^2+b^2 as an M31 element (the CM31 norm down to M31).
func (z CM31) Norm() M31 {
	return z.A.Square().Add(z.B.Square())
}

// Inv returns the multiplicative inverse: conj(z) / norm(z).
func (z CM31) Inv() (CM31, error) {
	n := z.Norm()
	nInv, err := n.Inv()
	if err != nil {
		return CM31{}, err
	}
	return z.Conj().MulM31(nInv), nil
}

func (z CM31) IsZero() bool { return z.A.IsZero() && z.B.IsZero() }
func (z CM31) Equal(w CM31) bool { return z.A == w.A && z.B == w.B }

func (z CM31) String() string {
	return fmt.Sprintf("(%s+%si)", z.A, z.B)
}
