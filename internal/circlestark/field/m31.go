// Package field implements arithmetic over the Mersenne-31 base field
// and its quadratic (CM31) and quartic (QM31) extensions, used by the
// Circle-STARK proving core for traces, challenges and commitments.
package field

import "fmt"

// P is the Mersenne prime 2^31 - 1.
const P uint32 = (1 << 31) - 1

// M31 is an element of the base field, always held in canonical
// representation [0, P).
type M31 uint32

// Zero and One are the additive and multiplicative identities.
var (
	Zero = M31(0)
	One  = M31(1)
)

// NewM31 reduces a uint64 into canonical M31 range.
func NewM31(v uint64) M31 {
	return M31(v % uint64(P))
}

// reduceSum folds a value that may be up to one multiple of P over the
// canonical range back into [0, P) using the Mersenne identity
// 2^31 ≡ 1 (mod P).
func reduceSum(v uint64) M31 {
	v = (v & uint64(P)) + (v >> 31)
	if v >= uint64(P) {
		v -= uint64(P)
	}
	return M31(v)
}

// FromInt64 builds an M31 from a signed value, wrapping negative
// values into canonical range.
func FromInt64(v int64) M31 {
	r := v % int64(P)
	if r < 0 {
		r += int64(P)
	}
	return M31(r)
}

// Add returns a+b mod P using branchless Mersenne reduction.
func (a M31) Add(b M31) M31 {
	c := uint32(a) + uint32(b)
	if c >= P {
		c -= P
	}
	return M31(c)
}

// Sub returns a-b mod P.
func (a M31) Sub(b M31) M31 {
	if a >= b {
		return M31(uint32(a) - uint32(b))
	}
	return M31(P - uint32(b) + uint32(a))
}

// Neg returns -a mod P.
func (a M31) Neg() M31 {
	if a == 0 {
		return 0
	}
	return M31(P) - a
}

// Mul returns a*b mod P via a 64-bit intermediate and Mersenne reduction.
func (a M31) Mul(b M31) M31 {
	return reduceSum(uint64(a) * uint64(b))
}

// Square returns a*a mod P.
func (a M31) Square() M31 {
	return a.Mul(a)
}

// Pow returns a^e mod P by square-and-multiply.
func (a M31) Pow(e uint64) M31 {
	result := One
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse of a via Fermat's little
// theorem: a^(p-2) = a^-1. Fails on zero.
func (a M31) Inv() (M31, error) {
	if a == 0 {
		return 0, ErrNotInvertible
	}
	return a.Pow(uint64(P - 2)), nil
}

// IsZero reports whether a is the additive identity.
func (a M31) IsZero() bool { return a == 0 }

// Equal reports value equality (both operands are always canonical).
func (a M31) Equal(b M31) bool { return a == b }

// Bytes returns the little-endian 4-byte encoding of a.
func (a M31) Bytes() [4]byte {
	v := uint32(a)
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// FromBytes decodes a little-endian 4-byte encoding, reducing into
// canonical range (the wire value is trusted to already be < P, but
// reduction is applied defensively since this crosses a proof
// boundary per the data model's ownership rules).
func FromBytes(b [4]byte) M31 {
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	if v >= P {
		v -= P
	}
	return M31(v)
}

func (a M31) String() string {
	return fmt.Sprintf("%d", uint32(a))
}

// BatchInv computes the multiplicative inverse of every element of vs
// using Montgomery's trick: a single field inversion plus O(n)
// multiplications. Fails if any element is zero.
func BatchInv(vs []M31) ([]M31, error) {
	n := len(vs)
	if n == 0 {
		return nil, nil
	}
	prefix := make([]M31, n)
	acc := One
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
	out := make([]M31, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = accInv.Mul(prefix[i])
		accInv = accInv.Mul(vs[i])
	}
	return out, nil
}
