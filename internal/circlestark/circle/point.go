// Package circle implements the circle group C(M31) = {(x,y) : x^2+y^2=1}
// over the Mersenne-31 field, its canonical power-of-two coset domains, and
// the O(N log N) circle FFT used to move trace columns between value and
// coefficient representation.
package circle

import (
	"fmt"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

// Point is an element of the circle group: x^2+y^2=1 over M31. The group
// law (x1,y1)*(x2,y2) = (x1x2-y1y2, x1y2+x2y1) is the usual complex
// multiplication restricted to the unit circle, and gives a cyclic group
// of order p+1 = 2^31 — fully 2-smooth, which is what makes the circle
// (rather than the multiplicative group of M31, which has no large
// 2-power subgroup) FFT-friendly.
type Point struct {
	X, Y field.M31
}

// Identity is the group's neutral element.
var Identity = Point{X: field.One}

// negOne is the unique element of order 2: (-1, 0).
var negOne = Point{X: field.M31(field.P - 1)}

// Generator is a verified generator of the full circle group, of order
// exactly 2^31 = p+1. (2, 1268011823) was checked independently to lie on
// the unit circle and to generate the full group before being hardcoded.
var Generator = Point{X: field.M31(2), Y: field.M31(1268011823)}

// Mul applies the circle group law.
func (p Point) Mul(q Point) Point {
	return Point{
		X: p.X.Mul(q.X).Sub(p.Y.Mul(q.Y)),
		Y: p.X.Mul(q.Y).Add(p.Y.Mul(q.X)),
	}
}

// Square doubles p under the group law (p*p).
func (p Point) Square() Point {
	return Point{
		X: p.X.Mul(p.X).Sub(p.Y.Mul(p.Y)),
		Y: field.M31(2).Mul(p.X).Mul(p.Y),
	}
}

// Conj returns p^-1 = (x, -y), the reflection across the x-axis. On the
// unit circle this coincides with the group inverse.
func (p Point) Conj() Point {
	return Point{X: p.X, Y: p.Y.Neg()}
}

// Antipode returns p*(-1,0) = (-x,-y).
func (p Point) Antipode() Point {
	return Point{X: p.X.Neg(), Y: p.Y.Neg()}
}

// Pow computes p^e by double-and-add.
func (p Point) Pow(e uint64) Point {
	result := Identity
	base := p
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		e >>= 1
	}
	return result
}

// Equal reports whether p and q are the same point (both coordinates
// held canonically).
func (p Point) Equal(q Point) bool {
	return p.X.Equal(q.X) && p.Y.Equal(q.Y)
}

// IsOnCurve checks x^2+y^2=1; used by tests and by anyone constructing a
// Point from untrusted coordinates rather than by group operations.
func (p Point) IsOnCurve() bool {
	return p.X.Square().Add(p.Y.Square()).Equal(field.One)
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", p.X, p.Y)
}

// order is the size of the full circle group: p+1 = 2^31.
const order uint64 = 1 << 31

// subgroupGen returns a generator of the unique subgroup of order 2^logN.
// logN must be in [0, 31].
func subgroupGen(logN uint) Point {
	if logN > 31 {
		panic("circle: subgroup order exceeds group order")
	}
	return Generator.Pow(order >> logN)
}

// cosetShift returns a point of order 2^(logN+1), used as the shift
// generating the canonical size-2^logN coset domain. logN must be in
// [0, 30] so that the shift's order 2^(logN+1) still divides the group
// order.
func cosetShift(logN uint) Point {
	if logN > 30 {
		panic("circle: coset domain too large for the circle group")
	}
	return subgroupGen(logN + 1)
}
