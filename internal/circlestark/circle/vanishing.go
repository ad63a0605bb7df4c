package circle

import "github.com/ZippelLabs/ZP1/internal/circlestark/field"

// QPoint is a circle-group element with coordinates in the quartic
// extension QM31, used to evaluate the vanishing polynomial and DEEP
// quotient at an out-of-domain Fiat-Shamir challenge point rather than
// at a concrete M31 domain point.
type QPoint struct {
	X, Y field.QM31
}

// Embed lifts an M31 circle point into the extension.
func Embed(p Point) QPoint {
	return QPoint{X: field.QM31FromM31(p.X), Y: field.QM31FromM31(p.Y)}
}

func (p QPoint) Mul(q QPoint) QPoint {
	return QPoint{
		X: p.X.Mul(q.X).Sub(p.Y.Mul(q.Y)),
		Y: p.X.Mul(q.Y).Add(p.Y.Mul(q.X)),
	}
}

func (p QPoint) Conj() QPoint {
	return QPoint{X: p.X, Y: p.Y.Neg()}
}

// doubleMapQ is sigma(x) = 2x^2-1 over QM31.
func doubleMapQ(x field.QM31) field.QM31 {
	return x.Mul(x).MulM31(field.M31(2)).Sub(field.QM31One)
}

// Vanishing evaluates, at an extension-field circle point z, the
// polynomial that is zero exactly on d's domain points: z's
// x-coordinate folded through the doubling map one fewer time than the
// domain has layers. The domain's points map onto 2^(LogN-1) distinct
// x-coordinates (conjugate pairs share one), all of which that fold
// sends to zero.
func (d Domain) Vanishing(z QPoint) field.QM31 {
	x := z.X
	for i := uint(1); i < d.LogN; i++ {
		x = doubleMapQ(x)
	}
	return x
}
