package circle

import "github.com/ZippelLabs/ZP1/internal/circlestark/field"

// Domain is the canonical circle-group coset of size 2^LogN used for a
// trace or low-degree-extension evaluation: the points h^(2i+1) for
// i = 0..N-1, where h has order 2N. This coset is closed both under
// conjugation (x,y)->(x,-y), which pairs points sharing an x-coordinate,
// and under negation (x,y)->(-x,-y) — the two symmetries the circle FFT's
// recursive butterfly layers rely on.
type Domain struct {
	LogN uint
	h    Point
}

// NewDomain builds the canonical domain of size 2^logN.
func NewDomain(logN uint) Domain {
	return Domain{LogN: logN, h: cosetShift(logN)}
}

// Size returns 2^LogN.
func (d Domain) Size() int { return 1 << d.LogN }

// At returns the i-th point of the domain in natural order, h^(2i+1).
func (d Domain) At(i int) Point {
	return d.h.Mul(d.h.Square().Pow(uint64(i)))
}

// Points materializes every point of the domain in natural order.
func (d Domain) Points() []Point {
	n := d.Size()
	pts := make([]Point, n)
	g2 := d.h.Square()
	cur := d.h
	for i := 0; i < n; i++ {
		pts[i] = cur
		cur = cur.Mul(g2)
	}
	return pts
}

// halfXCoords returns the x-coordinates of the first N/2 domain points.
// Because At(N-1-i) = At(i).Conj(), these N/2 values are exactly the
// distinct x-coordinates the domain visits, each shared by a conjugate
// pair — the values the circle FFT's layer-0 butterfly is indexed by.
func (d Domain) halfXCoords() []field.M31 {
	half := d.Size() / 2
	xs := make([]field.M31, half)
	g2 := d.h.Square()
	cur := d.h
	for i := 0; i < half; i++ {
		xs[i] = cur.X
		cur = cur.Mul(g2)
	}
	return xs
}

// halfYCoords returns the y-coordinates of the first N/2 domain points,
// the layer-0 twiddles (divisors) of the circle FFT.
func (d Domain) halfYCoords() []field.M31 {
	half := d.Size() / 2
	ys := make([]field.M31, half)
	g2 := d.h.Square()
	cur := d.h
	for i := 0; i < half; i++ {
		ys[i] = cur.Y
		cur = cur.Mul(g2)
	}
	return ys
}

// doubleMap is the projection sigma(x) = 2x^2-1 that a squared circle
// point's x-coordinate satisfies: sigma(p.X) = p.Square().X.
func doubleMap(x field.M31) field.M31 {
	return x.Square().Add(x.Square()).Sub(field.One)
}
