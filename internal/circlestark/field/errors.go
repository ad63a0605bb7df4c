package field

import "errors"

// ErrNotInvertible is returned by Inv and BatchInv when asked to
// invert the additive identity.
var ErrNotInvertible = errors.New("field: element is not invertible")

// ErrBadSize is returned by domain and FFT constructors given a
// dimension that is not a power of two, or a length mismatch.
var ErrBadSize = errors.New("field: size must be a power of two")
