package circle

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

func genValues(logN uint) gopter.Gen {
	n := 1 << logN
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		vs := make([]field.M31, n)
		for i := range vs {
			vs[i] = field.M31(genParams.NextUint64() % uint64(field.P))
		}
		return gopter.NewGenResult(vs, gopter.NoShrinker)
	}
}

func TestGeneratorOrder(t *testing.T) {
	require.True(t, Generator.IsOnCurve())
	require.True(t, Generator.Pow(order).Equal(Identity))
	require.False(t, Generator.Pow(order/2).Equal(Identity))
}

func TestDomainPointsOnCurve(t *testing.T) {
	for logN := uint(1); logN <= 6; logN++ {
		d := NewDomain(logN)
		for _, p := range d.Points() {
			require.True(t, p.IsOnCurve())
		}
	}
}

func TestFFTRoundTrip(t *testing.T) {
	for logN := uint(1); logN <= 8; logN++ {
		logN := logN
		t.Run("", func(t *testing.T) {
			parameters := gopter.DefaultTestParameters()
			parameters.MinSuccessfulTests = 20
			properties := gopter.NewProperties(parameters)

			d := NewDomain(logN)
			properties.Property("Evaluate(Interpolate(v)) == v", prop.ForAll(
				func(values []field.M31) bool {
					coeffs, err := Interpolate(d, values)
					if err != nil {
						return false
					}
					back, err := Evaluate(d, coeffs)
					if err != nil {
						return false
					}
					for i := range values {
						if !values[i].Equal(back[i]) {
							return false
						}
					}
					return true
				},
				genValues(logN),
			))

			properties.TestingRun(t, gopter.ConsoleReporter(false))
		})
	}
}

func TestLDEPreservesLowDegreeValues(t *testing.T) {
	// A constant function's LDE must remain that same constant everywhere.
	srcLogN, dstLogN := uint(3), uint(5)
	n := 1 << srcLogN
	values := make([]field.M31, n)
	for i := range values {
		values[i] = field.M31(7)
	}
	out, err := LDE(srcLogN, dstLogN, values)
	require.NoError(t, err)
	require.Len(t, out, 1<<dstLogN)
	for _, v := range out {
		require.True(t, v.Equal(field.M31(7)))
	}
}

func TestBadSizeRejected(t *testing.T) {
	d := NewDomain(3)
	_, err := Interpolate(d, make([]field.M31, 3))
	require.ErrorIs(t, err, field.ErrBadSize)
}
