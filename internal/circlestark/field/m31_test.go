package field

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func genM31() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		a := M31(genParams.NextUint64() % uint64(P))
		return gopter.NewGenResult(a, gopter.NoShrinker)
	}
}

func genNonZeroM31() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		a := M31(genParams.NextUint64()%uint64(P-1)) + 1
		return gopter.NewGenResult(a, gopter.NoShrinker)
	}
}

func genM31Slice() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		n := int(genParams.NextUint64() % 32)
		vs := make([]M31, n)
		for i := range vs {
			vs[i] = M31(genParams.NextUint64()%uint64(P-1)) + 1
		}
		return gopter.NewGenResult(vs, gopter.NoShrinker)
	}
}

func TestM31Inverse(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a * inv(a) == 1 for all nonzero a", prop.ForAll(
		func(a M31) bool {
			inv, err := a.Inv()
			if err != nil {
				return false
			}
			return a.Mul(inv).Equal(One)
		},
		genNonZeroM31(),
	))

	properties.Property("(p-1)*a == -a", prop.ForAll(
		func(a M31) bool {
			pMinus1 := M31(P - 1)
			return pMinus1.Mul(a).Equal(a.Neg())
		},
		genM31(),
	))

	properties.Property("a + (-a) == 0", prop.ForAll(
		func(a M31) bool {
			return a.Add(a.Neg()).IsZero()
		},
		genM31(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestM31BatchInv(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("batch_inv(v)[i] == inv(v[i])", prop.ForAll(
		func(vs []M31) bool {
			if len(vs) == 0 {
				return true
			}
			got, err := BatchInv(vs)
			if err != nil {
				return false
			}
			for i, v := range vs {
				want, err := v.Inv()
				if err != nil || !got[i].Equal(want) {
					return false
				}
			}
			return true
		},
		genM31Slice(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestM31InvZeroFails(t *testing.T) {
	_, err := Zero.Inv()
	require.ErrorIs(t, err, ErrNotInvertible)

	_, err = BatchInv([]M31{One, Zero, M31(5)})
	require.ErrorIs(t, err, ErrNotInvertible)
}

func TestM31ByteRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("FromBytes(a.Bytes()) == a", prop.ForAll(
		func(a M31) bool {
			return FromBytes(a.Bytes()).Equal(a)
		},
		genM31(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestM31KnownValues(t *testing.T) {
	require.Equal(t, M31(0), M31(P).Add(One).Sub(One).Sub(One).Add(One)) // sanity on wraparound helpers
	require.True(t, M31(P-1).Add(One).IsZero())
	require.Equal(t, FromInt64(-1), M31(P-1))
}
