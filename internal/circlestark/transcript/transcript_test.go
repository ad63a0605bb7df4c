package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

func TestDeterministic(t *testing.T) {
	a := New([]byte("ctx"))
	a.Absorb("root", []byte{1, 2, 3})
	va, err := a.SqueezeQM31()
	require.NoError(t, err)

	b := New([]byte("ctx"))
	b.Absorb("root", []byte{1, 2, 3})
	vb, err := b.SqueezeQM31()
	require.NoError(t, err)

	require.True(t, va.Equal(vb))
}

func TestAbsorbOrderMatters(t *testing.T) {
	a := New([]byte("ctx"))
	a.Absorb("x", []byte{1})
	a.Absorb("y", []byte{2})
	va, err := a.SqueezeM31()
	require.NoError(t, err)

	b := New([]byte("ctx"))
	b.Absorb("y", []byte{2})
	b.Absorb("x", []byte{1})
	vb, err := b.SqueezeM31()
	require.NoError(t, err)

	require.False(t, va.Equal(vb))
}

func TestSqueezeM31InRange(t *testing.T) {
	tr := New([]byte("ctx"))
	for i := 0; i < 200; i++ {
		v, err := tr.SqueezeM31()
		require.NoError(t, err)
		require.Less(t, uint32(v), field.P)
	}
}

func TestSqueezeIndicesDistinct(t *testing.T) {
	tr := New([]byte("ctx"))
	idxs, err := tr.SqueezeIndices(10, 64)
	require.NoError(t, err)
	require.Len(t, idxs, 10)
	seen := map[uint64]bool{}
	for _, i := range idxs {
		require.Less(t, i, uint64(64))
		require.False(t, seen[i])
		seen[i] = true
	}
}

func TestSqueezeIndicesRejectsOversizedRequest(t *testing.T) {
	tr := New([]byte("ctx"))
	_, err := tr.SqueezeIndices(10, 4)
	require.Error(t, err)
}
