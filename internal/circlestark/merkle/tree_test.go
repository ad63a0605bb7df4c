package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rowsOf(n int) [][]byte {
	rows := make([][]byte, n)
	for i := range rows {
		rows[i] = []byte{byte(i), byte(i >> 8)}
	}
	return rows
}

func TestCommitOpenVerifyRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 16, 31} {
		rows := rowsOf(n)
		tree, err := Commit(rows)
		require.NoError(t, err)
		for i, row := range rows {
			path, err := tree.Open(i)
			require.NoError(t, err)
			require.True(t, Verify(tree.Root(), row, i, path))
		}
	}
}

func TestVerifyRejectsTamperedRow(t *testing.T) {
	rows := rowsOf(8)
	tree, err := Commit(rows)
	require.NoError(t, err)
	path, err := tree.Open(3)
	require.NoError(t, err)
	require.False(t, Verify(tree.Root(), []byte{0xff, 0xff}, 3, path))
}

func TestVerifyRejectsWrongIndex(t *testing.T) {
	rows := rowsOf(8)
	tree, err := Commit(rows)
	require.NoError(t, err)
	path, err := tree.Open(3)
	require.NoError(t, err)
	require.False(t, Verify(tree.Root(), rows[3], 4, path))
}

func TestCommitRejectsEmpty(t *testing.T) {
	_, err := Commit(nil)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestOpenRejectsOutOfRange(t *testing.T) {
	tree, err := Commit(rowsOf(4))
	require.NoError(t, err)
	_, err = tree.Open(99)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDistinctRowsGiveDistinctRoots(t *testing.T) {
	a, err := Commit(rowsOf(4))
	require.NoError(t, err)
	rows := rowsOf(4)
	rows[2][0] ^= 1
	b, err := Commit(rows)
	require.NoError(t, err)
	require.NotEqual(t, a.Root(), b.Root())
}
