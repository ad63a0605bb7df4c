// Package merkle implements the binary vector commitment used to bind
// the prover to its trace, low-degree-extension and FRI-layer columns:
// a SHA3-256 Merkle tree over column rows, with domain-separated,
// height-tagged internal hashing so a leaf hash can never be replayed
// as an internal node hash or vice versa.
package merkle

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const (
	leafDomain = "zp1-merkle-v1/leaf"
	nodeDomain = "zp1-merkle-v1/node"
)

// ErrEmptyInput is returned by Commit when given no rows.
var ErrEmptyInput = fmt.Errorf("merkle: cannot commit to zero rows")

// ErrIndexOutOfRange is returned by Open when the row index is invalid.
var ErrIndexOutOfRange = fmt.Errorf("merkle: index out of range")

// Tree is a binary Merkle tree committing to a fixed set of leaf rows.
// Row count need not be a power of two: odd levels duplicate their last
// node.
type Tree struct {
	root   [32]byte
	leaves [][32]byte
	levels [][][32]byte
}

// Commit hashes every row into a leaf and builds the full tree.
func Commit(rows [][]byte) (*Tree, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	leaves := make([][32]byte, len(rows))
	for i, row := range rows {
		leaves[i] = leafHash(row)
	}

	levels := [][][32]byte{leaves}
	current := leaves
	height := 0
	for len(current) > 1 {
		next := make([][32]byte, (len(current)+1)/2)
		for i := range next {
			left := current[2*i]
			var right [32]byte
			if 2*i+1 < len(current) {
				right = current[2*i+1]
			} else {
				right = current[2*i]
			}
			next[i] = nodeHash(height, left, right)
		}
		levels = append(levels, next)
		current = next
		height++
	}

	return &Tree{root: current[0], leaves: leaves, levels: levels}, nil
}

// Root returns the commitment root.
func (t *Tree) Root() [32]byte { return t.root }

// NumLeaves returns the number of committed rows.
func (t *Tree) NumLeaves() int { return len(t.leaves) }

// Path is an authentication path for one leaf: the sibling hash at each
// level from the leaf up to (but excluding) the root.
type Path struct {
	Siblings []Sibling
}

// Sibling is one step of an authentication path.
type Sibling struct {
	Hash    [32]byte
	IsRight bool // true if the sibling is the right child at this level
}

// Open builds the authentication path for the row at index.
func (t *Tree) Open(index int) (Path, error) {
	if index < 0 || index >= len(t.leaves) {
		return Path{}, ErrIndexOutOfRange
	}
	var path Path
	cur := index
	for level := 0; level < len(t.levels)-1; level++ {
		curLevel := t.levels[level]
		var sibIdx int
		var isRight bool
		if cur%2 == 0 {
			sibIdx, isRight = cur+1, true
		} else {
			sibIdx, isRight = cur-1, false
		}
		sib := curLevel[cur] // default: odd-length duplication, sibling is self
		if sibIdx < len(curLevel) {
			sib = curLevel[sibIdx]
		}
		path.Siblings = append(path.Siblings, Sibling{Hash: sib, IsRight: isRight})
		cur /= 2
	}
	return path, nil
}

// Verify checks that row, opened at index with path, is consistent with
// root. Each sibling's side must match the corresponding bit of index,
// so a path opened at one index is rejected at any other.
func Verify(root [32]byte, row []byte, index int, path Path) bool {
	if index < 0 {
		return false
	}
	hash := leafHash(row)
	cur := index
	for height, sib := range path.Siblings {
		if sib.IsRight != (cur%2 == 0) {
			return false
		}
		if sib.IsRight {
			hash = nodeHash(height, hash, sib.Hash)
		} else {
			hash = nodeHash(height, sib.Hash, hash)
		}
		cur /= 2
	}
	return cur == 0 && hash == root
}

func leafHash(data []byte) [32]byte {
	h := sha3.New256()
	h.Write([]byte(leafDomain))
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func nodeHash(height int, left, right [32]byte) [32]byte {
	h := sha3.New256()
	h.Write([]byte(nodeDomain))
	var heightBuf [8]byte
	binary.LittleEndian.PutUint64(heightBuf[:], uint64(height))
	h.Write(heightBuf[:])
	h.Write(left[:])
	h.Write(right[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
