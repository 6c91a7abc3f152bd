// Package merkle provides an implementation of a merkle tree for producing
// the transaction digest of a block and proving a transaction is part of it.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash() ([]byte, error)
	Equals(other T) bool
}

// Proof order values. A proof hash with order Left is concatenated before
// the running hash, Right after it.
const (
	Left  int64 = 0
	Right int64 = 1
)

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits
// the behavior defined by the Hashable constraint. Level 0 holds the leaf
// hashes and the last level holds the root.
type Tree[T Hashable[T]] struct {
	values []T
	levels [][][]byte
}

// NewTree constructs a new merkle tree. A tree with no values has an all
// zero root so an empty block still has a digest.
func NewTree[T Hashable[T]](values []T) (*Tree[T], error) {
	t := Tree[T]{
		values: values,
	}

	if len(values) == 0 {
		t.levels = [][][]byte{{make([]byte, sha256.Size)}}
		return &t, nil
	}

	leafs := make([][]byte, len(values))
	for i, value := range values {
		hash, err := value.Hash()
		if err != nil {
			return nil, err
		}
		leafs[i] = hash
	}

	t.levels = append(t.levels, leafs)
	for level := leafs; len(level) > 1; {
		level = parents(level)
		t.levels = append(t.levels, level)
	}

	return &t, nil
}

// Root returns the merkle root hash.
func (t *Tree[T]) Root() []byte {
	return t.levels[len(t.levels)-1][0]
}

// RootHex converts the merkle root byte hash to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return hexutil.Encode(t.Root())
}

// Values returns the values the tree was constructed with.
func (t *Tree[T]) Values() []T {
	return t.values
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving the data is in the tree. Hash the data, then for each
// proof hash concatenate it first (Left) or second (Right) with the running
// hash and sha256 the result. The final hash must match the root.
func (t *Tree[T]) Proof(data T) ([][]byte, []int64, error) {
	idx := -1
	for i, value := range t.values {
		if value.Equals(data) {
			idx = i
			break
		}
	}

	if idx == -1 {
		return nil, nil, errors.New("unable to find data in tree")
	}

	var proof [][]byte
	var order []int64

	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling >= len(level) {
			sibling = idx
		}

		proof = append(proof, level[sibling])
		if idx%2 == 0 {
			order = append(order, Right)
		} else {
			order = append(order, Left)
		}

		idx /= 2
	}

	return proof, order, nil
}

// VerifyProof validates that the leaf hash combined with the proof produces
// the specified root.
func VerifyProof(leaf []byte, proof [][]byte, order []int64, root []byte) bool {
	if len(proof) != len(order) {
		return false
	}

	hash := leaf
	for i, p := range proof {
		switch order[i] {
		case Left:
			hash = combine(p, hash)
		default:
			hash = combine(hash, p)
		}
	}

	return bytes.Equal(hash, root)
}

// =============================================================================

// parents hashes each pair of nodes into the level above. An odd node out
// is paired with itself.
func parents(level [][]byte) [][]byte {
	out := make([][]byte, 0, (len(level)+1)/2)

	for i := 0; i < len(level); i += 2 {
		right := i + 1
		if right == len(level) {
			right = i
		}
		out = append(out, combine(level[i], level[right]))
	}

	return out
}

func combine(left []byte, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}
