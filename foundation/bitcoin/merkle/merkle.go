// Package merkle provides the merkle tree committing a block to its
// transactions. Pairs are combined with a double SHA-256 and a level
// with an odd node count pairs its last node with itself.
package merkle

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ardanlabs/bitcoin/foundation/bitcoin/hashing"
)

var (
	// ErrNoLeaves indicates a tree build with no transactions.
	ErrNoLeaves = errors.New("cannot construct tree with no leaves")

	// ErrNotFound indicates a proof request for a hash not in the tree.
	ErrNotFound = errors.New("hash not in tree")
)

// =============================================================================

// Tree is a merkle tree over 32 byte transaction hashes in wire order.
type Tree struct {
	Root       *Node
	Leaves     []*Node
	MerkleRoot []byte
}

// NewTree constructs a tree from the transaction hashes of a block in
// wire order.
func NewTree(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}

	var nodes []*Node
	for i, leaf := range leaves {
		if len(leaf) != 32 {
			return nil, fmt.Errorf("leaf %d must be 32 bytes, got %d", i, len(leaf))
		}
		h := make([]byte, 32)
		copy(h, leaf)
		nodes = append(nodes, &Node{Hash: h, leaf: true})
	}

	t := Tree{Leaves: nodes}
	t.Root = buildIntermediate(nodes)
	t.MerkleRoot = t.Root.Hash

	return &t, nil
}

// FromDisplayOrder constructs a tree from display order (reversed) hex
// transaction identifiers, the form explorers and RPC interfaces use.
func FromDisplayOrder(txids []string) (*Tree, error) {
	leaves := make([][]byte, 0, len(txids))

	for i, id := range txids {
		b, err := hex.DecodeString(id)
		if err != nil {
			return nil, fmt.Errorf("decoding txid %d: %w", i, err)
		}
		if len(b) != 32 {
			return nil, fmt.Errorf("txid %d must be 32 bytes, got %d", i, len(b))
		}

		rev := make([]byte, 32)
		for j := range b {
			rev[j] = b[31-j]
		}
		leaves = append(leaves, rev)
	}

	return NewTree(leaves)
}

// RootHex renders the merkle root in display order, matching the field
// in a decoded block header display.
func (t *Tree) RootHex() string {
	rev := make([]byte, 32)
	for i := range t.MerkleRoot {
		rev[i] = t.MerkleRoot[31-i]
	}
	return hex.EncodeToString(rev)
}

// Proof returns the sibling hashes and concatenation order that link a
// leaf hash to the root. Order 0 means the proof hash concatenates
// first, 1 means second.
func (t *Tree) Proof(leaf []byte) ([][]byte, []int, error) {
	for _, node := range t.Leaves {
		if !bytes.Equal(node.Hash, leaf) {
			continue
		}

		var proof [][]byte
		var order []int

		for parent := node.Parent; parent != nil; parent = parent.Parent {
			if node == parent.Left {
				proof = append(proof, parent.Right.Hash)
				order = append(order, 1)
			} else {
				proof = append(proof, parent.Left.Hash)
				order = append(order, 0)
			}
			node = parent
		}

		return proof, order, nil
	}

	return nil, nil, ErrNotFound
}

// VerifyProof replays a proof against a leaf hash and reports whether
// it reaches the expected root.
func VerifyProof(leaf []byte, proof [][]byte, order []int, root []byte) bool {
	if len(proof) != len(order) {
		return false
	}

	current := leaf
	for i, sibling := range proof {
		if order[i] == 0 {
			current = hashing.Hash256(append(append([]byte{}, sibling...), current...))
			continue
		}
		current = hashing.Hash256(append(append([]byte{}, current...), sibling...))
	}

	return bytes.Equal(current, root)
}

// =============================================================================

// Node is one position in the tree.
type Node struct {
	Parent *Node
	Left   *Node
	Right  *Node
	Hash   []byte
	leaf   bool
}

// buildIntermediate combines a level of nodes pairwise until a single
// root remains. An odd trailing node pairs with itself.
func buildIntermediate(level []*Node) *Node {
	if len(level) == 1 {
		return level[0]
	}

	var next []*Node

	for i := 0; i < len(level); i += 2 {
		left, right := i, i+1
		if right == len(level) {
			right = i
		}

		n := Node{
			Left:  level[left],
			Right: level[right],
			Hash:  hashing.Hash256(append(append([]byte{}, level[left].Hash...), level[right].Hash...)),
		}

		level[left].Parent = &n
		level[right].Parent = &n
		next = append(next, &n)
	}

	return buildIntermediate(next)
}
