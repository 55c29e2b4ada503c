// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package withdrawal

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/luxfi/geth/common"
)

// Merkle proof wire format: 8 big-endian bytes of leaf index followed by one
// 32-byte sibling per tree level, leaf upward. Bit i of the index tells
// whether the running hash sits on the right (bit set) or the left at level
// i; siblings are never reordered by value.

const merkleIndexLen = 8

// VerifyInclusion checks that leaf occupies the indexed position of the
// SHA-256 Merkle tree committed to by root.
func VerifyInclusion(root, leaf common.Hash, proof []byte) error {
	if len(proof) < merkleIndexLen || (len(proof)-merkleIndexLen)%common.HashLength != 0 {
		return ErrInvalidMerkleProof
	}
	index := binary.BigEndian.Uint64(proof[:merkleIndexLen])
	siblings := proof[merkleIndexLen:]

	node := leaf
	for len(siblings) > 0 {
		sibling := common.BytesToHash(siblings[:common.HashLength])
		siblings = siblings[common.HashLength:]
		if index&1 == 0 {
			node = hashPair(node, sibling)
		} else {
			node = hashPair(sibling, node)
		}
		index >>= 1
	}
	// Index bits beyond the proven depth would place the leaf outside the
	// tree.
	if index != 0 || node != root {
		return ErrInvalidMerkleProof
	}
	return nil
}

// ProveInclusion builds the proof bytes for a leaf position from its sibling
// path, leaf upward.
func ProveInclusion(index uint64, siblings []common.Hash) []byte {
	proof := make([]byte, merkleIndexLen, merkleIndexLen+len(siblings)*common.HashLength)
	binary.BigEndian.PutUint64(proof, index)
	for _, s := range siblings {
		proof = append(proof, s.Bytes()...)
	}
	return proof
}

// ComputeRoot folds a leaf and its sibling path into the tree root.
func ComputeRoot(leaf common.Hash, index uint64, siblings []common.Hash) common.Hash {
	node := leaf
	for _, sibling := range siblings {
		if index&1 == 0 {
			node = hashPair(node, sibling)
		} else {
			node = hashPair(sibling, node)
		}
		index >>= 1
	}
	return node
}

func hashPair(left, right common.Hash) common.Hash {
	var buf [2 * common.HashLength]byte
	copy(buf[:common.HashLength], left[:])
	copy(buf[common.HashLength:], right[:])
	return common.Hash(sha256.Sum256(buf[:]))
}
