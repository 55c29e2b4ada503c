// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package groth16

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/luxfi/settlement/pairing"
)

// Proof wire format: exactly 256 bytes, eight 32-byte big-endian field
// elements in the order A.x, A.y, B.x.c0, B.x.c1, B.y.c0, B.y.c1, C.x, C.y.
// This layout is a compatibility contract with the off-chain prover; it must
// not vary.
const ProofSize = 256

// WordsPerRoot is the number of 32-bit words a 32-byte root decomposes into.
const WordsPerRoot = 8

// BlockInputCount is the public-input width of the block-transition circuit:
// three roots of eight words each.
const BlockInputCount = 3 * WordsPerRoot

// DecodeProof deserializes the fixed 256-byte wire format. Short buffers,
// non-canonical coordinates, off-curve points, and G2 points outside the
// r-torsion subgroup all yield ErrInvalidProof; none of them is a fault.
func DecodeProof(b []byte) (*Proof, error) {
	if len(b) < ProofSize {
		return nil, ErrInvalidProof
	}

	var p Proof
	if err := p.A.X.SetBytesCanonical(b[0:32]); err != nil {
		return nil, ErrInvalidProof
	}
	if err := p.A.Y.SetBytesCanonical(b[32:64]); err != nil {
		return nil, ErrInvalidProof
	}
	if err := p.B.X.A0.SetBytesCanonical(b[64:96]); err != nil {
		return nil, ErrInvalidProof
	}
	if err := p.B.X.A1.SetBytesCanonical(b[96:128]); err != nil {
		return nil, ErrInvalidProof
	}
	if err := p.B.Y.A0.SetBytesCanonical(b[128:160]); err != nil {
		return nil, ErrInvalidProof
	}
	if err := p.B.Y.A1.SetBytesCanonical(b[160:192]); err != nil {
		return nil, ErrInvalidProof
	}
	if err := p.C.X.SetBytesCanonical(b[192:224]); err != nil {
		return nil, ErrInvalidProof
	}
	if err := p.C.Y.SetBytesCanonical(b[224:256]); err != nil {
		return nil, ErrInvalidProof
	}

	if !validProofG1(&p.A) || !validProofG1(&p.C) || !validProofG2(&p.B) {
		return nil, ErrInvalidProof
	}
	return &p, nil
}

// EncodeProof is the exact inverse of DecodeProof: re-encoding a decoded
// buffer reproduces the original bytes.
func EncodeProof(p *Proof) []byte {
	out := make([]byte, ProofSize)
	writeCoord(out[0:32], p.A.X.BigInt(new(big.Int)))
	writeCoord(out[32:64], p.A.Y.BigInt(new(big.Int)))
	writeCoord(out[64:96], p.B.X.A0.BigInt(new(big.Int)))
	writeCoord(out[96:128], p.B.X.A1.BigInt(new(big.Int)))
	writeCoord(out[128:160], p.B.Y.A0.BigInt(new(big.Int)))
	writeCoord(out[160:192], p.B.Y.A1.BigInt(new(big.Int)))
	writeCoord(out[192:224], p.C.X.BigInt(new(big.Int)))
	writeCoord(out[224:256], p.C.Y.BigInt(new(big.Int)))
	return out
}

func writeCoord(dst []byte, v *big.Int) {
	v.FillBytes(dst)
}

// RootWords splits a 32-byte root into eight 32-bit words, word i taken
// little-endian from bytes [4i, 4i+4), each promoted to a scalar field
// element. The big-endian byte layout with little-endian word extraction
// matches the proving circuit bit-for-bit.
func RootWords(root [32]byte) [WordsPerRoot]fr.Element {
	var words [WordsPerRoot]fr.Element
	for i := 0; i < WordsPerRoot; i++ {
		w := binary.LittleEndian.Uint32(root[i*4 : i*4+4])
		words[i].SetUint64(uint64(w))
	}
	return words
}

// RootFromWords reassembles a root from its eight-word decomposition. It is
// the inverse of RootWords; a word outside the 32-bit range yields
// ErrInvalidPublicInputs.
func RootFromWords(words [WordsPerRoot]fr.Element) ([32]byte, error) {
	var root [32]byte
	for i := 0; i < WordsPerRoot; i++ {
		v := words[i].BigInt(new(big.Int))
		if !v.IsUint64() || v.Uint64() > 0xFFFFFFFF {
			return [32]byte{}, ErrInvalidPublicInputs
		}
		binary.LittleEndian.PutUint32(root[i*4:i*4+4], uint32(v.Uint64()))
	}
	return root, nil
}

// PublicInputsFromRoots derives the 24 public inputs of the block-transition
// circuit: prev root words at indices 0-7, new root words at 8-15,
// withdrawals root words at 16-23.
func PublicInputsFromRoots(prevRoot, newRoot, withdrawalsRoot [32]byte) []fr.Element {
	inputs := make([]fr.Element, 0, BlockInputCount)
	for _, root := range [3][32]byte{prevRoot, newRoot, withdrawalsRoot} {
		words := RootWords(root)
		inputs = append(inputs, words[:]...)
	}
	return inputs
}

func validProofG1(p *pairing.G1) bool {
	return p.IsInfinity() || p.IsOnCurve()
}

func validProofG2(p *pairing.G2) bool {
	return p.IsInfinity() || (p.IsOnCurve() && p.IsInSubGroup())
}
