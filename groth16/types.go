// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package groth16 implements Groth16 zkSNARK verification over BN254 for the
// settlement core: the fixed 256-byte proof wire format, the derivation of
// public inputs from 32-byte roots, and the pairing-equation verifier.
package groth16

import (
	"errors"

	"github.com/luxfi/settlement/pairing"
)

// Errors
var (
	ErrInvalidProof        = errors.New("invalid proof")
	ErrInvalidVerifyingKey = errors.New("invalid verifying key")
	ErrInvalidPublicInputs = errors.New("invalid public inputs")
	ErrInvalidKeyFile      = errors.New("invalid verifying key file")
)

// Proof is a Groth16 proof: A and C in G1, B in G2. A proof is consumed
// exactly once per verification call and carries no identity beyond its hash.
type Proof struct {
	A pairing.G1
	B pairing.G2
	C pairing.G1
}

// VerifyingKey holds the public parameters a Groth16 proof is checked
// against. GammaABC must have length public-input count + 1; index 0 is the
// constant term of the input commitment.
type VerifyingKey struct {
	Alpha    pairing.G1
	Beta     pairing.G2
	Gamma    pairing.G2
	Delta    pairing.G2
	GammaABC []pairing.G1
}

// KeyUpdatedEvent is emitted when the active verifying key is replaced.
type KeyUpdatedEvent struct {
	InputCount int
	GammaABC   int
}
