// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pairing

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// TestNegate tests that P + (-P) is the identity.
func TestNegate(t *testing.T) {
	g1, _ := Generators()

	neg := Negate(&g1)
	sum := Add(&g1, &neg)
	if !sum.IsInfinity() {
		t.Error("Expected P + (-P) to be the identity")
	}
}

// TestNegateIdentity tests that the identity negates to itself.
func TestNegateIdentity(t *testing.T) {
	var inf G1
	neg := Negate(&inf)
	if !neg.IsInfinity() {
		t.Error("Expected -O to be the identity")
	}
}

// TestScalarMulMatchesRepeatedAdd tests 3*P == P + P + P.
func TestScalarMulMatchesRepeatedAdd(t *testing.T) {
	g1, _ := Generators()

	triple := ScalarMul(&g1, big.NewInt(3))

	sum := Add(&g1, &g1)
	sum = Add(&sum, &g1)

	if !triple.Equal(&sum) {
		t.Error("3*P does not match P + P + P")
	}
}

// TestScalarMulReducesModOrder tests that k and k mod r give the same point.
func TestScalarMulReducesModOrder(t *testing.T) {
	g1, _ := Generators()

	k := big.NewInt(7)
	kPlusOrder := new(big.Int).Add(k, fr.Modulus())

	a := ScalarMul(&g1, k)
	b := ScalarMul(&g1, kPlusOrder)
	if !a.Equal(&b) {
		t.Error("Scalar multiplication not reduced modulo the group order")
	}
}

// TestPairingCheckEmpty tests that the empty product is the identity.
func TestPairingCheckEmpty(t *testing.T) {
	if !PairingCheck(nil, nil) {
		t.Error("Empty pairing check should return true")
	}
}

// TestPairingCheckCancellation tests e(P, Q) * e(-P, Q) = 1.
func TestPairingCheckCancellation(t *testing.T) {
	g1, g2 := Generators()
	neg := Negate(&g1)

	if !PairingCheck([]G1{g1, neg}, []G2{g2, g2}) {
		t.Error("Expected e(P,Q)*e(-P,Q) to equal the identity")
	}
}

// TestPairingCheckNonTrivial tests that a single non-degenerate pairing is
// not the identity.
func TestPairingCheckNonTrivial(t *testing.T) {
	g1, g2 := Generators()

	if PairingCheck([]G1{g1}, []G2{g2}) {
		t.Error("e(P,Q) should not equal the identity for generators")
	}
}

// TestPairingCheckBilinearity tests e(aP, bQ) * e(-abP, Q) = 1.
func TestPairingCheckBilinearity(t *testing.T) {
	g1, g2 := Generators()

	aP := ScalarMul(&g1, big.NewInt(5))
	abP := ScalarMul(&g1, big.NewInt(35))
	negABP := Negate(&abP)

	var bQ G2
	bQ.ScalarMultiplication(&g2, big.NewInt(7))

	if !PairingCheck([]G1{aP, negABP}, []G2{bQ, g2}) {
		t.Error("Bilinearity check failed")
	}
}

// TestPairingCheckMismatchedLengths tests that length mismatch is invalid,
// not a fault.
func TestPairingCheckMismatchedLengths(t *testing.T) {
	g1, g2 := Generators()
	if PairingCheck([]G1{g1}, []G2{g2, g2}) {
		t.Error("Expected mismatched lengths to fail the check")
	}
}

// TestPairingCheckOffCurve tests that an off-curve point fails the check
// instead of raising a fault.
func TestPairingCheckOffCurve(t *testing.T) {
	g1, g2 := Generators()

	var bad G1
	bad.X.SetUint64(1)
	bad.Y.SetUint64(1) // (1,1) is not on y^2 = x^3 + 3

	if PairingCheck([]G1{bad}, []G2{g2}) {
		t.Error("Expected off-curve G1 point to fail the check")
	}
	_ = g1
}

func BenchmarkPairingCheck(b *testing.B) {
	g1, g2 := Generators()
	neg := Negate(&g1)
	a := []G1{g1, neg}
	q := []G2{g2, g2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PairingCheck(a, q)
	}
}
