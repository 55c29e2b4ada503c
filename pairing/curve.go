// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pairing provides the BN254 group primitives the settlement core is
// built on: G1 negation, scalar multiplication, addition, and the
// multi-pairing product check. Verifier logic above this package is expressed
// purely in terms of group relations, so swapping the underlying pairing
// implementation only touches this file.
package pairing

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// G1 is a point on the BN254 base group in affine coordinates.
type G1 = bn254.G1Affine

// G2 is a point on the BN254 extension group in affine coordinates.
type G2 = bn254.G2Affine

// Generators returns the canonical G1 and G2 generators.
func Generators() (G1, G2) {
	_, _, g1, g2 := bn254.Generators()
	return g1, g2
}

// Negate returns -p, i.e. (x, p-y mod p). The identity negates to itself.
func Negate(p *G1) G1 {
	var n G1
	n.Neg(p)
	return n
}

// Add returns p + q.
func Add(p, q *G1) G1 {
	var s G1
	s.Add(p, q)
	return s
}

// ScalarMul returns k*p with k reduced modulo the group order.
func ScalarMul(p *G1, k *big.Int) G1 {
	s := new(big.Int).Mod(k, fr.Modulus())
	var out G1
	out.ScalarMultiplication(p, s)
	return out
}

// ScalarMulFr is ScalarMul for a scalar already in the scalar field.
func ScalarMulFr(p *G1, k *fr.Element) G1 {
	var out G1
	out.ScalarMultiplication(p, k.BigInt(new(big.Int)))
	return out
}

// validG1 reports whether p is the identity or a point on the curve. G1 has
// cofactor 1, so on-curve implies correct subgroup.
func validG1(p *G1) bool {
	return p.IsInfinity() || p.IsOnCurve()
}

// validG2 reports whether p is the identity or an on-curve point in the
// r-torsion subgroup.
func validG2(p *G2) bool {
	return p.IsInfinity() || (p.IsOnCurve() && p.IsInSubGroup())
}

// PairingCheck reports whether the product of pairings e(a[i], b[i]) over all
// pairs equals the identity in the target group. Malformed input (mismatched
// lengths, off-curve points, wrong-subgroup G2 points) yields false, never an
// error: callers treat false as "proof invalid". An empty input is the empty
// product and yields true.
func PairingCheck(a []G1, b []G2) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	for i := range a {
		if !validG1(&a[i]) || !validG2(&b[i]) {
			return false
		}
	}
	ok, err := bn254.PairingCheck(a, b)
	if err != nil {
		return false
	}
	return ok
}
