// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package groth16

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"

	"github.com/luxfi/settlement/pairing"
)

// keyFile is the structured text description of a verifying key as produced
// by circuit tooling: decimal coordinate strings, G1 points as [x, y] or
// [x, y, "1"], G2 points as coordinate pairs [c0, c1] with an optional
// trailing ["1", "0"].
type keyFile struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	Alpha1   []string   `json:"vk_alpha_1"`
	Beta2    [][]string `json:"vk_beta_2"`
	Gamma2   [][]string `json:"vk_gamma_2"`
	Delta2   [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// LoadVerifyingKey parses a structured text key description into the
// VerifyingKey shape, validating every point. The caller still has to
// activate the key with Engine.SetVerifyingKey, which enforces the
// input-count floor.
func LoadVerifyingKey(r io.Reader) (*VerifyingKey, error) {
	var kf keyFile
	if err := json.NewDecoder(r).Decode(&kf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFile, err)
	}
	if kf.Protocol != "" && kf.Protocol != "groth16" {
		return nil, fmt.Errorf("%w: unsupported protocol %q", ErrInvalidKeyFile, kf.Protocol)
	}
	if kf.Curve != "" && kf.Curve != "bn128" && kf.Curve != "bn254" {
		return nil, fmt.Errorf("%w: unsupported curve %q", ErrInvalidKeyFile, kf.Curve)
	}

	vk := &VerifyingKey{}

	var err error
	if vk.Alpha, err = parseG1(kf.Alpha1); err != nil {
		return nil, fmt.Errorf("%w: alpha: %v", ErrInvalidKeyFile, err)
	}
	if vk.Beta, err = parseG2(kf.Beta2); err != nil {
		return nil, fmt.Errorf("%w: beta: %v", ErrInvalidKeyFile, err)
	}
	if vk.Gamma, err = parseG2(kf.Gamma2); err != nil {
		return nil, fmt.Errorf("%w: gamma: %v", ErrInvalidKeyFile, err)
	}
	if vk.Delta, err = parseG2(kf.Delta2); err != nil {
		return nil, fmt.Errorf("%w: delta: %v", ErrInvalidKeyFile, err)
	}

	vk.GammaABC = make([]pairing.G1, len(kf.IC))
	for i, coords := range kf.IC {
		if vk.GammaABC[i], err = parseG1(coords); err != nil {
			return nil, fmt.Errorf("%w: IC[%d]: %v", ErrInvalidKeyFile, i, err)
		}
	}
	if kf.NPublic > 0 && len(vk.GammaABC) < kf.NPublic+1 {
		return nil, fmt.Errorf("%w: IC length %d < nPublic+1", ErrInvalidKeyFile, len(vk.GammaABC))
	}
	return vk, nil
}

func parseG1(coords []string) (pairing.G1, error) {
	var p pairing.G1
	if len(coords) != 2 && len(coords) != 3 {
		return p, fmt.Errorf("expected 2 or 3 coordinates, got %d", len(coords))
	}
	if len(coords) == 3 && coords[2] != "1" {
		return p, fmt.Errorf("non-affine projective coordinate %q", coords[2])
	}
	if err := parseFp(&p.X, coords[0]); err != nil {
		return p, err
	}
	if err := parseFp(&p.Y, coords[1]); err != nil {
		return p, err
	}
	if !p.IsInfinity() && !p.IsOnCurve() {
		return p, fmt.Errorf("point not on curve")
	}
	return p, nil
}

func parseG2(coords [][]string) (pairing.G2, error) {
	var p pairing.G2
	if len(coords) != 2 && len(coords) != 3 {
		return p, fmt.Errorf("expected 2 or 3 coordinate pairs, got %d", len(coords))
	}
	if len(coords) == 3 && (len(coords[2]) != 2 || coords[2][0] != "1" || coords[2][1] != "0") {
		return p, fmt.Errorf("non-affine projective coordinate")
	}
	for _, pair := range coords[:2] {
		if len(pair) != 2 {
			return p, fmt.Errorf("expected coordinate pair of 2 elements, got %d", len(pair))
		}
	}
	if err := parseFp(&p.X.A0, coords[0][0]); err != nil {
		return p, err
	}
	if err := parseFp(&p.X.A1, coords[0][1]); err != nil {
		return p, err
	}
	if err := parseFp(&p.Y.A0, coords[1][0]); err != nil {
		return p, err
	}
	if err := parseFp(&p.Y.A1, coords[1][1]); err != nil {
		return p, err
	}
	if !p.IsInfinity() && (!p.IsOnCurve() || !p.IsInSubGroup()) {
		return p, fmt.Errorf("point not in G2")
	}
	return p, nil
}

func parseFp(dst *fp.Element, s string) error {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid field element %q", s)
	}
	if v.Sign() < 0 || v.Cmp(fp.Modulus()) >= 0 {
		return fmt.Errorf("field element %q out of range", s)
	}
	dst.SetBigInt(v)
	return nil
}
