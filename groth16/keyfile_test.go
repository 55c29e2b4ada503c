// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package groth16

import (
	"errors"
	"strings"
	"testing"

	"github.com/luxfi/settlement/pairing"
)

// BN254 generator coordinates in decimal, as circuit tooling emits them.
const (
	g2x0 = "10857046999023057135944570762232829481370756359578518086990519993285655852781"
	g2x1 = "11559732032986387107991004021392285783925812861821192530917403151452391805634"
	g2y0 = "8495653923123431417604973247489272438418190587263600148770280649306958101930"
	g2y1 = "4082367875863433681332203403145435568316851327593401208105741076214120093531"
)

func g2JSON() string {
	return `[["` + g2x0 + `","` + g2x1 + `"],["` + g2y0 + `","` + g2y1 + `"],["1","0"]]`
}

func validKeyFile() string {
	return `{
		"protocol": "groth16",
		"curve": "bn128",
		"nPublic": 1,
		"vk_alpha_1": ["1", "2", "1"],
		"vk_beta_2": ` + g2JSON() + `,
		"vk_gamma_2": ` + g2JSON() + `,
		"vk_delta_2": ` + g2JSON() + `,
		"IC": [["1", "2", "1"], ["1", "2", "1"]]
	}`
}

// TestLoadVerifyingKey tests parsing a well-formed key description.
func TestLoadVerifyingKey(t *testing.T) {
	vk, err := LoadVerifyingKey(strings.NewReader(validKeyFile()))
	if err != nil {
		t.Fatalf("LoadVerifyingKey failed: %v", err)
	}

	if len(vk.GammaABC) != 2 {
		t.Errorf("Expected 2 IC points, got %d", len(vk.GammaABC))
	}
	g1, g2 := pairing.Generators()
	if !vk.Alpha.Equal(&g1) {
		t.Error("Alpha does not match the G1 generator")
	}
	if !vk.Beta.Equal(&g2) {
		t.Error("Beta does not match the G2 generator")
	}
}

// TestLoadVerifyingKeyBadProtocol tests rejection of a non-groth16 key.
func TestLoadVerifyingKeyBadProtocol(t *testing.T) {
	in := strings.Replace(validKeyFile(), `"groth16"`, `"plonk"`, 1)
	_, err := LoadVerifyingKey(strings.NewReader(in))
	if !errors.Is(err, ErrInvalidKeyFile) {
		t.Errorf("Expected ErrInvalidKeyFile, got %v", err)
	}
}

// TestLoadVerifyingKeyOffCurve tests rejection of an off-curve point.
func TestLoadVerifyingKeyOffCurve(t *testing.T) {
	in := strings.Replace(validKeyFile(), `"vk_alpha_1": ["1", "2", "1"]`, `"vk_alpha_1": ["1", "3", "1"]`, 1)
	_, err := LoadVerifyingKey(strings.NewReader(in))
	if !errors.Is(err, ErrInvalidKeyFile) {
		t.Errorf("Expected ErrInvalidKeyFile, got %v", err)
	}
}

// TestLoadVerifyingKeyNPublicFloor tests the IC length check against
// nPublic.
func TestLoadVerifyingKeyNPublicFloor(t *testing.T) {
	in := strings.Replace(validKeyFile(), `"nPublic": 1`, `"nPublic": 5`, 1)
	_, err := LoadVerifyingKey(strings.NewReader(in))
	if !errors.Is(err, ErrInvalidKeyFile) {
		t.Errorf("Expected ErrInvalidKeyFile, got %v", err)
	}
}

// TestLoadVerifyingKeyGarbage tests that non-JSON input is a typed error.
func TestLoadVerifyingKeyGarbage(t *testing.T) {
	_, err := LoadVerifyingKey(strings.NewReader("not json"))
	if !errors.Is(err, ErrInvalidKeyFile) {
		t.Errorf("Expected ErrInvalidKeyFile, got %v", err)
	}
}
