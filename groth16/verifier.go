// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package groth16

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/luxfi/geth/event"
	"github.com/luxfi/log"

	"github.com/luxfi/settlement/pairing"
)

// verifyCacheSize bounds the number of cached verification results. Proofs
// are resubmitted on rollup reorg retries, so a small cache pays for itself.
const verifyCacheSize = 1024

// Engine verifies Groth16 proofs against a fixed verifying key. The expected
// public-input count is set at construction; the key may be replaced
// atomically by an authorized setup step at any time.
type Engine struct {
	inputCount int

	vk *VerifyingKey
	// keyGen identifies the active key inside cache entries. A verification
	// in flight across a key swap writes its result under the old
	// generation, so it can never be read back as a verdict for the new key.
	keyGen uint64
	cache  *lru.Cache[[32]byte, bool]

	// Statistics
	TotalVerifications uint64
	TotalProofsValid   uint64
	TotalProofsFailed  uint64

	keyFeed event.Feed
	log     log.Logger
	mu      sync.RWMutex
}

// NewEngine creates an engine expecting inputCount public inputs per proof.
// No verifying key is active until SetVerifyingKey succeeds.
func NewEngine(inputCount int, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	cache, _ := lru.New[[32]byte, bool](verifyCacheSize)
	return &Engine{
		inputCount: inputCount,
		cache:      cache,
		log:        logger,
	}
}

// InputCount returns the public-input width this engine verifies against.
func (e *Engine) InputCount() int {
	return e.inputCount
}

// SetVerifyingKey replaces the active key. The key becomes active for all
// subsequent verifications as one atomic swap; cached results for the old key
// are dropped. Fails with ErrInvalidVerifyingKey if GammaABC is shorter than
// inputCount + 1.
func (e *Engine) SetVerifyingKey(vk *VerifyingKey) error {
	if vk == nil || len(vk.GammaABC) < e.inputCount+1 {
		return ErrInvalidVerifyingKey
	}

	e.mu.Lock()
	e.vk = vk
	e.keyGen++
	e.cache.Purge()
	e.mu.Unlock()

	e.log.Info("verifying key updated",
		log.Int("inputCount", e.inputCount),
		log.Int("gammaABC", len(vk.GammaABC)),
	)
	e.keyFeed.Send(KeyUpdatedEvent{InputCount: e.inputCount, GammaABC: len(vk.GammaABC)})
	return nil
}

// HasVerifyingKey reports whether a key is active.
func (e *Engine) HasVerifyingKey() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vk != nil
}

// SubscribeKeyUpdates sends a KeyUpdatedEvent on ch for every key
// replacement.
func (e *Engine) SubscribeKeyUpdates(ch chan<- KeyUpdatedEvent) event.Subscription {
	return e.keyFeed.Subscribe(ch)
}

// Verify evaluates the Groth16 pairing identity
//
//	e(A, B) = e(alpha, beta) * e(vk_x, gamma) * e(C, delta)
//
// as the equivalent single multi-pairing check
//
//	e(A, B) * e(-alpha, beta) * e(-vk_x, gamma) * e(-C, delta) = 1
//
// over the four pairs in exactly that order. A cryptographically invalid
// proof returns (false, nil); only a missing key or a wrong input count is an
// error.
func (e *Engine) Verify(proof *Proof, inputs []fr.Element) (bool, error) {
	if len(inputs) != e.inputCount {
		return false, ErrInvalidPublicInputs
	}

	e.mu.RLock()
	vk, gen := e.vk, e.keyGen
	e.mu.RUnlock()

	if vk == nil || len(vk.GammaABC) < e.inputCount+1 {
		return false, ErrInvalidVerifyingKey
	}

	key := cacheKey(gen, proof, inputs)
	if valid, ok := e.cache.Get(key); ok {
		e.recordResult(valid)
		return valid, nil
	}

	// vk_x = GammaABC[0] + sum(inputs[i] * GammaABC[i+1]), in input order.
	vkX := vk.GammaABC[0]
	for i := range inputs {
		term := pairing.ScalarMulFr(&vk.GammaABC[i+1], &inputs[i])
		vkX = pairing.Add(&vkX, &term)
	}

	negAlpha := pairing.Negate(&vk.Alpha)
	negVkX := pairing.Negate(&vkX)
	negC := pairing.Negate(&proof.C)

	valid := pairing.PairingCheck(
		[]pairing.G1{proof.A, negAlpha, negVkX, negC},
		[]pairing.G2{proof.B, vk.Beta, vk.Gamma, vk.Delta},
	)

	e.cache.Add(key, valid)
	e.recordResult(valid)
	return valid, nil
}

// VerifyBlockTransition decodes a wire proof, derives the 24 block-circuit
// public inputs from the three roots, and verifies. Malformed proof bytes
// resolve to (false, nil) the same way a failed pairing check does.
func (e *Engine) VerifyBlockTransition(proofBytes []byte, prevRoot, newRoot, withdrawalsRoot [32]byte) (bool, error) {
	proof, err := DecodeProof(proofBytes)
	if err != nil {
		return false, nil
	}
	return e.Verify(proof, PublicInputsFromRoots(prevRoot, newRoot, withdrawalsRoot))
}

// VerifyWithdrawalClaim verifies a withdrawal-validity proof. The withdrawal
// circuit shares the block circuit's 24-word input shape: eight words each
// from the withdrawals root, the claim leaf, and the nullifier.
func (e *Engine) VerifyWithdrawalClaim(proofBytes []byte, withdrawalsRoot, leaf, nullifier [32]byte) (bool, error) {
	proof, err := DecodeProof(proofBytes)
	if err != nil {
		return false, nil
	}
	return e.Verify(proof, PublicInputsFromRoots(withdrawalsRoot, leaf, nullifier))
}

// Stats returns the total, valid, and failed verification counts.
func (e *Engine) Stats() (total, valid, failed uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.TotalVerifications, e.TotalProofsValid, e.TotalProofsFailed
}

// recordResult counts a verification once it has resolved to a boolean, so
// total always equals valid + failed.
func (e *Engine) recordResult(valid bool) {
	e.mu.Lock()
	e.TotalVerifications++
	if valid {
		e.TotalProofsValid++
	} else {
		e.TotalProofsFailed++
	}
	e.mu.Unlock()
}

func cacheKey(keyGen uint64, proof *Proof, inputs []fr.Element) [32]byte {
	h := sha256.New()
	var gen [8]byte
	binary.BigEndian.PutUint64(gen[:], keyGen)
	h.Write(gen[:])
	h.Write(EncodeProof(proof))
	for i := range inputs {
		b := inputs[i].Bytes()
		h.Write(b[:])
	}
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}
