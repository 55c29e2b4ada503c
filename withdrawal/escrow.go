// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package withdrawal

import (
	"encoding/binary"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/zeebo/blake3"
)

// Escrow tracks per-asset balances backing withdrawal claims. Deposits are
// credited at most once; each carries a fingerprint of its origin and a
// repeated fingerprint is rejected.
type Escrow struct {
	mu       sync.RWMutex
	assets   map[[32]byte]common.Address
	balances map[[32]byte]*uint256.Int
	deposits map[[32]byte]bool
	log      log.Logger

	// Statistics
	TotalDeposits uint64
}

// NewEscrow creates an empty escrow. A nil logger disables logging.
func NewEscrow(logger log.Logger) *Escrow {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Escrow{
		assets:   make(map[[32]byte]common.Address),
		balances: make(map[[32]byte]*uint256.Int),
		deposits: make(map[[32]byte]bool),
		log:      logger,
	}
}

// DepositFingerprint derives the dedup key of a deposit from its origin
// coordinates on the funding chain.
func DepositFingerprint(chainID uint64, txHash common.Hash, logIndex uint32) [32]byte {
	var buf [8 + common.HashLength + 4]byte
	binary.BigEndian.PutUint64(buf[:8], chainID)
	copy(buf[8:8+common.HashLength], txHash[:])
	binary.BigEndian.PutUint32(buf[8+common.HashLength:], logIndex)
	return blake3.Sum256(buf[:])
}

// RegisterAsset binds an asset id to its token contract. Re-registration is
// rejected.
func (e *Escrow) RegisterAsset(assetID [32]byte, token common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.assets[assetID]; ok {
		return ErrAssetAlreadyRegistered
	}
	e.assets[assetID] = token
	e.balances[assetID] = uint256.NewInt(0)
	return nil
}

// AssetToken returns the token contract bound to an asset id.
func (e *Escrow) AssetToken(assetID [32]byte) (common.Address, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	token, ok := e.assets[assetID]
	return token, ok
}

// RecordDeposit credits amount to the asset's escrow balance. The
// fingerprint makes the credit idempotent.
func (e *Escrow) RecordDeposit(fingerprint [32]byte, assetID [32]byte, from common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	balance, ok := e.balances[assetID]
	if !ok {
		return ErrAssetNotRegistered
	}
	if e.deposits[fingerprint] {
		return ErrDuplicateDeposit
	}
	e.deposits[fingerprint] = true
	balance.Add(balance, amount)
	e.TotalDeposits++

	e.log.Info("deposit recorded",
		log.String("from", from.Hex()),
		log.String("amount", amount.Dec()),
	)
	return nil
}

// Balance returns the escrowed balance of an asset.
func (e *Escrow) Balance(assetID [32]byte) *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if balance, ok := e.balances[assetID]; ok {
		return balance.Clone()
	}
	return uint256.NewInt(0)
}

// debit releases amount from the asset's balance on a successful claim.
func (e *Escrow) debit(assetID [32]byte, amount *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	balance, ok := e.balances[assetID]
	if !ok {
		return ErrAssetNotRegistered
	}
	if balance.Lt(amount) {
		return ErrInsufficientEscrow
	}
	balance.Sub(balance, amount)
	return nil
}

// credit restores a debited amount when the claim fails after the debit. The
// asset is known to exist at this point.
func (e *Escrow) credit(assetID [32]byte, amount *uint256.Int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if balance, ok := e.balances[assetID]; ok {
		balance.Add(balance, amount)
	}
}
