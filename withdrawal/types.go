// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package withdrawal implements the exit path of the rollup: a claim gate
// that releases escrowed funds against a Merkle inclusion in the settlement
// layer's withdrawals commitment, a validity proof, and a single-use
// nullifier.
package withdrawal

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"
)

// Errors
var (
	ErrInvalidAmount          = errors.New("invalid withdrawal amount")
	ErrInvalidUser            = errors.New("caller is not the claim user")
	ErrNullifierAlreadyUsed   = errors.New("nullifier already used")
	ErrInvalidWithdrawalsRoot = errors.New("invalid withdrawals root")
	ErrInvalidMerkleProof     = errors.New("invalid merkle proof")
	ErrInvalidProof           = errors.New("invalid proof")
	ErrAssetAlreadyRegistered = errors.New("asset already registered")
	ErrAssetNotRegistered     = errors.New("asset not registered")
	ErrDuplicateDeposit       = errors.New("deposit already recorded")
	ErrInsufficientEscrow     = errors.New("insufficient escrow balance")
)

// Claim is one withdrawal entitlement as committed into a block's
// withdrawals tree.
type Claim struct {
	User    common.Address
	AssetID [32]byte
	Amount  *big.Int
	ChainID uint64
}

// Leaf returns the canonical tree leaf for the claim:
// sha256(user | assetID | amount | chainID | nullifier) with the amount as
// 32 big-endian bytes and the chain id as 8.
func (c Claim) Leaf(nullifier common.Hash) (common.Hash, error) {
	amount, err := c.amountBytes()
	if err != nil {
		return common.Hash{}, err
	}
	buf := make([]byte, 0, common.AddressLength+32+32+8+common.HashLength)
	buf = append(buf, c.User.Bytes()...)
	buf = append(buf, c.AssetID[:]...)
	buf = append(buf, amount...)
	buf = binary.BigEndian.AppendUint64(buf, c.ChainID)
	buf = append(buf, nullifier.Bytes()...)
	return common.Hash(sha256.Sum256(buf)), nil
}

func (c Claim) amountBytes() ([]byte, error) {
	if c.Amount == nil || c.Amount.Sign() <= 0 || c.Amount.BitLen() > 256 {
		return nil, ErrInvalidAmount
	}
	return c.Amount.FillBytes(make([]byte, 32)), nil
}

// WithdrawalCompletedEvent is emitted once per successful claim.
type WithdrawalCompletedEvent struct {
	User            common.Address
	AssetID         [32]byte
	Amount          *big.Int
	Nullifier       common.Hash
	WithdrawalsRoot common.Hash
}
