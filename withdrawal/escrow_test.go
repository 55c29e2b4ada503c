// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package withdrawal

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

func TestEscrowRegisterAsset(t *testing.T) {
	e := NewEscrow(nil)
	assetID := [32]byte{0x01}
	token := common.HexToAddress("0x6000000000000000000000000000000000000006")

	require.NoError(t, e.RegisterAsset(assetID, token))
	require.ErrorIs(t, e.RegisterAsset(assetID, token), ErrAssetAlreadyRegistered)

	got, ok := e.AssetToken(assetID)
	require.True(t, ok)
	require.Equal(t, token, got)

	_, ok = e.AssetToken([32]byte{0x02})
	require.False(t, ok)
}

func TestEscrowRecordDeposit(t *testing.T) {
	e := NewEscrow(nil)
	assetID := [32]byte{0x01}
	require.NoError(t, e.RegisterAsset(assetID, testOther))

	fp1 := DepositFingerprint(1, common.HexToHash("0xa1"), 0)
	fp2 := DepositFingerprint(1, common.HexToHash("0xa1"), 1)

	require.NoError(t, e.RecordDeposit(fp1, assetID, testOther, uint256.NewInt(100)))
	require.NoError(t, e.RecordDeposit(fp2, assetID, testOther, uint256.NewInt(50)))
	require.Equal(t, uint256.NewInt(150), e.Balance(assetID))
	require.Equal(t, uint64(2), e.TotalDeposits)

	// Replaying a fingerprint never double-credits.
	require.ErrorIs(t, e.RecordDeposit(fp1, assetID, testOther, uint256.NewInt(100)), ErrDuplicateDeposit)
	require.Equal(t, uint256.NewInt(150), e.Balance(assetID))

	require.ErrorIs(t, e.RecordDeposit(fp1, [32]byte{0x09}, testOther, uint256.NewInt(1)), ErrAssetNotRegistered)
	require.ErrorIs(t, e.RecordDeposit(fp2, assetID, testOther, uint256.NewInt(0)), ErrInvalidAmount)
	require.ErrorIs(t, e.RecordDeposit(fp2, assetID, testOther, nil), ErrInvalidAmount)
}

func TestEscrowDebit(t *testing.T) {
	e := NewEscrow(nil)
	assetID := [32]byte{0x01}
	require.NoError(t, e.RegisterAsset(assetID, testOther))
	require.NoError(t, e.RecordDeposit(DepositFingerprint(1, common.HexToHash("0xb1"), 0), assetID, testOther, uint256.NewInt(100)))

	require.NoError(t, e.debit(assetID, uint256.NewInt(60)))
	require.Equal(t, uint256.NewInt(40), e.Balance(assetID))

	require.ErrorIs(t, e.debit(assetID, uint256.NewInt(41)), ErrInsufficientEscrow)
	require.ErrorIs(t, e.debit([32]byte{0x09}, uint256.NewInt(1)), ErrAssetNotRegistered)
	require.Equal(t, uint256.NewInt(40), e.Balance(assetID))
}

func TestDepositFingerprintDistinct(t *testing.T) {
	base := DepositFingerprint(1, common.HexToHash("0xc1"), 0)
	require.NotEqual(t, base, DepositFingerprint(2, common.HexToHash("0xc1"), 0))
	require.NotEqual(t, base, DepositFingerprint(1, common.HexToHash("0xc2"), 0))
	require.NotEqual(t, base, DepositFingerprint(1, common.HexToHash("0xc1"), 1))
	require.Equal(t, base, DepositFingerprint(1, common.HexToHash("0xc1"), 0))
}

func TestClaimLeaf(t *testing.T) {
	claim := Claim{
		User:    testUser,
		AssetID: [32]byte{0x01},
		Amount:  big.NewInt(1000),
		ChainID: 7777,
	}
	nullifier := common.HexToHash("0x1111")

	leaf, err := claim.Leaf(nullifier)
	require.NoError(t, err)

	again, err := claim.Leaf(nullifier)
	require.NoError(t, err)
	require.Equal(t, leaf, again)

	// Every field participates in the leaf.
	perturbed := []Claim{claim, claim, claim, claim}
	perturbed[0].User = testOther
	perturbed[1].AssetID = [32]byte{0x02}
	perturbed[2].Amount = big.NewInt(1001)
	perturbed[3].ChainID = 7778
	for i, p := range perturbed {
		other, err := p.Leaf(nullifier)
		require.NoError(t, err)
		require.NotEqual(t, leaf, other, "variant %d", i)
	}
	other, err := claim.Leaf(common.HexToHash("0x2222"))
	require.NoError(t, err)
	require.NotEqual(t, leaf, other)

	for _, amount := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1), new(big.Int).Lsh(big.NewInt(1), 256)} {
		bad := claim
		bad.Amount = amount
		_, err := bad.Leaf(nullifier)
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
}
