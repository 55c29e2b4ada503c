// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package withdrawal

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/event"
	"github.com/luxfi/log"
)

// NullifierRegistry is the settlement layer's single-use nullifier set.
type NullifierRegistry interface {
	IsNullifierUsed(nullifier common.Hash) bool
	MarkNullifierUsed(nullifier common.Hash) error
}

// RootSource exposes the withdrawals commitment of the latest admitted
// block.
type RootSource interface {
	WithdrawalsRoot() common.Hash
}

// ClaimVerifier checks the zero-knowledge validity proof of a claim.
type ClaimVerifier interface {
	VerifyWithdrawalClaim(proof []byte, withdrawalsRoot, leaf, nullifier [32]byte) (bool, error)
}

// Config wires the gate to its settlement-layer collaborators. Verifier and
// Escrow are optional; without a Verifier the gate admits claims on Merkle
// inclusion alone and logs a warning per admission.
type Config struct {
	Registry NullifierRegistry
	Roots    RootSource
	Verifier ClaimVerifier
	Escrow   *Escrow
	Logger   log.Logger
}

// Gate processes withdrawal claims. Checks run cheapest first; a claim
// mutates nothing until every check has passed.
type Gate struct {
	mu sync.Mutex

	registry NullifierRegistry
	roots    RootSource
	verifier ClaimVerifier
	escrow   *Escrow
	log      log.Logger

	feed event.Feed

	// Statistics
	TotalWithdrawals uint64
}

// New creates a withdrawal gate. Registry and Roots are required.
func New(cfg Config) (*Gate, error) {
	if cfg.Registry == nil || cfg.Roots == nil {
		return nil, ErrInvalidWithdrawalsRoot
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Gate{
		registry: cfg.Registry,
		roots:    cfg.Roots,
		verifier: cfg.Verifier,
		escrow:   cfg.Escrow,
		log:      logger,
	}, nil
}

// Withdraw settles one claim. claimedRoot pins the withdrawals root the
// proof was built against; the zero hash defers to the gate's recorded root,
// any other value must match it exactly.
func (g *Gate) Withdraw(caller common.Address, claim Claim, nullifier common.Hash, merkleProof, zkProof []byte, claimedRoot common.Hash) error {
	ev, err := g.settle(caller, claim, nullifier, merkleProof, zkProof, claimedRoot)
	if err != nil {
		return err
	}
	g.feed.Send(ev)
	return nil
}

func (g *Gate) settle(caller common.Address, claim Claim, nullifier common.Hash, merkleProof, zkProof []byte, claimedRoot common.Hash) (WithdrawalCompletedEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	leaf, err := claim.Leaf(nullifier)
	if err != nil {
		return WithdrawalCompletedEvent{}, err
	}
	if caller != claim.User {
		return WithdrawalCompletedEvent{}, ErrInvalidUser
	}
	if g.registry.IsNullifierUsed(nullifier) {
		return WithdrawalCompletedEvent{}, ErrNullifierAlreadyUsed
	}

	root := g.roots.WithdrawalsRoot()
	if claimedRoot != (common.Hash{}) && claimedRoot != root {
		return WithdrawalCompletedEvent{}, ErrInvalidWithdrawalsRoot
	}
	if root == (common.Hash{}) {
		return WithdrawalCompletedEvent{}, ErrInvalidWithdrawalsRoot
	}

	if err := VerifyInclusion(root, leaf, merkleProof); err != nil {
		return WithdrawalCompletedEvent{}, err
	}

	if g.verifier == nil {
		if len(zkProof) == 0 {
			return WithdrawalCompletedEvent{}, ErrInvalidProof
		}
		g.log.Warn("settling claim without proof verification",
			log.String("user", claim.User.Hex()),
			log.String("nullifier", nullifier.Hex()),
		)
	} else {
		valid, err := g.verifier.VerifyWithdrawalClaim(zkProof, root, leaf, nullifier)
		if err != nil {
			return WithdrawalCompletedEvent{}, err
		}
		if !valid {
			return WithdrawalCompletedEvent{}, ErrInvalidProof
		}
	}

	var debited *uint256.Int
	if g.escrow != nil {
		amount, overflow := uint256.FromBig(claim.Amount)
		if overflow {
			return WithdrawalCompletedEvent{}, ErrInvalidAmount
		}
		if err := g.escrow.debit(claim.AssetID, amount); err != nil {
			return WithdrawalCompletedEvent{}, err
		}
		debited = amount
	}

	// The nullifier burn is the commit point. The registry is shared with the
	// settlement layer and its persistence, so the burn can still fail here;
	// a failed burn restores the escrow and the claim mutates nothing.
	if err := g.registry.MarkNullifierUsed(nullifier); err != nil {
		if debited != nil {
			g.escrow.credit(claim.AssetID, debited)
		}
		return WithdrawalCompletedEvent{}, err
	}
	g.TotalWithdrawals++

	g.log.Info("withdrawal settled",
		log.String("user", claim.User.Hex()),
		log.String("nullifier", nullifier.Hex()),
		log.String("root", root.Hex()),
	)
	return WithdrawalCompletedEvent{
		User:            claim.User,
		AssetID:         claim.AssetID,
		Amount:          claim.Amount,
		Nullifier:       nullifier,
		WithdrawalsRoot: root,
	}, nil
}

// SubscribeWithdrawals delivers one event per settled claim.
func (g *Gate) SubscribeWithdrawals(ch chan<- WithdrawalCompletedEvent) event.Subscription {
	return g.feed.Subscribe(ch)
}
