// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package settlement implements the state-transition admission gate of the
// rollup: a single canonical state root advanced exactly once per admitted
// block, gated behind Groth16 proof verification, with replay protection and
// a single-use nullifier registry consumed by the withdrawal gate.
package settlement

import (
	"errors"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/event"
	"github.com/luxfi/log"
)

// Errors
var (
	ErrOnlySequencer           = errors.New("caller is not the sequencer")
	ErrInvalidSequencerAddress = errors.New("invalid sequencer address")
	ErrBlockAlreadyProcessed   = errors.New("block already processed")
	ErrInvalidStateRoot        = errors.New("invalid state root")
	ErrInvalidProof            = errors.New("invalid proof")
	ErrNullifierAlreadyUsed    = errors.New("nullifier already used")
	ErrOwnableUnauthorized     = errors.New("caller is not the owner")
	ErrInvalidOwnerAddress     = errors.New("invalid owner address")
)

// BlockVerifier is the proof-verification contract the gate admits blocks
// through. A (false, nil) result means the proof is cryptographically invalid
// or malformed; an error means verification could not be evaluated at all
// (key unset, input-count bug) and is propagated to the caller as is.
type BlockVerifier interface {
	VerifyBlockTransition(proof []byte, prevRoot, newRoot, withdrawalsRoot [32]byte) (bool, error)
}

// Config carries the gate's construction parameters. Verifier, DB, and
// Logger are optional; a gate without a Verifier runs in unverified
// bootstrap mode and says so on every admission.
type Config struct {
	Owner            common.Address
	Sequencer        common.Address
	GenesisStateRoot common.Hash
	Verifier         BlockVerifier
	DB               database.Database
	Logger           log.Logger
}

// Gate is the state-transition admission gate. One mutex guards every
// mutating entry point for the duration of the call, so no nested or
// concurrent call can observe a half-updated state; queries read under a
// shared lock.
type Gate struct {
	mu sync.RWMutex

	stateRoot       common.Hash
	withdrawalsRoot common.Hash
	processed       map[uint64]bool
	nullifiers      map[common.Hash]bool
	sequencer       common.Address
	verifier        BlockVerifier

	owned *Owned
	db    database.Database
	log   log.Logger

	rootFeed  event.Feed
	adminFeed event.Feed

	// Statistics
	TotalBlocksAdmitted uint64
}

// New creates a gate at the genesis state root. When a database is
// configured, previously admitted block ids and used nullifiers are reloaded
// so a restart cannot replay either.
func New(cfg Config) (*Gate, error) {
	if cfg.Owner == (common.Address{}) {
		return nil, ErrInvalidOwnerAddress
	}
	if cfg.Sequencer == (common.Address{}) {
		return nil, ErrInvalidSequencerAddress
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoOpLogger()
	}

	g := &Gate{
		stateRoot:  cfg.GenesisStateRoot,
		processed:  make(map[uint64]bool),
		nullifiers: make(map[common.Hash]bool),
		sequencer:  cfg.Sequencer,
		verifier:   cfg.Verifier,
		owned:      NewOwned(cfg.Owner),
		db:         cfg.DB,
		log:        logger,
	}
	if err := g.loadPersisted(); err != nil {
		return nil, err
	}
	return g, nil
}

// SubmitBlockProof admits one block: replay and chain-continuity checks,
// proof verification, then the atomic commit of the processed-block record,
// the new state root, and the withdrawals root. Any failure leaves the gate
// untouched. Callable only by the current sequencer.
func (g *Gate) SubmitBlockProof(caller common.Address, blockID uint64, prevRoot, newRoot, withdrawalsRoot common.Hash, proof []byte) error {
	ev, err := g.admitBlock(caller, blockID, prevRoot, newRoot, withdrawalsRoot, proof)
	if err != nil {
		return err
	}
	// Sent outside the gate lock so a slow subscriber cannot stall admission.
	g.rootFeed.Send(ev)
	return nil
}

func (g *Gate) admitBlock(caller common.Address, blockID uint64, prevRoot, newRoot, withdrawalsRoot common.Hash, proof []byte) (StateRootUpdatedEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if caller != g.sequencer {
		return StateRootUpdatedEvent{}, ErrOnlySequencer
	}
	if g.processed[blockID] {
		return StateRootUpdatedEvent{}, ErrBlockAlreadyProcessed
	}
	if prevRoot != g.stateRoot || newRoot == (common.Hash{}) {
		return StateRootUpdatedEvent{}, ErrInvalidStateRoot
	}

	unverified := g.verifier == nil
	if unverified {
		// Bootstrap-only placeholder policy: non-empty proof bytes and the
		// non-zero new root already checked above. Never production
		// admission; the emitted event carries the Unverified flag.
		if len(proof) == 0 {
			return StateRootUpdatedEvent{}, ErrInvalidProof
		}
		g.log.Warn("admitting block without proof verification",
			log.Uint64("blockID", blockID),
			log.String("newRoot", newRoot.Hex()),
		)
	} else {
		valid, err := g.verifier.VerifyBlockTransition(proof, prevRoot, newRoot, withdrawalsRoot)
		if err != nil {
			return StateRootUpdatedEvent{}, err
		}
		if !valid {
			return StateRootUpdatedEvent{}, ErrInvalidProof
		}
	}

	if err := g.persistBlock(blockID); err != nil {
		return StateRootUpdatedEvent{}, err
	}

	oldRoot := g.stateRoot
	g.processed[blockID] = true
	g.stateRoot = newRoot
	g.withdrawalsRoot = withdrawalsRoot
	g.TotalBlocksAdmitted++

	g.log.Info("state root advanced",
		log.Uint64("blockID", blockID),
		log.String("oldRoot", oldRoot.Hex()),
		log.String("newRoot", newRoot.Hex()),
	)
	return StateRootUpdatedEvent{
		BlockID:         blockID,
		OldRoot:         oldRoot,
		NewRoot:         newRoot,
		WithdrawalsRoot: withdrawalsRoot,
		Unverified:      unverified,
	}, nil
}

// SetSequencer rotates the sequencer. Only the current sequencer may rotate;
// the zero address is rejected.
func (g *Gate) SetSequencer(caller, newSequencer common.Address) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if caller != g.sequencer {
		return ErrOnlySequencer
	}
	if newSequencer == (common.Address{}) {
		return ErrInvalidSequencerAddress
	}
	old := g.sequencer
	g.sequencer = newSequencer

	g.adminFeed.Send(AdminEvent{Kind: AdminSequencerRotated, Old: old, New: newSequencer})
	return nil
}

// SetVerifier installs or replaces the proof engine. Owner only. A nil
// verifier switches the gate into the unverified bootstrap mode.
func (g *Gate) SetVerifier(caller common.Address, v BlockVerifier) error {
	if err := g.owned.Authorize(caller); err != nil {
		return err
	}

	g.mu.Lock()
	g.verifier = v
	g.mu.Unlock()

	if v == nil {
		g.log.Warn("verifier removed; gate is in unverified admission mode")
	}
	g.adminFeed.Send(AdminEvent{Kind: AdminVerifierRotated})
	return nil
}

// TransferOwnership hands the administrative role to newOwner.
func (g *Gate) TransferOwnership(caller, newOwner common.Address) error {
	old := g.owned.CurrentOwner()
	if err := g.owned.TransferOwnership(caller, newOwner); err != nil {
		return err
	}
	g.adminFeed.Send(AdminEvent{Kind: AdminOwnershipTransferred, Old: old, New: newOwner})
	return nil
}

// MarkNullifierUsed records a nullifier as spent. A second insert of the
// same value fails with ErrNullifierAlreadyUsed; this is the double-spend
// guard the withdrawal gate relies on.
func (g *Gate) MarkNullifierUsed(nullifier common.Hash) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nullifiers[nullifier] {
		return ErrNullifierAlreadyUsed
	}
	if err := g.persistNullifier(nullifier); err != nil {
		return err
	}
	g.nullifiers[nullifier] = true
	return nil
}

// IsNullifierUsed reports whether a nullifier has been spent.
func (g *Gate) IsNullifierUsed(nullifier common.Hash) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nullifiers[nullifier]
}

// StateRoot returns the canonical state root.
func (g *Gate) StateRoot() common.Hash {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stateRoot
}

// WithdrawalsRoot returns the withdrawals commitment of the most recently
// admitted block.
func (g *Gate) WithdrawalsRoot() common.Hash {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.withdrawalsRoot
}

// IsBlockProcessed reports whether blockID has been admitted.
func (g *Gate) IsBlockProcessed(blockID uint64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.processed[blockID]
}

// Sequencer returns the current sequencer.
func (g *Gate) Sequencer() common.Address {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sequencer
}

// Owner returns the current owner.
func (g *Gate) Owner() common.Address {
	return g.owned.CurrentOwner()
}

// SubscribeStateRootUpdates delivers one event per admitted block.
func (g *Gate) SubscribeStateRootUpdates(ch chan<- StateRootUpdatedEvent) event.Subscription {
	return g.rootFeed.Subscribe(ch)
}

// SubscribeAdminEvents delivers sequencer, owner, and verifier rotations.
func (g *Gate) SubscribeAdminEvents(ch chan<- AdminEvent) event.Subscription {
	return g.adminFeed.Subscribe(ch)
}
