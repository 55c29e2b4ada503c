// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package settlement

import "github.com/luxfi/geth/common"

// StateRootUpdatedEvent is emitted once per admitted block, after the
// canonical root has advanced. Unverified is true when the block was admitted
// by the bootstrap placeholder policy instead of a configured proof engine.
type StateRootUpdatedEvent struct {
	BlockID         uint64
	OldRoot         common.Hash
	NewRoot         common.Hash
	WithdrawalsRoot common.Hash
	Unverified      bool
}

// AdminEventKind distinguishes administrative rotations.
type AdminEventKind uint8

const (
	AdminSequencerRotated AdminEventKind = iota
	AdminOwnershipTransferred
	AdminVerifierRotated
)

// AdminEvent is emitted for sequencer, owner, and verifier rotations. Old and
// New are zero for verifier rotations, which carry no address identity.
type AdminEvent struct {
	Kind AdminEventKind
	Old  common.Address
	New  common.Address
}
