// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package settlement

import (
	"sync"

	"github.com/luxfi/geth/common"
)

// Owned is the ownership capability for administrative parameters: a single
// owner address, transferable only by the current holder.
type Owned struct {
	mu    sync.RWMutex
	owner common.Address
}

// NewOwned creates the capability with an initial owner.
func NewOwned(owner common.Address) *Owned {
	return &Owned{owner: owner}
}

// CurrentOwner returns the current owner.
func (o *Owned) CurrentOwner() common.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.owner
}

// Authorize returns ErrOwnableUnauthorized unless caller is the current
// owner.
func (o *Owned) Authorize(caller common.Address) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if caller != o.owner {
		return ErrOwnableUnauthorized
	}
	return nil
}

// TransferOwnership hands the capability to newOwner. Only the current owner
// may transfer, and the zero address is rejected.
func (o *Owned) TransferOwnership(caller, newOwner common.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if caller != o.owner {
		return ErrOwnableUnauthorized
	}
	if newOwner == (common.Address{}) {
		return ErrInvalidOwnerAddress
	}
	o.owner = newOwner
	return nil
}
