// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package settlement

import (
	"encoding/binary"

	"github.com/luxfi/geth/common"
)

// Key layout: admitted blocks under "block/" with the id big-endian, used
// nullifiers under "nullifier/" with the 32-byte value. Written before the
// in-memory commit so a crash can lose an admission but never resurrect one.
var (
	blockKeyPrefix     = []byte("block/")
	nullifierKeyPrefix = []byte("nullifier/")
)

func blockKey(blockID uint64) []byte {
	key := make([]byte, len(blockKeyPrefix)+8)
	copy(key, blockKeyPrefix)
	binary.BigEndian.PutUint64(key[len(blockKeyPrefix):], blockID)
	return key
}

func nullifierKey(nullifier common.Hash) []byte {
	key := make([]byte, len(nullifierKeyPrefix)+common.HashLength)
	copy(key, nullifierKeyPrefix)
	copy(key[len(nullifierKeyPrefix):], nullifier[:])
	return key
}

func (g *Gate) persistBlock(blockID uint64) error {
	if g.db == nil {
		return nil
	}
	return g.db.Put(blockKey(blockID), []byte{1})
}

func (g *Gate) persistNullifier(nullifier common.Hash) error {
	if g.db == nil {
		return nil
	}
	return g.db.Put(nullifierKey(nullifier), []byte{1})
}

func (g *Gate) loadPersisted() error {
	if g.db == nil {
		return nil
	}

	it := g.db.NewIteratorWithPrefix(blockKeyPrefix)
	defer it.Release()
	for it.Next() {
		key := it.Key()
		if len(key) != len(blockKeyPrefix)+8 {
			continue
		}
		g.processed[binary.BigEndian.Uint64(key[len(blockKeyPrefix):])] = true
	}
	if err := it.Error(); err != nil {
		return err
	}

	nit := g.db.NewIteratorWithPrefix(nullifierKeyPrefix)
	defer nit.Release()
	for nit.Next() {
		key := nit.Key()
		if len(key) != len(nullifierKeyPrefix)+common.HashLength {
			continue
		}
		g.nullifiers[common.BytesToHash(key[len(nullifierKeyPrefix):])] = true
	}
	return nit.Error()
}
