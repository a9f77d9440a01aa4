// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/multirewards/cache"
	"github.com/vechain/multirewards/kv"
	"github.com/vechain/multirewards/stackedmap"
	"github.com/vechain/multirewards/thor"
)

const readCacheSize = 1024

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

// State manages the world state of contracts.
//
// Writes are journaled in memory with save/revert semantics. An operation
// that fails reverts to its checkpoint without touching the store, so a
// mutation either fully commits or leaves no trace.
type State struct {
	store kv.GetPutter
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
	cache *cache.LRU // committed storage read cache
}

// New create a state object backed by the given store.
func New(store kv.GetPutter) *State {
	readCache, _ := cache.NewLRU(readCacheSize)
	state := &State{
		store: store,
		cache: readCache,
	}
	state.sm = stackedmap.New(state.storeGetter)
	state.sm.Push() // base layer for uncommitted writes
	return state
}

func persistentKey(k storageKey) thor.Bytes32 {
	return thor.Blake2b(k.addr.Bytes(), k.key.Bytes())
}

// storeGetter reads committed storage through the LRU cache.
func (s *State) storeGetter(k storageKey) (rlp.RawValue, bool, error) {
	v, err := s.cache.GetOrLoad(k, func(interface{}) (interface{}, error) {
		raw, err := s.store.Get(persistentKey(k).Bytes())
		if err != nil {
			if s.store.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(raw), nil
	})
	if err != nil {
		return nil, false, &Error{err}
	}
	return v.(rlp.RawValue), true, nil
}

// GetRawStorage returns the RLP encoded storage value for the given key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	raw, _, err := s.sm.Get(storageKey{addr, key})
	return raw, err
}

// SetRawStorage sets the RLP encoded storage value for the given key.
// An empty value deletes the storage slot.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given key.
// Setting to all-zero deletes the storage slot.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value.Bytes(), "\x00"))
	s.SetRawStorage(addr, key, v)
}

// DecodeStorage decodes the storage value for the given key with the decoder.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// EncodeStorage encodes the storage value for the given key with the encoder.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// GetStructuredStorage decodes the storage value for the given key into val.
func (s *State) GetStructuredStorage(addr thor.Address, key thor.Bytes32, val StorageDecoder) error {
	return s.DecodeStorage(addr, key, val.Decode)
}

// SetStructuredStorage encodes val into the storage value for the given key.
func (s *State) SetStructuredStorage(addr thor.Address, key thor.Bytes32, val StorageEncoder) error {
	return s.EncodeStorage(addr, key, val.Encode)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns the checkpoint to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts the state to the given checkpoint.
// All writes made after the checkpoint are discarded.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// Commit writes all journaled changes into the backing store atomically,
// then resets the journal.
func (s *State) Commit() error {
	final := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		final[k] = v
		return true
	})

	batch := s.store.NewBatch()
	for k, v := range final {
		if len(v) == 0 {
			if err := batch.Delete(persistentKey(k).Bytes()); err != nil {
				return &Error{err}
			}
		} else {
			if err := batch.Put(persistentKey(k).Bytes(), v); err != nil {
				return &Error{err}
			}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	for k, v := range final {
		s.cache.Add(k, v)
	}

	s.sm = stackedmap.New(s.storeGetter)
	s.sm.Push()
	return nil
}
