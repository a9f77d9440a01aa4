// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/multirewards/thor"
)

// ErrIndexOutOfRange returned when an array access exceeds the current length.
var ErrIndexOutOfRange = errors.New("array index out of range")

// Array is a dynamic array storage abstraction similar to a Solidity dynamic
// array. The length lives at the base slot, element i at a position derived
// from the base slot and i.
type Array[V any] struct {
	context *Context
	basePos thor.Bytes32
	length  *Uint256
}

// NewArray creates an array rooted at the given slot.
func NewArray[V any](context *Context, pos thor.Bytes32) *Array[V] {
	return &Array[V]{
		context: context,
		basePos: pos,
		length:  NewUint256(context, pos),
	}
}

func (a *Array[V]) elemPos(index uint64) thor.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return thor.Blake2b(a.basePos.Bytes(), b[:])
}

// Len returns the number of elements.
func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Get returns the element at index.
func (a *Array[V]) Get(index uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if index >= n {
		return value, ErrIndexOutOfRange
	}
	err = a.context.state.DecodeStorage(a.context.address, a.elemPos(index), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set overwrites the element at index.
func (a *Array[V]) Set(index uint64, value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if index >= n {
		return ErrIndexOutOfRange
	}
	return a.context.state.EncodeStorage(a.context.address, a.elemPos(index), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Push appends the value, growing the array by one.
func (a *Array[V]) Push(value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if err := a.context.state.EncodeStorage(a.context.address, a.elemPos(n), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	}); err != nil {
		return err
	}
	return a.length.Add(big.NewInt(1))
}

// SwapRemove removes the element at index by moving the last element into
// its place and truncating. O(1), but reorders the remaining elements.
func (a *Array[V]) SwapRemove(index uint64) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if index >= n {
		return ErrIndexOutOfRange
	}
	if index != n-1 {
		last, err := a.Get(n - 1)
		if err != nil {
			return err
		}
		if err := a.Set(index, last); err != nil {
			return err
		}
	}
	// clear the vacated tail slot
	if err := a.context.state.EncodeStorage(a.context.address, a.elemPos(n-1), func() ([]byte, error) {
		return nil, nil
	}); err != nil {
		return err
	}
	return a.length.Sub(big.NewInt(1))
}
