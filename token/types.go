// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/multirewards/state"
)

type balance struct {
	Amount *big.Int
}

var (
	_ state.StorageEncoder = (*balance)(nil)
	_ state.StorageDecoder = (*balance)(nil)
)

func (b *balance) Encode() ([]byte, error) {
	if b.Amount.Sign() == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(b)
}

func (b *balance) Decode(data []byte) error {
	if len(data) == 0 {
		*b = balance{&big.Int{}}
		return nil
	}
	return rlp.DecodeBytes(data, b)
}
