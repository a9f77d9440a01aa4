// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewarder

import (
	"math/big"

	"github.com/vechain/multirewards/thor"
)

// RewardState is the funding state of one whitelisted reward token.
type RewardState struct {
	RewardsDuration      uint64   // length of a funding epoch, seconds
	PeriodFinish         uint64   // timestamp when the current epoch ends
	RewardRate           *big.Int // reward units emitted per second
	LastUpdateTime       uint64   // timestamp of last accumulator refresh
	RewardPerTokenStored *big.Int // cumulative reward per unit stake, scaled by 1e18
}

// normalize fills nil big fields after a zero-value decode.
func (rs *RewardState) normalize() *RewardState {
	if rs.RewardRate == nil {
		rs.RewardRate = &big.Int{}
	}
	if rs.RewardPerTokenStored == nil {
		rs.RewardPerTokenStored = &big.Int{}
	}
	return rs
}

// accountReward is the settlement snapshot of one (account, reward token) pair.
type accountReward struct {
	RewardPerTokenPaid *big.Int // accumulator value at last settlement
	Accrued            *big.Int // earned but unclaimed amount
}

func (ar *accountReward) normalize() *accountReward {
	if ar.RewardPerTokenPaid == nil {
		ar.RewardPerTokenPaid = &big.Int{}
	}
	if ar.Accrued == nil {
		ar.Accrued = &big.Int{}
	}
	return ar
}

// accountTokenKey addresses the per-account settlement state of one token.
type accountTokenKey struct {
	account thor.Address
	token   thor.Address
}

func (k accountTokenKey) Bytes() []byte {
	b := make([]byte, 0, 2*thor.AddressLength)
	b = append(b, k.account.Bytes()...)
	return append(b, k.token.Bytes()...)
}
