// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewarder

import (
	"math/big"

	"github.com/vechain/multirewards/thor"
)

// Event is an auditable record emitted by a successful operation. Indexers
// can reconstruct account state from the event stream without replaying the
// accumulator math.
type Event interface {
	Name() string
}

// DepositedEvent emitted when stake is added.
type DepositedEvent struct {
	Caller   thor.Address
	Receiver thor.Address
	Amount   *big.Int
}

func (DepositedEvent) Name() string { return "Deposited" }

// WithdrawnEvent emitted when stake is removed.
type WithdrawnEvent struct {
	Caller thor.Address
	To     thor.Address
	Amount *big.Int
}

func (WithdrawnEvent) Name() string { return "Withdrawn" }

// RewardAddedEvent emitted per token on a funding notification.
type RewardAddedEvent struct {
	Caller thor.Address
	Token  thor.Address
	Amount *big.Int
}

func (RewardAddedEvent) Name() string { return "RewardAdded" }

// RewardPaidEvent emitted per token on claim payout.
type RewardPaidEvent struct {
	Account thor.Address
	Token   thor.Address
	Amount  *big.Int
}

func (RewardPaidEvent) Name() string { return "RewardPaid" }

// WhitelistUpdatedEvent emitted on registry changes.
type WhitelistUpdatedEvent struct {
	Caller      thor.Address
	Token       thor.Address
	Whitelisted bool
}

func (WhitelistUpdatedEvent) Name() string { return "WhitelistUpdated" }
