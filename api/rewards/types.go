// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/multirewards/rewarder"
	"github.com/vechain/multirewards/thor"
)

// Summary is the pool level snapshot.
type Summary struct {
	BaseToken    thor.Address         `json:"baseToken"`
	TotalSupply  math.HexOrDecimal256 `json:"totalSupply"`
	RewardTokens []thor.Address       `json:"rewardTokens"`
}

// TokenState is the funding state of one reward token.
type TokenState struct {
	Token             thor.Address         `json:"token"`
	Listed            bool                 `json:"listed"`
	RewardsDuration   uint64               `json:"rewardsDuration"`
	PeriodFinish      uint64               `json:"periodFinish"`
	RewardRate        math.HexOrDecimal256 `json:"rewardRate"`
	LastUpdateTime    uint64               `json:"lastUpdateTime"`
	RewardPerToken    math.HexOrDecimal256 `json:"rewardPerToken"`
	RewardForDuration math.HexOrDecimal256 `json:"rewardForDuration"`
}

// EarnedReward is one claimable position of an account.
type EarnedReward struct {
	Token  thor.Address         `json:"token"`
	Amount math.HexOrDecimal256 `json:"amount"`
}

// AccountState is the staking position of an account.
type AccountState struct {
	Address thor.Address         `json:"address"`
	Balance math.HexOrDecimal256 `json:"balance"`
	Earned  []EarnedReward       `json:"earned"`
}

// TxRequest is the common part of every mutating request. A zero timestamp
// means the server's wall clock.
type TxRequest struct {
	Caller    thor.Address `json:"caller"`
	Timestamp uint64       `json:"timestamp"`
}

type DepositRequest struct {
	TxRequest
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Receiver *thor.Address         `json:"receiver"`
}

type WithdrawRequest struct {
	TxRequest
	Amount *math.HexOrDecimal256 `json:"amount"`
	To     *thor.Address         `json:"to"`
}

type ClaimRequest struct {
	TxRequest
}

type WhitelistRequest struct {
	TxRequest
	Token       thor.Address `json:"token"`
	Whitelisted bool         `json:"whitelisted"`
}

// RewardFunding is one (token, amount) pair of a funding notification.
type RewardFunding struct {
	Token  thor.Address          `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type NotifyRequest struct {
	TxRequest
	Rewards []RewardFunding `json:"rewards"`
}

type FaucetRequest struct {
	Token  thor.Address          `json:"token"`
	Holder thor.Address          `json:"holder"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// TxEvent is one event emitted by an executed operation.
type TxEvent struct {
	Name   string `json:"name"`
	Fields any    `json:"fields"`
}

// TxResponse reports an executed operation.
type TxResponse struct {
	Timestamp uint64    `json:"timestamp"`
	Events    []TxEvent `json:"events"`
}

func toTxEvents(events []rewarder.Event) []TxEvent {
	out := make([]TxEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, TxEvent{Name: ev.Name(), Fields: ev})
	}
	return out
}

func amountOrNil(a *math.HexOrDecimal256) *big.Int {
	if a == nil {
		return nil
	}
	return (*big.Int)(a)
}
