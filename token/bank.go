// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the custody ledger for base and reward tokens.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
)

// ErrInsufficientFunds returned when a transfer exceeds the sender's balance.
var ErrInsufficientFunds = errors.New("insufficient token balance")

// Bank keeps balances of any number of tokens, keyed by token address.
// It provides the value-transfer surface the rewarder depends on: any
// non-success is reported as an error and must abort the whole operation.
type Bank struct {
	addr  thor.Address
	state *state.State
}

// NewBank creates a bank rooted at the given contract address.
func NewBank(addr thor.Address, state *state.State) *Bank {
	return &Bank{addr, state}
}

func balanceKey(token, holder thor.Address) thor.Bytes32 {
	return thor.Blake2b([]byte("token-balance"), token.Bytes(), holder.Bytes())
}

func supplyKey(token thor.Address) thor.Bytes32 {
	return thor.Blake2b([]byte("token-supply"), token.Bytes())
}

func (b *Bank) getBalance(token, holder thor.Address) (*big.Int, error) {
	var bal balance
	if err := b.state.GetStructuredStorage(b.addr, balanceKey(token, holder), &bal); err != nil {
		return nil, errors.Wrap(err, "get balance")
	}
	return bal.Amount, nil
}

func (b *Bank) setBalance(token, holder thor.Address, amount *big.Int) error {
	if err := b.state.SetStructuredStorage(b.addr, balanceKey(token, holder), &balance{amount}); err != nil {
		return errors.Wrap(err, "set balance")
	}
	return nil
}

// Balance returns holder's balance of the given token.
func (b *Bank) Balance(token, holder thor.Address) (*big.Int, error) {
	return b.getBalance(token, holder)
}

// TotalSupply returns the minted supply of the given token.
func (b *Bank) TotalSupply(token thor.Address) (*big.Int, error) {
	var supply balance
	if err := b.state.GetStructuredStorage(b.addr, supplyKey(token), &supply); err != nil {
		return nil, errors.Wrap(err, "get supply")
	}
	return supply.Amount, nil
}

// Mint credits holder with amount of token, growing the token supply.
func (b *Bank) Mint(token, holder thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := b.getBalance(token, holder)
	if err != nil {
		return err
	}
	if err := b.setBalance(token, holder, new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	supply, err := b.TotalSupply(token)
	if err != nil {
		return err
	}
	return errors.Wrap(
		b.state.SetStructuredStorage(b.addr, supplyKey(token), &balance{new(big.Int).Add(supply, amount)}),
		"set supply")
}

// Transfer moves amount of token from one holder to another.
// It fails with ErrInsufficientFunds if the sender's balance is too low.
func (b *Bank) Transfer(token, from, to thor.Address, amount *big.Int) error {
	if amount.Sign() == 0 || from == to {
		return nil
	}
	fromBal, err := b.getBalance(token, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	toBal, err := b.getBalance(token, to)
	if err != nil {
		return err
	}
	if err := b.setBalance(token, from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return b.setBalance(token, to, new(big.Int).Add(toBal, amount))
}
