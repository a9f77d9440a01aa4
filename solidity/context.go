// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity provides Solidity-like storage primitives for contracts
// implemented natively on top of the state.
package solidity

import (
	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
)

// Context binds a contract address to the state it stores into.
type Context struct {
	address thor.Address
	state   *state.State
}

// NewContext creates a storage context for the given contract address.
func NewContext(address thor.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

// Address returns the contract address.
func (c *Context) Address() thor.Address {
	return c.address
}

// State returns the backing state.
func (c *Context) State() *state.State {
	return c.state
}
