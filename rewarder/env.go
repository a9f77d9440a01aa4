// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewarder

import (
	"github.com/vechain/multirewards/thor"
)

// Environment carries the call context of one operation: the acting address,
// the current timestamp and the events emitted so far. Events logged by a
// failed operation are discarded together with its state changes.
type Environment struct {
	caller thor.Address
	now    uint64
	events []Event
}

// NewEnvironment creates a call environment.
func NewEnvironment(caller thor.Address, now uint64) *Environment {
	return &Environment{caller: caller, now: now}
}

// Caller returns the acting address.
func (env *Environment) Caller() thor.Address {
	return env.caller
}

// Now returns the current timestamp, in seconds.
func (env *Environment) Now() uint64 {
	return env.now
}

// Log records an event.
func (env *Environment) Log(ev Event) {
	env.events = append(env.events, ev)
}

// Events returns all events emitted through this environment.
func (env *Environment) Events() []Event {
	return env.events
}
