// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity provides typed storage variables over contract storage slots.
package solidity

import (
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/state"
)

// Context binds storage variables to a contract address on a state.
type Context struct {
	address ledger.Address
	state   *state.State
}

func NewContext(address ledger.Address, state *state.State) *Context {
	return &Context{address: address, state: state}
}

func (c *Context) Address() ledger.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot derives a fixed slot position from a name.
func Slot(name string) ledger.Bytes32 {
	return ledger.BytesToBytes32([]byte(name))
}
