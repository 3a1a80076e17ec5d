// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the initial state of a ledger.
package genesis

import (
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/state"
)

// Genesis to build the initial state.
type Genesis struct {
	builder *Builder
	id      ledger.Bytes32
	name    string
}

// Build writes the initial state through the stater.
func (g *Genesis) Build(stater *state.Stater) (ledger.Bytes32, error) {
	return g.builder.Build(stater)
}

// ID returns the digest of the initial state.
func (g *Genesis) ID() ledger.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// LaunchTime returns the time the ledger opened.
func (g *Genesis) LaunchTime() uint64 {
	return g.builder.timestamp
}
