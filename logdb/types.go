// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/stakeledger/ledger"
)

// Event is a staking event stored in db.
type Event struct {
	OpNumber    uint32 // the committed operation that emitted it
	Index       uint32
	Name        string
	Topic       ledger.Bytes32
	Participant ledger.Address // zero for RewardAdded
	Amount      *big.Int
	Timestamp   uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range of event timestamps, both ends included.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventFilter filter
type EventFilter struct {
	Participant *ledger.Address
	Topic       *ledger.Bytes32
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
