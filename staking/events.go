// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/stakeledger/ledger"
)

const (
	EventStaked      = "Staked"
	EventWithdrawn   = "Withdrawn"
	EventRewardAdded = "RewardAdded"
)

// Topics of the events, keccak256 of the solidity signature.
var (
	TopicStaked      = ledger.Keccak256([]byte("Staked(address,uint256)"))
	TopicWithdrawn   = ledger.Keccak256([]byte("Withdrawn(address,uint256)"))
	TopicRewardAdded = ledger.Keccak256([]byte("RewardAdded(uint256)"))
)

// TopicOf returns the topic of the named event.
func TopicOf(name string) (ledger.Bytes32, bool) {
	switch name {
	case EventStaked:
		return TopicStaked, true
	case EventWithdrawn:
		return TopicWithdrawn, true
	case EventRewardAdded:
		return TopicRewardAdded, true
	}
	return ledger.Bytes32{}, false
}

// Event is emitted by a successful operation.
type Event struct {
	Name        string
	Topic       ledger.Bytes32
	Participant ledger.Address // zero for RewardAdded
	Amount      *big.Int
	Timestamp   uint64
}

func newEvent(name string, participant ledger.Address, amount *big.Int, now uint64) *Event {
	topic, _ := TopicOf(name)
	return &Event{
		Name:        name,
		Topic:       topic,
		Participant: participant,
		Amount:      new(big.Int).Set(amount),
		Timestamp:   now,
	}
}
