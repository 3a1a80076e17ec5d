// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeledger/api/events"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/node"
	"github.com/vechain/stakeledger/staking/participant"
	"github.com/vechain/stakeledger/staking/rewardpool"
)

type Config struct {
	GenesisID    ledger.Bytes32 `json:"genesisId"`
	Owner        ledger.Address `json:"owner"`
	Staking      ledger.Address `json:"staking"`
	Token        ledger.Address `json:"token"`
	LockUpPeriod uint64         `json:"lockUpPeriod"`
	InterestRate uint64         `json:"interestRate"`
	RateBase     uint64         `json:"rateBase"`
}

type Pool struct {
	Accumulator    *math.HexOrDecimal256 `json:"accumulator"`
	TotalPrincipal *math.HexOrDecimal256 `json:"totalPrincipal"`
	Pending        *math.HexOrDecimal256 `json:"pending"`
	Deposited      *math.HexOrDecimal256 `json:"deposited"`
	Distributed    *math.HexOrDecimal256 `json:"distributed"`
	Participants   uint64                `json:"participants"`
	RewardBalance  *math.HexOrDecimal256 `json:"rewardBalance"`
}

func convertPool(p *rewardpool.Pool, balance *big.Int) *Pool {
	return &Pool{
		Accumulator:    (*math.HexOrDecimal256)(p.Accumulator),
		TotalPrincipal: (*math.HexOrDecimal256)(p.TotalPrincipal),
		Pending:        (*math.HexOrDecimal256)(p.Pending),
		Deposited:      (*math.HexOrDecimal256)(p.Deposited),
		Distributed:    (*math.HexOrDecimal256)(p.Distributed),
		Participants:   p.Participants,
		RewardBalance:  (*math.HexOrDecimal256)(balance),
	}
}

type Participant struct {
	Address          ledger.Address        `json:"address"`
	Principal        *math.HexOrDecimal256 `json:"principal"`
	StakeStart       uint64                `json:"stakeStart"`
	RewardCheckpoint *math.HexOrDecimal256 `json:"rewardCheckpoint"`
	SettledReward    *math.HexOrDecimal256 `json:"settledReward"`
	LastAccrual      uint64                `json:"lastAccrual"`
	Withdrawable     bool                  `json:"withdrawable"`
}

func convertParticipant(addr ledger.Address, r *participant.Record, withdrawable bool) *Participant {
	return &Participant{
		Address:          addr,
		Principal:        (*math.HexOrDecimal256)(r.Principal),
		StakeStart:       r.StakeStart,
		RewardCheckpoint: (*math.HexOrDecimal256)(r.RewardCheckpoint),
		SettledReward:    (*math.HexOrDecimal256)(r.SettledReward),
		LastAccrual:      r.LastAccrual,
		Withdrawable:     withdrawable,
	}
}

type PendingReward struct {
	Reward    *math.HexOrDecimal256 `json:"reward"`
	Timestamp uint64                `json:"timestamp"`
}

// AmountRequest is the body of stake and reward top-up calls.
type AmountRequest struct {
	Caller ledger.Address        `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func (r *AmountRequest) amount() *big.Int {
	if r.Amount == nil {
		return new(big.Int)
	}
	return (*big.Int)(r.Amount)
}

type WithdrawRequest struct {
	Caller ledger.Address `json:"caller"`
}

type LockUpRequest struct {
	Caller ledger.Address `json:"caller"`
	Period uint64         `json:"period"`
}

type InterestRateRequest struct {
	Caller ledger.Address `json:"caller"`
	Rate   uint64         `json:"rate"`
}

type Balance struct {
	Native *math.HexOrDecimal256 `json:"native"`
	Token  *math.HexOrDecimal256 `json:"token"`
}

type Payout struct {
	Principal *math.HexOrDecimal256 `json:"principal"`
	Reward    *math.HexOrDecimal256 `json:"reward"`
}

// Receipt reports a committed operation.
type Receipt struct {
	OpNumber  uint32          `json:"opNumber"`
	Timestamp uint64          `json:"timestamp"`
	Events    []*events.Event `json:"events"`
	Payout    *Payout         `json:"payout,omitempty"`
}

func convertReceipt(r *node.Receipt) *Receipt {
	receipt := &Receipt{
		OpNumber:  r.OpNumber,
		Timestamp: r.Timestamp,
		Events:    events.ConvertEvents(r.Events),
	}
	if r.Payout != nil {
		receipt.Payout = &Payout{
			Principal: (*math.HexOrDecimal256)(r.Payout.Principal),
			Reward:    (*math.HexOrDecimal256)(r.Payout.Reward),
		}
	}
	return receipt
}
