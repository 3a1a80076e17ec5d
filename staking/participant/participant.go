// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import "math/big"

// Record is the stake of one participant.
type Record struct {
	Principal        *big.Int // native asset staked
	StakeStart       uint64   // set when principal leaves zero, kept until it returns to zero
	RewardCheckpoint *big.Int // accumulator value at the last settlement
	SettledReward    *big.Int // reward owed and not yet paid
	LastAccrual      uint64   // interest has been settled up to this time
}

func newRecord() *Record {
	return &Record{
		Principal:        new(big.Int),
		RewardCheckpoint: new(big.Int),
		SettledReward:    new(big.Int),
	}
}

// normalize replaces nil amounts decoded from an empty slot.
func (r *Record) normalize() *Record {
	if r.Principal == nil {
		r.Principal = new(big.Int)
	}
	if r.RewardCheckpoint == nil {
		r.RewardCheckpoint = new(big.Int)
	}
	if r.SettledReward == nil {
		r.SettledReward = new(big.Int)
	}
	return r
}

// IsStaking reports whether the record holds principal.
func (r *Record) IsStaking() bool {
	return r.Principal.Sign() > 0
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	return &Record{
		Principal:        new(big.Int).Set(r.Principal),
		StakeStart:       r.StakeStart,
		RewardCheckpoint: new(big.Int).Set(r.RewardCheckpoint),
		SettledReward:    new(big.Int).Set(r.SettledReward),
		LastAccrual:      r.LastAccrual,
	}
}

// Reset zeroes the record. The checkpoint is kept at accumulator so the next stake starts from it.
func (r *Record) Reset(accumulator *big.Int) {
	r.Principal = new(big.Int)
	r.StakeStart = 0
	r.RewardCheckpoint = new(big.Int).Set(accumulator)
	r.SettledReward = new(big.Int)
	r.LastAccrual = 0
}
