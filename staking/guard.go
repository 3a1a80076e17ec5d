// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/stakeledger/staking/participant"
	"github.com/vechain/stakeledger/staking/reverts"
)

// guard rejects calls made while another operation is running.
type guard struct {
	busy bool
}

func (g *guard) enter() error {
	if g.busy {
		return reverts.NewState("reentrant call")
	}
	g.busy = true
	return nil
}

func (g *guard) exit() {
	g.busy = false
}

// withdrawable checks the stake -> lock -> withdraw transition.
func withdrawable(r *participant.Record, lockUpPeriod, now uint64) error {
	if !r.IsStaking() {
		return reverts.NewState("not a participant")
	}
	if now < r.StakeStart || now-r.StakeStart < lockUpPeriod {
		return reverts.NewState("lock-up not elapsed")
	}
	return nil
}
