// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewardpool

import "math/big"

// Pool is the global reward accounting.
type Pool struct {
	Accumulator    *big.Int // reward per unit of principal, scaled by ledger.AccumulatorScale
	TotalPrincipal *big.Int
	Pending        *big.Int // top-ups received while TotalPrincipal was zero
	Deposited      *big.Int // sum of all top-ups
	Distributed    *big.Int // sum of all rewards paid out
	Participants   uint64   // records with principal > 0
}

func newPool() *Pool {
	return &Pool{
		Accumulator:    new(big.Int),
		TotalPrincipal: new(big.Int),
		Pending:        new(big.Int),
		Deposited:      new(big.Int),
		Distributed:    new(big.Int),
	}
}

func (p *Pool) normalize() *Pool {
	for _, f := range []**big.Int{&p.Accumulator, &p.TotalPrincipal, &p.Pending, &p.Deposited, &p.Distributed} {
		if *f == nil {
			*f = new(big.Int)
		}
	}
	return p
}

// Clone returns a deep copy.
func (p *Pool) Clone() *Pool {
	return &Pool{
		Accumulator:    new(big.Int).Set(p.Accumulator),
		TotalPrincipal: new(big.Int).Set(p.TotalPrincipal),
		Pending:        new(big.Int).Set(p.Pending),
		Deposited:      new(big.Int).Set(p.Deposited),
		Distributed:    new(big.Int).Set(p.Distributed),
		Participants:   p.Participants,
	}
}
