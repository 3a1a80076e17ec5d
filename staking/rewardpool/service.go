// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewardpool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/solidity"
	"github.com/vechain/stakeledger/staking/accrual"
	"github.com/vechain/stakeledger/staking/reverts"
)

var slotPool = solidity.Slot("reward-pool")

// Service owns the pool. Every method loads, mutates and stores it.
type Service struct {
	pool *solidity.Raw[*Pool]
}

func New(sctx *solidity.Context) *Service {
	return &Service{pool: solidity.NewRaw[*Pool](sctx, slotPool)}
}

// Get returns the current pool.
func (s *Service) Get() (*Pool, error) {
	p, err := s.pool.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward pool")
	}
	if p == nil {
		return newPool(), nil
	}
	return p.normalize(), nil
}

func (s *Service) update(fn func(p *Pool) error) (*Pool, error) {
	p, err := s.Get()
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.pool.Set(p); err != nil {
		return nil, errors.Wrap(err, "failed to set reward pool")
	}
	return p, nil
}

// IncreasePrincipal adds amount to the total. firstStake counts a new participant.
// Any pending top-up is folded into the accumulator once the total is nonzero.
// It returns the folded amount.
func (s *Service) IncreasePrincipal(amount *big.Int, firstStake bool) (*big.Int, error) {
	folded := new(big.Int)
	_, err := s.update(func(p *Pool) error {
		p.TotalPrincipal.Add(p.TotalPrincipal, amount)
		if firstStake {
			p.Participants++
		}
		if p.Pending.Sign() > 0 && p.TotalPrincipal.Sign() > 0 {
			delta, err := accrual.AccumulatorDelta(p.Pending, p.TotalPrincipal)
			if err != nil {
				return reverts.NewAccounting(err.Error())
			}
			p.Accumulator.Add(p.Accumulator, delta)
			folded.Set(p.Pending)
			p.Pending.SetUint64(0)
		}
		return nil
	})
	return folded, err
}

// DecreasePrincipal removes a withdrawn principal and records the reward paid with it.
func (s *Service) DecreasePrincipal(amount, reward *big.Int) error {
	_, err := s.update(func(p *Pool) error {
		if p.TotalPrincipal.Cmp(amount) < 0 {
			return errors.Errorf("total principal %v below withdrawal %v", p.TotalPrincipal, amount)
		}
		p.TotalPrincipal.Sub(p.TotalPrincipal, amount)
		if p.Participants > 0 {
			p.Participants--
		}
		p.Distributed.Add(p.Distributed, reward)
		return nil
	})
	return err
}

// Deposit accounts a top-up. With no principal staked it is held as pending.
func (s *Service) Deposit(amount *big.Int) (*Pool, error) {
	return s.update(func(p *Pool) error {
		p.Deposited.Add(p.Deposited, amount)
		if p.TotalPrincipal.Sign() == 0 {
			p.Pending.Add(p.Pending, amount)
			return nil
		}
		delta, err := accrual.AccumulatorDelta(amount, p.TotalPrincipal)
		if err != nil {
			return reverts.NewAccounting(err.Error())
		}
		p.Accumulator.Add(p.Accumulator, delta)
		return nil
	})
}
