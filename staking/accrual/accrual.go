// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accrual computes reward settlements in 256 bit fixed point.
// All divisions round down. The remainders stay in the reward vault.
package accrual

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staking/participant"
)

// ErrOverflow is returned when an intermediate value leaves the uint256 range.
var ErrOverflow = errors.New("accrual: arithmetic overflow")

var (
	scale         = uint256.MustFromBig(ledger.AccumulatorScale)
	interestDenom = new(uint256.Int).Mul(
		uint256.NewInt(ledger.SecondsPerYear),
		uint256.MustFromBig(ledger.RateBase),
	)
)

func toU256(x *big.Int) (*uint256.Int, error) {
	if x.Sign() < 0 {
		return nil, errors.Wrapf(ErrOverflow, "negative operand %v", x)
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		return nil, errors.Wrapf(ErrOverflow, "operand %v", x)
	}
	return v, nil
}

func mulDiv(x, y, d *uint256.Int) (*big.Int, error) {
	if d.IsZero() {
		return nil, errors.New("accrual: division by zero")
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z.ToBig(), nil
}

// AccumulatorDelta returns amount * scale / totalPrincipal.
func AccumulatorDelta(amount, totalPrincipal *big.Int) (*big.Int, error) {
	a, err := toU256(amount)
	if err != nil {
		return nil, err
	}
	t, err := toU256(totalPrincipal)
	if err != nil {
		return nil, err
	}
	return mulDiv(a, scale, t)
}

// PoolShare returns (accumulator - checkpoint) * principal / scale.
func PoolShare(principal, accumulator, checkpoint *big.Int) (*big.Int, error) {
	if accumulator.Cmp(checkpoint) < 0 {
		return nil, errors.Errorf("accrual: checkpoint %v ahead of accumulator %v", checkpoint, accumulator)
	}
	diff, err := toU256(new(big.Int).Sub(accumulator, checkpoint))
	if err != nil {
		return nil, err
	}
	p, err := toU256(principal)
	if err != nil {
		return nil, err
	}
	return mulDiv(diff, p, scale)
}

// Interest returns principal * rate * elapsed / (SecondsPerYear * RateBase).
func Interest(principal *big.Int, rate, elapsed uint64) (*big.Int, error) {
	p, err := toU256(principal)
	if err != nil {
		return nil, err
	}
	pr, overflow := new(uint256.Int).MulOverflow(p, uint256.NewInt(rate))
	if overflow {
		return nil, ErrOverflow
	}
	return mulDiv(pr, uint256.NewInt(elapsed), interestDenom)
}

// Settlement is what one settlement credits to a record.
type Settlement struct {
	PoolShare *big.Int
	Interest  *big.Int
}

// Total returns the sum of both parts.
func (s Settlement) Total() *big.Int {
	return new(big.Int).Add(s.PoolShare, s.Interest)
}

// Compute returns the settlement of r at now without changing it.
func Compute(r *participant.Record, accumulator *big.Int, rate, now uint64) (Settlement, error) {
	share, err := PoolShare(r.Principal, accumulator, r.RewardCheckpoint)
	if err != nil {
		return Settlement{}, err
	}
	interest := new(big.Int)
	if r.IsStaking() && now > r.LastAccrual {
		if interest, err = Interest(r.Principal, rate, now-r.LastAccrual); err != nil {
			return Settlement{}, err
		}
	}
	return Settlement{share, interest}, nil
}

// Settle credits the settlement at now to r and advances its checkpoints.
func Settle(r *participant.Record, accumulator *big.Int, rate, now uint64) (Settlement, error) {
	s, err := Compute(r, accumulator, rate, now)
	if err != nil {
		return Settlement{}, err
	}
	r.SettledReward.Add(r.SettledReward, s.Total())
	r.RewardCheckpoint = new(big.Int).Set(accumulator)
	if now > r.LastAccrual {
		r.LastAccrual = now
	}
	return s, nil
}
