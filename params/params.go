// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params holds the global staking configuration: owner, lock-up period and interest rate.
package params

import (
	"math/big"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/solidity"
	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/state"
)

var logger = log.WithContext("pkg", "params")

var (
	slotOwner        = solidity.Slot("owner")
	slotLockUpPeriod = solidity.Slot("lockUpPeriod")
	slotInterestRate = solidity.Slot("interestRate")
)

// Params binder of the global config stored under a contract address.
type Params struct {
	owner        *solidity.Address
	lockUpPeriod *solidity.Uint256
	interestRate *solidity.Uint256
}

func New(addr ledger.Address, state *state.State) *Params {
	ctx := solidity.NewContext(addr, state)
	return &Params{
		owner:        solidity.NewAddress(ctx, slotOwner),
		lockUpPeriod: solidity.NewUint256(ctx, slotLockUpPeriod),
		interestRate: solidity.NewUint256(ctx, slotInterestRate),
	}
}

// Initialize sets the owner and the initial values. It can be done once.
func (p *Params) Initialize(owner ledger.Address, lockUpPeriod, interestRate uint64) error {
	current, err := p.owner.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.NewState("already initialized")
	}
	if owner.IsZero() {
		return reverts.NewValidation("Invalid owner: owner must not be the zero address")
	}
	if lockUpPeriod == 0 {
		return reverts.NewValidation("Invalid lockupPeriod: Lock-up period must be greater than 0")
	}
	if interestRate == 0 {
		return reverts.NewValidation("Invalid rewardRate: Reward rate must be greater than 0")
	}

	p.owner.Set(owner)
	if err := p.lockUpPeriod.Set(new(big.Int).SetUint64(lockUpPeriod)); err != nil {
		return err
	}
	if err := p.interestRate.Set(new(big.Int).SetUint64(interestRate)); err != nil {
		return err
	}
	logger.Info("params initialized", "owner", owner, "lockUpPeriod", lockUpPeriod, "interestRate", interestRate)
	return nil
}

// Owner returns the owner, zero before initialization.
func (p *Params) Owner() (ledger.Address, error) {
	return p.owner.Get()
}

// LockUpPeriod returns the lock-up period in seconds.
func (p *Params) LockUpPeriod() (uint64, error) {
	v, err := p.lockUpPeriod.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// InterestRate returns the annual rate scaled by ledger.RateBase.
func (p *Params) InterestRate() (uint64, error) {
	v, err := p.interestRate.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// SetLockUpPeriod replaces the lock-up period. It applies to all existing stakes.
func (p *Params) SetLockUpPeriod(caller ledger.Address, period uint64) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if period == 0 {
		return reverts.NewValidation("Invalid lockupPeriod: Lock-up period must be greater than 0")
	}
	return p.lockUpPeriod.Set(new(big.Int).SetUint64(period))
}

// SetInterestRate replaces the interest rate. Interest already settled is unaffected.
func (p *Params) SetInterestRate(caller ledger.Address, rate uint64) error {
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if rate == 0 {
		return reverts.NewValidation("Invalid rewardRate: Reward rate must be greater than 0")
	}
	return p.interestRate.Set(new(big.Int).SetUint64(rate))
}

// RequireOwner rejects any caller but the owner.
func (p *Params) RequireOwner(caller ledger.Address) error {
	return p.requireOwner(caller)
}

func (p *Params) requireOwner(caller ledger.Address) error {
	owner, err := p.owner.Get()
	if err != nil {
		return err
	}
	if owner.IsZero() {
		return reverts.NewState("not initialized")
	}
	if caller != owner {
		return reverts.NewAuthorization("caller is not the owner")
	}
	return nil
}
