// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the single asset staking ledger.
//
// Participants stake the native asset and accrue reward in the reward currency from two
// independent sources: linear interest on their principal, and a pro-rata share of the
// top-ups the owner adds to the pool. Pool shares use a reward-per-unit accumulator that
// every participant settles against lazily, so a top-up costs O(1) regardless of the
// number of participants.
package staking

import (
	"math/big"
	"time"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/params"
	"github.com/vechain/stakeledger/solidity"
	"github.com/vechain/stakeledger/staking/accrual"
	"github.com/vechain/stakeledger/staking/participant"
	"github.com/vechain/stakeledger/staking/reverts"
	"github.com/vechain/stakeledger/staking/rewardpool"
	"github.com/vechain/stakeledger/state"
)

var logger = log.WithContext("pkg", "staking")

func SetLogger(l log.Logger) {
	logger = l
}

// RewardCurrency is the ledger of the currency rewards are paid in.
type RewardCurrency interface {
	TransferIn(payer ledger.Address, amount *big.Int) error
	TransferOut(payee ledger.Address, amount *big.Int) error
	BalanceOf(holder ledger.Address) (*big.Int, error)
}

// NativeAsset moves the staked asset in and out of the ledger.
type NativeAsset interface {
	TransferIn(from ledger.Address, amount *big.Int) error
	TransferOut(to ledger.Address, amount *big.Int) error
}

// Payout is what a withdrawal paid.
type Payout struct {
	Principal *big.Int
	Reward    *big.Int
}

// Staking implements the staking ledger on a state.
type Staking struct {
	addr   ledger.Address
	state  *state.State
	params *params.Params

	participants *participant.Service
	pool         *rewardpool.Service

	reward RewardCurrency
	native NativeAsset

	guard   guard
	events  []*Event
	onEvent func(*Event)
}

// New creates the staking ledger at addr. The vault of both assets is addr.
func New(addr ledger.Address, state *state.State, params *params.Params, reward RewardCurrency, native NativeAsset) *Staking {
	sctx := solidity.NewContext(addr, state)
	return &Staking{
		addr:         addr,
		state:        state,
		params:       params,
		participants: participant.New(sctx),
		pool:         rewardpool.New(sctx),
		reward:       reward,
		native:       native,
	}
}

// OnEvent sets the receiver of events. Events are delivered only after an operation succeeded.
func (s *Staking) OnEvent(fn func(*Event)) {
	s.onEvent = fn
}

// Address returns the vault address.
func (s *Staking) Address() ledger.Address {
	return s.addr
}

// run executes op atomically: on error every state change made by op is reverted and
// its events are dropped.
func (s *Staking) run(op string, fn func() error) (err error) {
	if err := s.guard.enter(); err != nil {
		metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": "reentrant"})
		return err
	}
	defer s.guard.exit()

	start := time.Now()
	rev := s.state.NewCheckpoint()
	s.events = s.events[:0]

	defer func() {
		metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
		if err != nil {
			s.state.RevertTo(rev)
			s.events = s.events[:0]
			metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": reverts.KindOf(err).String()})
			return
		}
		metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
		events := s.events
		s.events = nil
		if s.onEvent != nil {
			for _, ev := range events {
				s.onEvent(ev)
			}
		}
	}()
	return fn()
}

func (s *Staking) emit(name string, participant ledger.Address, amount *big.Int, now uint64) {
	s.events = append(s.events, newEvent(name, participant, amount, now))
}

//
// Owner operations
//

// Initialize configures the ledger. It's the constructor of the contract.
func (s *Staking) Initialize(owner ledger.Address, lockUpPeriod, interestRate uint64) error {
	return s.run("initialize", func() error {
		return s.params.Initialize(owner, lockUpPeriod, interestRate)
	})
}

// SetLockUpPeriod replaces the lock-up period for all stakes, including existing ones.
func (s *Staking) SetLockUpPeriod(caller ledger.Address, period uint64) error {
	logger.Debug("setting lock-up period", "caller", caller, "period", period)
	err := s.run("setLockUpPeriod", func() error {
		return s.params.SetLockUpPeriod(caller, period)
	})
	if err != nil {
		logger.Info("set lock-up period failed", "caller", caller, "error", err)
		return err
	}
	logger.Info("lock-up period changed", "period", period)
	return nil
}

// ChangeInterestRate replaces the annual interest rate. Interest settled before is unaffected.
func (s *Staking) ChangeInterestRate(caller ledger.Address, rate uint64) error {
	logger.Debug("changing interest rate", "caller", caller, "rate", rate)
	err := s.run("changeInterestRate", func() error {
		return s.params.SetInterestRate(caller, rate)
	})
	if err != nil {
		logger.Info("change interest rate failed", "caller", caller, "error", err)
		return err
	}
	logger.Info("interest rate changed", "rate", rate)
	return nil
}

// AddReward tops up the reward pool. The amount is shared pro rata among the principal
// staked now, or held until the next stake if nothing is staked.
func (s *Staking) AddReward(caller ledger.Address, amount *big.Int, now uint64) error {
	logger.Debug("adding reward", "caller", caller, "amount", amount)
	err := s.run("addReward", func() error {
		if err := s.params.RequireOwner(caller); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.NewValidation("amount must be greater than 0")
		}
		if _, err := s.pool.Deposit(amount); err != nil {
			return err
		}
		if err := s.reward.TransferIn(caller, amount); err != nil {
			return reverts.NewTransfer("reward transfer in failed", err)
		}
		s.emit(EventRewardAdded, ledger.Address{}, amount, now)
		return nil
	})
	if err != nil {
		logger.Info("add reward failed", "caller", caller, "error", err)
		return err
	}
	logger.Info("added reward", "amount", amount)
	return nil
}

//
// Participant operations
//

// settle credits everything r earned up to now.
func (s *Staking) settle(r *participant.Record, now uint64) error {
	pool, err := s.pool.Get()
	if err != nil {
		return err
	}
	rate, err := s.params.InterestRate()
	if err != nil {
		return err
	}
	if _, err := accrual.Settle(r, pool.Accumulator, rate, now); err != nil {
		return reverts.NewAccounting(err.Error())
	}
	return nil
}

// Stake adds amount of the native asset to the caller's principal.
func (s *Staking) Stake(caller ledger.Address, amount *big.Int, now uint64) error {
	logger.Debug("staking", "participant", caller, "amount", amount)
	err := s.run("stake", func() error {
		if caller == s.addr {
			return reverts.NewValidation("caller must not be the staking vault")
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.NewValidation("amount must be greater than 0")
		}
		r, err := s.participants.Get(caller)
		if err != nil {
			return err
		}
		if err := s.settle(r, now); err != nil {
			return err
		}

		first := !r.IsStaking()
		if first {
			r.StakeStart = now
			r.LastAccrual = now
		}
		r.Principal = new(big.Int).Add(r.Principal, amount)
		if err := s.participants.Set(caller, r); err != nil {
			return err
		}
		// the caller's checkpoint predates the fold, so a pending top-up goes to this stake
		if _, err := s.pool.IncreasePrincipal(amount, first); err != nil {
			return err
		}

		if err := s.native.TransferIn(caller, amount); err != nil {
			return reverts.NewTransfer("native transfer in failed", err)
		}
		s.emit(EventStaked, caller, amount, now)
		return nil
	})
	if err != nil {
		logger.Info("stake failed", "participant", caller, "error", err)
		return err
	}
	s.observePool()
	logger.Info("staked", "participant", caller, "amount", amount)
	return nil
}

// Withdraw pays out the caller's principal and settled reward once the lock-up has elapsed.
func (s *Staking) Withdraw(caller ledger.Address, now uint64) (*Payout, error) {
	logger.Debug("withdrawing", "participant", caller)
	var payout Payout
	err := s.run("withdraw", func() error {
		if caller == s.addr {
			return reverts.NewValidation("caller must not be the staking vault")
		}
		r, err := s.participants.Get(caller)
		if err != nil {
			return err
		}
		lockUp, err := s.params.LockUpPeriod()
		if err != nil {
			return err
		}
		if err := withdrawable(r, lockUp, now); err != nil {
			return err
		}
		if err := s.settle(r, now); err != nil {
			return err
		}

		payout = Payout{
			Principal: new(big.Int).Set(r.Principal),
			Reward:    new(big.Int).Set(r.SettledReward),
		}
		r.Reset(r.RewardCheckpoint)
		if err := s.participants.Set(caller, r); err != nil {
			return err
		}
		if err := s.pool.DecreasePrincipal(payout.Principal, payout.Reward); err != nil {
			return err
		}

		// effects are done, interactions follow
		if payout.Reward.Sign() > 0 {
			bal, err := s.reward.BalanceOf(s.addr)
			if err != nil {
				return reverts.NewTransfer("reward balance unavailable", err)
			}
			if bal.Cmp(payout.Reward) < 0 {
				return reverts.NewAccounting("reward balance insufficient for payout")
			}
		}
		if err := s.native.TransferOut(caller, payout.Principal); err != nil {
			return reverts.NewTransfer("native transfer out failed", err)
		}
		if payout.Reward.Sign() > 0 {
			if err := s.reward.TransferOut(caller, payout.Reward); err != nil {
				return reverts.NewTransfer("reward transfer out failed", err)
			}
		}
		s.emit(EventWithdrawn, caller, payout.Principal, now)
		return nil
	})
	if err != nil {
		logger.Info("withdraw failed", "participant", caller, "error", err)
		return nil, err
	}
	s.observePool()
	logger.Info("withdrew", "participant", caller, "principal", payout.Principal, "reward", payout.Reward)
	return &payout, nil
}

func (s *Staking) observePool() {
	pool, err := s.pool.Get()
	if err != nil {
		return
	}
	metricParticipants().Set(int64(pool.Participants))
	metricTotalPrincipal().Set(new(big.Int).Div(pool.TotalPrincipal, ledger.Ether).Int64())
}

//
// Getters - no state change
//

// Participant returns the record of addr.
func (s *Staking) Participant(addr ledger.Address) (*participant.Record, error) {
	return s.participants.Get(addr)
}

// PendingReward returns what the participant would be owed if settled at now.
func (s *Staking) PendingReward(addr ledger.Address, now uint64) (*big.Int, error) {
	r, err := s.participants.Get(addr)
	if err != nil {
		return nil, err
	}
	pool, err := s.pool.Get()
	if err != nil {
		return nil, err
	}
	rate, err := s.params.InterestRate()
	if err != nil {
		return nil, err
	}
	settlement, err := accrual.Compute(r, pool.Accumulator, rate, now)
	if err != nil {
		return nil, err
	}
	total := settlement.Total()
	return total.Add(total, r.SettledReward), nil
}

// Withdrawable reports whether the participant could withdraw at now.
func (s *Staking) Withdrawable(addr ledger.Address, now uint64) (bool, error) {
	r, err := s.participants.Get(addr)
	if err != nil {
		return false, err
	}
	lockUp, err := s.params.LockUpPeriod()
	if err != nil {
		return false, err
	}
	return withdrawable(r, lockUp, now) == nil, nil
}

// Pool returns the reward pool accounting.
func (s *Staking) Pool() (*rewardpool.Pool, error) {
	return s.pool.Get()
}

// RewardBalance returns the reward currency held by the ledger.
func (s *Staking) RewardBalance() (*big.Int, error) {
	return s.reward.BalanceOf(s.addr)
}

func (s *Staking) LockUpPeriod() (uint64, error) {
	return s.params.LockUpPeriod()
}

func (s *Staking) InterestRate() (uint64, error) {
	return s.params.InterestRate()
}

func (s *Staking) Owner() (ledger.Address, error) {
	return s.params.Owner()
}
