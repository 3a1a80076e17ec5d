// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node hosts the staking ledger: it runs operations one at a time on the
// latest committed state, persists their effects and publishes their events.
package node

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/co"
	"github.com/vechain/stakeledger/genesis"
	"github.com/vechain/stakeledger/health"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/params"
	"github.com/vechain/stakeledger/staking"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/token"
)

var logger = log.WithContext("pkg", "node")

const (
	stateBucket = kv.Bucket("s")
	metaBucket  = kv.Bucket("m")
)

var genesisKey = []byte("genesis")

// ErrGenesisMismatch is returned when the database was built from another genesis.
var ErrGenesisMismatch = errors.New("genesis mismatch")

// Options for Node.
type Options struct {
	StateCacheSize int
	SkipNTP        bool
}

// Receipt is the outcome of a committed operation.
// OpNumber is the position of the operation in the event history. It is 0 when the
// operation emitted no events, or when writing them failed; Events is empty then.
type Receipt struct {
	OpNumber  uint32
	Timestamp uint64
	Events    []*logdb.Event
	Payout    *staking.Payout // withdraw only
}

// Node runs ledger operations.
type Node struct {
	goes      co.Goes
	genesisID ledger.Bytes32
	stater    *state.Stater
	logDB     *logdb.LogDB
	clock     clockwork.Clock
	health    *health.Health
	opts      Options

	mu        sync.RWMutex // exec holds it exclusively, readers see whole commits only
	eventFeed event.Feed
	scope     event.SubscriptionScope
}

// New opens the ledger stored in db, building the genesis state on first use.
func New(db kv.Store, logDB *logdb.LogDB, gene *genesis.Genesis, clock clockwork.Clock, opts Options) (*Node, error) {
	meta := metaBucket.NewStore(db)
	stater := state.NewStater(stateBucket.NewStore(db), opts.StateCacheSize)

	stored, err := meta.Get(genesisKey)
	switch {
	case err == nil:
		if ledger.BytesToBytes32(stored) != gene.ID() {
			return nil, errors.Wrapf(ErrGenesisMismatch, "want %v, stored %v", gene.ID(), ledger.BytesToBytes32(stored))
		}
	case meta.IsNotFound(err):
		id, err := gene.Build(stater)
		if err != nil {
			return nil, errors.Wrap(err, "build genesis")
		}
		if err := meta.Put(genesisKey, id.Bytes()); err != nil {
			return nil, errors.Wrap(err, "save genesis id")
		}
		logger.Info("genesis built", "name", gene.Name(), "id", id)
	default:
		return nil, errors.Wrap(err, "load genesis id")
	}

	return &Node{
		genesisID: gene.ID(),
		stater:    stater,
		logDB:     logDB,
		clock:     clock,
		health:    health.New(clock),
		opts:      opts,
	}, nil
}

// GenesisID returns the id of the genesis the ledger was built from.
func (n *Node) GenesisID() ledger.Bytes32 {
	return n.genesisID
}

// Clock returns the clock operation timestamps are read from.
func (n *Node) Clock() clockwork.Clock {
	return n.clock
}

// Health returns the condition tracker of the node.
func (n *Node) Health() *health.Health {
	return n.health
}

// Run runs the house keeping loop until ctx is done.
func (n *Node) Run(ctx context.Context) error {
	logger.Debug("node started")
	n.goes.Go(func() { n.houseKeeping(ctx) })
	n.goes.Wait()
	n.scope.Close()
	logger.Debug("node stopped")
	return nil
}

// SubscribeEvents delivers the events of every committed operation.
func (n *Node) SubscribeEvents(ch chan<- []*logdb.Event) event.Subscription {
	return n.scope.Track(n.eventFeed.Subscribe(ch))
}

func (n *Node) now() uint64 {
	return uint64(n.clock.Now().Unix())
}

func newStaking(st *state.State) *staking.Staking {
	tok := token.New(ledger.TokenAddress, st)
	return staking.New(
		ledger.StakingAddress,
		st,
		params.New(ledger.ParamsAddress, st),
		tok.Vault(ledger.StakingAddress),
		state.NewNativeLedger(st, ledger.StakingAddress),
	)
}

// View runs fn on the latest committed state. Changes made by fn are discarded.
// No operation commits while fn runs, so every read inside fn sees the same commit.
// fn must not run operations on the node.
func (n *Node) View(fn func(s *staking.Staking, now uint64) error) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return fn(newStaking(n.stater.NewState()), n.now())
}

// TokenBalance returns the reward token balance of addr.
func (n *Node) TokenBalance(addr ledger.Address) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return token.New(ledger.TokenAddress, n.stater.NewState()).BalanceOf(addr)
}

// NativeBalance returns the native asset balance of addr.
func (n *Node) NativeBalance(addr ledger.Address) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.stater.NewState().GetBalance(addr)
}

// Balances returns the native and reward token balances of addr from the same commit.
func (n *Node) Balances(addr ledger.Address) (native *big.Int, tokens *big.Int, err error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	st := n.stater.NewState()
	if native, err = st.GetBalance(addr); err != nil {
		return nil, nil, err
	}
	if tokens, err = token.New(ledger.TokenAddress, st).BalanceOf(addr); err != nil {
		return nil, nil, err
	}
	return native, tokens, nil
}

// exec runs op on a fresh state and, if it succeeds, commits the state and the events.
func (n *Node) exec(op func(s *staking.Staking, now uint64) error) (*Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	st := n.stater.NewState()
	s := newStaking(st)
	var emitted []*staking.Event
	s.OnEvent(func(ev *staking.Event) { emitted = append(emitted, ev) })

	now := n.now()
	if err := op(s, now); err != nil {
		return nil, err
	}

	if err := st.Stage().Commit(); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}

	batch := n.logDB.Prepare()
	for _, ev := range emitted {
		batch.Add(ev.Name, ev.Topic, ev.Participant, ev.Amount, ev.Timestamp)
	}
	events := batch.Events()
	opNum, err := batch.Commit()
	if err != nil {
		// state is committed already, only the history misses this operation
		logger.Error("failed to write events, operation is missing from history", "events", len(events), "err", err)
		metricOpsCommitted().Add(1)
		return &Receipt{Timestamp: now}, nil
	}
	n.health.OperationCommitted(opNum)
	metricOpsCommitted().Add(1)
	if len(events) > 0 {
		n.eventFeed.Send(events)
	}
	return &Receipt{OpNumber: opNum, Timestamp: now, Events: events}, nil
}

// Stake stakes amount of the caller's native asset.
func (n *Node) Stake(caller ledger.Address, amount *big.Int) (*Receipt, error) {
	return n.exec(func(s *staking.Staking, now uint64) error {
		return s.Stake(caller, amount, now)
	})
}

// Withdraw pays out the caller's stake.
func (n *Node) Withdraw(caller ledger.Address) (*Receipt, error) {
	var payout *staking.Payout
	receipt, err := n.exec(func(s *staking.Staking, now uint64) (err error) {
		payout, err = s.Withdraw(caller, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	receipt.Payout = payout
	return receipt, nil
}

// AddReward tops up the reward pool from the caller's tokens.
func (n *Node) AddReward(caller ledger.Address, amount *big.Int) (*Receipt, error) {
	return n.exec(func(s *staking.Staking, now uint64) error {
		return s.AddReward(caller, amount, now)
	})
}

func (n *Node) SetLockUpPeriod(caller ledger.Address, period uint64) (*Receipt, error) {
	return n.exec(func(s *staking.Staking, _ uint64) error {
		return s.SetLockUpPeriod(caller, period)
	})
}

func (n *Node) ChangeInterestRate(caller ledger.Address, rate uint64) (*Receipt, error) {
	return n.exec(func(s *staking.Staking, _ uint64) error {
		return s.ChangeInterestRate(caller, rate)
	})
}
