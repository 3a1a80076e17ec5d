// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/genesis"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/staking"
	"github.com/vechain/stakeledger/staking/reverts"
)

type testNode struct {
	*Node
	db    *lvldb.LevelDB
	logDB *logdb.LogDB
	clock *clockwork.FakeClock
}

func newTestNode(t *testing.T) *testNode {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	n, err := New(db, logDB, genesis.NewDevnet(), clock, Options{SkipNTP: true})
	require.NoError(t, err)
	return &testNode{n, db, logDB, clock}
}

func TestStakeAndWithdraw(t *testing.T) {
	n := newTestNode(t)
	staker := genesis.DevAccounts()[1].Address

	ch := make(chan []*logdb.Event, 4)
	sub := n.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	before, err := n.NativeBalance(staker)
	require.NoError(t, err)

	receipt, err := n.Stake(staker, ledger.Ether)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), receipt.OpNumber)
	assert.Equal(t, uint64(1_700_000_000), receipt.Timestamp)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, staking.EventStaked, receipt.Events[0].Name)

	published := <-ch
	require.Len(t, published, 1)
	assert.Equal(t, staker, published[0].Participant)
	assert.Equal(t, uint32(1), published[0].OpNumber)

	_, err = n.Withdraw(staker)
	assert.Equal(t, reverts.KindState, reverts.KindOf(err))

	n.clock.Advance(60 * time.Second)
	receipt, err = n.Withdraw(staker)
	require.NoError(t, err)
	require.NotNil(t, receipt.Payout)
	assert.Equal(t, ledger.Ether.String(), receipt.Payout.Principal.String())
	// 9% a year on 1 ether over 60s
	assert.Equal(t, "171232876", receipt.Payout.Reward.String())
	<-ch

	after, err := n.NativeBalance(staker)
	require.NoError(t, err)
	assert.Equal(t, before.String(), after.String())

	events, err := n.logDB.FilterEvents(context.Background(), &logdb.EventFilter{Participant: &staker})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, staking.EventWithdrawn, events[1].Name)
	assert.Equal(t, uint32(2), events[1].OpNumber)
}

func TestFailedOperationCommitsNothing(t *testing.T) {
	n := newTestNode(t)
	owner := genesis.DevAccounts()[0].Address
	staker := genesis.DevAccounts()[1].Address

	_, err := n.Stake(staker, big.NewInt(0))
	assert.Equal(t, reverts.KindValidation, reverts.KindOf(err))
	_, err = n.AddReward(staker, big.NewInt(10))
	assert.Equal(t, reverts.KindAuthorization, reverts.KindOf(err))
	_, err = n.SetLockUpPeriod(staker, 10)
	assert.Equal(t, reverts.KindAuthorization, reverts.KindOf(err))

	newest, err := n.logDB.NewestOpNumber()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), newest)

	_, err = n.ChangeInterestRate(owner, 1_000_000)
	require.NoError(t, err)
	_, err = n.AddReward(owner, big.NewInt(1000))
	require.NoError(t, err)

	err = n.View(func(s *staking.Staking, _ uint64) error {
		rate, err := s.InterestRate()
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000), rate)
		pool, err := s.Pool()
		require.NoError(t, err)
		assert.Equal(t, "1000", pool.Pending.String())
		return nil
	})
	require.NoError(t, err)

	bal, err := n.TokenBalance(ledger.StakingAddress)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000001000", bal.String())
}

func TestReopen(t *testing.T) {
	n := newTestNode(t)
	staker := genesis.DevAccounts()[2].Address
	_, err := n.Stake(staker, ledger.Ether)
	require.NoError(t, err)

	reopened, err := New(n.db, n.logDB, genesis.NewDevnet(), n.clock, Options{SkipNTP: true})
	require.NoError(t, err)
	assert.Equal(t, n.GenesisID(), reopened.GenesisID())
	err = reopened.View(func(s *staking.Staking, _ uint64) error {
		r, err := s.Participant(staker)
		require.NoError(t, err)
		assert.Equal(t, ledger.Ether.String(), r.Principal.String())
		return nil
	})
	require.NoError(t, err)

	other, err := genesis.NewCustomNet(&genesis.CustomGenesis{
		Owner:        staker,
		LockUpPeriod: 1,
		InterestRate: 1,
	})
	require.NoError(t, err)
	_, err = New(n.db, n.logDB, other, n.clock, Options{})
	assert.ErrorIs(t, err, ErrGenesisMismatch)
}

func TestRun(t *testing.T) {
	n := newTestNode(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	n.clock.BlockUntilContext(ctx, 2)
	n.clock.Advance(statsInterval)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("node did not stop")
	}
}

func TestHealthTracksOperations(t *testing.T) {
	n := newTestNode(t)
	staker := genesis.DevAccounts()[1].Address

	assert.Nil(t, n.Health().Status().LastOperation)

	_, err := n.Stake(staker, ledger.Ether)
	require.NoError(t, err)

	status := n.Health().Status()
	assert.True(t, status.Healthy)
	require.NotNil(t, status.LastOperation)
	assert.Equal(t, uint32(1), status.LastOperation.Number)
	assert.Equal(t, n.clock.Now(), *status.LastOperation.Timestamp)
}

func TestViewSeesOneCommit(t *testing.T) {
	n := newTestNode(t)
	owner := genesis.DevAccounts()[0].Address

	committed := make(chan error, 1)
	err := n.View(func(s *staking.Staking, _ uint64) error {
		pool, err := s.Pool()
		require.NoError(t, err)

		go func() {
			_, err := n.AddReward(owner, big.NewInt(777))
			committed <- err
		}()
		select {
		case <-committed:
			t.Fatal("operation committed while a view was open")
		case <-time.After(50 * time.Millisecond):
		}

		held, err := s.RewardBalance()
		require.NoError(t, err)
		after, err := s.Pool()
		require.NoError(t, err)
		assert.Equal(t, pool.Deposited.String(), after.Deposited.String())
		assert.Equal(t, "1000000000000000000000000", held.String())
		return nil
	})
	require.NoError(t, err)

	select {
	case err := <-committed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("operation did not commit after the view")
	}

	native, tokens, err := n.Balances(ledger.StakingAddress)
	require.NoError(t, err)
	assert.Equal(t, 0, native.Sign())
	assert.Equal(t, "1000000000000000000000777", tokens.String())
}

func TestHistoryWriteFailure(t *testing.T) {
	n := newTestNode(t)
	staker := genesis.DevAccounts()[1].Address

	ch := make(chan []*logdb.Event, 1)
	sub := n.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	require.NoError(t, n.logDB.Close())

	receipt, err := n.Stake(staker, ledger.Ether)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), receipt.OpNumber)
	assert.Empty(t, receipt.Events)

	select {
	case evs := <-ch:
		t.Fatalf("unexpected events published: %v", evs)
	default:
	}

	// the state commit stands
	err = n.View(func(s *staking.Staking, _ uint64) error {
		r, err := s.Participant(staker)
		require.NoError(t, err)
		assert.Equal(t, ledger.Ether.String(), r.Principal.String())
		return nil
	})
	require.NoError(t, err)
}
