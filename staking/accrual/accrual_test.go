// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accrual

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staking/participant"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), ledger.Ether)
}

func bigStr(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}

func TestAccumulatorDelta(t *testing.T) {
	// 51e9 over 1.2 ether
	total := new(big.Int).Add(ether(1), big.NewInt(2e17))
	delta, err := AccumulatorDelta(big.NewInt(51_000_000_000), total)
	require.NoError(t, err)
	assert.Equal(t, bigStr("42500000000000000000"), delta)

	_, err = AccumulatorDelta(big.NewInt(1), new(big.Int))
	assert.Error(t, err)

	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = AccumulatorDelta(huge, big.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = AccumulatorDelta(big.NewInt(-1), big.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestPoolShare(t *testing.T) {
	acc := bigStr("42500000000000000000")

	a, err := PoolShare(ether(1), acc, new(big.Int))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42_500_000_000), a)

	b, err := PoolShare(big.NewInt(2e17), acc, new(big.Int))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(8_500_000_000), b)

	assert.Equal(t, big.NewInt(51_000_000_000), new(big.Int).Add(a, b))

	zero, err := PoolShare(ether(1), acc, acc)
	require.NoError(t, err)
	assert.Equal(t, 0, zero.Sign())

	_, err = PoolShare(ether(1), big.NewInt(1), big.NewInt(2))
	assert.Error(t, err)
}

func TestInterest(t *testing.T) {
	tests := []struct {
		principal *big.Int
		rate      uint64
		elapsed   uint64
		want      *big.Int
	}{
		// a full year at 9%
		{ether(1), 9_000_000, ledger.SecondsPerYear, bigStr("90000000000000000")},
		// 60s at rate 10000: 1e18*1e4*60/(31536000*1e8)
		{ether(1), 10_000, 60, big.NewInt(190_258_751)},
		{ether(1), 10_000, 0, big.NewInt(0)},
		{new(big.Int), 10_000, 60, big.NewInt(0)},
		// rounds down
		{big.NewInt(1), 1, 1, big.NewInt(0)},
	}
	for _, tt := range tests {
		got, err := Interest(tt.principal, tt.rate, tt.elapsed)
		require.NoError(t, err)
		assert.Equal(t, tt.want.String(), got.String(), "principal=%v rate=%v elapsed=%v", tt.principal, tt.rate, tt.elapsed)
	}

	huge := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	_, err := Interest(huge, 2, 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSettle(t *testing.T) {
	r := &participant.Record{
		Principal:        ether(1),
		StakeStart:       100,
		RewardCheckpoint: new(big.Int),
		SettledReward:    big.NewInt(5),
		LastAccrual:      100,
	}
	acc := bigStr("42500000000000000000")

	proj, err := Compute(r, acc, 10_000, 160)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42_500_000_000), proj.PoolShare)
	assert.Equal(t, big.NewInt(190_258_751), proj.Interest)
	// compute leaves the record untouched
	assert.Equal(t, big.NewInt(5), r.SettledReward)

	s, err := Settle(r, acc, 10_000, 160)
	require.NoError(t, err)
	assert.Equal(t, proj, s)
	assert.Equal(t, new(big.Int).Add(big.NewInt(5), proj.Total()), r.SettledReward)
	assert.Equal(t, acc, r.RewardCheckpoint)
	assert.Equal(t, uint64(160), r.LastAccrual)
	assert.Equal(t, uint64(100), r.StakeStart)

	// settling again at the same moment credits nothing
	before := new(big.Int).Set(r.SettledReward)
	s, err = Settle(r, acc, 10_000, 160)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Total().Sign())
	assert.Equal(t, before, r.SettledReward)
}
