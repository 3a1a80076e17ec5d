// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "math/big"

// Fixed-point bases of the reward engine.
var (
	// RateBase is the denominator of the annualized interest rate.
	// A rate of 9_000_000 is 9% per year.
	RateBase = big.NewInt(100_000_000)

	// AccumulatorScale is the precision of the reward-per-unit accumulator.
	AccumulatorScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil)

	// Ether is 10^18 base units of the native asset.
	Ether = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

const (
	// SecondsPerYear is the length of the interest year.
	SecondsPerYear uint64 = 365 * 24 * 60 * 60

	// DefaultLockUpPeriod is the lock-up used by dev setups, in seconds.
	DefaultLockUpPeriod uint64 = 60
	// DefaultInterestRate is 9% per year.
	DefaultInterestRate uint64 = 9_000_000
)

// Well-known addresses of the built-in contracts.
var (
	ParamsAddress  = BytesToAddress([]byte("Params"))
	StakingAddress = BytesToAddress([]byte("Staking"))
	TokenAddress   = BytesToAddress([]byte("RewardToken"))
)
