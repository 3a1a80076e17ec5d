// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/vechain/stakeledger/metrics"

var (
	metricOpCount        = metrics.LazyLoadCounterVec("staking_op_count", []string{"op", "result"})
	metricOpDuration     = metrics.LazyLoadHistogramVec("staking_op_duration_ms", []string{"op"}, metrics.BucketOpDuration)
	metricParticipants   = metrics.LazyLoadGauge("staking_participants")
	metricTotalPrincipal = metrics.LazyLoadGauge("staking_total_principal_ether")
)
