// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import "github.com/vechain/stakeledger/metrics"

var (
	metricOpsCommitted      = metrics.LazyLoadCounter("node_ops_committed_count")
	metricStateCacheHitRate = metrics.LazyLoadGauge("node_state_cache_hit_rate_percent")
)
