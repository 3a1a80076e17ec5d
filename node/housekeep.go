// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
)

const (
	statsInterval     = time.Minute
	clockSyncInterval = 10 * time.Minute
	maxClockOffset    = 5 * time.Second
)

func (n *Node) houseKeeping(ctx context.Context) {
	logger.Debug("enter house keeping")
	defer logger.Debug("leave house keeping")

	statsTicker := n.clock.NewTicker(statsInterval)
	defer statsTicker.Stop()
	clockSyncTicker := n.clock.NewTicker(clockSyncInterval)
	defer clockSyncTicker.Stop()

	if !n.opts.SkipNTP {
		n.goes.Go(n.checkClockOffset)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug("received context done signal")
			return
		case <-statsTicker.Chan():
			n.logStats()
		case <-clockSyncTicker.Chan():
			if !n.opts.SkipNTP {
				n.goes.Go(n.checkClockOffset)
			}
		}
	}
}

func (n *Node) logStats() {
	changed, hit, miss := n.stater.CacheStats()
	if !changed {
		return
	}
	var rate float64
	if hit+miss > 0 {
		rate = float64(hit) / float64(hit+miss)
	}
	metricStateCacheHitRate().Set(int64(rate * 100))
	logger.Debug("state cache stats", "hit", hit, "miss", miss, "rate", rate)
}

// checkClockOffset warns when the local clock drifts. Operation timestamps come from it.
func (n *Node) checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	n.health.ClockOffset(resp.ClockOffset, maxClockOffset)
	if resp.ClockOffset > maxClockOffset || resp.ClockOffset < -maxClockOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}
