// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
)

type Operation struct {
	Number    uint32     `json:"number"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy       bool       `json:"healthy"`
	LastOperation *Operation `json:"lastOperation"`
	ClockSynced   bool       `json:"clockSynced"`
	ClockOffset   string     `json:"clockOffset"`
}

// Health tracks the condition of a running ledger.
// Operation timestamps come from the local clock, so a drifting clock makes it unhealthy.
type Health struct {
	lock        sync.RWMutex
	clock       clockwork.Clock
	lastOp      uint32
	lastOpTime  time.Time
	clockOffset time.Duration
	clockSynced bool
}

// New creates a Health. The clock counts as synced until an offset is reported.
func New(clock clockwork.Clock) *Health {
	return &Health{
		clock:       clock,
		clockSynced: true,
	}
}

// OperationCommitted records the newest committed operation.
func (h *Health) OperationCommitted(opNum uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastOp = opNum
	h.lastOpTime = h.clock.Now()
}

// ClockOffset records a measured offset of the local clock.
func (h *Health) ClockOffset(offset, max time.Duration) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.clockOffset = offset
	h.clockSynced = offset <= max && offset >= -max
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{
		Healthy:     h.clockSynced,
		ClockSynced: h.clockSynced,
		ClockOffset: common.PrettyDuration(h.clockOffset).String(),
	}
	if h.lastOp > 0 {
		ts := h.lastOpTime
		status.LastOperation = &Operation{
			Number:    h.lastOp,
			Timestamp: &ts,
		}
	}
	return status
}
