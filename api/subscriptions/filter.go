// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/staking"
)

// EventFilter selects the events pushed to a subscriber. Nil fields match everything.
type EventFilter struct {
	Participant *ledger.Address
	Topic       *ledger.Bytes32
}

// Match reports whether ev passes the filter.
func (f *EventFilter) Match(ev *logdb.Event) bool {
	if f.Participant != nil && *f.Participant != ev.Participant {
		return false
	}
	if f.Topic != nil && *f.Topic != ev.Topic {
		return false
	}
	return true
}

func parseEventFilter(query url.Values) (*EventFilter, error) {
	var f EventFilter
	if s := query.Get("participant"); s != "" {
		addr, err := ledger.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "participant")
		}
		f.Participant = &addr
	}
	if s := query.Get("event"); s != "" {
		topic, ok := staking.TopicOf(s)
		if !ok {
			return nil, fmt.Errorf("event: unknown name %q", s)
		}
		f.Topic = &topic
	}
	return &f, nil
}

// parsePosition parses the op number to replay events from. Zero means live events only.
func parsePosition(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	pos, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.WithMessage(err, "pos")
	}
	return uint32(pos), nil
}
