// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"

	gethmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/staking"
)

type Range struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EventFilter is the body of an event query. Event is an event name such as "Staked".
type EventFilter struct {
	Participant *ledger.Address `json:"participant,omitempty"`
	Event       string          `json:"event,omitempty"`
	Range       *Range          `json:"range,omitempty"`
	Options     *Options        `json:"options,omitempty"`
	Order       logdb.Order     `json:"order,omitempty"`
}

type Meta struct {
	OpNumber uint32 `json:"opNumber"`
	Index    uint32 `json:"index"`
}

// Event is an event as reported by the api.
type Event struct {
	Name        string                    `json:"name"`
	Topic       ledger.Bytes32            `json:"topic"`
	Participant *ledger.Address           `json:"participant,omitempty"`
	Amount      *gethmath.HexOrDecimal256 `json:"amount"`
	Timestamp   uint64                    `json:"timestamp"`
	Meta        Meta                      `json:"meta"`
}

// ConvertEvent converts a stored event.
func ConvertEvent(e *logdb.Event) *Event {
	ev := &Event{
		Name:      e.Name,
		Topic:     e.Topic,
		Amount:    (*gethmath.HexOrDecimal256)(e.Amount),
		Timestamp: e.Timestamp,
		Meta: Meta{
			OpNumber: e.OpNumber,
			Index:    e.Index,
		},
	}
	if !e.Participant.IsZero() {
		participant := e.Participant
		ev.Participant = &participant
	}
	return ev
}

// ConvertEvents converts a batch of stored events.
func ConvertEvents(events []*logdb.Event) []*Event {
	out := make([]*Event, len(events))
	for i, e := range events {
		out[i] = ConvertEvent(e)
	}
	return out
}

func convertEventFilter(ef *EventFilter) (*logdb.EventFilter, error) {
	f := &logdb.EventFilter{
		Participant: ef.Participant,
		Order:       ef.Order,
	}
	switch ef.Order {
	case "", logdb.ASC, logdb.DESC:
	default:
		return nil, fmt.Errorf("order: unknown value %q", ef.Order)
	}
	if ef.Event != "" {
		topic, ok := staking.TopicOf(ef.Event)
		if !ok {
			return nil, fmt.Errorf("event: unknown name %q", ef.Event)
		}
		f.Topic = &topic
	}
	if ef.Range != nil {
		// sqlite takes signed integers, so an open end is capped at MaxInt64
		r := &logdb.Range{To: math.MaxInt64}
		if ef.Range.From != nil {
			r.From = *ef.Range.From
		}
		if ef.Range.To != nil {
			r.To = *ef.Range.To
		}
		if r.From > math.MaxInt64 || r.To > math.MaxInt64 {
			return nil, fmt.Errorf("range: exceeds the maximum allowed value of %d", int64(math.MaxInt64))
		}
		f.Range = r
	}
	if ef.Options != nil {
		f.Options = &logdb.Options{
			Offset: ef.Options.Offset,
			Limit:  ef.Options.Limit,
		}
	}
	return f, nil
}
