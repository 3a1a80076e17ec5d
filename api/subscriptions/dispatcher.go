// Copyright (c) 2023 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/stakeledger/logdb"
)

// EventSource publishes the events of committed operations.
type EventSource interface {
	SubscribeEvents(ch chan<- []*logdb.Event) event.Subscription
}

// eventDispatcher fans the events of the source out to the websocket listeners.
type eventDispatcher struct {
	ch        chan []*logdb.Event
	sub       event.Subscription
	listeners map[chan []*logdb.Event]struct{}
	mu        sync.RWMutex
}

// newEventDispatcher subscribes to src right away, so no operation committed after it returns is missed.
func newEventDispatcher(src EventSource) *eventDispatcher {
	ch := make(chan []*logdb.Event, 16)
	return &eventDispatcher{
		ch:        ch,
		sub:       src.SubscribeEvents(ch),
		listeners: make(map[chan []*logdb.Event]struct{}),
	}
}

func (d *eventDispatcher) Subscribe(ch chan []*logdb.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[ch] = struct{}{}
}

func (d *eventDispatcher) Unsubscribe(ch chan []*logdb.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.listeners, ch)
}

func (d *eventDispatcher) DispatchLoop(done <-chan struct{}) {
	defer d.sub.Unsubscribe()

	for {
		select {
		case evs := <-d.ch:
			d.mu.RLock()
			func() {
				for lsn := range d.listeners {
					select {
					case lsn <- evs:
					case <-done:
						return
					default: // broadcast in a non-blocking manner, a listener that falls behind loses events
					}
				}
			}()
			d.mu.RUnlock()
		case <-d.sub.Err():
			return
		case <-done:
			return
		}
	}
}
