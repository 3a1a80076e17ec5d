// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wsclient

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vechain/stakeledger/api/events"
	"github.com/vechain/stakeledger/client/common"
	"github.com/vechain/stakeledger/ledger"
)

type Client struct {
	host   string
	scheme string
}

func NewClient(url string) (*Client, error) {
	var host string
	var scheme string

	if strings.Contains(url, "https://") || strings.Contains(url, "wss://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "wss://")
		scheme = "wss"
	} else if strings.Contains(url, "http://") || strings.Contains(url, "ws://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "http://"), "ws://")
		scheme = "ws"
	} else {
		return nil, fmt.Errorf("invalid url")
	}

	return &Client{
		host:   strings.TrimSuffix(host, "/"),
		scheme: scheme,
	}, nil
}

// EventQuery narrows an event subscription. Pos replays history after that operation.
type EventQuery struct {
	Participant *ledger.Address
	Event       string
	Pos         *uint32
}

func (q *EventQuery) encode() string {
	if q == nil {
		return ""
	}
	v := url.Values{}
	if q.Participant != nil {
		v.Set("participant", q.Participant.String())
	}
	if q.Event != "" {
		v.Set("event", q.Event)
	}
	if q.Pos != nil {
		v.Set("pos", strconv.FormatUint(uint64(*q.Pos), 10))
	}
	return v.Encode()
}

// Subscription delivers messages until the server closes the stream or Unsubscribe is called.
type Subscription[T any] struct {
	conn *websocket.Conn
	ch   chan common.EventWrapper[T]
	done chan struct{}
	once sync.Once
}

// EventChan returns the message channel. It is closed when the stream ends.
func (s *Subscription[T]) EventChan() <-chan common.EventWrapper[T] {
	return s.ch
}

// Unsubscribe closes the connection.
func (s *Subscription[T]) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		s.conn.WriteMessage(websocket.CloseMessage, msg)
		err = s.conn.Close()
	})
	return err
}

func (s *Subscription[T]) deliver(w common.EventWrapper[T]) bool {
	select {
	case s.ch <- w:
		return true
	case <-s.done:
		return false
	}
}

// SubscribeEvents streams committed ledger events matching q.
func (c *Client) SubscribeEvents(q *EventQuery) (*Subscription[*events.Event], error) {
	conn, err := c.connect("/subscriptions/event", q.encode())
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}

	return subscribe[events.Event](conn), nil
}

// subscribe reads JSON messages of type T from conn until it fails.
func subscribe[T any](conn *websocket.Conn) *Subscription[*T] {
	sub := &Subscription[*T]{
		conn: conn,
		ch:   make(chan common.EventWrapper[*T]),
		done: make(chan struct{}),
	}

	go func() {
		defer close(sub.ch)
		defer conn.Close()

		for {
			var data T
			if err := conn.ReadJSON(&data); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, net.ErrClosed) {
					return
				}
				sub.deliver(common.EventWrapper[*T]{Error: fmt.Errorf("%w: %w", common.ErrUnexpectedMsg, err)})
				return
			}
			if !sub.deliver(common.EventWrapper[*T]{Data: &data}) {
				return
			}
		}
	}()

	return sub
}

func (c *Client) connect(endpoint, rawQuery string) (*websocket.Conn, error) {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     endpoint,
		RawQuery: rawQuery,
	}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &common.StatusError{Code: resp.StatusCode, Body: resp.Status}
		}
		return nil, err
	}
	return conn, nil
}
