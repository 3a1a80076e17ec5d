// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	readLimit = 512
)

type Subscriptions struct {
	logDB          *logdb.LogDB
	backtraceLimit uint32
	upgrader       *websocket.Upgrader
	dispatcher     *eventDispatcher
	cache          *messageCache
	done           chan struct{}
	wg             sync.WaitGroup
}

func New(src EventSource, logDB *logdb.LogDB, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	sub := &Subscriptions{
		logDB:          logDB,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				origin = strings.ToLower(origin)
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		dispatcher: newEventDispatcher(src),
		cache:      newMessageCache(backtraceLimit),
		done:       make(chan struct{}),
	}

	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()

		sub.dispatcher.DispatchLoop(sub.done)
	}()
	return sub
}

func (s *Subscriptions) handleSubjectEvent(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseEventFilter(req.URL.Query())
	if err != nil {
		return restutil.BadRequest(err)
	}
	pos, err := parsePosition(req.URL.Query().Get("pos"))
	if err != nil {
		return restutil.BadRequest(err)
	}
	if pos > 0 {
		newest, err := s.logDB.NewestOpNumber()
		if err != nil {
			return err
		}
		if newest >= pos && newest-pos >= s.backtraceLimit {
			return restutil.Forbidden(errors.New("pos: backtrace limit exceeded"))
		}
	}

	// listen before replaying, so nothing committed in between is lost
	ch := make(chan []*logdb.Event, 16)
	s.dispatcher.Subscribe(ch)
	defer s.dispatcher.Unsubscribe(ch)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer conn.Close()

	s.wg.Add(1)
	defer s.wg.Done()

	closed := make(chan struct{})
	go readLoop(conn, closed)

	var closeMsg []byte
	if err := s.pipe(req.Context(), conn, ch, filter, pos, closed); err != nil {
		logger.Debug("subscription closed", "err", err)
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("write close message", "err", err)
	}
	return nil
}

// readLoop drains the peer so pongs and close frames are processed. closed is closed when the peer goes away.
func readLoop(conn *websocket.Conn, closed chan struct{}) {
	defer close(closed)

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, ch <-chan []*logdb.Event, filter *EventFilter, pos uint32, closed <-chan struct{}) error {
	var replayed uint32
	if pos > 0 {
		backlog, err := s.backlog(ctx, filter, pos)
		if err != nil {
			return err
		}
		for _, ev := range backlog {
			if err := s.write(conn, ev); err != nil {
				return err
			}
			replayed = ev.OpNumber
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evs := <-ch:
			for _, ev := range evs {
				if ev.OpNumber != 0 && ev.OpNumber <= replayed {
					continue
				}
				if !filter.Match(ev) {
					continue
				}
				if err := s.write(conn, ev); err != nil {
					return err
				}
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			return nil
		}
	}
}

// backlog returns the stored events matching filter from op number pos on, oldest first.
// An operation emits at most one event, so backtraceLimit events cover the allowed window.
func (s *Subscriptions) backlog(ctx context.Context, filter *EventFilter, pos uint32) ([]*logdb.Event, error) {
	evs, err := s.logDB.FilterEvents(ctx, &logdb.EventFilter{
		Participant: filter.Participant,
		Topic:       filter.Topic,
		Order:       logdb.DESC,
		Options:     &logdb.Options{Limit: uint64(s.backtraceLimit)},
	})
	if err != nil {
		return nil, err
	}
	var out []*logdb.Event
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].OpNumber >= pos {
			out = append(out, evs[i])
		}
	}
	return out, nil
}

func (s *Subscriptions) write(conn *websocket.Conn, ev *logdb.Event) error {
	msg, _, err := s.cache.GetOrAdd(ev)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

// Close stops the dispatcher and waits for the open connections to be closed.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubjectEvent))
}
