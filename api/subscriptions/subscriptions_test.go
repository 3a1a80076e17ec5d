// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/api/events"
	"github.com/vechain/stakeledger/genesis"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/node"
	"github.com/vechain/stakeledger/staking"
)

var (
	owner = genesis.DevAccounts()[0].Address
	alice = genesis.DevAccounts()[1].Address
	bob   = genesis.DevAccounts()[2].Address
)

type testServer struct {
	*httptest.Server
	node *node.Node
}

func initSubscriptionsServer(t *testing.T, backtraceLimit uint32) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	n, err := node.New(db, logDB, genesis.NewDevnet(), clock, node.Options{SkipNTP: true})
	require.NoError(t, err)

	router := mux.NewRouter()
	subs := New(n, logDB, []string{"*"}, backtraceLimit)
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		subs.Close()
	})
	return &testServer{ts, n}
}

func (ts *testServer) dial(t *testing.T, query string) (*websocket.Conn, *http.Response, error) {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/event", RawQuery: query}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func readEvent(t *testing.T, conn *websocket.Conn) *events.Event {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev events.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	return &ev
}

func TestHandleSubjectWithEvent(t *testing.T) {
	ts := initSubscriptionsServer(t, 100)

	conn, resp, err := ts.dial(t, "")
	require.NoError(t, err)

	// Check the protocol upgrade to websocket
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	assert.Equal(t, "Upgrade", resp.Header.Get("Connection"))
	assert.Equal(t, "websocket", resp.Header.Get("Upgrade"))

	_, err = ts.node.Stake(alice, ledger.Ether)
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, staking.EventStaked, ev.Name)
	assert.Equal(t, alice, *ev.Participant)
	assert.Equal(t, uint32(1), ev.Meta.OpNumber)
}

func TestHandleSubjectWithFilter(t *testing.T) {
	ts := initSubscriptionsServer(t, 100)

	conn, _, err := ts.dial(t, "participant="+bob.String()+"&event="+staking.EventStaked)
	require.NoError(t, err)

	_, err = ts.node.Stake(alice, ledger.Ether)
	require.NoError(t, err)
	_, err = ts.node.AddReward(owner, ledger.Ether)
	require.NoError(t, err)
	_, err = ts.node.Stake(bob, ledger.Ether)
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, bob, *ev.Participant)
	assert.Equal(t, uint32(3), ev.Meta.OpNumber)
}

func TestHandleSubjectWithBacktrace(t *testing.T) {
	ts := initSubscriptionsServer(t, 100)

	_, err := ts.node.Stake(alice, ledger.Ether)
	require.NoError(t, err)
	_, err = ts.node.Stake(bob, ledger.Ether)
	require.NoError(t, err)

	conn, _, err := ts.dial(t, "pos=1&participant="+alice.String())
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, alice, *ev.Participant)
	assert.Equal(t, uint32(1), ev.Meta.OpNumber)

	// replay then live
	_, err = ts.node.Stake(alice, ledger.Ether)
	require.NoError(t, err)
	ev = readEvent(t, conn)
	assert.Equal(t, alice, *ev.Participant)
	assert.Equal(t, uint32(3), ev.Meta.OpNumber)
}

func TestHandleSubjectWithNonValidArgument(t *testing.T) {
	ts := initSubscriptionsServer(t, 1)

	for i := 0; i < 3; i++ {
		_, err := ts.node.Stake(alice, ledger.Ether)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{"bad participant", "participant=0x01", http.StatusBadRequest},
		{"unknown event", "event=Slashed", http.StatusBadRequest},
		{"bad pos", "pos=abc", http.StatusBadRequest},
		{"beyond backtrace limit", "pos=1", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := ts.dial(t, tt.query)
			assert.Equal(t, websocket.ErrBadHandshake, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}

	// the newest op is still in reach
	_, _, err := ts.dial(t, "pos=3")
	assert.NoError(t, err)
}

func TestEventFilterMatch(t *testing.T) {
	ev := &logdb.Event{Name: staking.EventStaked, Topic: staking.TopicStaked, Participant: alice}

	assert.True(t, (&EventFilter{}).Match(ev))
	assert.True(t, (&EventFilter{Participant: &alice}).Match(ev))
	assert.False(t, (&EventFilter{Participant: &bob}).Match(ev))
	topic := staking.TopicWithdrawn
	assert.False(t, (&EventFilter{Topic: &topic}).Match(ev))
}
