// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/api/events"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/staking"
)

const logsLimit = 5

var (
	alice = ledger.BytesToAddress([]byte("alice"))
	bob   = ledger.BytesToAddress([]byte("bob"))
)

func initEventServer(t *testing.T) *httptest.Server {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// 4 ops: alice stakes, bob stakes, owner tops up, alice withdraws
	_, err = db.Prepare().Add(staking.EventStaked, staking.TopicStaked, alice, big.NewInt(10), 100).Commit()
	require.NoError(t, err)
	_, err = db.Prepare().Add(staking.EventStaked, staking.TopicStaked, bob, big.NewInt(20), 110).Commit()
	require.NoError(t, err)
	_, err = db.Prepare().Add(staking.EventRewardAdded, staking.TopicRewardAdded, ledger.Address{}, big.NewInt(500), 120).Commit()
	require.NoError(t, err)
	_, err = db.Prepare().Add(staking.EventWithdrawn, staking.TopicWithdrawn, alice, big.NewInt(10), 200).Commit()
	require.NoError(t, err)

	router := mux.NewRouter()
	events.New(db, logsLimit).Mount(router, "/logs/event")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpPost(t *testing.T, url string, body any) ([]byte, int) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func uint64Ptr(v uint64) *uint64 { return &v }

func TestFilterEvents(t *testing.T) {
	ts := initEventServer(t)

	tests := []struct {
		name   string
		filter *events.EventFilter
		want   []uint32 // op numbers
	}{
		{"all", &events.EventFilter{}, []uint32{1, 2, 3, 4}},
		{"by participant", &events.EventFilter{Participant: &alice}, []uint32{1, 4}},
		{"by name", &events.EventFilter{Event: staking.EventStaked}, []uint32{1, 2}},
		{"participant and name", &events.EventFilter{Participant: &alice, Event: staking.EventWithdrawn}, []uint32{4}},
		{"range from", &events.EventFilter{Range: &events.Range{From: uint64Ptr(110)}}, []uint32{2, 3, 4}},
		{"range both ends", &events.EventFilter{Range: &events.Range{From: uint64Ptr(110), To: uint64Ptr(120)}}, []uint32{2, 3}},
		{"desc", &events.EventFilter{Order: logdb.DESC}, []uint32{4, 3, 2, 1}},
		{"paged", &events.EventFilter{Options: &events.Options{Offset: 1, Limit: 2}}, []uint32{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, code := httpPost(t, ts.URL+"/logs/event", tt.filter)
			require.Equal(t, http.StatusOK, code, string(res))

			var got []*events.Event
			require.NoError(t, json.Unmarshal(res, &got))
			ops := make([]uint32, 0, len(got))
			for _, ev := range got {
				ops = append(ops, ev.Meta.OpNumber)
			}
			assert.Equal(t, tt.want, ops)
		})
	}
}

func TestEventFields(t *testing.T) {
	ts := initEventServer(t)

	res, code := httpPost(t, ts.URL+"/logs/event", &events.EventFilter{Event: staking.EventRewardAdded})
	require.Equal(t, http.StatusOK, code)

	var got []*events.Event
	require.NoError(t, json.Unmarshal(res, &got))
	require.Len(t, got, 1)
	assert.Equal(t, staking.EventRewardAdded, got[0].Name)
	assert.Equal(t, staking.TopicRewardAdded, got[0].Topic)
	assert.Nil(t, got[0].Participant)
	assert.Equal(t, "500", (*big.Int)(got[0].Amount).String())
	assert.Equal(t, uint64(120), got[0].Timestamp)
}

func TestFilterRejected(t *testing.T) {
	ts := initEventServer(t)

	tests := []struct {
		name string
		body any
		code int
	}{
		{"unknown field", map[string]any{"address": alice.String()}, http.StatusBadRequest},
		{"unknown event", &events.EventFilter{Event: "Slashed"}, http.StatusBadRequest},
		{"unknown order", &events.EventFilter{Order: "random"}, http.StatusBadRequest},
		{"reversed range", &events.EventFilter{Range: &events.Range{From: uint64Ptr(10), To: uint64Ptr(5)}}, http.StatusBadRequest},
		{"limit too large", &events.EventFilter{Options: &events.Options{Limit: logsLimit + 1}}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code := httpPost(t, ts.URL+"/logs/event", tt.body)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestTooManyEvents(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	for i := 0; i < logsLimit+1; i++ {
		_, err := db.Prepare().Add(staking.EventStaked, staking.TopicStaked, alice, big.NewInt(1), uint64(i)).Commit()
		require.NoError(t, err)
	}
	router := mux.NewRouter()
	events.New(db, logsLimit).Mount(router, "/logs/event")
	ts := httptest.NewServer(router)
	defer ts.Close()

	_, code := httpPost(t, ts.URL+"/logs/event", &events.EventFilter{})
	assert.Equal(t, http.StatusForbidden, code)

	res, code := httpPost(t, ts.URL+"/logs/event", &events.EventFilter{Options: &events.Options{Limit: logsLimit}})
	require.Equal(t, http.StatusOK, code)
	var got []*events.Event
	require.NoError(t, json.Unmarshal(res, &got))
	assert.Len(t, got, logsLimit)
}
