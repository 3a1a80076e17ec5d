// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/health"
)

func initAPIServer(t *testing.T, h *health.Health) *httptest.Server {
	router := mux.NewRouter()
	NewAPI(h).Mount(router, "/health")

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func TestHealth(t *testing.T) {
	h := health.New(clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0)))
	h.OperationCommitted(3)
	ts := initAPIServer(t, h)

	var status health.Status
	respBody, statusCode := httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.Equal(t, http.StatusOK, statusCode)
	assert.True(t, status.Healthy)
	require.NotNil(t, status.LastOperation)
	assert.Equal(t, uint32(3), status.LastOperation.Number)

	h.ClockOffset(time.Minute, 5*time.Second)
	respBody, statusCode = httpGet(t, ts.URL+"/health")
	require.NoError(t, json.Unmarshal(respBody, &status))
	assert.Equal(t, http.StatusServiceUnavailable, statusCode)
	assert.False(t, status.Healthy)
	assert.False(t, status.ClockSynced)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	r, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}
