// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	prom, ok := metrics.(*prometheusMetrics)
	require.True(t, ok)

	families, err := prom.registry.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	metrics = newPrometheusMetrics()
	t.Cleanup(func() { metrics = defaultNoopMetrics() })

	count := Counter("ops")
	countVec := CounterVec("ops_by_kind", []string{"kind"})
	gauge := Gauge("principal")
	gaugeVec := GaugeVec("balance", []string{"holder"})
	hist := Histogram("latency", BucketOpDuration)
	histVec := HistogramVec("latency_by_kind", []string{"kind"}, nil)

	count.Add(1)
	Counter("ops").Add(2)

	total := 0
	for i := range 10 {
		kind := strconv.Itoa(i % 2)
		countVec.AddWithLabel(int64(i), map[string]string{"kind": kind})
		hist.Observe(int64(i))
		histVec.ObserveWithLabels(int64(i), map[string]string{"kind": kind})
		total += i
	}
	gauge.Set(7)
	gauge.Add(3)
	gaugeVec.SetWithLabel(5, map[string]string{"holder": "a"})
	gaugeVec.AddWithLabel(1, map[string]string{"holder": "a"})

	mfs := gather(t)
	require.Equal(t, float64(3), mfs["stakeledger_ops"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(10), mfs["stakeledger_principal"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(6), mfs["stakeledger_balance"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(total), mfs["stakeledger_latency"].Metric[0].GetHistogram().GetSampleSum())

	byKind := mfs["stakeledger_ops_by_kind"].Metric
	require.Len(t, byKind, 2)
	require.Equal(t, float64(total), byKind[0].GetCounter().GetValue()+byKind[1].GetCounter().GetValue())
}

func TestPromHandler(t *testing.T) {
	metrics = newPrometheusMetrics()
	t.Cleanup(func() { metrics = defaultNoopMetrics() })

	Counter("served").Add(1)

	srv := httptest.NewServer(HTTPHandler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Contains(t, string(body), "stakeledger_served 1")
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()
	t.Cleanup(func() { metrics = defaultNoopMetrics() })

	for _, a := range []any{
		Gauge("noopGauge"),
		GaugeVec("noopGauge", nil),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
		HistogramVec("noopHist", nil, nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", nil)
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
}
