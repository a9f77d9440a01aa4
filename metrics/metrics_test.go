// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopDefault(t *testing.T) {
	// meters on the default noop implementation must not panic
	Counter("noop_count").Add(1)
	Gauge("noop_gauge").Set(5)
	CounterVec("noop_vec", []string{"op"}).AddWithLabel(1, map[string]string{"op": "x"})
	Histogram("noop_hist", Bucket10s).Observe(100)
}

func TestPrometheusMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	Counter("deposits_total").Add(3)
	Gauge("total_stake").Set(1000)
	CounterVec("ops_total", []string{"op"}).AddWithLabel(2, map[string]string{"op": "withdraw"})
	Histogram("request_ms", Bucket10s).Observe(42)
	HistogramVec("api_ms", []string{"path"}, Bucket10s).ObserveWithLabels(7, map[string]string{"path": "rewards"})

	// same name returns the same meter
	Counter("deposits_total").Add(1)

	server := httptest.NewServer(HTTPHandler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), "multirewards_deposits_total 4"))
	assert.True(t, strings.Contains(string(body), "multirewards_total_stake 1000"))
}
