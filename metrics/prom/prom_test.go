// prom_test.go: tests for the Prometheus collector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package prom_test

import (
	"strings"
	"testing"

	"github.com/agilira/scopelfu"
	"github.com/agilira/scopelfu/metrics/prom"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := prom.New(reg, "lfu", "test", prometheus.Labels{"cache": "unit"})

	a.RecordGet(100, true)
	a.RecordGet(200, false)
	a.RecordGet(300, false)
	a.RecordSet(150)
	a.RecordDelete(50)
	a.RecordEviction()
	a.Observe(scopelfu.CacheMetrics{Size: 7, Capacity: 10})

	count, err := testutil.GatherAndCount(reg,
		"lfu_test_hits_total", "lfu_test_misses_total", "lfu_test_sets_total",
		"lfu_test_deletes_total", "lfu_test_evictions_total",
		"lfu_test_size_entries", "lfu_test_capacity_entries")
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	metrics, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range metrics {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 1.0, values["lfu_test_hits_total"])
	assert.Equal(t, 2.0, values["lfu_test_misses_total"])
	assert.Equal(t, 1.0, values["lfu_test_sets_total"])
	assert.Equal(t, 1.0, values["lfu_test_deletes_total"])
	assert.Equal(t, 1.0, values["lfu_test_evictions_total"])
	assert.Equal(t, 7.0, values["lfu_test_size_entries"])
	assert.Equal(t, 10.0, values["lfu_test_capacity_entries"])
}

func TestAdapter_LatencyHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := prom.New(reg, "lfu", "", nil)

	a.RecordGet(100, true)
	a.RecordGet(100, false)
	a.RecordSet(100)

	// get, set and delete series exist from construction
	count, err := testutil.GatherAndCount(reg, "lfu_operation_latency_ns")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAdapter_WiredIntoCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := prom.New(reg, "lfu", "cache", nil)

	cache, err := scopelfu.NewConcurrentLFU[int, int](scopelfu.Config{
		Capacity:         10,
		Scheduler:        scopelfu.NullScheduler{},
		MetricsCollector: a,
	})
	require.NoError(t, err)

	for i := 0; i < 15; i++ {
		_, err := cache.GetOrAdd(i, func(k int) (int, error) { return k, nil })
		require.NoError(t, err)
	}
	require.NoError(t, cache.DoMaintenance())

	m, _ := cache.Metrics()
	a.Observe(m)

	out, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP lfu_cache_evictions_total Entries evicted by the policy
# TYPE lfu_cache_evictions_total counter
lfu_cache_evictions_total 5
# HELP lfu_cache_misses_total Cache misses
# TYPE lfu_cache_misses_total counter
lfu_cache_misses_total 15
# HELP lfu_cache_size_entries Number of resident entries
# TYPE lfu_cache_size_entries gauge
lfu_cache_size_entries 10
`), "lfu_cache_evictions_total", "lfu_cache_misses_total", "lfu_cache_size_entries"))
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom.New(reg, "lfu", "dup", nil)

	assert.Panics(t, func() { prom.New(reg, "lfu", "dup", nil) })
}
