// Package otel provides OpenTelemetry integration for scopelfu cache metrics.
//
// # Overview
//
// Collector implements scopelfu.MetricsCollector with OpenTelemetry
// instruments. The package is a separate module so that the core library
// does not depend on OpenTelemetry.
//
// # Quick Start
//
//	import (
//	    "github.com/agilira/scopelfu"
//	    lfuotel "github.com/agilira/scopelfu/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := lfuotel.NewCollector(provider, lfuotel.WithCacheName("users"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cache, err := scopelfu.NewConcurrentLFU[string, User](scopelfu.Config{
//	    Capacity:         10_000,
//	    MetricsCollector: collector,
//	})
//
//	// size, capacity and hit ratio gauges
//	reg, err := collector.ObserveCache(cache)
//	defer reg.Unregister()
//
// # Metrics
//
//   - scopelfu_get_latency_ns, scopelfu_set_latency_ns, scopelfu_delete_latency_ns (histograms, ns)
//   - scopelfu_hits_total, scopelfu_misses_total
//   - scopelfu_sets_total, scopelfu_deletes_total
//   - scopelfu_evictions_total
//   - scopelfu_size_entries, scopelfu_capacity_entries, scopelfu_hit_ratio (gauges, via ObserveCache)
//
// With WithCacheName every measurement carries a "cache" attribute, so
// several caches can share one meter.
//
// # PromQL
//
//	# Hit ratio over 5 minutes
//	rate(scopelfu_hits_total[5m]) / (rate(scopelfu_hits_total[5m]) + rate(scopelfu_misses_total[5m]))
//
//	# p99 lookup latency
//	histogram_quantile(0.99, rate(scopelfu_get_latency_ns_bucket[5m]))
//
// Hits are counted when a lookup finds a value, on the calling goroutine, so
// they can exceed the hits of CacheMetrics, which counts replayed reads only.
package otel
