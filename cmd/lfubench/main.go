// main.go: synthetic Zipf workload for the scopelfu cache
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Command lfubench runs a synthetic workload against ConcurrentLFU and exposes
// optional pprof and Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/agilira/scopelfu"
	pmet "github.com/agilira/scopelfu/metrics/prom"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		capacity  = flag.Int("cap", 100_000, "cache capacity (entries)")
		scheduler = flag.String("scheduler", "pool", "maintenance scheduler: pool | background | foreground")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys  = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()

	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	metrics := pmet.New(nil, "scopelfu", "bench", nil)
	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", *metricsAddr)
			log.Println(http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	cfg := scopelfu.Config{
		Capacity:         *capacity,
		MetricsCollector: metrics,
	}
	switch *scheduler {
	case "pool":
		// nil => ThreadPoolScheduler on the shared pool
	case "background":
		bg := scopelfu.NewBackgroundScheduler(nil)
		defer func() { _ = bg.Close() }()
		cfg.Scheduler = bg
	case "foreground":
		cfg.Scheduler = scopelfu.NewForegroundScheduler(nil)
	default:
		log.Fatalf("unknown scheduler: %q (use pool, background or foreground)", *scheduler)
	}

	c, err := scopelfu.NewConcurrentLFU[string, string](cfg)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer func() { _ = c.Close() }()

	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}
	keysMax := uint64(*keys - 1)

	var reads, writes, found atomic.Uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	load := func(_ context.Context, k string) (string, error) {
		return "v:" + k, nil
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workersN; w++ {
		id := w
		g.Go(func() error {
			// rand.Rand is not goroutine-safe.
			r := rand.New(rand.NewSource(*seed + int64(id)*9973))
			zipf := rand.NewZipf(r, *zipfS, *zipfV, keysMax)

			for gctx.Err() == nil {
				k := "k:" + strconv.FormatUint(zipf.Uint64(), 10)
				if int(r.Int31n(100)) < *readPct {
					reads.Add(1)
					if _, ok := c.TryGet(k); ok {
						found.Add(1)
						continue
					}
					if _, err := c.GetOrAddContext(gctx, k, load); err != nil && gctx.Err() == nil {
						return err
					}
				} else {
					writes.Add(1)
					c.AddOrUpdate(k, "v"+strconv.Itoa(r.Int()))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("workload: %v", err)
	}
	elapsed := time.Since(start)

	if err := c.DoMaintenance(); err != nil {
		log.Printf("maintenance: %v", err)
	}
	m, _ := c.Metrics()
	metrics.Observe(m)

	readsN, writesN := reads.Load(), writes.Load()
	ops := readsN + writesN
	fmt.Printf("duration=%s workers=%d scheduler=%s\n", elapsed.Round(time.Millisecond), workersN, *scheduler)
	fmt.Printf("ops=%d (%.0f ops/s) reads=%d writes=%d\n", ops, float64(ops)/elapsed.Seconds(), readsN, writesN)
	if readsN > 0 {
		fmt.Printf("observed hit ratio=%.4f\n", float64(found.Load())/float64(readsN))
	}
	fmt.Printf("cache: size=%d capacity=%d hits=%d misses=%d evictions=%d ratio=%.4f\n",
		m.Size, m.Capacity, m.Hits, m.Misses, m.Evictions, m.HitRatio())
	fmt.Printf("scheduler: runs=%d last error=%v\n", c.Scheduler().RunCount(), c.Scheduler().LastError())
}
