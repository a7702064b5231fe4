// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
)

// weldMetrics are the counters SPEC_FULL.md's ambient-stack section
// promises for "weld serve": operations applied/reverted, files
// mutated, and a histogram of per-file mutation latency, the weld
// analogue of cmd/cie/index.go's own opt-in --metrics-addr endpoint.
var weldMetrics = struct {
	operationsApplied  prometheus.Counter
	operationsReverted prometheus.Counter
	filesMutated       prometheus.Counter
	mutationLatency    prometheus.Histogram
}{
	operationsApplied: promauto.NewCounter(prometheus.CounterOpts{
		Name: "weld_operations_applied_total",
		Help: "Number of operations committed (Operation.Apply=true) with at least one changed file.",
	}),
	operationsReverted: promauto.NewCounter(prometheus.CounterOpts{
		Name: "weld_operations_reverted_total",
		Help: "Number of ledger runs successfully reverted.",
	}),
	filesMutated: promauto.NewCounter(prometheus.CounterOpts{
		Name: "weld_files_mutated_total",
		Help: "Number of individual files written by a committed operation.",
	}),
	mutationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "weld_file_mutation_seconds",
		Help:    "Per-file duration of parse-dispatch-write for one mutated file.",
		Buckets: prometheus.DefBuckets,
	}),
}

// observeMutation records one committed file's parse-dispatch-write
// duration and bumps the mutated-file counter. The counters live in this
// process's memory only: they count the files this process mutated, and
// mutations made by other weld processes, including CLI invocations run
// while a "weld serve" process is up, are not added to them.
func observeMutation(d time.Duration) {
	weldMetrics.filesMutated.Inc()
	weldMetrics.mutationLatency.Observe(d.Seconds())
}

// runServe starts weld's daemon mode: nothing but a Prometheus /metrics
// endpoint for this process's own counters, grounded on cmd/cie/index.go's
// own opt-in --metrics-addr goroutine. The serve process performs no
// mutations itself, and separate "weld add/rename/... --apply"
// invocations keep their counts in their own processes, so they do not
// appear in what this endpoint reports.
func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":9091", "Address to serve /metrics on")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: weld serve [--addr <host:port>]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("serve.shutdown.signal")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serve.metrics.start", "addr", *addr, "path", "/metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("serve.metrics.error", "err", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("serve.shutdown.error", "err", err)
			return 1
		}
	}
	return 0
}
