package main

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/metrics"
)

const (
	metricsInterval = 10 * time.Second
	metricsRetain   = time.Minute
)

// startMetrics installs the global in-memory sink,
// the finished intervals are written to w on SIGUSR1.
func startMetrics(w io.Writer) (*metrics.InmemSink, func(), error) {
	cfg := metrics.DefaultConfig("")
	cfg.EnableRuntimeMetrics = false

	sink := metrics.NewInmemSink(metricsInterval, metricsRetain)
	if _, err := metrics.NewGlobal(cfg, sink); err != nil {
		return nil, nil, errors.Wrap(err, "failed to create metrics")
	}
	sig := metrics.NewInmemSignal(sink, metrics.DefaultSignal, w)
	return sink, sig.Stop, nil
}
