// Package metrics keeps process-wide counters for sessions and generations.
package metrics

import (
	"bytes"
	"context"
	"time"

	gometrics "github.com/rcrowley/go-metrics"

	"stager/internal/infra"
)

// Metrics groups the registered instruments.
type Metrics struct {
	registry gometrics.Registry

	sessionsActive  gometrics.Gauge
	sessionsCreated gometrics.Counter
	sessionsEvicted gometrics.Counter

	uploads gometrics.Counter

	generations        gometrics.Meter
	generationFailures gometrics.Counter
	generationRejected gometrics.Counter
	generationLatency  gometrics.Timer
	generationsRunning gometrics.Counter
}

// New registers all instruments in a fresh registry.
func New() *Metrics {
	registry := gometrics.NewRegistry()
	return &Metrics{
		registry: registry,

		sessionsActive:  gometrics.NewRegisteredGauge("sessions.active", registry),
		sessionsCreated: gometrics.NewRegisteredCounter("sessions.created", registry),
		sessionsEvicted: gometrics.NewRegisteredCounter("sessions.evicted", registry),

		uploads: gometrics.NewRegisteredCounter("uploads.accepted", registry),

		generations:        gometrics.NewRegisteredMeter("generation.completed", registry),
		generationFailures: gometrics.NewRegisteredCounter("generation.failed", registry),
		generationRejected: gometrics.NewRegisteredCounter("generation.rejected", registry),
		generationLatency:  gometrics.NewRegisteredTimer("generation.latency", registry),
		generationsRunning: gometrics.NewRegisteredCounter("generation.running", registry),
	}
}

func (m *Metrics) SessionCreated(active int) {
	m.sessionsCreated.Inc(1)
	m.sessionsActive.Update(int64(active))
}

func (m *Metrics) SessionEvicted(active int) {
	m.sessionsEvicted.Inc(1)
	m.sessionsActive.Update(int64(active))
}

func (m *Metrics) UploadAccepted() {
	m.uploads.Inc(1)
}

// GenerationRejected counts generate calls refused before reaching a provider.
func (m *Metrics) GenerationRejected() {
	m.generationRejected.Inc(1)
}

// GenerationStarted marks a provider call in flight and returns the function
// that records its outcome.
func (m *Metrics) GenerationStarted() func(err error) {
	m.generationsRunning.Inc(1)
	start := time.Now()
	return func(err error) {
		m.generationsRunning.Dec(1)
		m.generationLatency.UpdateSince(start)
		if err != nil {
			m.generationFailures.Inc(1)
			return
		}
		m.generations.Mark(1)
	}
}

// Snapshot renders the registry as JSON.
func (m *Metrics) Snapshot() []byte {
	var buf bytes.Buffer
	gometrics.WriteJSONOnce(m.registry, &buf)
	return buf.Bytes()
}

// Report logs a summary every interval until ctx is done.
func (m *Metrics) Report(ctx context.Context, logger *infra.Logger, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			logger.Info().
				Int64("sessions.active", m.sessionsActive.Value()).
				Int64("sessions.created", m.sessionsCreated.Count()).
				Int64("uploads.accepted", m.uploads.Count()).
				Int64("generation.completed", m.generations.Count()).
				Int64("generation.failed", m.generationFailures.Count()).
				Int64("generation.running", m.generationsRunning.Count()).
				Str("generation.latency.max", time.Duration(m.generationLatency.Max()).String()).
				Str("generation.latency.mean", time.Duration(int64(m.generationLatency.Mean())).String()).
				Msg("metrics")
		case <-ctx.Done():
			return
		}
	}
}

// Stop releases the meter's background ticker.
func (m *Metrics) Stop() {
	m.generations.Stop()
	m.generationLatency.Stop()
}
