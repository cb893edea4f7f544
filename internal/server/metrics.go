package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

const namespace = "ttsgate"

// Collectors records gateway activity as Prometheus metrics. It implements
// tts.Observer so the orchestrator reports every call to it.
type Collectors struct {
	registry *prometheus.Registry

	sessionsActive    prometheus.Gauge
	sessionsTotal     *prometheus.CounterVec
	synthesisTotal    *prometheus.CounterVec
	synthesisDuration *prometheus.HistogramVec
	audioBytes        prometheus.Counter
}

var _ tts.Observer = (*Collectors)(nil)

// NewCollectors creates the collectors and registers them on a fresh
// registry together with the Go and process collectors.
func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of sessions currently speaking",
		}),
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of finished sessions",
		}, []string{"strategy", "status"}),
		synthesisTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_requests_total",
			Help:      "Total number of synthesis calls",
		}, []string{"strategy", "code"}),
		synthesisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_duration_seconds",
			Help:      "Duration of synthesis calls in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"strategy"}),
		audioBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_total",
			Help:      "Total bytes of audio returned by the service",
		}),
	}

	c.registry.MustRegister(
		c.sessionsActive,
		c.sessionsTotal,
		c.synthesisTotal,
		c.synthesisDuration,
		c.audioBytes,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return c
}

// SessionStarted implements tts.Observer.
func (c *Collectors) SessionStarted(string) {
	c.sessionsActive.Inc()
}

// SessionFinished implements tts.Observer.
func (c *Collectors) SessionFinished(strategy string, err error) {
	c.sessionsActive.Dec()
	c.sessionsTotal.WithLabelValues(strategy, statusLabel(err)).Inc()
}

// SynthesisDone implements tts.Observer.
func (c *Collectors) SynthesisDone(r tts.SynthesisResult) {
	c.synthesisDuration.WithLabelValues(r.Strategy).Observe(r.Duration.Seconds())
	c.synthesisTotal.WithLabelValues(r.Strategy, statusLabel(r.Err)).Inc()
	if r.Err == nil {
		c.audioBytes.Add(float64(r.Bytes))
	}
}

// Registry returns the registry the collectors are registered on.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := tts.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
