package tts

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// previewWidth bounds how much sentence text ends up in a log line.
const previewWidth = 48

// SynthesisResult describes one finished synthesis call.
type SynthesisResult struct {
	Strategy string
	Sequence int
	Text     string
	Duration time.Duration
	Bytes    int
	Err      error
}

// Metrics is an Observer that logs every call and keeps running totals.
type Metrics struct {
	logger *log.Logger

	mu       sync.Mutex
	calls    int64
	failures int64
	bytes    int64
	busy     time.Duration
}

// MetricsSnapshot is a copy of the running totals.
type MetricsSnapshot struct {
	Calls    int64
	Failures int64
	Bytes    int64
	Busy     time.Duration
}

// NewMetrics creates a Metrics observer that logs through logger.
func NewMetrics(logger *log.Logger) *Metrics {
	if logger == nil {
		logger = log.Default().WithPrefix("metrics")
	}
	return &Metrics{logger: logger}
}

// SessionStarted implements Observer.
func (m *Metrics) SessionStarted(strategy string) {
	m.logger.Debug("session started", "strategy", strategy)
}

// SessionFinished implements Observer.
func (m *Metrics) SessionFinished(strategy string, err error) {
	if err != nil {
		m.logger.Debug("session finished", "strategy", strategy, "err", err)
		return
	}
	m.logger.Debug("session finished", "strategy", strategy)
}

// SynthesisDone implements Observer.
func (m *Metrics) SynthesisDone(r SynthesisResult) {
	m.mu.Lock()
	m.calls++
	m.busy += r.Duration
	if r.Err != nil {
		m.failures++
	} else {
		m.bytes += int64(r.Bytes)
	}
	m.mu.Unlock()

	if r.Err != nil {
		m.logger.Warn("synthesis failed",
			"seq", r.Sequence,
			"text", Preview(r.Text),
			"took", r.Duration.Round(time.Millisecond),
			"err", r.Err)
		return
	}
	m.logger.Debug("synthesized",
		"seq", r.Sequence,
		"text", Preview(r.Text),
		"size", humanize.Bytes(uint64(r.Bytes)),
		"took", r.Duration.Round(time.Millisecond))
}

// Snapshot returns the running totals.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Calls:    m.calls,
		Failures: m.failures,
		Bytes:    m.bytes,
		Busy:     m.busy,
	}
}

// String summarizes the totals for humans.
func (s MetricsSnapshot) String() string {
	return humanize.Comma(s.Calls) + " calls, " +
		humanize.Comma(s.Failures) + " failed, " +
		humanize.Bytes(uint64(s.Bytes)) + " of audio in " +
		s.Busy.Round(time.Millisecond).String()
}

// Preview shortens text for display, counting East Asian wide characters
// as two columns.
func Preview(text string) string {
	return runewidth.Truncate(text, previewWidth, "…")
}

// observers fans one notification out to several observers.
type observers []Observer

func (obs observers) SessionStarted(strategy string) {
	for _, o := range obs {
		o.SessionStarted(strategy)
	}
}

func (obs observers) SessionFinished(strategy string, err error) {
	for _, o := range obs {
		o.SessionFinished(strategy, err)
	}
}

func (obs observers) SynthesisDone(r SynthesisResult) {
	for _, o := range obs {
		o.SynthesisDone(r)
	}
}
