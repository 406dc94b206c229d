package reckon

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ewalden/reckon/date"
)

// AnomalyKind names a data-quality problem the engine works around.
type AnomalyKind string

const (
	AnomalyMissingRate    AnomalyKind = "missing_exchange_rate"
	AnomalyNegativeCash   AnomalyKind = "negative_cash"
	AnomalyNegativeValue  AnomalyKind = "negative_value"
	AnomalyUnknownHolding AnomalyKind = "unknown_holding"
)

// Anomaly is a non-fatal data-quality event. The engine reports it and keeps
// computing with the documented fallback; it never aborts a reconstruction
// over one.
type Anomaly struct {
	Kind      AnomalyKind
	AccountID uuid.UUID
	Date      date.Date
	Currency  string
	Detail    string
}

// AnomalyReporter receives anomalies for operator review.
type AnomalyReporter interface {
	Report(Anomaly)
}

// report forwards a to r, tolerating a nil reporter.
func report(r AnomalyReporter, a Anomaly) {
	if r != nil {
		r.Report(a)
	}
}

// logReporter writes anomalies to a zerolog logger at warn level.
type logReporter struct {
	log zerolog.Logger
}

// NewLogReporter returns an AnomalyReporter backed by log.
func NewLogReporter(log zerolog.Logger) AnomalyReporter {
	return logReporter{log: log}
}

func (r logReporter) Report(a Anomaly) {
	ev := r.log.Warn().
		Str("kind", string(a.Kind)).
		Str("account", a.AccountID.String())
	if !a.Date.IsZero() {
		ev = ev.Str("date", a.Date.String())
	}
	if a.Currency != "" {
		ev = ev.Str("currency", a.Currency)
	}
	ev.Msg(a.Detail)
}

// AnomalyCollector is an AnomalyReporter that records anomalies in memory.
// It is safe for concurrent use.
type AnomalyCollector struct {
	mu        sync.Mutex
	anomalies []Anomaly
}

func (c *AnomalyCollector) Report(a Anomaly) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anomalies = append(c.anomalies, a)
}

// All returns a copy of the collected anomalies.
func (c *AnomalyCollector) All() []Anomaly {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.anomalies)
}
