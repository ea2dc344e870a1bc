// Package telemetry exports session and bottleneck figures as OpenTelemetry
// metrics.
package telemetry

import (
	"context"
	"errors"

	"github.com/fakeyudi/aist/internal/bottleneck"
	"github.com/fakeyudi/aist/internal/cost"
	"github.com/fakeyudi/aist/internal/metrics"
	"github.com/fakeyudi/aist/internal/session"
)

// ErrDisabled is returned by New when no collector endpoint is configured.
var ErrDisabled = errors.New("telemetry export is disabled: no endpoint configured")

// Exporter publishes one Record per analysed session.
type Exporter interface {
	ExportSession(ctx context.Context, r Record) error
	// Close flushes pending metrics and shuts the exporter down.
	Close(ctx context.Context) error
}

// Config holds OTLP exporter settings.
type Config struct {
	Endpoint string
	Insecure bool
}

// KindStat is the bottleneck count and wasted time of one kind.
type KindStat struct {
	Count   int
	Minutes float64
}

// Record is everything exported for one session.
type Record struct {
	SessionID       string
	Project         string
	DurationMinutes float64
	InputTokens     uint64
	OutputTokens    uint64
	CostUSD         float64
	Bottlenecks     map[bottleneck.Kind]KindStat
}

// NewRecord summarises s and the bottlenecks detected in it.
func NewRecord(s *session.Session, bs []bottleneck.Bottleneck, p cost.Pricing) Record {
	r := Record{
		SessionID:       s.ID,
		Project:         s.ProjectName(),
		DurationMinutes: metrics.Calculate(s).DurationMinutes,
		InputTokens:     s.InputTokens,
		OutputTokens:    s.OutputTokens,
		CostUSD:         p.Calculate(s.InputTokens, s.OutputTokens),
		Bottlenecks:     make(map[bottleneck.Kind]KindStat),
	}
	for _, b := range bs {
		st := r.Bottlenecks[b.Kind()]
		st.Count++
		st.Minutes += b.WastedMinutes()
		r.Bottlenecks[b.Kind()] = st
	}
	return r
}
