package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/fakeyudi/aist/internal/bottleneck"
	"github.com/fakeyudi/aist/internal/cost"
	"github.com/fakeyudi/aist/internal/session"
)

func TestNewDisabledWithoutEndpoint(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("want ErrDisabled, got %v", err)
	}
}

func TestNoOp(t *testing.T) {
	var e Exporter = NoOp{}
	if err := e.ExportSession(context.Background(), Record{}); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestNewRecord(t *testing.T) {
	start := time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	s := &session.Session{
		ID: "abc", Project: "/home/dev/app",
		StartTime: &start, EndTime: &end,
		InputTokens: 1_000_000, OutputTokens: 100_000,
	}
	bs := []bottleneck.Bottleneck{
		&bottleneck.LongGap{GapMinutes: 6},
		&bottleneck.LongGap{GapMinutes: 9},
		&bottleneck.ErrorLoop{DurationMinutes: 2},
	}
	r := NewRecord(s, bs, cost.DefaultPricing)
	if r.Project != "app" || r.DurationMinutes != 45 || r.CostUSD != 22.5 {
		t.Errorf("record: %+v", r)
	}
	if got := r.Bottlenecks[bottleneck.KindLongGap]; got != (KindStat{Count: 2, Minutes: 15}) {
		t.Errorf("long gaps: %+v", got)
	}
	if _, ok := r.Bottlenecks[bottleneck.KindEditThrashing]; ok {
		t.Error("absent kinds should not appear")
	}
}

func TestExportSessionRecordsInstruments(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	e, err := newWithReader(ctx, reader)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close(ctx)

	r := Record{
		SessionID: "abc", Project: "app", DurationMinutes: 30,
		InputTokens: 100, OutputTokens: 20, CostUSD: 0.5,
		Bottlenecks: map[bottleneck.Kind]KindStat{
			bottleneck.KindErrorLoop: {Count: 2, Minutes: 7.5},
		},
	}
	if err := e.ExportSession(ctx, r); err != nil {
		t.Fatal(err)
	}
	if err := e.ExportSession(ctx, r); err != nil {
		t.Fatal(err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	got := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			got[m.Name] = m.Data
		}
	}

	sessions := got["aist_sessions_total"].(metricdata.Sum[int64])
	if v := sessions.DataPoints[0].Value; v != 2 {
		t.Errorf("aist_sessions_total: want 2, got %d", v)
	}
	tokens := got["aist_tokens_total"].(metricdata.Sum[int64])
	if v := tokens.DataPoints[0].Value; v != 240 {
		t.Errorf("aist_tokens_total: want 240, got %d", v)
	}
	wasted := got["aist_wasted_minutes_total"].(metricdata.Sum[float64])
	dp := wasted.DataPoints[0]
	if dp.Value != 15 {
		t.Errorf("aist_wasted_minutes_total: want 15, got %v", dp.Value)
	}
	if kind, _ := dp.Attributes.Value(attribute.Key("bottleneck.kind")); kind.AsString() != "error loop" {
		t.Errorf("bottleneck.kind: got %q", kind.AsString())
	}
	if run, _ := dp.Attributes.Value(attribute.Key("run_id")); run.AsString() != e.RunID() {
		t.Errorf("run_id: got %q, want %q", run.AsString(), e.RunID())
	}
	hist := got["aist_session_duration_minutes"].(metricdata.Histogram[float64])
	if h := hist.DataPoints[0]; h.Count != 2 || h.Sum != 60 {
		t.Errorf("duration histogram: count=%d sum=%v", h.Count, h.Sum)
	}
	if _, ok := got["aist_bottlenecks_total"]; !ok {
		t.Error("aist_bottlenecks_total not recorded")
	}
}
