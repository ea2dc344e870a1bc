package collector

import (
	"context"

	"github.com/fakeyudi/aist/internal/session"
)

// Collector loads a batch of sessions.
type Collector interface {
	// Collect loads every session it can. Per-file problems are reported in
	// Result.Warnings; only cancellation is returned as an error.
	Collect(ctx context.Context) (Result, error)
}

// Result holds the output of a collection pass.
type Result struct {
	Sessions []*session.Session // in discovery order
	Warnings []string           // non-fatal issues encountered
}
