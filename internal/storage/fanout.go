package storage

import (
	"context"
	"log"

	"github.com/ignite/attribution-engine/internal/domain"
	"github.com/ignite/attribution-engine/internal/service/attribution"
)

// FanoutWriter sends each result document to every configured sink. A sink
// failure is logged and does not stop the remaining sinks; the first error is
// returned so callers can still observe it.
type FanoutWriter struct {
	sinks []attribution.ResultWriter
}

// NewFanoutWriter creates a fan-out over the given sinks. Nil sinks are
// skipped so callers can pass optional writers unconditionally.
func NewFanoutWriter(sinks ...attribution.ResultWriter) *FanoutWriter {
	out := &FanoutWriter{}
	for _, s := range sinks {
		if s != nil {
			out.sinks = append(out.sinks, s)
		}
	}
	return out
}

// WriteResult writes the document to all sinks.
func (w *FanoutWriter) WriteResult(ctx context.Context, doc *domain.ResultDocument) error {
	var first error
	for _, sink := range w.sinks {
		if err := sink.WriteResult(ctx, doc); err != nil {
			log.Printf("[storage] result sink failed: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
