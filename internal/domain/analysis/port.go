package analysis

import (
	"context"
	"time"
)

// Provider port (interface untuk AI analysis backend).
// One attempt, no retry; fallback is the orchestrator's job.
type Provider interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// ResultCache port. Implementations must treat expired entries as absent and
// must copy results on both read and write.
type ResultCache interface {
	Get(fingerprint string) (*Result, bool)
	Put(fingerprint string, r *Result, ttl time.Duration)
}
