package chi

import (
	"context"

	healthuc "github.com/zain621/rehmatshipping/internal/usecase/health"
	"github.com/zain621/rehmatshipping/internal/usecase/lookup"
)

// Lookup runs user lookups and serves stored reports.
type Lookup interface {
	Run(ctx context.Context, req lookup.Request) (lookup.Outcome, error)
	Open(ctx context.Context, id string) ([]byte, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
