package health

import "context"

// UpstreamChecker checks the user directory is reachable.
type UpstreamChecker interface {
	HealthCheck(ctx context.Context) error
}

// ReportPinger checks the report store is writable or connected.
type ReportPinger interface {
	Ping(ctx context.Context) error
}
