package lookup

import (
	"context"
	"io"

	"github.com/zain621/rehmatshipping/internal/domain/search/match"
	"github.com/zain621/rehmatshipping/internal/domain/user"
	"github.com/zain621/rehmatshipping/internal/report"
)

// Fetcher loads the full user directory.
type Fetcher interface {
	Fetch(ctx context.Context) ([]user.User, error)
}

// Renderer draws a report for a non-empty match set.
type Renderer interface {
	Render(w io.Writer, set match.Set) (report.Layout, error)
}

// ReportStore keeps rendered reports for later download.
type ReportStore interface {
	Save(ctx context.Context, id string, data []byte) error
	Load(ctx context.Context, id string) ([]byte, error)
}
