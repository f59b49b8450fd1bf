package rehmat

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/zain621/rehmatshipping/internal/domain"
	"github.com/zain621/rehmatshipping/internal/domain/search/match"
	logpkg "github.com/zain621/rehmatshipping/internal/logger"
	"github.com/zain621/rehmatshipping/internal/report"
	"github.com/zain621/rehmatshipping/internal/transport/upstream"
	"github.com/zain621/rehmatshipping/internal/usecase/lookup"
)

// Match is one user whose name or email contained the search term.
type Match struct {
	Name  string
	Email string
	City  string
	Phone string
}

// Client is the rehmat SDK entry point. It is safe for concurrent use.
type Client struct {
	lookup   *lookup.Service
	renderer *report.Renderer
	logger   *zap.Logger
}

// New creates a Client. No network call is made until Search or WriteReport.
func New(opts ...Option) *Client {
	cfg := &clientConfig{
		endpoint: domain.DefaultUpstreamURL,
		timeout:  upstream.DefaultTimeout,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	directory := upstream.NewClient(&upstream.Config{
		URL:        cfg.endpoint,
		Timeout:    cfg.timeout,
		HTTPClient: cfg.httpClient,
		Logger:     cfg.logger,
	})

	renderer := report.NewRenderer()
	if cfg.now != nil {
		renderer = renderer.WithClock(cfg.now)
	}

	return &Client{
		lookup:   lookup.New(directory, renderer, nil),
		renderer: renderer,
		logger:   cfg.logger,
	}
}

// Search fetches the directory and returns the users matching term in
// directory order. An empty slice with a nil error means nothing matched.
func (c *Client) Search(ctx context.Context, term string) ([]Match, error) {
	set, err := c.search(ctx, term)
	if err != nil {
		return nil, err
	}
	return toMatches(set), nil
}

// WriteReport renders the matches for term as a PDF into w and returns the
// number of rows written. Fails with ErrRender when nothing matched; w is
// untouched in that case.
func (c *Client) WriteReport(ctx context.Context, term string, w io.Writer) (int, error) {
	set, err := c.search(ctx, term)
	if err != nil {
		return 0, err
	}

	layout, err := c.renderer.Render(w, set)
	if err != nil {
		return 0, fmt.Errorf("rehmat: %w", err)
	}
	return len(layout.Body), nil
}

func (c *Client) search(ctx context.Context, term string) (match.Set, error) {
	ctx = logpkg.ContextWithLogger(ctx, c.logger)
	set, err := c.lookup.Search(ctx, term)
	if err != nil {
		return match.Set{}, fmt.Errorf("rehmat: %w", err)
	}
	return set, nil
}

func toMatches(set match.Set) []Match {
	out := make([]Match, 0, set.Len())
	for _, r := range set.Rows() {
		out = append(out, Match{Name: r.Name, Email: r.Email, City: r.City, Phone: r.Phone})
	}
	return out
}
