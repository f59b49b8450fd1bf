package lookup

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zain621/rehmatshipping/internal/domain"
	"github.com/zain621/rehmatshipping/internal/domain/search/match"
	"github.com/zain621/rehmatshipping/internal/domain/search/term"
	logpkg "github.com/zain621/rehmatshipping/internal/logger"
	"github.com/zain621/rehmatshipping/internal/metrics"
)

// Request is one user action: a raw search term and the report flag.
type Request struct {
	Term           string
	GenerateReport bool
}

// Artifact describes a stored report.
type Artifact struct {
	ID          string
	FileName    string
	ContentType string
	Size        int
	Pages       int
}

// Outcome is what the caller shows: the matches, a notice, and the report
// when one was requested and something matched.
type Outcome struct {
	Term    string
	Matches match.Set
	Notice  string
	Report  *Artifact
}

// Service runs the fetch, filter and render pipeline for one action at a time.
// Each call fetches fresh data; nothing is cached between calls.
type Service struct {
	fetch   Fetcher
	render  Renderer
	reports ReportStore
	newID   func() string
}

// New creates a lookup service.
func New(fetch Fetcher, render Renderer, reports ReportStore) *Service {
	return &Service{
		fetch:   fetch,
		render:  render,
		reports: reports,
		newID:   func() string { return uuid.NewString() },
	}
}

// WithIDGenerator overrides report ID generation.
func (s *Service) WithIDGenerator(fn func() string) *Service {
	s.newID = fn
	return s
}

// Search validates raw, fetches the directory and returns the matches.
// A blank term fails with domain.ErrInvalidInput before any fetch.
func (s *Service) Search(ctx context.Context, raw string) (match.Set, error) {
	t, err := term.Parse(raw)
	if err != nil {
		return match.Set{}, err
	}

	users, err := s.fetch.Fetch(ctx)
	if err != nil {
		return match.Set{}, fmt.Errorf("fetch users: %w", err)
	}

	set := match.Filter(users, t)
	metrics.SearchMatches.Observe(float64(set.Len()))
	logpkg.FromContext(ctx).Debug("Search completed",
		zap.String("term", t.String()),
		zap.Int("records", len(users)),
		zap.Int("matches", set.Len()),
	)
	return set, nil
}

// Run executes one action. An empty match set is a normal outcome with the
// "No results found." notice and never produces a report.
func (s *Service) Run(ctx context.Context, req Request) (Outcome, error) {
	set, err := s.Search(ctx, req.Term)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Term: req.Term, Matches: set}
	if set.IsEmpty() {
		out.Notice = domain.MsgNoResults
		return out, nil
	}
	out.Notice = fmt.Sprintf("%d result(s) found.", set.Len())

	if req.GenerateReport {
		art, err := s.Generate(ctx, set)
		if err != nil {
			return Outcome{}, err
		}
		out.Report = &art
	}
	return out, nil
}

// Generate renders set and stores the document under a fresh ID.
// Fails with domain.ErrRender when set is empty.
func (s *Service) Generate(ctx context.Context, set match.Set) (Artifact, error) {
	var buf bytes.Buffer
	layout, err := s.render.Render(&buf, set)
	if err != nil {
		return Artifact{}, fmt.Errorf("render report: %w", err)
	}

	id := s.newID()
	if err := s.reports.Save(ctx, id, buf.Bytes()); err != nil {
		return Artifact{}, fmt.Errorf("save report: %w", err)
	}

	logpkg.FromContext(ctx).Info("Report generated",
		zap.String("report_id", id),
		zap.Int("rows", len(layout.Body)),
		zap.Int("pages", layout.Pages),
		zap.Ints("rows_per_page", layout.RowsPerPage()),
		zap.Int("bytes", buf.Len()),
	)
	return Artifact{
		ID:          id,
		FileName:    domain.ReportFileName,
		ContentType: domain.ReportContentType,
		Size:        buf.Len(),
		Pages:       layout.Pages,
	}, nil
}

// Open returns a previously generated report.
func (s *Service) Open(ctx context.Context, id string) ([]byte, error) {
	data, err := s.reports.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	return data, nil
}
