package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zain621/rehmatshipping/internal/domain"
	"github.com/zain621/rehmatshipping/internal/domain/search/match"
	logpkg "github.com/zain621/rehmatshipping/internal/logger"
	"github.com/zain621/rehmatshipping/internal/report"
	"github.com/zain621/rehmatshipping/internal/transport/upstream"
	"github.com/zain621/rehmatshipping/internal/usecase/lookup"
)

var (
	endpoint     string
	fetchTimeout time.Duration
	reportPath   string
)

// searchCmd runs one lookup action from the terminal
var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search users by name or email",
	Long: `Fetches the user directory, keeps every user whose name or email contains
the term (case-insensitive) and prints them as a table.

With --report the matches are also written as a PDF. A bare --report writes
search_result.pdf in the current directory, replacing any earlier report.`,
	Example: `  rehmat search leanne
  rehmat search "@april.biz" --report
  rehmat search a --report /tmp/a.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx = logpkg.ContextWithLogger(ctx, logger)

	client := upstream.NewClient(&upstream.Config{
		URL:     endpoint,
		Timeout: fetchTimeout,
		Logger:  logger,
	})
	renderer := report.NewRenderer()
	svc := lookup.New(client, renderer, nil)

	set, err := svc.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if set.IsEmpty() {
		_, err := fmt.Fprintln(out, domain.MsgNoResults)
		return err
	}

	if _, err := fmt.Fprintln(out, renderTable(set)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "%d result(s) found.\n", set.Len()); err != nil {
		return err
	}

	if reportPath == "" {
		return nil
	}
	pages, err := writeReport(renderer, reportPath, set)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Report written to %s (%d page(s)).\n", reportPath, pages)
	return err
}

// writeReport renders set into path. Concurrent writers to the same path
// race; the last one to finish wins.
func writeReport(renderer *report.Renderer, path string, set match.Set) (int, error) {
	var buf bytes.Buffer
	layout, err := renderer.Render(&buf, set)
	if err != nil {
		return 0, fmt.Errorf("render report: %w", err)
	}

	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("publish report: %w", err)
	}
	return layout.Pages, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderTable lays the matches out in the same column order as the report.
func renderTable(set match.Set) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Name", "Email", "City", "Phone").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range set.Rows() {
		t.Row(r.Name, r.Email, r.City, r.Phone)
	}
	return t.Render()
}
