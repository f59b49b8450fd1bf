package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/zain621/rehmatshipping/internal/domain/search/match"
	"github.com/zain621/rehmatshipping/internal/metrics"
)

const fontFamily = "Arial"

// Renderer draws report layouts as PDF documents.
type Renderer struct {
	now      func() time.Time
	compress bool
}

// NewRenderer creates a renderer that stamps reports with the local date.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now, compress: true}
}

// WithClock overrides the date source.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// WithCompression toggles page stream compression. Uncompressed output keeps
// the text operators readable.
func (r *Renderer) WithCompression(on bool) *Renderer {
	r.compress = on
	return r
}

// Render writes the report for set to w. The first row of set fills the
// primary block. Nothing is written when set is empty.
func (r *Renderer) Render(w io.Writer, set match.Set) (Layout, error) {
	date := r.now()
	layout, err := Plan(set, date)
	if err != nil {
		metrics.ReportsRenderedTotal.WithLabelValues("empty").Inc()
		return Layout{}, err
	}

	doc := r.draw(layout, date)
	if err := doc.Output(w); err != nil {
		metrics.ReportsRenderedTotal.WithLabelValues("error").Inc()
		return Layout{}, fmt.Errorf("write pdf: %w", err)
	}

	metrics.ReportsRenderedTotal.WithLabelValues("success").Inc()
	metrics.ReportPages.Observe(float64(layout.Pages))
	return layout, nil
}

func (r *Renderer) draw(l Layout, date time.Time) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(marginLeft, marginTop, marginLeft)
	doc.SetAutoPageBreak(false, marginBottom)
	doc.SetCompression(r.compress)
	doc.SetCreationDate(date)
	doc.SetCatalogSort(true)
	doc.SetTitle(l.Title, false)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetXY(marginLeft, marginTop)

	doc.SetFont(fontFamily, "B", 16)
	doc.SetTextColor(30, 30, 30)
	doc.CellFormat(0, lineHeight, tr(l.Title), "", 1, "C", false, 0, "")

	doc.SetFont(fontFamily, "", 10)
	doc.CellFormat(0, lineHeight, tr(l.Date), "", 1, "C", false, 0, "")
	doc.Ln(dateGap)

	doc.SetFont(fontFamily, "B", 12)
	doc.CellFormat(0, lineHeight, tr(l.PrimaryName), "", 1, "L", false, 0, "")
	doc.CellFormat(0, lineHeight, tr(l.PrimaryTel), "", 1, "L", false, 0, "")

	page := 1
	headers := l.Headers
	drawHeader := func() {
		h := headers[0]
		headers = headers[1:]
		doc.SetXY(marginLeft, h.Y)
		doc.SetFillColor(200, 220, 255)
		doc.SetFont(fontFamily, "B", 12)
		doc.CellFormat(columnName, lineHeight, "Name", "1", 0, "", true, 0, "")
		doc.CellFormat(columnEmail, lineHeight, "Email", "1", 0, "", true, 0, "")
		doc.CellFormat(columnPhone, lineHeight, "Phone", "1", 0, "", true, 0, "")
		doc.SetFont(fontFamily, "", 12)
	}
	drawHeader()

	for _, p := range l.Body {
		if p.Page != page {
			doc.AddPage()
			page = p.Page
			drawHeader()
		}
		doc.SetXY(marginLeft, p.Y)
		doc.CellFormat(columnName, lineHeight, tr(p.Row.Name), "1", 0, "", false, 0, "")
		doc.CellFormat(columnEmail, lineHeight, tr(p.Row.Email), "1", 0, "", false, 0, "")
		doc.CellFormat(columnPhone, lineHeight, tr(p.Row.Phone), "1", 0, "", false, 0, "")
	}
	return doc
}
