// Package report lays out and renders the printable shipping report.
package report

import (
	"fmt"
	"time"

	"github.com/zain621/rehmatshipping/internal/domain"
	"github.com/zain621/rehmatshipping/internal/domain/search/match"
)

// Page geometry in millimetres (A4 portrait, 10mm margins).
const (
	pageHeight   = 297.0
	marginLeft   = 10.0
	marginTop    = 10.0
	marginBottom = 10.0

	lineHeight  = 10.0
	dateGap     = 10.0
	primaryGap  = 5.0
	columnName  = 50.0
	columnEmail = 60.0
	columnPhone = 40.0
)

// DateFormat is the calendar date layout printed under the title.
const DateFormat = "2006-01-02"

// Placement is the position of one table row.
type Placement struct {
	Page int
	Y    float64
	Row  match.Row
}

// Layout is the deterministic placement of every report element.
// Pages are numbered from 1.
type Layout struct {
	Title       string
	Date        string
	PrimaryName string
	PrimaryTel  string
	// Headers holds one header placement per page; the header repeats on
	// every page that carries body rows.
	Headers []Placement
	Body    []Placement
	Pages   int
}

// Plan computes the layout for set. The primary block shows the first row of
// set. Rows that would cross the bottom margin start a new page, which begins
// with a repeated header row.
func Plan(set match.Set, date time.Time) (Layout, error) {
	primary, ok := set.Primary()
	if !ok {
		return Layout{}, fmt.Errorf("%w: no matches to report", domain.ErrRender)
	}

	l := Layout{
		Title:       domain.ReportTitle,
		Date:        "Date: " + date.Format(DateFormat),
		PrimaryName: "Name: " + primary.Name,
		PrimaryTel:  "Phone: " + primary.Phone,
		Pages:       1,
	}

	// title, date, gap, name, phone, gap
	y := marginTop + lineHeight + lineHeight + dateGap + lineHeight + lineHeight + primaryGap
	l.Headers = append(l.Headers, Placement{Page: 1, Y: y})
	y += lineHeight

	limit := pageHeight - marginBottom
	for _, row := range set.Rows() {
		if y+lineHeight > limit {
			l.Pages++
			y = marginTop
			l.Headers = append(l.Headers, Placement{Page: l.Pages, Y: y})
			y += lineHeight
		}
		l.Body = append(l.Body, Placement{Page: l.Pages, Y: y, Row: row})
		y += lineHeight
	}
	return l, nil
}

// RowsPerPage reports how many body rows landed on each page.
func (l Layout) RowsPerPage() []int {
	counts := make([]int, l.Pages)
	for _, p := range l.Body {
		counts[p.Page-1]++
	}
	return counts
}
