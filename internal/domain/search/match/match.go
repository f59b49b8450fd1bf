package match

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zain621/rehmatshipping/internal/domain/search/term"
	"github.com/zain621/rehmatshipping/internal/domain/user"
)

// Row is the display projection of a matched user.
type Row struct {
	Name  string
	Email string
	City  string
	Phone string
}

// NewRow projects a user into a display row.
func NewRow(u user.User) Row {
	return Row{Name: u.Name(), Email: u.Email(), City: u.City(), Phone: u.Phone()}
}

// Set is the ordered list of rows whose name or email matched a term.
// Order follows the source collection.
type Set struct {
	rows []Row
}

// NewSet wraps rows that are already known to be matches.
func NewSet(rows []Row) Set {
	return Set{rows: rows}
}

// Rows returns the matched rows in source order.
func (s Set) Rows() []Row { return s.rows }

// Len returns the number of matches.
func (s Set) Len() int { return len(s.rows) }

// IsEmpty reports whether nothing matched.
func (s Set) IsEmpty() bool { return len(s.rows) == 0 }

// Primary returns the first match, used for the report header block.
func (s Set) Primary() (Row, bool) {
	if len(s.rows) == 0 {
		return Row{}, false
	}
	return s.rows[0], true
}

// Filter keeps every record whose lower-cased name or email contains the
// lower-cased term. It is a pure function of its inputs.
func Filter(records []user.User, t term.Term) Set {
	// cases.Caser is stateful; one per call keeps Filter safe for concurrent use.
	lower := cases.Lower(language.Und)
	needle := lower.String(t.String())

	var rows []Row
	for _, u := range records {
		if strings.Contains(lower.String(u.Name()), needle) ||
			strings.Contains(lower.String(u.Email()), needle) {
			rows = append(rows, NewRow(u))
		}
	}
	return Set{rows: rows}
}
