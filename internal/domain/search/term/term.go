package term

import (
	"fmt"
	"strings"

	"github.com/zain621/rehmatshipping/internal/domain"
)

// Term is a trimmed, non-blank search term.
type Term struct {
	value string
}

// Parse trims surrounding whitespace and rejects blank input.
// Any non-blank term is accepted regardless of length.
func Parse(raw string) (Term, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Term{}, fmt.Errorf("%w: search term is blank", domain.ErrInvalidInput)
	}
	return Term{value: v}, nil
}

// String returns the trimmed term.
func (t Term) String() string { return t.value }
