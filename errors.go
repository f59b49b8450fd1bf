package rehmat

import "github.com/zain621/rehmatshipping/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput = domain.ErrInvalidInput
	ErrTransport    = domain.ErrTransport
	ErrParse        = domain.ErrParse
	ErrRender       = domain.ErrRender
)

// TransportError carries the HTTP status of a failed directory fetch.
// Use errors.As() to extract it.
type TransportError = domain.TransportError

// Message maps err to the single user-facing message the service shows for it.
func Message(err error) string {
	return domain.UserMessage(err)
}
