package chi

import (
	"github.com/zain621/rehmatshipping/internal/domain/search/match"
	"github.com/zain621/rehmatshipping/internal/usecase/lookup"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest     = "bad_request"
	codeInvalidInput   = "invalid_input"
	codeUpstreamError  = "upstream_error"
	codePayloadInvalid = "upstream_payload_invalid"
	codeRenderFailed   = "render_failed"
	codeReportNotFound = "report_not_found"
	codeRateLimited    = "rate_limited"
	codeInternalError  = "internal_error"
)

// reportsPath prefixes download URLs handed back in search responses.
const reportsPath = "/api/v1/reports/"

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type userRow struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	City  string `json:"city"`
	Phone string `json:"phone"`
}

type reportRef struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Pages       int    `json:"pages"`
	DownloadURL string `json:"download_url"`
}

type searchResponse struct {
	Term    string     `json:"term"`
	Count   int        `json:"count"`
	Notice  string     `json:"notice"`
	Results []userRow  `json:"results"`
	Report  *reportRef `json:"report,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func rowsToDTO(set match.Set) []userRow {
	rows := make([]userRow, 0, set.Len())
	for _, r := range set.Rows() {
		rows = append(rows, userRow{Name: r.Name, Email: r.Email, City: r.City, Phone: r.Phone})
	}
	return rows
}

func outcomeToDTO(out lookup.Outcome) searchResponse {
	resp := searchResponse{
		Term:    out.Term,
		Count:   out.Matches.Len(),
		Notice:  out.Notice,
		Results: rowsToDTO(out.Matches),
	}
	if a := out.Report; a != nil {
		resp.Report = &reportRef{
			ID:          a.ID,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        a.Size,
			Pages:       a.Pages,
			DownloadURL: reportsPath + a.ID,
		}
	}
	return resp
}
