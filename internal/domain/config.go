package domain

// KeyPrefix namespaces every key the service writes to the key-value store.
const KeyPrefix = "rehmat:"

// Report artifact constants shared by the renderer, the stores and the transports.
const (
	ReportFileName    = "search_result.pdf"
	ReportContentType = "application/pdf"
	ReportTitle       = "REHMAT SHIPPING REPORT"
)

// DefaultUpstreamURL is the user directory queried when none is configured.
const DefaultUpstreamURL = "https://jsonplaceholder.typicode.com/users"
