package checker

// Claim verification status values.
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// ClaimResult is the outcome of checking one claim.
type ClaimResult struct {
	Claim  string `json:"claim"`
	Result string `json:"result"`
	Status string `json:"status"`
}

// Result is what a full run over an article produces.
type Result struct {
	Report string        `json:"report"`
	Claims []ClaimResult `json:"claims"`
	// ReportFailed marks a Report that only carries the synthesis error.
	ReportFailed bool `json:"-"`
}

// SearchResult is a single web search hit used as evidence.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
