package domain

import "time"

// DiagnosticKind classifies a per-record problem absorbed by an adapter.
type DiagnosticKind string

const (
	DiagPrice      DiagnosticKind = "price"
	DiagSalePrice  DiagnosticKind = "sale_price"
	DiagSaleWindow DiagnosticKind = "sale_window"
	DiagMissingID  DiagnosticKind = "missing_id"
	DiagItem       DiagnosticKind = "item"
)

type Diagnostic struct {
	Kind   DiagnosticKind
	ItemID string
	Detail string
}

// FetchResult is the outcome of one adapter call. Err carries the
// source-level cause when the whole fetch failed; Products is then empty.
type FetchResult struct {
	Source      SourceID
	Products    []Product
	Diagnostics []Diagnostic
	Err         error
	Duration    time.Duration
}

func (r *FetchResult) AddDiagnostic(kind DiagnosticKind, itemID, detail string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Kind: kind, ItemID: itemID, Detail: detail})
}

// DiagnosticCounts groups diagnostics by kind.
func (r FetchResult) DiagnosticCounts() map[DiagnosticKind]int {
	counts := make(map[DiagnosticKind]int)
	for _, d := range r.Diagnostics {
		counts[d.Kind]++
	}
	return counts
}
