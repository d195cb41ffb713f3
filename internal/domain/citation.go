package domain

import (
	"fmt"
	"strconv"
)

// AnnotateCitations appends a provenance suffix to each result's content and
// returns the cited results. Pure function, applied once as the terminal step
// of retrieval.
func AnnotateCitations(results []RankedResult) []CitedResult {
	cited := make([]CitedResult, 0, len(results))
	for _, r := range results {
		r.Content = r.Content + " " + CitationSuffix(r)
		cited = append(cited, CitedResult{RankedResult: r})
	}
	return cited
}

// CitationSuffix renders the deterministic provenance string for a result.
// A nil page number renders as "N/A".
func CitationSuffix(r RankedResult) string {
	page := "N/A"
	if r.PageNumber != nil {
		page = strconv.Itoa(*r.PageNumber)
	}
	return fmt.Sprintf("(Source: %s, page %s, chunk %d)", r.Document, page, r.ChunkIndex)
}
