package domain

import (
	"fmt"
	"strings"
)

// contextSeparator separates passages in an injected context block.
const contextSeparator = "\n\n"

// QueryResult is the typed response of a collection similarity query.
// All slices are parallel and ordered by ascending distance.
type QueryResult struct {
	IDs       []string
	Documents []string
	Metadatas []ChunkMetadata
	Distances []float64
}

// Len returns the number of hits.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Documents)
}

// Validate checks the parallel slices line up and distances are ordered.
func (r *QueryResult) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil query result", ErrMalformedResult)
	}
	n := len(r.Documents)
	if len(r.IDs) != n || len(r.Metadatas) != n || len(r.Distances) != n {
		return fmt.Errorf("%w: ids=%d documents=%d metadatas=%d distances=%d",
			ErrMalformedResult, len(r.IDs), n, len(r.Metadatas), len(r.Distances))
	}
	for i := 1; i < n; i++ {
		if r.Distances[i] < r.Distances[i-1] {
			return fmt.Errorf("%w: distances not ascending at %d", ErrMalformedResult, i)
		}
	}
	return nil
}

// Passages converts a validated result into passages.
func (r *QueryResult) Passages() []Passage {
	passages := make([]Passage, 0, r.Len())
	for i := 0; i < r.Len(); i++ {
		passages = append(passages, Passage{
			ID:       r.IDs[i],
			Text:     r.Documents[i],
			Page:     r.Metadatas[i].Page,
			Distance: r.Distances[i],
		})
	}
	return passages
}

// Passage is a single retrieved chunk.
type Passage struct {
	ID       string
	Text     string
	Page     int
	Distance float64
}

// Retrieval is the ranked outcome of one knowledge-base lookup.
type Retrieval struct {
	// Query is the text that was looked up.
	Query string

	// Passages are ordered by descending relevance.
	Passages []Passage
}

// IsEmpty reports whether nothing relevant was found.
func (r *Retrieval) IsEmpty() bool {
	return r == nil || len(r.Passages) == 0
}

// Context renders the passages for prompt injection: trimmed texts in rank
// order separated by a blank line. Pages and distances are left out.
func (r *Retrieval) Context() string {
	if r.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, len(r.Passages))
	for _, p := range r.Passages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, contextSeparator)
}

// Preview collapses whitespace in text and cuts it to n runes, marking the
// cut with "...".
func Preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:max(n, 0)]) + "..."
}
