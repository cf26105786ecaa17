package answer

import (
	"fmt"
	"strings"

	"askhr/internal/domain"
)

const (
	// NoResultsMessage is returned when retrieval found nothing to quote.
	NoResultsMessage = "I could not find any relevant information about this question in the " +
		"uploaded HR documents. Please contact the HR team for clarification."
	// NoKnowledgeBaseMessage is shown before any document has been indexed.
	NoKnowledgeBaseMessage = "No HR policy documents have been indexed yet. " +
		"Build the knowledge base from your policy files first."

	followUp = "_(If this does not fully answer your question, please reach out to HR for more details.)_"
)

// Compose answers a question by quoting the best-ranked passage.
func Compose(question string, results []domain.ScoredChunk) string {
	if len(results) == 0 {
		return NoResultsMessage
	}
	top := results[0]
	source := top.Source
	if source == "" {
		source = "HR policy document"
	}
	lines := []string{
		fmt.Sprintf("Here is the most relevant information I found in **%s**:", source),
		"",
		top.Text,
		"",
		followUp,
	}
	return strings.Join(lines, "\n")
}

// ContextSnippet joins results into a context block, each passage headed by
// its source and chunk number.
func ContextSnippet(results []domain.ScoredChunk) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		source := r.Source
		if source == "" {
			source = "unknown"
		}
		parts = append(parts, fmt.Sprintf("(source: %s, chunk: %d)\n%s", source, r.ChunkID, r.Text))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// Preview shortens text to at most n characters, marking the cut with "...".
func Preview(text string, n int) string {
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
