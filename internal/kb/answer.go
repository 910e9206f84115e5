package kb

import "strings"

// formatAnswer renders merged top hits into a single human-readable fallback
// reply with its source list.
func formatAnswer(top []Hit) *Answer {
	parts := make([]string, 0, len(top))
	sources := make([]AnswerSource, 0, len(top))
	for _, h := range top {
		parts = append(parts, "**"+h.DocTitle+"**\n"+strings.TrimSpace(h.ChunkText))
		sources = append(sources, AnswerSource{
			Title: h.DocTitle,
			Path:  h.DocPath,
			Score: h.FinalScore,
		})
	}

	reply := "Here is what I found in our knowledge base:\n\n" +
		strings.Join(parts, "\n\n---\n\n") +
		"\n\nIf you need more detail, I can expand on any of these or walk through the next steps."

	return &Answer{Reply: reply, Sources: sources}
}
