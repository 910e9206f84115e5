package kb

// Okapi BM25 parameters (standard values).
const (
	k1 = 1.5  // term frequency saturation
	b  = 0.75 // length normalization
)

// expandQuery appends, for each query token present in the synonym table,
// all of its associated tokens. The result is deduplicated preserving order,
// original tokens first, so a query containing a known alias of an article's
// tag still matches the article even if the literal word never appears in
// its body.
func (s *snapshot) expandQuery(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		out = append(out, tok)
		out = append(out, s.synonyms[tok]...)
	}

	seen := make(map[string]struct{}, len(out))
	dedup := out[:0]
	for _, tok := range out {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		dedup = append(dedup, tok)
	}
	return dedup
}

// score computes the BM25 relevance of a chunk for the (already expanded)
// query tokens. Tokens absent from the chunk contribute zero; the result is
// always non-negative because the smoothed IDF is.
func (s *snapshot) score(queryTokens []string, c *chunk) float64 {
	score := 0.0
	dl := float64(c.length)
	for _, q := range queryTokens {
		tf := float64(c.tf[q])
		if tf == 0 {
			continue
		}
		idf := s.idf[q]
		denom := tf + k1*(1-b+b*dl/s.avgLen)
		if denom == 0 {
			denom = 1
		}
		score += idf * (tf * (k1 + 1)) / denom
	}
	return score
}
