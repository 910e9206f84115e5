package kb

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"sort"
	"sync/atomic"

	"triage-kb/internal/contextutil"
)

// Defaults for the search API. Callers may override any of them per request.
const (
	DefaultSearchK         = 5
	DefaultSearchThreshold = 1.5
	DefaultAnswerThreshold = 2.5
	DefaultAlpha           = 0.3
	DefaultMaxDocs         = 3
)

// SearchRequest carries the parameters of one search call.
type SearchRequest struct {
	Query string
	// K caps the number of hits returned; 0 means DefaultSearchK.
	K int
	// Threshold filters out hits whose final score is below it.
	Threshold float64
	// Priors biases per doc path in [-1, +1]; missing paths count as 0.
	Priors map[string]float64
	// Alpha scales the prior influence: final = bm25 * (1 + alpha*prior).
	Alpha float64
}

// AnswerRequest carries the parameters of one best-effort answer call.
type AnswerRequest struct {
	Query     string
	Threshold float64
	Priors    map[string]float64
	// MaxDocs caps the number of distinct documents merged into the reply;
	// 0 means DefaultMaxDocs.
	MaxDocs int
}

// Engine owns the live index snapshot and orchestrates builds and searches.
//
// The snapshot is read-mostly shared state: searches load the pointer once
// and work on an immutable value, while Reindex constructs a replacement off
// to the side and installs it with a single atomic swap. A search issued
// concurrently with a build therefore sees either the old or the new
// snapshot in full, never a mix.
type Engine struct {
	source      Source
	targetWords int
	summaryPath string

	snap atomic.Pointer[snapshot]
}

// NewEngine creates an engine over the given corpus source. summaryPath, if
// non-empty, receives a small JSON artifact describing each build; writing
// it is best-effort and never fails a reindex.
func NewEngine(source Source, targetWords int, summaryPath string) *Engine {
	if targetWords <= 0 {
		targetWords = DefaultChunkTargetWords
	}
	return &Engine{
		source:      source,
		targetWords: targetWords,
		summaryPath: summaryPath,
	}
}

// Reindex rebuilds the index from scratch and atomically replaces the live
// snapshot. On failure the previous snapshot keeps serving; a partially
// built index is never exposed to search.
func (e *Engine) Reindex(ctx context.Context) (ReindexStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := e.source.Load()
	if err != nil {
		logger.ErrorContext(ctx, "reindex aborted, previous snapshot kept", "error", err)
		return ReindexStats{}, err
	}

	snap := buildSnapshot(docs, e.targetWords)
	e.snap.Store(snap)

	stats := ReindexStats{
		DocumentsIndexed: len(snap.docs),
		ChunksIndexed:    len(snap.chunks),
		AvgChunkLength:   snap.avgLen,
	}
	logger.InfoContext(ctx, "index rebuilt",
		"documents", stats.DocumentsIndexed,
		"chunks", stats.ChunksIndexed,
		"avg_chunk_length", stats.AvgChunkLength,
	)

	if e.summaryPath != "" {
		if err := e.writeSummary(stats); err != nil {
			logger.WarnContext(ctx, "failed to write index summary", "path", e.summaryPath, "error", err)
		}
	}

	return stats, nil
}

// writeSummary persists the build stats as a small JSON artifact.
func (e *Engine) writeSummary(stats ReindexStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(e.summaryPath, append(data, '\n'), 0o644)
}

// Stats describes the currently served snapshot. Before the first successful
// build it reports Built=false with zero counts.
func (e *Engine) Stats() IndexStats {
	snap := e.snap.Load()
	if snap == nil {
		return IndexStats{}
	}
	return snap.stats()
}

func validateSearch(req SearchRequest) error {
	if req.Query == "" {
		return &ValidationError{Field: "query", Message: "must not be empty"}
	}
	if req.K < 0 {
		return &ValidationError{Field: "k", Message: "must not be negative"}
	}
	if math.IsNaN(req.Threshold) || math.IsInf(req.Threshold, 0) {
		return &ValidationError{Field: "threshold", Message: "must be a finite number"}
	}
	if math.IsNaN(req.Alpha) || math.IsInf(req.Alpha, 0) {
		return &ValidationError{Field: "alpha", Message: "must be a finite number"}
	}
	return nil
}

// Search scores every chunk in the live snapshot with BM25 over the expanded
// query tokens, applies the multiplicative prior bias, filters by threshold
// and returns at most K hits sorted by final score descending. Tie order is
// unspecified.
func (e *Engine) Search(ctx context.Context, req SearchRequest) ([]Hit, error) {
	if err := validateSearch(req); err != nil {
		return nil, err
	}
	if req.K == 0 {
		req.K = DefaultSearchK
	}

	snap := e.snap.Load()
	if snap == nil || len(snap.chunks) == 0 {
		return []Hit{}, nil
	}

	queryTokens := snap.expandQuery(Tokenize(req.Query))

	hits := make([]Hit, 0, req.K)
	for i := range snap.chunks {
		c := &snap.chunks[i]
		bm25 := snap.score(queryTokens, c)
		doc := snap.docByID(c.docID)
		prior := req.Priors[doc.Path]
		final := bm25 * (1 + req.Alpha*prior)
		if final < req.Threshold {
			continue
		}
		hits = append(hits, Hit{
			FinalScore: round4(final),
			BM25:       round4(bm25),
			Prior:      round4(prior),
			DocID:      doc.ID,
			DocTitle:   doc.Title,
			DocPath:    doc.Path,
			ChunkText:  c.text,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].FinalScore > hits[j].FinalScore
	})
	if len(hits) > req.K {
		hits = hits[:req.K]
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "search completed",
		"query", req.Query,
		"expanded_tokens", len(queryTokens),
		"hits", len(hits),
		"k", req.K,
		"threshold", req.Threshold,
	)

	return hits, nil
}

// BestEffortAnswer composes a direct reply from the knowledge base when no
// generative component is available downstream: it searches with a wider K,
// keeps the first hit per distinct document (preserving score order) up to
// MaxDocs, and formats the snippets into one response. It returns nil when
// no hit clears the threshold.
func (e *Engine) BestEffortAnswer(ctx context.Context, req AnswerRequest) (*Answer, error) {
	maxDocs := req.MaxDocs
	if maxDocs == 0 {
		maxDocs = DefaultMaxDocs
	}
	if maxDocs < 0 {
		return nil, &ValidationError{Field: "max_docs", Message: "must not be negative"}
	}

	fanout := maxDocs * 3
	if fanout < 8 {
		fanout = 8
	}

	hits, err := e.Search(ctx, SearchRequest{
		Query:     req.Query,
		K:         fanout,
		Threshold: req.Threshold,
		Priors:    req.Priors,
		Alpha:     DefaultAlpha,
	})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	top := mergeTopByDoc(hits, maxDocs)
	return formatAnswer(top), nil
}

// mergeTopByDoc keeps the first hit seen per document path, first-seen-wins,
// which preserves score order because hits arrive already ranked.
func mergeTopByDoc(hits []Hit, maxDocs int) []Hit {
	seen := make(map[string]struct{}, maxDocs)
	out := make([]Hit, 0, maxDocs)
	for _, h := range hits {
		if _, ok := seen[h.DocPath]; ok {
			continue
		}
		seen[h.DocPath] = struct{}{}
		out = append(out, h)
		if len(out) == maxDocs {
			break
		}
	}
	return out
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
