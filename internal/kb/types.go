package kb

// Document is one knowledge article loaded from the corpus. Documents are
// immutable for the lifetime of an index snapshot and replaced wholesale on
// reindex. Path is the stable external identifier used as the join key with
// feedback and priors; the dense ID may change between builds.
type Document struct {
	ID       int
	Path     string
	Title    string
	Tags     []string
	Synonyms []string
	Body     string
}

// Hit is one ranked search result.
type Hit struct {
	// FinalScore is the BM25 score biased by the document prior.
	FinalScore float64 `json:"score"`
	// BM25 is the raw relevance score before the prior is applied.
	BM25 float64 `json:"bm25"`
	// Prior is the per-document bias that was applied, in [-1, +1].
	Prior float64 `json:"prior"`

	DocID     int    `json:"doc_id"`
	DocTitle  string `json:"doc_title"`
	DocPath   string `json:"doc_path"`
	ChunkText string `json:"chunk_text"`
}

// ReindexStats summarizes one index build.
type ReindexStats struct {
	DocumentsIndexed int     `json:"documents_indexed"`
	ChunksIndexed    int     `json:"chunks_indexed"`
	AvgChunkLength   float64 `json:"avg_chunk_length"`
}

// Source yields the documents an index build consumes.
type Source interface {
	Load() ([]Document, error)
}

// AnswerSource references one document used to compose a fallback answer.
type AnswerSource struct {
	Title string  `json:"title"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Answer is the no-LLM fallback response assembled directly from top hits.
type Answer struct {
	Reply   string         `json:"reply"`
	Sources []AnswerSource `json:"sources"`
}

// ChunkLengthStats describes the distribution of chunk lengths (in BM25
// terms, the sum of term frequencies) across the current snapshot.
type ChunkLengthStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// IndexStats describes the currently served snapshot.
type IndexStats struct {
	Built          bool             `json:"built"`
	Documents      int              `json:"documents"`
	Chunks         int              `json:"chunks"`
	Terms          int              `json:"terms"`
	AvgChunkLength float64          `json:"avg_chunk_length"`
	ChunkLengths   ChunkLengthStats `json:"chunk_lengths"`
}
