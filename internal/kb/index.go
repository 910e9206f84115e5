package kb

import (
	"math"
	"sort"
)

// Metadata boost increments. Title/tag/synonym tokens are added to each
// chunk's term-frequency map as if they were repeated inline in the text,
// which keeps the boosts compatible with standard BM25 math.
const (
	titleBoost   = 3
	tagBoost     = 2
	synonymBoost = 2
)

// DefaultChunkTargetWords is the word budget used when packing paragraphs
// into chunks.
const DefaultChunkTargetWords = 120

// chunk is one retrieval unit inside a snapshot. It is immutable after the
// build that created it.
type chunk struct {
	id     int
	docID  int
	text   string
	tf     map[string]int
	length int
}

// snapshot is the complete, immutable result of one index build. It is
// installed with a single atomic pointer swap and never mutated afterwards,
// so concurrent searches need no further synchronization.
type snapshot struct {
	docs     []Document
	chunks   []chunk
	idf      map[string]float64
	avgLen   float64
	synonyms map[string][]string
}

// buildSnapshot constructs a fresh index off to the side: term frequencies
// with metadata boosts per chunk, the global synonym table, and the corpus
// statistics (smoothed IDF, average chunk length), all recomputed from
// scratch.
func buildSnapshot(docs []Document, targetWords int) *snapshot {
	snap := &snapshot{
		docs:   make([]Document, len(docs)),
		idf:    make(map[string]float64),
		avgLen: 1.0,
	}

	synSets := make(map[string]map[string]struct{})
	nextChunkID := 0

	for i := range docs {
		doc := docs[i]
		doc.ID = i
		snap.docs[i] = doc

		// Every tag/synonym phrase links each of its tokens to the full
		// token set of the phrase, in both directions.
		for _, phrase := range append(append([]string{}, doc.Synonyms...), doc.Tags...) {
			phraseTokens := Tokenize(phrase)
			for _, tok := range phraseTokens {
				set, ok := synSets[tok]
				if !ok {
					set = make(map[string]struct{})
					synSets[tok] = set
				}
				for _, related := range phraseTokens {
					set[related] = struct{}{}
				}
			}
		}

		titleTokens := Tokenize(doc.Title)
		var tagTokens []string
		for _, t := range doc.Tags {
			tagTokens = append(tagTokens, Tokenize(t)...)
		}
		var synTokens []string
		for _, s := range doc.Synonyms {
			synTokens = append(synTokens, Tokenize(s)...)
		}

		for _, text := range splitChunks(doc.Body, targetWords) {
			tf := termFrequency(Tokenize(text))
			for _, tok := range titleTokens {
				tf[tok] += titleBoost
			}
			for _, tok := range tagTokens {
				tf[tok] += tagBoost
			}
			for _, tok := range synTokens {
				tf[tok] += synonymBoost
			}

			length := 0
			for _, n := range tf {
				length += n
			}
			if length < 1 {
				length = 1
			}

			snap.chunks = append(snap.chunks, chunk{
				id:     nextChunkID,
				docID:  doc.ID,
				text:   text,
				tf:     tf,
				length: length,
			})
			nextChunkID++
		}
	}

	// Sorted slices keep synonym expansion order deterministic.
	snap.synonyms = make(map[string][]string, len(synSets))
	for tok, set := range synSets {
		related := make([]string, 0, len(set))
		for r := range set {
			related = append(related, r)
		}
		sort.Strings(related)
		snap.synonyms[tok] = related
	}

	n := len(snap.chunks)
	if n == 0 {
		return snap
	}

	df := make(map[string]int)
	totalLen := 0
	for i := range snap.chunks {
		for tok := range snap.chunks[i].tf {
			df[tok]++
		}
		totalLen += snap.chunks[i].length
	}
	for tok, d := range df {
		snap.idf[tok] = math.Log((float64(n)-float64(d)+0.5)/(float64(d)+0.5) + 1.0)
	}
	snap.avgLen = float64(totalLen) / float64(n)
	if snap.avgLen < 1 {
		snap.avgLen = 1
	}

	return snap
}

// docByID returns the owning document of a chunk. Chunk docIDs are dense
// indexes assigned by the build, so this is a plain slice lookup.
func (s *snapshot) docByID(id int) Document {
	return s.docs[id]
}

// stats summarizes the snapshot, including the chunk-length distribution.
func (s *snapshot) stats() IndexStats {
	stats := IndexStats{
		Built:          true,
		Documents:      len(s.docs),
		Chunks:         len(s.chunks),
		Terms:          len(s.idf),
		AvgChunkLength: s.avgLen,
	}
	if len(s.chunks) == 0 {
		return stats
	}

	lengths := make([]int, len(s.chunks))
	sum := 0
	for i := range s.chunks {
		lengths[i] = s.chunks[i].length
		sum += s.chunks[i].length
	}
	sort.Ints(lengths)

	p95Index := int(math.Ceil(float64(len(lengths)) * 0.95))
	if p95Index >= len(lengths) {
		p95Index = len(lengths) - 1
	}

	stats.ChunkLengths = ChunkLengthStats{
		Min:  lengths[0],
		Max:  lengths[len(lengths)-1],
		Mean: math.Round(float64(sum)/float64(len(lengths))*100) / 100,
		P95:  lengths[p95Index],
	}
	return stats
}
