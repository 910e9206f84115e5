package kb

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildSnapshotMetadataBoosts(t *testing.T) {
	docs := []Document{
		{
			Path:     "pw.md",
			Title:    "Reset Password",
			Tags:     []string{"senha"},
			Synonyms: []string{"esqueci a senha"},
			Body:     "Abra o portal e clique em redefinir.",
		},
	}
	snap := buildSnapshot(docs, DefaultChunkTargetWords)

	if len(snap.chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(snap.chunks))
	}
	tf := snap.chunks[0].tf

	// "password" appears only in the title.
	if tf["password"] != titleBoost {
		t.Errorf("tf[password] = %d, want %d", tf["password"], titleBoost)
	}
	// "senha" appears once as a tag and once inside the synonym phrase.
	if want := tagBoost + synonymBoost; tf["senha"] != want {
		t.Errorf("tf[senha] = %d, want %d", tf["senha"], want)
	}
	// "portal" appears once in the body with no boost.
	if tf["portal"] != 1 {
		t.Errorf("tf[portal] = %d, want 1", tf["portal"])
	}
}

func TestBuildSnapshotSynonymTable(t *testing.T) {
	docs := []Document{
		{
			Path:     "pw.md",
			Title:    "Reset Password",
			Synonyms: []string{"esqueci a senha"},
			Body:     "Body.",
		},
	}
	snap := buildSnapshot(docs, DefaultChunkTargetWords)

	// Every token of a phrase maps to the full, sorted token set of the
	// phrase, including itself.
	want := []string{"a", "esqueci", "senha"}
	for _, tok := range want {
		if got := snap.synonyms[tok]; !reflect.DeepEqual(got, want) {
			t.Errorf("synonyms[%q] = %v, want %v", tok, got, want)
		}
	}
}

func TestBuildSnapshotAssignsDenseDocIDs(t *testing.T) {
	docs := []Document{
		{Path: "a.md", Title: "A", Body: "alpha"},
		{Path: "b.md", Title: "B", Body: "beta"},
		{Path: "c.md", Title: "C", Body: "gamma"},
	}
	snap := buildSnapshot(docs, DefaultChunkTargetWords)

	for i, doc := range snap.docs {
		if doc.ID != i {
			t.Errorf("docs[%d].ID = %d, want %d", i, doc.ID, i)
		}
	}
	for _, c := range snap.chunks {
		if snap.docByID(c.docID).Path != snap.docs[c.docID].Path {
			t.Errorf("docByID(%d) mismatch", c.docID)
		}
	}
}

func TestBuildSnapshotEmptyBodyYieldsOneChunk(t *testing.T) {
	docs := []Document{{Path: "stub.md", Title: "Stub", Body: ""}}
	snap := buildSnapshot(docs, DefaultChunkTargetWords)

	if len(snap.chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(snap.chunks))
	}
	if snap.chunks[0].text != "" {
		t.Errorf("chunk text = %q, want empty", snap.chunks[0].text)
	}
	// Title tokens still land in the tf map, so the article stays findable.
	if snap.chunks[0].tf["stub"] != titleBoost {
		t.Errorf("tf[stub] = %d, want %d", snap.chunks[0].tf["stub"], titleBoost)
	}
}

func TestBuildSnapshotEmptyCorpus(t *testing.T) {
	snap := buildSnapshot(nil, DefaultChunkTargetWords)
	if len(snap.chunks) != 0 {
		t.Errorf("got %d chunks, want 0", len(snap.chunks))
	}
	if snap.avgLen != 1.0 {
		t.Errorf("avgLen = %f, want 1.0", snap.avgLen)
	}
}

func TestBuildSnapshotIDF(t *testing.T) {
	docs := []Document{
		{Path: "a.md", Body: "common rare"},
		{Path: "b.md", Body: "common"},
		{Path: "c.md", Body: "common"},
	}
	snap := buildSnapshot(docs, DefaultChunkTargetWords)

	common, rare := snap.idf["common"], snap.idf["rare"]
	if common <= 0 || rare <= 0 {
		t.Fatalf("smoothed IDF must stay positive: common=%f rare=%f", common, rare)
	}
	if rare <= common {
		t.Errorf("rare term IDF (%f) should exceed common term IDF (%f)", rare, common)
	}
}

func TestSnapshotStats(t *testing.T) {
	docs := []Document{
		{Path: "a.md", Body: "one two three"},
		{Path: "b.md", Body: strings.TrimSpace(strings.Repeat("word ", 150)) + "\n\n" + "tail paragraph"},
	}
	snap := buildSnapshot(docs, DefaultChunkTargetWords)
	stats := snap.stats()

	if !stats.Built {
		t.Error("stats.Built = false, want true")
	}
	if stats.Documents != 2 {
		t.Errorf("Documents = %d, want 2", stats.Documents)
	}
	if stats.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", stats.Chunks)
	}
	if stats.Terms != len(snap.idf) {
		t.Errorf("Terms = %d, want %d", stats.Terms, len(snap.idf))
	}
	cl := stats.ChunkLengths
	if cl.Min > cl.Max {
		t.Errorf("Min (%d) > Max (%d)", cl.Min, cl.Max)
	}
	if cl.P95 < cl.Min || cl.P95 > cl.Max {
		t.Errorf("P95 (%d) outside [%d, %d]", cl.P95, cl.Min, cl.Max)
	}
	if cl.Mean < float64(cl.Min) || cl.Mean > float64(cl.Max) {
		t.Errorf("Mean (%f) outside [%d, %d]", cl.Mean, cl.Min, cl.Max)
	}
}
