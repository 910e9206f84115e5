package kb

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Meta is the parsed metadata block of an article. List-or-scalar fields
// (tags, synonyms) are resolved into normalized string slices exactly once
// at parse time; unknown keys are preserved raw for forward compatibility.
type Meta struct {
	Title    string
	Tags     []string
	Synonyms []string
	Extra    map[string]string
}

// metaValue is a raw frontmatter value that may be written as a scalar,
// a bracketed list, or a comma/semicolon-separated list.
type metaValue string

// list resolves the value into a normalized list. A bare value becomes a
// single-element list; an empty value becomes nil.
func (v metaValue) list() []string {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.Trim(part, " \t[]"); part != "" {
				out = append(out, part)
			}
		}
		return out
	}

	sep := ""
	switch {
	case strings.Contains(s, ";"):
		sep = ";"
	case strings.Contains(s, ","):
		sep = ","
	default:
		return []string{s}
	}

	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseFrontmatter splits raw article text into its metadata block and body.
// The block is delimited by a leading "---" line and a closing "---" line,
// holding "key: value" pairs. A missing or malformed block is not an error:
// the whole input becomes the body and the metadata stays empty.
func ParseFrontmatter(raw string) (Meta, string) {
	meta := Meta{Extra: map[string]string{}}

	if !strings.HasPrefix(raw, "---") {
		return meta, raw
	}
	end := strings.Index(raw[3:], "\n---")
	if end < 0 {
		return meta, raw
	}

	block := strings.TrimSpace(raw[3 : 3+end])
	body := strings.TrimLeft(raw[3+end+4:], " \t\r\n")

	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "title":
			meta.Title = value
		case "tags":
			meta.Tags = metaValue(value).list()
		case "synonyms":
			meta.Synonyms = metaValue(value).list()
		default:
			if key != "" {
				meta.Extra[key] = value
			}
		}
	}

	return meta, body
}

// TitleFromSlug derives a default title from a document's stable identifier:
// underscores and hyphens become spaces and each word is capitalized.
func TitleFromSlug(slug string) string {
	name := strings.NewReplacer("_", " ", "-", " ").Replace(slug)
	words := strings.Fields(name)
	for i, word := range words {
		r := []rune(word)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// splitChunks packs the body into retrieval-sized chunks: split on blank-line
// paragraph boundaries, then greedily append consecutive paragraphs until the
// next one would push past the word budget. A single paragraph longer than
// the budget still becomes its own chunk. An empty body yields one empty
// chunk so the document stays searchable by metadata alone.
func splitChunks(body string, targetWords int) []string {
	if targetWords <= 0 {
		targetWords = DefaultChunkTargetWords
	}

	var paras []string
	for _, p := range paragraphSplit.Split(body, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}

	var chunks []string
	var current []string
	count := 0
	for _, p := range paras {
		words := len(strings.Fields(p))
		if count+words > targetWords && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current, count = nil, 0
		}
		current = append(current, p)
		count += words
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}

	if len(chunks) == 0 {
		chunks = []string{""}
	}
	return chunks
}

// DirSource loads knowledge articles from a flat directory of .md files.
// A document's path is its file name relative to the directory, which stays
// stable across reindexes and machines.
type DirSource struct {
	dir string
}

// NewDirSource creates a corpus source over the given directory, creating it
// if it does not exist yet.
func NewDirSource(dir string) (*DirSource, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create corpus directory: %w", err)
	}
	return &DirSource{dir: dir}, nil
}

// Dir returns the corpus directory.
func (s *DirSource) Dir() string {
	return s.dir
}

// Load reads every .md article in the directory, in file-name order.
// An unreadable file aborts the load; a malformed metadata block does not.
func (s *DirSource) Load() ([]Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read article %s: %w", name, err)
		}

		meta, body := ParseFrontmatter(string(raw))
		title := meta.Title
		if title == "" {
			title = TitleFromSlug(strings.TrimSuffix(name, filepath.Ext(name)))
		}

		docs = append(docs, Document{
			Path:     name,
			Title:    title,
			Tags:     meta.Tags,
			Synonyms: meta.Synonyms,
			Body:     body,
		})
	}

	return docs, nil
}
