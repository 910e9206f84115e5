// Package kbadmin manages knowledge articles as frontmatter+markdown files
// in the corpus directory consumed by the search engine.
package kbadmin

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"triage-kb/internal/kb"
)

var (
	// ErrNotFound is returned when the requested article does not exist.
	ErrNotFound = errors.New("article not found")
	// ErrAlreadyExists is returned when creating an article whose slug is taken.
	ErrAlreadyExists = errors.New("article already exists")
	// ErrInvalidSlug is returned for empty or path-escaping slugs.
	ErrInvalidSlug = errors.New("invalid article slug")
)

// Article is one knowledge article with its full body.
type Article struct {
	Slug   string            `json:"slug"`
	Title  string            `json:"title"`
	Tags   []string          `json:"tags"`
	Active bool              `json:"active"`
	Body   string            `json:"body"`
	Extras map[string]string `json:"extras,omitempty"`
}

// Summary is the metadata-only view of an article.
type Summary struct {
	Slug   string   `json:"slug"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags"`
	Active bool     `json:"active"`
}

// Manager performs article CRUD over the corpus directory.
type Manager struct {
	dir string
	md  goldmark.Markdown
}

// NewManager creates a manager over the given corpus directory.
func NewManager(dir string) *Manager {
	return &Manager{
		dir: dir,
		md:  goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

func (m *Manager) slugPath(slug string) (string, error) {
	safe := strings.ToLower(strings.TrimSpace(slug))
	if safe == "" || safe != filepath.Base(safe) || strings.ContainsAny(safe, "/\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return filepath.Join(m.dir, safe+".md"), nil
}

// parseBool interprets the loose boolean spellings used in article
// frontmatter, defaulting to true when absent or unrecognized.
func parseBool(value string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "false", "no", "nao", "não":
		return false
	case "1", "true", "yes", "sim":
		return true
	default:
		return def
	}
}

func formatList(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return "[" + strings.Join(cleaned, ", ") + "]"
}

// serializeFrontmatter renders the metadata block, preserving unknown extra
// keys in sorted order so round-tripping an article is stable.
func serializeFrontmatter(a Article) string {
	lines := []string{
		"---",
		"title: " + a.Title,
		"tags: " + formatList(a.Tags),
		"active: " + fmt.Sprintf("%t", a.Active),
	}

	keys := make([]string, 0, len(a.Extras))
	for key := range a.Extras {
		switch key {
		case "title", "tags", "active":
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		lines = append(lines, key+": "+a.Extras[key])
	}

	lines = append(lines, "---")
	return strings.Join(lines, "\n") + "\n\n"
}

func (m *Manager) readArticle(path, slug string) (*Article, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("failed to read article %s: %w", slug, err)
	}

	meta, body := kb.ParseFrontmatter(string(raw))
	title := meta.Title
	if title == "" {
		title = kb.TitleFromSlug(slug)
	}

	body = strings.TrimRight(body, "\n")
	if body != "" {
		body += "\n"
	}

	return &Article{
		Slug:   slug,
		Title:  title,
		Tags:   meta.Tags,
		Active: parseBool(meta.Extra["active"], true),
		Body:   body,
		Extras: meta.Extra,
	}, nil
}

// List returns metadata for every article, sorted by slug.
func (m *Manager) List() ([]Summary, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		article, err := m.readArticle(filepath.Join(m.dir, entry.Name()), slug)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, Summary{
			Slug:   article.Slug,
			Title:  article.Title,
			Tags:   article.Tags,
			Active: article.Active,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Slug < summaries[j].Slug })
	return summaries, nil
}

// Get returns one article with its body.
func (m *Manager) Get(slug string) (*Article, error) {
	path, err := m.slugPath(slug)
	if err != nil {
		return nil, err
	}
	return m.readArticle(path, strings.ToLower(strings.TrimSpace(slug)))
}

// Create writes a new article. The slug must be free.
func (m *Manager) Create(a Article) (*Article, error) {
	path, err := m.slugPath(a.Slug)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, a.Slug)
	}
	if err := m.writeArticle(path, a); err != nil {
		return nil, err
	}
	return m.Get(a.Slug)
}

// Update rewrites an existing article, preserving unknown frontmatter keys
// already present on disk.
func (m *Manager) Update(slug string, a Article) (*Article, error) {
	if a.Slug != "" && !strings.EqualFold(a.Slug, slug) {
		return nil, fmt.Errorf("%w: payload slug must match route slug", ErrInvalidSlug)
	}
	path, err := m.slugPath(slug)
	if err != nil {
		return nil, err
	}
	existing, err := m.readArticle(path, slug)
	if err != nil {
		return nil, err
	}

	a.Slug = existing.Slug
	if a.Extras == nil {
		a.Extras = existing.Extras
	}
	if err := m.writeArticle(path, a); err != nil {
		return nil, err
	}
	return m.Get(slug)
}

// RenderHTML converts an article body to HTML for preview.
func (m *Manager) RenderHTML(slug string) (string, error) {
	article, err := m.Get(slug)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(article.Body), &buf); err != nil {
		return "", fmt.Errorf("failed to render article %s: %w", slug, err)
	}
	return buf.String(), nil
}

func (m *Manager) writeArticle(path string, a Article) error {
	body := strings.TrimRight(a.Body, "\n")
	if body != "" {
		body += "\n"
	}
	text := serializeFrontmatter(a) + body
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write article %s: %w", a.Slug, err)
	}
	return nil
}
