package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"triage-kb/internal/contextutil"
	"triage-kb/internal/kbadmin"
)

// ArticlesHandler serves knowledge-article CRUD. Writes touch only the files
// on disk; callers trigger a reindex to make changes searchable.
type ArticlesHandler struct {
	manager *kbadmin.Manager
}

// NewArticlesHandler creates a new ArticlesHandler.
func NewArticlesHandler(manager *kbadmin.Manager) *ArticlesHandler {
	return &ArticlesHandler{manager: manager}
}

// RenderedArticle is the HTML preview of an article body.
type RenderedArticle struct {
	Slug string `json:"slug"`
	HTML string `json:"html"`
}

func (h *ArticlesHandler) writeArticleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case errors.Is(err, kbadmin.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, err.Error())
	case errors.Is(err, kbadmin.ErrAlreadyExists):
		writeError(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, kbadmin.ErrInvalidSlug):
		writeError(ctx, w, http.StatusBadRequest, err.Error())
	default:
		logger.ErrorContext(ctx, "article operation failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "article operation failed")
	}
}

// List handles GET requests for all article summaries.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.manager.List()
	if err != nil {
		h.writeArticleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, summaries)
}

// Get handles GET requests for one article. With ?render=html the body is
// returned as rendered HTML instead of raw markdown.
func (h *ArticlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if r.URL.Query().Get("render") == "html" {
		html, err := h.manager.RenderHTML(slug)
		if err != nil {
			h.writeArticleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, RenderedArticle{Slug: slug, HTML: html})
		return
	}

	article, err := h.manager.Get(slug)
	if err != nil {
		h.writeArticleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, article)
}

// Create handles POST requests adding a new article.
func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var article kbadmin.Article
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.manager.Create(article)
	if err != nil {
		h.writeArticleError(w, r, err)
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "article created", "slug", created.Slug)
	writeJSON(ctx, w, http.StatusCreated, created)
}

// Update handles PUT requests rewriting an existing article.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var article kbadmin.Article
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.manager.Update(slug, article)
	if err != nil {
		h.writeArticleError(w, r, err)
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "article updated", "slug", slug)
	writeJSON(ctx, w, http.StatusOK, updated)
}
