package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"triage-kb/internal/handlers"
	"triage-kb/internal/kb"
	"triage-kb/internal/kbadmin"
	"triage-kb/internal/learning"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine         *kb.Engine
	ArticleManager *kbadmin.Manager
	FeedbackStore  learning.Store
	Calculator     *learning.Calculator
	Defaults       handlers.Defaults
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	searchHandler := handlers.NewSearchHandler(deps.Engine, deps.Calculator, deps.Defaults)
	answerHandler := handlers.NewAnswerHandler(deps.Engine, deps.Calculator, deps.Defaults)
	reindexHandler := handlers.NewReindexHandler(deps.Engine)
	statsHandler := handlers.NewStatsHandler(deps.Engine)
	feedbackHandler := handlers.NewFeedbackHandler(deps.FeedbackStore)
	learningHandler := handlers.NewLearningHandler(deps.Calculator, deps.FeedbackStore)
	articlesHandler := handlers.NewArticlesHandler(deps.ArticleManager)

	r.Route("/api", func(r chi.Router) {
		r.Route("/kb", func(r chi.Router) {
			r.Method(http.MethodPost, "/search", searchHandler)
			r.Method(http.MethodPost, "/answer", answerHandler)
			r.Method(http.MethodPost, "/reindex", reindexHandler)
			r.Method(http.MethodGet, "/stats", statsHandler)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", articlesHandler.List)
				r.Post("/", articlesHandler.Create)
				r.Get("/{slug}", articlesHandler.Get)
				r.Put("/{slug}", articlesHandler.Update)
			})
		})

		r.Post("/feedback", feedbackHandler.Record)
		r.Delete("/feedback", feedbackHandler.Reset)

		r.Route("/learning", func(r chi.Router) {
			r.Get("/priors", learningHandler.Priors)
			r.Get("/stats", learningHandler.Stats)
			r.Get("/events", learningHandler.Events)
		})
	})

	r.Method(http.MethodGet, "/healthz", handlers.NewHealthHandler(deps.Engine))

	return r
}
