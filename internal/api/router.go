package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mdlive/internal/session"
)

// RouterConfig carries the knobs of the API router.
type RouterConfig struct {
	// AuthEnabled controls whether Bearer token auth is enforced.
	AuthEnabled bool
	Token       string
	// AllowedOrigins lists origins allowed to make cross-origin calls.
	AllowedOrigins []string
	// MaxDropBytes bounds a drop request. Zero uses DefaultMaxDropBytes.
	MaxDropBytes int64
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(sess *session.Session, cfg RouterConfig) chi.Router {
	h := NewHandler(sess)
	dh := NewDropHandler(sess, cfg.MaxDropBytes)

	r := chi.NewRouter()
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	// Document.
	r.Get("/document", h.GetDocument)
	r.Put("/document", h.PutDocument)
	r.Post("/document/tab", h.Tab)
	r.Post("/document/drop", dh.Drop)

	// Preview.
	r.Get("/preview", h.GetPreview)
	r.Post("/render", h.Render)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
