// Package api serves the inventory REST API. Payloads use camelCase keys on
// the wire and are converted to and from the snake_case keys used by the
// store at the boundary, so handlers only ever deal with one convention.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Gobd/vinylstock/apivalidation/openapi"
	"github.com/Gobd/vinylstock/internal/catalog"
	"github.com/Gobd/vinylstock/internal/config"
	"github.com/Gobd/vinylstock/internal/logging"
	"github.com/Gobd/vinylstock/internal/metrics"
	"github.com/Gobd/vinylstock/internal/store"
)

// Catalog looks up albums to pre-fill new items. *catalog.Client
// implements it.
type Catalog interface {
	SearchArtist(ctx context.Context, query string) (*catalog.Artist, error)
	ArtistAlbums(ctx context.Context, artistID string) ([]catalog.AlbumSummary, error)
	Album(ctx context.Context, albumID string) (*catalog.AlbumDetails, error)
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg     config.ServerConfig
	store   *store.Store
	catalog Catalog
	doc     *openapi3.T
	now     func() time.Time
}

// New returns a Server. cat may be nil, in which case the catalog endpoints
// answer 503.
func New(cfg config.ServerConfig, st *store.Store, cat Catalog) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		catalog: cat,
		doc:     Doc(),
		now:     time.Now,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(s.cfg.CORSOrigins))

	r.Get("/health", s.health)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/swagger/*", openapi.SwaggerHandlerMust("/swagger/", s.doc))

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(s.cfg.RateLimit, s.cfg.RateWindow))
		r.Use(securityHeaders)
		r.Use(prometheusMetrics)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Post("/", s.createCategory)
			r.Get("/{id}", s.getCategory)
			r.Put("/{id}", s.updateCategory)
			r.Delete("/{id}", s.deleteCategory)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.listItems)
			r.Post("/", s.createItem)
			r.Patch("/category", s.reassignCategory)
			r.Get("/category/{id}", s.itemsByCategory)
			r.Get("/{id}", s.getItem)
			r.Put("/{id}", s.updateItem)
			r.Delete("/{id}", s.deleteItem)
			r.Patch("/{id}/quantity", s.adjustQuantity)
			r.Patch("/{id}/price", s.updatePrice)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/artists", s.searchArtist)
			r.Get("/artists/{id}/albums", s.artistAlbums)
			r.Get("/albums/{id}", s.album)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "not_found", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})
	return r
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// health reports whether the database answers.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("database ping failed")
		respondJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Timestamp: s.now().UTC()})
		return
	}
	respondJSON(w, r, http.StatusOK, healthResponse{Status: "healthy", Timestamp: s.now().UTC()})
}
