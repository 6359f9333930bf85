package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Gobd/vinylstock/apivalidation/is"
	"github.com/Gobd/vinylstock/internal/catalog"
)

const maxQueryLen = 100

func (s *Server) searchArtist(w http.ResponseWriter, r *http.Request) {
	if !s.catalogReady(w, r) {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" || len([]rune(q)) > maxQueryLen {
		respondError(w, r, http.StatusBadRequest, "invalid_query", "Query parameter q must be 1 to 100 characters", nil)
		return
	}
	a, err := s.catalog.SearchArtist(r.Context(), q)
	if err != nil {
		respondCatalogError(w, r, err, "Artist not found")
		return
	}
	respondJSON(w, r, http.StatusOK, a)
}

func (s *Server) artistAlbums(w http.ResponseWriter, r *http.Request) {
	if !s.catalogReady(w, r) {
		return
	}
	id, ok := catalogID(w, r)
	if !ok {
		return
	}
	albums, err := s.catalog.ArtistAlbums(r.Context(), id)
	if err != nil {
		respondCatalogError(w, r, err, "Artist not found")
		return
	}
	respondJSON(w, r, http.StatusOK, albums)
}

func (s *Server) album(w http.ResponseWriter, r *http.Request) {
	if !s.catalogReady(w, r) {
		return
	}
	id, ok := catalogID(w, r)
	if !ok {
		return
	}
	a, err := s.catalog.Album(r.Context(), id)
	if err != nil {
		respondCatalogError(w, r, err, "Album not found")
		return
	}
	respondJSON(w, r, http.StatusOK, a)
}

func (s *Server) catalogReady(w http.ResponseWriter, r *http.Request) bool {
	if s.catalog == nil {
		respondError(w, r, http.StatusServiceUnavailable, "catalog_unavailable", "Catalog lookup is not configured", nil)
		return false
	}
	return true
}

func catalogID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > 64 || is.Alphanumeric.Validate(id) != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_id", "Id must be alphanumeric", nil)
		return "", false
	}
	return id, true
}

func respondCatalogError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "not_found", notFound, nil)
	case errors.Is(err, catalog.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, "catalog_unavailable", "Catalog is temporarily unavailable", err)
	case errors.Is(err, catalog.ErrUpstream):
		respondError(w, r, http.StatusBadGateway, "catalog_error", "Catalog request failed", err)
	default:
		respondError(w, r, http.StatusInternalServerError, "internal_error", "Internal server error", err)
	}
}
