package api

import (
	"errors"
	"net/http"

	"github.com/Gobd/vinylstock/internal/store"
)

type CategoryResponse struct {
	Message  string          `json:"message"`
	Category *store.Category `json:"category"`
}

// respondStoreError maps store errors to statuses. notFound is the message
// sent when the addressed resource does not exist.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "not_found", notFound, nil)
	case errors.Is(err, store.ErrCategoryInUse):
		respondError(w, r, http.StatusConflict, "category_in_use", "Category still has items", err)
	case errors.Is(err, store.ErrDuplicateCategory):
		respondError(w, r, http.StatusConflict, "duplicate_category", "A category with this name already exists", err)
	case errors.Is(err, store.ErrUnknownCategory):
		respondError(w, r, http.StatusUnprocessableEntity, "unknown_category", "Category does not exist", err)
	case errors.Is(err, store.ErrInsufficientQuantity):
		respondError(w, r, http.StatusUnprocessableEntity, "insufficient_quantity", "Not enough stock for this adjustment", err)
	default:
		respondError(w, r, http.StatusInternalServerError, "internal_error", "Internal server error", err)
	}
}

func respondBadID(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusBadRequest, "invalid_id", "Id must be a positive integer", nil)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.Categories(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "")
		return
	}
	respondJSON(w, r, http.StatusOK, cats)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondBadID(w, r)
		return
	}
	c, err := s.store.Category(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "Category not found")
		return
	}
	respondJSON(w, r, http.StatusOK, c)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondInvalid(w, r, err)
		return
	}
	c, err := s.store.CreateCategory(r.Context(), req.input())
	if err != nil {
		respondStoreError(w, r, err, "")
		return
	}
	respondJSON(w, r, http.StatusCreated, CategoryResponse{Message: "Category created successfully", Category: c})
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondBadID(w, r)
		return
	}
	var req CategoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondInvalid(w, r, err)
		return
	}
	c, err := s.store.UpdateCategory(r.Context(), id, req.input())
	if err != nil {
		respondStoreError(w, r, err, "Category not found")
		return
	}
	respondJSON(w, r, http.StatusOK, CategoryResponse{Message: "Category updated successfully", Category: c})
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondBadID(w, r)
		return
	}
	if err := s.store.DeleteCategory(r.Context(), id); err != nil {
		respondStoreError(w, r, err, "Category not found")
		return
	}
	respondJSON(w, r, http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}
