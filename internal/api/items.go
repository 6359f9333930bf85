package api

import (
	"net/http"

	"github.com/Gobd/vinylstock/internal/metrics"
	"github.com/Gobd/vinylstock/internal/store"
)

type ItemResponse struct {
	Message string      `json:"message"`
	Item    *store.Item `json:"item"`
}

type ItemsResponse struct {
	Message string       `json:"message"`
	Items   []store.Item `json:"items"`
}

const itemNotFound = "Item not found"

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Items(r.Context())
	if err != nil {
		respondStoreError(w, r, err, "")
		return
	}
	respondJSON(w, r, http.StatusOK, items)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondBadID(w, r)
		return
	}
	it, err := s.store.Item(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, itemNotFound)
		return
	}
	respondJSON(w, r, http.StatusOK, it)
}

// itemsByCategory answers 404 for a category without items so the client
// can show an empty state.
func (s *Server) itemsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondBadID(w, r)
		return
	}
	items, err := s.store.ItemsByCategory(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "")
		return
	}
	if len(items) == 0 {
		respondError(w, r, http.StatusNotFound, "not_found", "No items found for this category", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, items)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondInvalid(w, r, err)
		return
	}
	it, err := s.store.CreateItem(r.Context(), req.input())
	if err != nil {
		respondStoreError(w, r, err, "")
		return
	}
	respondJSON(w, r, http.StatusCreated, ItemResponse{Message: "Item created successfully", Item: it})
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondBadID(w, r)
		return
	}
	var req ItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondInvalid(w, r, err)
		return
	}
	it, err := s.store.UpdateItem(r.Context(), id, req.input())
	if err != nil {
		respondStoreError(w, r, err, itemNotFound)
		return
	}
	respondJSON(w, r, http.StatusOK, ItemResponse{Message: "Item updated successfully", Item: it})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondBadID(w, r)
		return
	}
	if err := s.store.DeleteItem(r.Context(), id); err != nil {
		respondStoreError(w, r, err, itemNotFound)
		return
	}
	respondJSON(w, r, http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
}

func (s *Server) adjustQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondBadID(w, r)
		return
	}
	var req QuantityRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondInvalid(w, r, err)
		return
	}
	it, err := s.store.AdjustQuantity(r.Context(), id, req.Adjustment)
	metrics.RecordStockAdjustment(req.Adjustment, err)
	if err != nil {
		respondStoreError(w, r, err, itemNotFound)
		return
	}
	respondJSON(w, r, http.StatusOK, ItemResponse{Message: "Item quantity updated successfully", Item: it})
}

func (s *Server) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondBadID(w, r)
		return
	}
	var req PriceRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondInvalid(w, r, err)
		return
	}
	it, err := s.store.UpdatePrice(r.Context(), id, *req.Price)
	if err != nil {
		respondStoreError(w, r, err, itemNotFound)
		return
	}
	respondJSON(w, r, http.StatusOK, ItemResponse{Message: "Item price updated successfully", Item: it})
}

func (s *Server) reassignCategory(w http.ResponseWriter, r *http.Request) {
	var req ReassignRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondInvalid(w, r, err)
		return
	}
	items, err := s.store.ReassignCategory(r.Context(), req.ItemIDs, req.CategoryID)
	if err != nil {
		respondStoreError(w, r, err, itemNotFound)
		return
	}
	respondJSON(w, r, http.StatusOK, ItemsResponse{Message: "Items updated successfully", Items: items})
}
