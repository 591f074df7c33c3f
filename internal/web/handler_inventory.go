package web

import (
	"net/http"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/store"
)

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := decodeJSON(w, r, &item); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.deps.Inventory.Create(r.Context(), &item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	needsRestock, err := queryBool(r, "needs_restock")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f := store.ItemFilter{
		Category:     domain.ItemCategory(r.URL.Query().Get("category")),
		NeedsRestock: needsRestock,
	}
	items, err := s.deps.Inventory.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.deps.Inventory.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var item domain.Item
	if err := decodeJSON(w, r, &item); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.deps.Inventory.Update(r.Context(), id, &item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Inventory.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, message("Item deleted"))
}

func (s *Server) handleItemCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Inventory.Categories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Inventory.LowStock(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleSnacks(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Inventory.Snacks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleUpsertItem(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := decodeJSON(w, r, &item); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.deps.Inventory.Upsert(r.Context(), &item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}
