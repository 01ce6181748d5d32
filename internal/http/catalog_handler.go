package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"products": h.catalog.List()})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.catalog.Lookup(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}
