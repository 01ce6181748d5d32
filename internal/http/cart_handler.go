package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/shopspring/decimal"
)

type BadgeDTO struct {
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
	IsOpen   bool            `json:"is_open"`
}

func badgeOf(snapshot domain.CartSnapshot) BadgeDTO {
	return BadgeDTO{
		Count:    snapshot.Count,
		Total:    snapshot.Total,
		Currency: snapshot.Currency,
		IsOpen:   snapshot.IsOpen,
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, s.Cart.Snapshot())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	s.Cart.Clear()
	respondJSON(w, http.StatusOK, s.Cart.Snapshot())
}

// RemoveItem drops the line identified by product id and material.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key := domain.LineKey{
		ID:       chi.URLParam(r, "productID"),
		Material: chi.URLParam(r, "material"),
	}
	s := sessionFromContext(r.Context())
	if !s.Cart.RemoveItem(key) {
		respondError(w, http.StatusNotFound, "item_not_found", "no such item in cart")
		return
	}
	respondJSON(w, http.StatusOK, s.Cart.Snapshot())
}

func (h *Handler) Drawer(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	switch chi.URLParam(r, "action") {
	case "toggle":
		s.Cart.ToggleOpen()
	case "open":
		s.Cart.Open()
	case "close":
		s.Cart.Close()
	default:
		respondError(w, http.StatusBadRequest, "invalid_action", "action must be toggle, open or close")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_open": s.Cart.IsOpen()})
}

func (h *Handler) Badge(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, badgeOf(s.Cart.Snapshot()))
}
