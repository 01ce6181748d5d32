package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/selection"
	"github.com/jeffloic/artisan-showroom/internal/session"
	"github.com/shopspring/decimal"
)

type SelectionResponseDTO struct {
	selection.Current
	DisplayName string               `json:"display_name"`
	Price       *decimal.Decimal     `json:"price,omitempty"`
	Palette     []selection.Material `json:"palette"`
}

type SelectModelRequestDTO struct {
	ModelID string `json:"model_id"`
}

type SelectMaterialRequestDTO struct {
	Index *int   `json:"index,omitempty"`
	Name  string `json:"name,omitempty"`
}

type AddToCartResponseDTO struct {
	Added domain.CartLineItem  `json:"added"`
	Cart  domain.CartSnapshot `json:"cart"`
}

func (h *Handler) selectionResponse(cur selection.Current) SelectionResponseDTO {
	resp := SelectionResponseDTO{
		Current:     cur,
		DisplayName: selection.DisplayName(cur.ModelID),
		Palette:     selection.Palette(),
	}
	if p, ok := h.catalog.Lookup(cur.ModelID); ok {
		resp.Price = &p.Price
	}
	return resp
}

// GetSelection returns the current selection. ?model= switches the model first.
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	cur := s.Selection.Current()
	if model := r.URL.Query().Get("model"); model != "" && model != cur.ModelID {
		cur = s.Selection.SelectModel(model)
	}
	respondJSON(w, http.StatusOK, h.selectionResponse(cur))
}

func (h *Handler) SelectModel(w http.ResponseWriter, r *http.Request) {
	var req SelectModelRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	s := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, h.selectionResponse(s.Selection.SelectModel(req.ModelID)))
}

func (h *Handler) SelectMaterial(w http.ResponseWriter, r *http.Request) {
	var req SelectMaterialRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Index == nil && req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "index or name is required")
		return
	}

	s := sessionFromContext(r.Context())
	var (
		cur selection.Current
		err error
	)
	if req.Index != nil {
		cur, err = s.Selection.SelectMaterial(*req.Index)
	} else {
		cur, err = s.Selection.SelectMaterialByName(req.Name)
	}
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.selectionResponse(cur))
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	candidate, err := s.Selection.AddCurrentSelectionToCart()
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, AddToCartResponseDTO{
		Added: lineFor(s, candidate.Key()),
		Cart:  s.Cart.Snapshot(),
	})
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if err := h.sessions.End(s.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
		handleError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func lineFor(s *session.Session, key domain.LineKey) domain.CartLineItem {
	for _, item := range s.Cart.Items() {
		if item.Key() == key {
			return item
		}
	}
	return domain.CartLineItem{}
}
