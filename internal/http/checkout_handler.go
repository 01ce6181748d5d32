package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jeffloic/artisan-showroom/internal/domain"
)

type InitiateCheckoutRequestDTO struct {
	Email string `json:"email"`
}

type CheckoutStatusDTO struct {
	Status      domain.CheckoutStatus  `json:"status"`
	CanCheckout bool                   `json:"can_checkout"`
	Pending     *domain.PaymentSession `json:"pending,omitempty"`
}

func (h *Handler) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	resp := CheckoutStatusDTO{
		Status:      s.Checkout.Status(),
		CanCheckout: s.Checkout.CanCheckout(),
	}
	if pending, ok := s.Checkout.Pending(); ok {
		resp.Pending = &pending
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /api/v1/checkout
func (h *Handler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	var req InitiateCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = h.payerEmail
	}

	s := sessionFromContext(r.Context())
	session, err := s.Checkout.Initiate(r.Context(), email)
	if err != nil {
		h.logger.WarnContext(r.Context(), "checkout not started", "session_id", s.ID, "error", err)
		handleError(w, err)
		return
	}
	h.sessions.Track(session.Reference, s.ID)

	respondJSON(w, http.StatusCreated, session)
}

func (h *Handler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	out, err := s.Checkout.Confirm(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	out, err := s.Checkout.Cancel(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
