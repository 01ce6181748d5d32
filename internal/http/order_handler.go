package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/repository"
	"github.com/shopspring/decimal"
)

type OrderResponseDTO struct {
	ID            string                `json:"id"`
	Reference     string                `json:"reference"`
	TotalPaid     decimal.Decimal       `json:"total_paid"`
	AmountCharged int64                 `json:"amount_charged"`
	Currency      string                `json:"currency"`
	Status        domain.OrderStatus    `json:"status"`
	Items         []domain.CartLineItem `json:"items"`
	CreatedAt     string                `json:"created_at"`
}

// GET /api/v1/checkout/{reference}/order
func (h *Handler) GetOrderByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if !h.owns(r, reference) {
		handleError(w, fmt.Errorf("%w: %s", repository.ErrOrderNotFound, reference))
		return
	}
	order, err := h.orders.GetOrderByReference(r.Context(), reference)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, convertOrder(order))
}

// GET /api/v1/orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.orders.GetOrderByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	// another shopper's order reads as missing
	if !h.owns(r, order.Reference) {
		handleError(w, fmt.Errorf("%w: %s", repository.ErrOrderNotFound, id))
		return
	}
	respondJSON(w, http.StatusOK, convertOrder(order))
}

// owns reports whether the request's session started the payment for reference.
func (h *Handler) owns(r *http.Request, reference string) bool {
	s := sessionFromContext(r.Context())
	owner, ok := h.sessions.ByReference(reference)
	return ok && s != nil && owner.ID == s.ID
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	items := o.Items
	if items == nil {
		items = make([]domain.CartLineItem, 0)
	}
	return OrderResponseDTO{
		ID:            o.ID,
		Reference:     o.Reference,
		TotalPaid:     o.TotalPaid,
		AmountCharged: o.AmountCharged,
		Currency:      o.Currency,
		Status:        o.Status,
		Items:         items,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}
