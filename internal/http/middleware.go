package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/session"
)

const SessionCookie = "showroom_session"

type sessionKey struct{}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}

// RequestLogger logs one line per request with the chi request id.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.InfoContext(r.Context(), "http request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// SessionMiddleware attaches the shopper's session, creating one when the
// cookie is missing or stale. ?model= seeds the selection of a new session.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var s *session.Session
		if c, err := r.Cookie(SessionCookie); err == nil {
			s, _ = h.sessions.Get(c.Value)
		}
		if s == nil {
			s = h.sessions.Create(r.URL.Query().Get("model"))
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    s.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.secureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CheckoutRateLimit rejects checkout starts beyond the session's limiter.
func CheckoutRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := sessionFromContext(r.Context())
		if s != nil && !s.AllowCheckout() {
			respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many checkout attempts")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FreezeDuringCheckout rejects cart changes while a payment is open, so the
// cart the shopper sees is the cart being charged.
func FreezeDuringCheckout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := sessionFromContext(r.Context())
		if s != nil && s.Checkout.Status() == domain.CheckoutStatusInitiated {
			respondError(w, http.StatusConflict, "checkout_in_progress", "cart is locked while a payment is open")
			return
		}
		next.ServeHTTP(w, r)
	})
}
