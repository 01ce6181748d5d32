// Package http exposes the showroom over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jeffloic/artisan-showroom/internal/catalog"
	"github.com/jeffloic/artisan-showroom/internal/domain"
	"github.com/jeffloic/artisan-showroom/internal/payment/paystack"
	"github.com/jeffloic/artisan-showroom/internal/session"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultPayerEmail   = "test@artisan.com"
	maxWebhookBodyBytes = 64 << 10
)

type Sessions interface {
	Create(modelID string) *session.Session
	Get(id string) (*session.Session, bool)
	End(id string) error
	Track(reference, id string)
	ByReference(reference string) (*session.Session, bool)
}

type Catalog interface {
	List() []catalog.Product
	Lookup(id string) (catalog.Product, bool)
}

type PaystackWebhooks interface {
	ParseWebhook(body []byte, signature string) (paystack.Event, error)
}

type StripeWebhooks interface {
	ParseWebhook(payload []byte, signature string) (notice domain.PaymentNotice, ok bool, err error)
}

// Orders reads recorded orders and stores charges that arrive with no checkout.
type Orders interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	GetOrderByReference(ctx context.Context, reference string) (*domain.Order, error)
}

type UnrecordedEvents interface {
	OrderUnrecorded(ctx context.Context, order *domain.Order, cause error) error
}

// Config holds the optional parts of the handler. Leave a webhook field nil
// to skip its route.
type Config struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
	SecureCookies  bool
	PayerEmail     string
	Paystack       PaystackWebhooks
	Stripe         StripeWebhooks
	Orders         Orders
	Events         UnrecordedEvents
}

type Handler struct {
	sessions      Sessions
	catalog       Catalog
	logger        *slog.Logger
	timeout       time.Duration
	origins       []string
	secureCookies bool
	payerEmail    string
	paystack      PaystackWebhooks
	stripe        StripeWebhooks
	orders        Orders
	unrecorded    UnrecordedEvents
}

func NewHandler(sessions Sessions, cat Catalog, logger *slog.Logger, cfg Config) *Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.PayerEmail == "" {
		cfg.PayerEmail = DefaultPayerEmail
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions:      sessions,
		catalog:       cat,
		logger:        logger,
		timeout:       cfg.RequestTimeout,
		origins:       cfg.AllowedOrigins,
		secureCookies: cfg.SecureCookies,
		payerEmail:    cfg.PayerEmail,
		paystack:      cfg.Paystack,
		stripe:        cfg.Stripe,
		orders:        cfg.Orders,
		unrecorded:    cfg.Events,
	}
}

// Routes builds the router. The cart event stream sits outside the request
// timeout since it is long-lived.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   h.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Use(middleware.RequestSize(maxWebhookBodyBytes))
		if h.paystack != nil {
			r.Post("/paystack", h.PaystackWebhook)
		}
		if h.stripe != nil {
			r.Post("/stripe", h.StripeWebhook)
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(h.timeout))
			r.Get("/catalog", h.ListCatalog)
			r.Get("/catalog/{id}", h.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.SessionMiddleware)

			r.Get("/cart/events", h.CartEvents)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(h.timeout))

				r.Delete("/session", h.EndSession)

				r.Get("/selection", h.GetSelection)
				r.Put("/selection/model", h.SelectModel)
				r.Put("/selection/material", h.SelectMaterial)
				r.With(FreezeDuringCheckout).Post("/selection/add-to-cart", h.AddToCart)

				r.Get("/cart", h.GetCart)
				r.With(FreezeDuringCheckout).Delete("/cart", h.ClearCart)
				r.With(FreezeDuringCheckout).Delete("/cart/items/{productID}/{material}", h.RemoveItem)
				r.Post("/cart/drawer/{action}", h.Drawer)
				r.Get("/cart/badge", h.Badge)

				r.Get("/checkout", h.CheckoutStatus)
				r.With(CheckoutRateLimit).Post("/checkout", h.InitiateCheckout)
				r.Post("/checkout/{reference}/confirm", h.ConfirmCheckout)
				r.Post("/checkout/{reference}/cancel", h.CancelCheckout)
				if h.orders != nil {
					r.Get("/checkout/{reference}/order", h.GetOrderByReference)
					r.Get("/orders/{id}", h.GetOrder)
				}
			})
		})
	})

	return otelhttp.NewHandler(r, "showroom")
}
