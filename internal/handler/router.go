package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/bitnaira/checkout-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса покупки
// биткоина.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/payment", h.SubmitPayment)
		r.Get("/price", h.GetQuote)
		r.Get("/wallet", h.GetDefaultWallet)

		r.Route("/webhooks", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(h.signature.Middleware)

				r.Post("/transactions", h.TransactionWebhook)
				r.Get("/transactions", h.TransactionWebhook)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
