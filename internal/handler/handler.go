// Package handler содержит HTTP-обработчики API сервиса покупки биткоина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/bitnaira/checkout-system/internal/gateway"
	"github.com/bitnaira/checkout-system/internal/middleware"
	"github.com/bitnaira/checkout-system/internal/model"
	"github.com/bitnaira/checkout-system/internal/pricing"
	"github.com/bitnaira/checkout-system/internal/service"
)

// Service определяет контракт бизнес-логики, используемой
// HTTP-обработчиками.
type Service interface {
	SubmitPayment(ctx context.Context, req model.BuyRequest) (*gateway.CheckoutResult, error)
	DefaultWallet(ctx context.Context, username string) (string, error)
	ProcessWebhook(ctx context.Context, payload model.TransactionWebhookPayload) error
}

// QuoteSource отдаёт текущую котировку, когда фид уже доставил первое
// значение.
type QuoteSource interface {
	Quote() (model.PriceQuote, bool)
}

// Handler реализует HTTP-обработчики API сервиса покупки биткоина.
type Handler struct {
	service   Service
	quotes    QuoteSource
	logger    *zap.Logger
	signature *middleware.SignatureMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, quotes QuoteSource, logger *zap.Logger, signature *middleware.SignatureMiddleware) *Handler {
	return &Handler{
		service:   s,
		quotes:    quotes,
		logger:    logger,
		signature: signature,
	}
}

// paymentEnvelope — внешняя форма запроса на покупку: поле body несёт
// JSON-строку BuyRequest.
type paymentEnvelope struct {
	Body string `json:"body"`
}

type responseData struct {
	Message       string          `json:"message"`
	Status        string          `json:"status"`
	Data          json.RawMessage `json:"data,omitempty"`
	MissingFields []string        `json:"missingFields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, resp responseData) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// SubmitPayment принимает запрос на покупку и инициирует платёж в шлюзе.
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("payment handler panic", zap.Any("panic", rec))
			writeJSON(w, http.StatusInternalServerError, responseData{
				Message: "server error",
				Status:  "failed",
			})
		}
	}()

	var envelope paymentEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil || envelope.Body == "" {
		writeJSON(w, http.StatusBadRequest, responseData{
			Message: "Bad request!",
			Status:  "failed",
		})
		return
	}

	var req model.BuyRequest
	if err := json.Unmarshal([]byte(envelope.Body), &req); err != nil {
		writeJSON(w, http.StatusInternalServerError, responseData{
			Message: "server error",
			Status:  "failed",
		})
		return
	}

	result, err := h.service.SubmitPayment(r.Context(), req)
	if err != nil {
		var missingErr *service.MissingFieldsError
		if errors.As(err, &missingErr) {
			writeJSON(w, http.StatusBadRequest, responseData{
				Message:       "Missing required fields",
				Status:        "failed",
				MissingFields: missingErr.Fields,
			})
			return
		}

		h.logger.Error("initiate checkout error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, responseData{
			Message: fmt.Sprintf("An error occurred while processing your request: %v", err),
			Status:  "failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, responseData{
		Message: "submission successful!",
		Status:  "success",
		Data:    result.Raw,
	})
}

type quoteResponse struct {
	PricePerUSD       float64 `json:"pricePerUsd"`
	PricePerSat       float64 `json:"pricePerSat"`
	BTCPrice          float64 `json:"btcPrice"`
	BTCPriceFormatted string  `json:"btcPriceFormatted"`
	USDPriceFormatted string  `json:"usdPriceFormatted"`
}

// GetQuote возвращает текущую котировку. Пока фид не доставил первое
// значение, отвечает 204: отсутствие данных — штатное переходное
// состояние, а не ошибка.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, ok := h.quotes.Quote()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	btcPrice := pricing.BTCPrice(q)
	resp := quoteResponse{
		PricePerUSD:       q.PricePerUSD,
		PricePerSat:       q.PricePerSat,
		BTCPrice:          btcPrice,
		BTCPriceFormatted: pricing.Format(btcPrice),
		USDPriceFormatted: pricing.Format(q.PricePerUSD),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

type walletResponse struct {
	WalletID string `json:"walletId"`
}

// GetDefaultWallet возвращает кошелёк по умолчанию для имени
// пользователя из параметра username.
func (h *Handler) GetDefaultWallet(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	walletID, err := h.service.DefaultWallet(r.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrUnknownUsername) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("default wallet error", zap.Error(err), zap.String("username", username))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(walletResponse{WalletID: walletID}); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

// TransactionWebhook принимает уведомления шлюза об итогах транзакций:
// POST несёт полезную нагрузку в теле, GET — в строке запроса для
// ручной проверки. Оба пути дают одинаковые записи журнала. Подпись
// уже проверена middleware на маршруте.
func (h *Handler) TransactionWebhook(w http.ResponseWriter, r *http.Request) {
	var payload model.TransactionWebhookPayload

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	case http.MethodGet:
		q := r.URL.Query()
		payload = model.TransactionWebhookPayload{
			Status:        q.Get("status"),
			TransactionID: q.Get("transaction_id"),
			TxRef:         q.Get("tx_ref"),
		}
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if err := h.service.ProcessWebhook(r.Context(), payload); err != nil {
		h.logger.Error("process webhook error", zap.Error(err), zap.String("tx_ref", payload.TxRef))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
