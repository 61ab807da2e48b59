package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/bitnaira/checkout-system/internal/gateway"
	"github.com/bitnaira/checkout-system/internal/middleware"
	"github.com/bitnaira/checkout-system/internal/model"
	"github.com/bitnaira/checkout-system/internal/service"
)

type stubService struct {
	submitResult *gateway.CheckoutResult
	submitErr    error

	walletID  string
	walletErr error

	webhookCalls []model.TransactionWebhookPayload
	webhookErr   error
}

func (s *stubService) SubmitPayment(ctx context.Context, req model.BuyRequest) (*gateway.CheckoutResult, error) {
	return s.submitResult, s.submitErr
}

func (s *stubService) DefaultWallet(ctx context.Context, username string) (string, error) {
	return s.walletID, s.walletErr
}

func (s *stubService) ProcessWebhook(ctx context.Context, payload model.TransactionWebhookPayload) error {
	s.webhookCalls = append(s.webhookCalls, payload)
	return s.webhookErr
}

type stubQuotes struct {
	quote     model.PriceQuote
	available bool
}

func (q *stubQuotes) Quote() (model.PriceQuote, bool) {
	return q.quote, q.available
}

func newTestHandler(t *testing.T, svc Service, quotes QuoteSource) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	signature := middleware.NewSignatureMiddleware("test-secret")

	return NewHandler(svc, quotes, logger, signature)
}

func paymentBody(t *testing.T, req model.BuyRequest) []byte {
	t.Helper()

	inner, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal buy request: %v", err)
	}
	outer, err := json.Marshal(map[string]string{"body": string(inner)})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return outer
}

func ptrFloat(v float64) *float64 {
	return &v
}

func validBuyRequest() model.BuyRequest {
	return model.BuyRequest{
		Amount:   ptrFloat(2500),
		Currency: model.WalletCurrencyBTC,
		Price:    ptrFloat(25673),
		WalletID: "wallet-id",
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestSubmitPayment_Success(t *testing.T) {
	svc := &stubService{
		submitResult: &gateway.CheckoutResult{
			Link: "https://checkout.example/pay/abc",
			Raw:  json.RawMessage(`{"link":"https://checkout.example/pay/abc"}`),
		},
	}
	h := newTestHandler(t, svc, &stubQuotes{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment", bytes.NewReader(paymentBody(t, validBuyRequest())))
	rec := httptest.NewRecorder()

	h.SubmitPayment(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp responseData
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" || resp.Message != "submission successful!" {
		t.Fatalf("response = %+v", resp)
	}
	if !strings.Contains(string(resp.Data), "checkout.example") {
		t.Fatalf("data = %s", resp.Data)
	}
}

func TestSubmitPayment_MissingEnvelope(t *testing.T) {
	h := newTestHandler(t, &stubService{}, &stubQuotes{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.SubmitPayment(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}

	var resp responseData
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Bad request!" || resp.Status != "failed" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestSubmitPayment_MissingFields(t *testing.T) {
	svc := &stubService{
		submitErr: &service.MissingFieldsError{Fields: []string{"walletId", "email"}},
	}
	h := newTestHandler(t, svc, &stubQuotes{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment", bytes.NewReader(paymentBody(t, model.BuyRequest{Username: "alice"})))
	rec := httptest.NewRecorder()

	h.SubmitPayment(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}

	var resp responseData
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Missing required fields" {
		t.Fatalf("message = %q", resp.Message)
	}
	if len(resp.MissingFields) != 2 {
		t.Fatalf("missingFields = %v", resp.MissingFields)
	}
}

func TestSubmitPayment_GatewayFailure(t *testing.T) {
	svc := &stubService{
		submitErr: context.DeadlineExceeded,
	}
	h := newTestHandler(t, svc, &stubQuotes{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment", bytes.NewReader(paymentBody(t, validBuyRequest())))
	rec := httptest.NewRecorder()

	h.SubmitPayment(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusInternalServerError)
	}

	var resp responseData
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.Message, "An error occurred while processing your request: ") {
		t.Fatalf("message = %q", resp.Message)
	}
	if !strings.Contains(resp.Message, context.DeadlineExceeded.Error()) {
		t.Fatalf("message %q does not carry the underlying error", resp.Message)
	}
}

func TestSubmitPayment_MalformedInnerBody(t *testing.T) {
	h := newTestHandler(t, &stubService{}, &stubQuotes{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment", strings.NewReader(`{"body":"{not json"}`))
	rec := httptest.NewRecorder()

	h.SubmitPayment(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusInternalServerError)
	}

	var resp responseData
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "server error" {
		t.Fatalf("message = %q, want server error", resp.Message)
	}
}

func TestGetQuote_NoDataYet(t *testing.T) {
	h := newTestHandler(t, &stubService{}, &stubQuotes{})

	req := httptest.NewRequest(http.MethodGet, "/api/price", nil)
	rec := httptest.NewRecorder()

	h.GetQuote(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestGetQuote_Available(t *testing.T) {
	quotes := &stubQuotes{
		quote:     model.PriceQuote{PricePerUSD: 25673, PricePerSat: 150},
		available: true,
	}
	h := newTestHandler(t, &stubService{}, quotes)

	req := httptest.NewRequest(http.MethodGet, "/api/price", nil)
	rec := httptest.NewRecorder()

	h.GetQuote(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var resp quoteResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PricePerUSD != 25673 || resp.PricePerSat != 150 {
		t.Fatalf("quote = %+v", resp)
	}
	if resp.USDPriceFormatted != "₦25,673.00" {
		t.Fatalf("usd formatted = %q", resp.USDPriceFormatted)
	}
}

func TestGetDefaultWallet_Unknown(t *testing.T) {
	svc := &stubService{walletErr: service.ErrUnknownUsername}
	h := newTestHandler(t, svc, &stubQuotes{})

	req := httptest.NewRequest(http.MethodGet, "/api/wallet?username=nobody", nil)
	rec := httptest.NewRecorder()

	h.GetDefaultWallet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestTransactionWebhook_PostAndGetEquivalent(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc, &stubQuotes{})

	post := httptest.NewRequest(http.MethodPost, "/api/webhooks/transactions",
		strings.NewReader(`{"status":"success","transaction_id":"42","tx_ref":"TXN-1-1"}`))
	rec := httptest.NewRecorder()
	h.TransactionWebhook(rec, post)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, want %d", rec.Code, http.StatusOK)
	}

	get := httptest.NewRequest(http.MethodGet,
		"/api/webhooks/transactions?status=success&transaction_id=42&tx_ref=TXN-1-1", nil)
	rec = httptest.NewRecorder()
	h.TransactionWebhook(rec, get)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want %d", rec.Code, http.StatusOK)
	}

	if len(svc.webhookCalls) != 2 {
		t.Fatalf("webhook calls = %d, want 2", len(svc.webhookCalls))
	}
	if svc.webhookCalls[0] != svc.webhookCalls[1] {
		t.Fatalf("POST and GET payloads differ: %+v vs %+v", svc.webhookCalls[0], svc.webhookCalls[1])
	}
}

func TestRouter_WebhookRejectsBadSignatureWithoutProcessing(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc, &stubQuotes{})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/transactions",
		strings.NewReader(`{"status":"success","transaction_id":"42","tx_ref":"TXN-1-1"}`))
	req.Header.Set("verif-hash", "wrong-secret")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if len(svc.webhookCalls) != 0 {
		t.Fatal("webhook must not be processed for rejected signature")
	}
}

func TestRouter_WebhookAcceptsValidSignature(t *testing.T) {
	svc := &stubService{}
	h := newTestHandler(t, svc, &stubQuotes{})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/transactions",
		strings.NewReader(`{"status":"failure","transaction_id":"43","tx_ref":"TXN-2-2"}`))
	req.Header.Set("verif-hash", "test-secret")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(svc.webhookCalls) != 1 {
		t.Fatalf("webhook calls = %d, want 1", len(svc.webhookCalls))
	}
}

func TestRouter_WebhookMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, &stubService{}, &stubQuotes{})
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPut, "/api/webhooks/transactions", nil)
	req.Header.Set("verif-hash", "test-secret")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
