package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client инкапсулирует HTTP-взаимодействие с платёжным шлюзом.
type Client struct {
	gatewayURL string
	secretKey  string
	httpClient *http.Client
}

// CheckoutResult — результат успешной инициации платежа: адрес для
// перенаправления покупателя и блок data из ответа шлюза без изменений.
type CheckoutResult struct {
	Link string
	Raw  json.RawMessage
}

type checkoutResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewClient создаёт клиент платёжного шлюза для указанного адреса и
// секретного ключа мерчанта.
func NewClient(gatewayURL, secretKey string) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		secretKey:  secretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// InitiateCheckout выполняет единственный POST к шлюзу. Повторные попытки
// не выполняются; ошибка транспорта или статус вне 2xx возвращаются
// вызывающему с текстом первопричины.
func (c *Client) InitiateCheckout(ctx context.Context, payload CheckoutPayload) (*CheckoutResult, error) {
	if c == nil || c.gatewayURL == "" {
		return nil, fmt.Errorf("gateway client not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Access-Control-Allow-Origin", "*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	checkout := &CheckoutResult{Raw: result.Data}
	if len(result.Data) > 0 {
		var data struct {
			Link string `json:"link"`
		}
		if err := json.Unmarshal(result.Data, &data); err == nil {
			checkout.Link = data.Link
		}
	}

	return checkout, nil
}
