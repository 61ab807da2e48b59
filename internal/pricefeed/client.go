// Package pricefeed предоставляет клиент фида цен Galoy и периодический
// опрос снимков цены.
package pricefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/bitnaira/checkout-system/internal/model"
)

// ErrUnknownUsername возвращается, если фид не знает такого имени
// пользователя.
var ErrUnknownUsername = errors.New("unknown username")

// Client инкапсулирует GraphQL-взаимодействие с фидом цен. Клиент
// создаётся один раз на процесс и передаётся владельцам явно; чтение
// фида терпимо к кратковременным сбоям, поэтому транспорт повторяет
// неудачные запросы.
type Client struct {
	feedURL    string
	httpClient *http.Client
}

const (
	realtimePriceQuery = `query realtimePrice($currency: DisplayCurrency!) {
  realtimePrice(currency: $currency) {
    timestamp
    btcSatPrice { base offset }
    usdCentPrice { base offset }
  }
}`

	defaultWalletQuery = `query accountDefaultWallet($username: Username!) {
  accountDefaultWallet(username: $username) {
    id
    walletCurrency
  }
}`
)

// NewClient создаёт клиент фида цен для указанного адреса.
func NewClient(feedURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = 10 * time.Second

	return &Client{
		feedURL:    feedURL,
		httpClient: rc.StandardClient(),
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.feedURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("feed error: %s", envelope.Errors[0].Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return nil
}

// RealtimePrice запрашивает текущий снимок цены для валюты отображения.
func (c *Client) RealtimePrice(ctx context.Context, displayCurrency string) (*model.RealtimePrice, error) {
	if c == nil || c.feedURL == "" {
		return nil, fmt.Errorf("price feed client not configured")
	}

	var data struct {
		RealtimePrice *model.RealtimePrice `json:"realtimePrice"`
	}
	if err := c.query(ctx, realtimePriceQuery, map[string]any{"currency": displayCurrency}, &data); err != nil {
		return nil, err
	}
	if data.RealtimePrice == nil {
		return nil, fmt.Errorf("realtime price missing in response")
	}
	return data.RealtimePrice, nil
}

// DefaultWallet возвращает идентификатор кошелька по умолчанию для имени
// пользователя. Пустой результат фида означает неизвестное имя.
func (c *Client) DefaultWallet(ctx context.Context, username string) (string, error) {
	if c == nil || c.feedURL == "" {
		return "", fmt.Errorf("price feed client not configured")
	}

	var data struct {
		AccountDefaultWallet *struct {
			ID             string `json:"id"`
			WalletCurrency string `json:"walletCurrency"`
		} `json:"accountDefaultWallet"`
	}
	if err := c.query(ctx, defaultWalletQuery, map[string]any{"username": username}, &data); err != nil {
		return "", err
	}
	if data.AccountDefaultWallet == nil || data.AccountDefaultWallet.ID == "" {
		return "", ErrUnknownUsername
	}
	return data.AccountDefaultWallet.ID, nil
}
