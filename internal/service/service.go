// Package service реализует бизнес-логику сервиса покупки биткоина.
package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bitnaira/checkout-system/internal/gateway"
	"github.com/bitnaira/checkout-system/internal/model"
	"github.com/bitnaira/checkout-system/internal/pricefeed"
	"github.com/bitnaira/checkout-system/internal/validation"
)

// ErrUnknownUsername возвращается при поиске кошелька для неизвестного
// имени пользователя.
var ErrUnknownUsername = errors.New("unknown username")

// MissingFieldsError перечисляет все обязательные поля, отсутствующие
// в запросе на покупку.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// GatewayClient описывает контракт клиента платёжного шлюза.
type GatewayClient interface {
	InitiateCheckout(ctx context.Context, payload gateway.CheckoutPayload) (*gateway.CheckoutResult, error)
}

// WalletResolver описывает поиск кошелька по умолчанию для имени
// пользователя.
type WalletResolver interface {
	DefaultWallet(ctx context.Context, username string) (string, error)
}

// AuditLog описывает журнал транзакций с дозаписью.
type AuditLog interface {
	Append(payload any) error
}

// Service содержит бизнес-логику сервиса покупки биткоина.
type Service struct {
	gateway     GatewayClient
	resolver    WalletResolver
	audit       AuditLog
	redirectURL string
	logger      *zap.Logger
}

// NewService создаёт сервис с указанными клиентом шлюза, поиском
// кошельков и журналом транзакций.
func NewService(gw GatewayClient, resolver WalletResolver, audit AuditLog, redirectURL string, logger *zap.Logger) *Service {
	return &Service{
		gateway:     gw,
		resolver:    resolver,
		audit:       audit,
		redirectURL: redirectURL,
		logger:      logger,
	}
}

// SubmitPayment повторно проверяет все обязательные поля запроса,
// собирает платёж и инициирует его в шлюзе. Повторные попытки при
// ошибке шлюза не выполняются.
func (s *Service) SubmitPayment(ctx context.Context, req model.BuyRequest) (*gateway.CheckoutResult, error) {
	if missing := validation.MissingFields(req); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	payload := gateway.NewCheckoutPayload(req, s.redirectURL)

	result, err := s.gateway.InitiateCheckout(ctx, payload)
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout initiated",
		zap.String("tx_ref", payload.TxRef),
		zap.Float64("amount", payload.Amount),
		zap.String("username", req.Username),
		zap.String("wallet_currency", string(req.Currency)),
	)

	return result, nil
}

// DefaultWallet возвращает идентификатор кошелька по умолчанию для
// имени пользователя.
func (s *Service) DefaultWallet(ctx context.Context, username string) (string, error) {
	id, err := s.resolver.DefaultWallet(ctx, username)
	if err != nil {
		if errors.Is(err, pricefeed.ErrUnknownUsername) {
			return "", ErrUnknownUsername
		}
		return "", err
	}
	return id, nil
}

// ProcessWebhook обрабатывает проверенное уведомление шлюза: пишет
// строку лога по статусу и дописывает полезную нагрузку в журнал
// транзакций. Подпись проверяется до вызова этого метода.
func (s *Service) ProcessWebhook(ctx context.Context, payload model.TransactionWebhookPayload) error {
	// Ветвление по статусу нужно только для наблюдаемости; обновление
	// статуса транзакции в базе данных — отложенная точка расширения.
	switch payload.Status {
	case model.WebhookStatusSuccess:
		s.logger.Info("transaction succeeded",
			zap.String("transaction_id", payload.TransactionID),
			zap.String("tx_ref", payload.TxRef),
		)
	case model.WebhookStatusFailure:
		s.logger.Info("transaction failed",
			zap.String("transaction_id", payload.TransactionID),
			zap.String("tx_ref", payload.TxRef),
		)
	}

	return s.audit.Append(payload)
}
