// Package session реализует состояние запроса на покупку с единственным
// владельцем: все изменения BuyRequest проходят через Dispatch, поэтому
// проверка и отправка тестируются без слоя отображения.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bitnaira/checkout-system/internal/model"
	"github.com/bitnaira/checkout-system/internal/validation"
)

// DebounceDelay — период тишины после изменения имени пользователя,
// по истечении которого выполняется поиск кошелька.
const DebounceDelay = 500 * time.Millisecond

const lookupTimeout = 10 * time.Second

// WalletResolver находит кошелёк по умолчанию для имени пользователя.
type WalletResolver interface {
	DefaultWallet(ctx context.Context, username string) (string, error)
}

// QuoteSource отдаёт текущую котировку, если фид уже доставил значение.
type QuoteSource interface {
	Quote() (model.PriceQuote, bool)
}

// Session владеет BuyRequest на протяжении одного сеанса покупки.
// Состояние создаётся пустым и сбрасывается только созданием нового
// сеанса.
type Session struct {
	mu         sync.Mutex
	request    model.BuyRequest
	submitting bool

	resolver WalletResolver
	quotes   QuoteSource
	delay    time.Duration
	lookup   *time.Timer
}

// New создаёт пустой сеанс покупки.
func New(resolver WalletResolver, quotes QuoteSource) *Session {
	return &Session{
		resolver: resolver,
		quotes:   quotes,
		delay:    DebounceDelay,
	}
}

// Event изменяет одно поле состояния покупки.
type Event interface {
	apply(*Session)
}

// SetAmount задаёт сумму покупки.
type SetAmount struct{ Amount float64 }

// SetCurrency задаёт валюту пополняемого кошелька.
type SetCurrency struct{ Currency model.WalletCurrency }

// SetUsername задаёт имя пользователя. Текущий кошелёк сбрасывается,
// а его поиск откладывается до паузы во вводе.
type SetUsername struct{ Username string }

// SetEmail задаёт адрес почты покупателя.
type SetEmail struct{ Email string }

func (e SetAmount) apply(s *Session) {
	v := e.Amount
	s.request.Amount = &v
}

func (e SetCurrency) apply(s *Session) {
	s.request.Currency = e.Currency
}

func (e SetUsername) apply(s *Session) {
	s.request.Username = e.Username
	s.request.WalletID = ""
	s.scheduleLookup(e.Username)
}

func (e SetEmail) apply(s *Session) {
	s.request.Email = e.Email
}

// Dispatch применяет событие к состоянию покупки.
func (s *Session) Dispatch(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.apply(s)
}

// scheduleLookup откладывает поиск кошелька; новое изменение имени
// отменяет ещё не выполненный поиск. Вызывается под mu.
func (s *Session) scheduleLookup(username string) {
	if s.lookup != nil {
		s.lookup.Stop()
		s.lookup = nil
	}

	username = strings.TrimSpace(username)
	if username == "" || s.resolver == nil {
		return
	}

	s.lookup = time.AfterFunc(s.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		walletID, err := s.resolver.DefaultWallet(ctx, username)
		if err != nil {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		// Ввод мог измениться, пока шёл поиск.
		if s.request.Username == username {
			s.request.WalletID = walletID
		}
	})
}

// Request возвращает копию текущего состояния покупки.
func (s *Session) Request() model.BuyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.request
}

// CanSubmit сообщает, доступно ли подтверждение покупки: имя задано,
// сумма задана и допустима.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.canSubmit()
}

func (s *Session) canSubmit() bool {
	if strings.TrimSpace(s.request.Username) == "" {
		return false
	}
	if s.request.Amount == nil {
		return false
	}
	return validation.IsPurchasableAmount(s.request.Amount)
}

// BeginSubmit фиксирует цену из текущей котировки и помечает отправку
// выполняющейся. Пока отправка не завершена, повторный вызов
// возвращает false, что исключает дублирующие запросы.
func (s *Session) BeginSubmit() (model.BuyRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting || !s.canSubmit() {
		return model.BuyRequest{}, false
	}

	if s.quotes != nil {
		if q, ok := s.quotes.Quote(); ok {
			price := q.PricePerUSD
			s.request.Price = &price
		}
	}

	s.submitting = true
	return s.request, true
}

// EndSubmit завершает отправку независимо от её исхода.
func (s *Session) EndSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submitting = false
}
