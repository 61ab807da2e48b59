package pricefeed

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/bitnaira/checkout-system/internal/model"
	"github.com/bitnaira/checkout-system/internal/pricing"
)

// Poller периодически опрашивает фид цен и хранит последний полный
// снимок. Снимок заменяется целиком атомарным указателем, поэтому
// читатели никогда не видят частично обновлённую цену.
type Poller struct {
	client          *Client
	displayCurrency string
	interval        time.Duration
	logger          *zap.Logger

	current atomic.Pointer[model.RealtimePrice]
}

// NewPoller создаёт опросчик фида для указанной валюты отображения.
func NewPoller(client *Client, displayCurrency string, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		client:          client,
		displayCurrency: displayCurrency,
		interval:        interval,
		logger:          logger,
	}
}

// Run опрашивает фид до отмены контекста. Первый запрос выполняется
// сразу, далее по фиксированному интервалу.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	rp, err := p.client.RealtimePrice(ctx, p.displayCurrency)
	if err != nil {
		// Предыдущий снимок остаётся действующим до следующего опроса.
		p.logger.Warn("realtime price fetch failed", zap.Error(err))
		return
	}

	p.current.Store(rp)
}

// Current возвращает последний снимок цены; false, пока фид ещё не
// отдал первое значение. Отсутствие данных — штатное переходное
// состояние, а не ошибка.
func (p *Poller) Current() (model.RealtimePrice, bool) {
	rp := p.current.Load()
	if rp == nil {
		return model.RealtimePrice{}, false
	}
	return *rp, true
}

// Quote возвращает котировку, производную от текущего снимка; false,
// пока данных ещё нет.
func (p *Poller) Quote() (model.PriceQuote, bool) {
	rp, ok := p.Current()
	if !ok {
		return model.PriceQuote{}, false
	}
	return pricing.Quote(rp), true
}
