// Package model содержит доменные сущности сервиса покупки биткоина.
package model

// WalletCurrency описывает валюту кошелька, который пополняет пользователь.
type WalletCurrency string

const (
	WalletCurrencyBTC WalletCurrency = "BTC"
	WalletCurrencyUSD WalletCurrency = "USD"
)

// SettlementCurrency — валюта, в которой платёжный шлюз списывает средства.
// Валюта кошелька пользователя передаётся шлюзу только как метаданные.
const SettlementCurrency = "NGN"

// ScaledPrice представляет цену в виде пары base/offset:
// фактическое значение равно base / 10^offset.
type ScaledPrice struct {
	Base   int64 `json:"base"`
	Offset int32 `json:"offset"`
}

// RealtimePrice — сырой снимок цены из фида: цена одного сатоши и одного
// цента USD в валюте отображения. Снимок неизменяем и заменяется целиком
// при каждом опросе фида.
type RealtimePrice struct {
	Timestamp    int64       `json:"timestamp"`
	BTCSatPrice  ScaledPrice `json:"btcSatPrice"`
	USDCentPrice ScaledPrice `json:"usdCentPrice"`
}

// PriceQuote — производная котировка: цена одного USD и одного сатоши
// в валюте отображения. Вычисляется заново из каждого RealtimePrice.
type PriceQuote struct {
	PricePerUSD float64
	PricePerSat float64
}

// BuyRequest — намерение покупки, заполняемое пользователем поле за полем.
// Amount и Price остаются nil, пока не заданы; Price и WalletID заполняются
// асинхронно (цена в момент отправки, кошелёк после поиска по имени).
type BuyRequest struct {
	Amount   *float64       `json:"amount"`
	Currency WalletCurrency `json:"currency"`
	Price    *float64       `json:"price"`
	WalletID string         `json:"walletId"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
}

// Статусы транзакции в уведомлении платёжного шлюза.
const (
	WebhookStatusSuccess = "success"
	WebhookStatusFailure = "failure"
)

// TransactionWebhookPayload — асинхронное уведомление шлюза об итоге
// транзакции.
type TransactionWebhookPayload struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	TxRef         string `json:"tx_ref"`
}
