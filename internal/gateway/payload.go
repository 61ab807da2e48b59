// Package gateway предоставляет клиент платёжного шлюза и сборку
// запроса на инициацию платежа.
package gateway

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/bitnaira/checkout-system/internal/model"
)

// CheckoutPayload — запрос на инициацию платежа, отправляемый шлюзу.
// Собирается один раз на каждую отправку и не переиспользуется.
type CheckoutPayload struct {
	TxRef       string           `json:"tx_ref"`
	Amount      float64          `json:"amount"`
	Currency    string           `json:"currency"`
	RedirectURL string           `json:"redirect_url"`
	Meta        CheckoutMeta     `json:"meta"`
	Customer    CheckoutCustomer `json:"customer"`
}

// CheckoutMeta — метаданные для последующего пополнения кошелька.
// Валюта кошелька пользователя передаётся здесь и не влияет на валюту
// списания.
type CheckoutMeta struct {
	CustomerUsername                string               `json:"customer_username"`
	CustomerWalletID                string               `json:"customer_wallet_id"`
	CustomerSpecifiedWalletCurrency model.WalletCurrency `json:"customer_specified_wallet_currency"`
}

// CheckoutCustomer — данные покупателя для страницы оплаты шлюза.
type CheckoutCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewCheckoutPayload собирает запрос к шлюзу из проверенного BuyRequest.
// Чистая сборка без ввода-вывода; валюта расчёта всегда NGN, ссылка на
// транзакцию генерируется заново при каждом вызове.
func NewCheckoutPayload(req model.BuyRequest, redirectURL string) CheckoutPayload {
	var amount float64
	if req.Amount != nil {
		amount = *req.Amount
	}

	return CheckoutPayload{
		TxRef:       newTransactionReference(),
		Amount:      amount,
		Currency:    model.SettlementCurrency,
		RedirectURL: redirectURL,
		Meta: CheckoutMeta{
			CustomerUsername:                req.Username,
			CustomerWalletID:                req.WalletID,
			CustomerSpecifiedWalletCurrency: req.Currency,
		},
		Customer: CheckoutCustomer{
			Email: req.Email,
			Name:  req.Username,
		},
	}
}

const txRefPrefix = "TXN"

// newTransactionReference генерирует ссылку вида TXN-<epoch-ms>-<случайный
// суффикс до четырёх цифр>. Уникальность не проверяется: вероятность
// коллизии принята пренебрежимо малой.
func newTransactionReference() string {
	timestamp := time.Now().UnixMilli()
	suffix := rand.Intn(10000)
	return fmt.Sprintf("%s-%d-%d", txRefPrefix, timestamp, suffix)
}
