// Package validation содержит проверки запроса на покупку.
package validation

import (
	"math"
	"strings"

	"github.com/bitnaira/checkout-system/internal/model"
)

// MinPurchaseAmount — минимальная сумма покупки в минорных единицах
// валюты расчёта. Фиксированное бизнес-правило, не настраивается.
const MinPurchaseAmount = 1000

// IsPurchasableAmount сообщает, допустима ли сумма для покупки.
// Незаданная, нулевая, NaN и меньшая порога сумма недопустима.
func IsPurchasableAmount(amount *float64) bool {
	if amount == nil {
		return false
	}
	v := *amount
	if math.IsNaN(v) || v == 0 {
		return false
	}
	return v >= MinPurchaseAmount
}

// MissingFields возвращает имена обязательных полей, отсутствующих в
// запросе. Поле считается отсутствующим, если оно не задано или, для
// строк, пусто после обрезки пробелов. Возвращаются все отсутствующие
// поля, а не только первое.
func MissingFields(req model.BuyRequest) []string {
	var missing []string

	if req.Amount == nil {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(string(req.Currency)) == "" {
		missing = append(missing, "currency")
	}
	if req.Price == nil {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(req.WalletID) == "" {
		missing = append(missing, "walletId")
	}
	if strings.TrimSpace(req.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}

	return missing
}
