// Package pricing содержит вычисление котировок из пар base/offset
// и форматирование цен для отображения.
package pricing

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bitnaira/checkout-system/internal/model"
)

// SatsPerBTC — число сатоши в одном биткоине.
const SatsPerBTC = 100_000_000

// Quote вычисляет котировку из сырого снимка цены. Функция чистая:
// одинаковый вход даёт побитово одинаковый результат, округление не
// применяется до момента отображения.
//
// btcSatPrice задаёт цену сатоши в центах валюты отображения, поэтому
// после масштабирования значение делится на 100. usdCentPrice после
// масштабирования уже даёт цену одного USD в основных единицах.
func Quote(rp model.RealtimePrice) model.PriceQuote {
	pricePerUSD := float64(rp.USDCentPrice.Base) / math.Pow(10, float64(rp.USDCentPrice.Offset))
	pricePerSat := float64(rp.BTCSatPrice.Base) / math.Pow(10, float64(rp.BTCSatPrice.Offset)) / 100

	return model.PriceQuote{
		PricePerUSD: pricePerUSD,
		PricePerSat: pricePerSat,
	}
}

// BTCPrice возвращает цену одного биткоина в валюте отображения.
func BTCPrice(q model.PriceQuote) float64 {
	return q.PricePerSat * SatsPerBTC
}

var printer = message.NewPrinter(language.English)

// Format форматирует сумму для отображения: символ найры, два знака
// после точки и разделители тысяч.
func Format(amount float64) string {
	return printer.Sprintf("₦%.2f", amount)
}
