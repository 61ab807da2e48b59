// Package middleware содержит HTTP middleware сервиса покупки биткоина.
package middleware

import (
	"crypto/hmac"
	"net/http"
)

const signatureHeader = "verif-hash"

// SignatureMiddleware проверяет подпись уведомлений платёжного шлюза
// по общему секрету.
type SignatureMiddleware struct {
	secret []byte
}

// NewSignatureMiddleware создаёт проверку подписи с указанным общим
// секретом.
func NewSignatureMiddleware(secret string) *SignatureMiddleware {
	return &SignatureMiddleware{secret: []byte(secret)}
}

// Middleware отклоняет запрос без заголовка verif-hash или с подписью,
// не совпадающей с секретом. Обработка при этом прекращается: для
// отклонённого запроса не пишется ни одной строки журнала транзакций.
func (s *SignatureMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature := r.Header.Get(signatureHeader)
		if signature == "" || len(s.secret) == 0 || !hmac.Equal([]byte(signature), s.secret) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
