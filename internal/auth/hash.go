package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashRefreshToken возвращает HMAC-SHA256 refresh-токена на секрете менеджера.
// В базе хранится только этот хэш.
func (m *TokenManager) HashRefreshToken(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyRefreshHash сравнивает сохраненный хэш с токеном в константное время.
func (m *TokenManager) VerifyRefreshHash(hash, token string) bool {
	return hmac.Equal([]byte(hash), []byte(m.HashRefreshToken(token)))
}
