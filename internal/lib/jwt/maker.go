// Package jwt работает с токенами доступа backend.
//
// Клиент не знает секрет подписи, поэтому токен разбирается без проверки
// подписи и только для того, чтобы заранее увидеть истёкший срок действия.
// Подлинность токена по-прежнему проверяет backend.
//
// Maker подписывает токены секретом; используется тестовым backend.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга токенов.
type Maker interface {
	// GenerateToken создаёт токен для пользователя subject с ролью role.
	GenerateToken(subject, role string) (string, error)
	// ParseToken проверяет подпись и срок действия токена.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с секретным ключом и временем жизни токена.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
