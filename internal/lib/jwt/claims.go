package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed токен не является JWT.
var ErrMalformed = errors.New("malformed token")

// CustomClaims данные, которые backend кладёт в токен.
type CustomClaims struct {
	Role                 string `json:"role,omitempty"` // Роль пользователя
	jwt.RegisteredClaims        // sub, exp, iat
}

// GenerateToken создаёт токен с subject и role, подписанный HS256.
func (j *MakerImpl) GenerateToken(subject, role string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит токен, проверяет подпись и срок действия.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

// ExpiresAt разбирает токен без проверки подписи и возвращает срок действия.
// ok == false, если в токене нет exp.
func ExpiresAt(tokenStr string) (exp time.Time, ok bool, err error) {
	const op = "jwt.ExpiresAt"
	var claims CustomClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w: %w", op, ErrMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}

// Expired сообщает, что срок действия токена истёк к моменту now.
// Токены без exp и не-JWT токены истёкшими не считаются: решение за backend.
func Expired(tokenStr string, now time.Time) bool {
	exp, ok, err := ExpiresAt(tokenStr)
	if err != nil || !ok {
		return false
	}
	return !now.Before(exp)
}
