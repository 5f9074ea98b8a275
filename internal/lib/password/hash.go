// Package password хеширует пароли пользователей fake backend.
//
// Hash создаёт bcrypt-хеш, Compare проверяет введённый пароль по хешу.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch пароль не совпадает с хешем.
var ErrMismatch = errors.New("password does not match")

// Hash возвращает bcrypt-хеш пароля.
func Hash(password string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare сравнивает хеш с введённым паролем.
// Несовпадение возвращается как ErrMismatch, ошибка разбора хеша возвращается как есть.
func Compare(hash, password string) error {
	const op = "password.Compare"
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Matches сообщает, подходит ли пароль к хешу.
func Matches(hash, password string) bool {
	return Compare(hash, password) == nil
}
