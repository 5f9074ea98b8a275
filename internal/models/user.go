// Package models содержит структуры данных, которыми клиент обменивается с backend:
// профиль пользователя, обзор подписки, чат и проекции для панели администратора.
// Авторитетное состояние хранится на сервере, здесь хранится только его клиентский кэш.
package models

// Role роль пользователя.
type Role string

const (
	// RoleUser — обычный пользователь.
	RoleUser Role = "user"
	// RoleAdmin — администратор.
	RoleAdmin Role = "admin"
)

// IsAdmin сообщает, является ли роль администраторской.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User профиль текущего пользователя (GET /account/me).
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt Timestamp `json:"created_at"`
}

// DisplayName возвращает имя или заглушку, если имя не задано.
func (u User) DisplayName() string {
	if u.Name == "" {
		return "Smart User"
	}
	return u.Name
}

// LoginResult ответ POST /auth/login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        Role   `json:"role"`
}

// RegisterRequest тело POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role,omitempty"`
}

// PasswordChange тело POST /account/change-password.
type PasswordChange struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPasswordRequest тело POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// MessageResponse типовой ответ backend вида {"message": "..."}.
type MessageResponse struct {
	Message string `json:"message"`
}
