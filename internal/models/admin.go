package models

// AdminUser проекция пользователя для панели администратора (GET /admin/users).
type AdminUser struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Role          Role      `json:"role"`
	CreatedAt     Timestamp `json:"created_at"`
	HasActivePlan bool      `json:"has_active_plan"`
	PlanName      string    `json:"plan_name,omitempty"`
}

// AdminUserCreate тело POST /admin/users.
type AdminUserCreate struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	Role     Role   `json:"role" validate:"required,oneof=user admin"`
	Password string `json:"password" validate:"required,min=8"`
}

// AdminUserUpdate тело PUT /admin/users/{id}. Пустой пароль не меняет пароль.
type AdminUserUpdate struct {
	Name     string `json:"name"`
	Role     Role   `json:"role" validate:"required,oneof=user admin"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// ActionLog запись журнала действий (GET /admin/logs).
type ActionLog struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	ActionType  string    `json:"action_type"`
	Endpoint    string    `json:"endpoint,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   Timestamp `json:"created_at"`
}

// Failed сообщает, что действие завершилось ошибкой.
func (l ActionLog) Failed() bool {
	return l.Status == "ERROR"
}
