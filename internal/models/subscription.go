package models

// Коды тарифных планов.
const (
	PlanFree     = "FREE"
	PlanStandard = "STANDARD"
	PlanPremium  = "PREMIUM"
)

// Overview ответ GET /account/overview. Только для отображения,
// после любого действия, которое может его изменить, перезапрашивается целиком.
type Overview struct {
	Subscription *Subscription `json:"subscription,omitempty"`
	Usage        *Usage        `json:"usage,omitempty"`
}

// Subscription состояние подписки пользователя.
// MessagesLimit == nil означает безлимитный план.
type Subscription struct {
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	MessagesUsed     int        `json:"messages_used"`
	MessagesLimit    *int       `json:"messages_limit"`
	CurrentPeriodEnd *Timestamp `json:"current_period_end,omitempty"`
}

// Unlimited сообщает, что у плана нет лимита сообщений.
func (s Subscription) Unlimited() bool {
	return s.MessagesLimit == nil
}

// Usage расход голосовых функций.
type Usage struct {
	TTSSeconds int `json:"tts_seconds"`
	STTSeconds int `json:"stt_seconds"`
}

// CheckResult ответ GET /subscriptions/check.
type CheckResult struct {
	Status string `json:"status"`
}

// ConsumeResult ответ POST /subscriptions/consume.
type ConsumeResult struct {
	MessagesUsed  int  `json:"messages_used,omitempty"`
	MessagesLimit *int `json:"messages_limit,omitempty"`
}

// CheckoutRequest тело POST /subscriptions/checkout. Amount в минимальных единицах валюты.
type CheckoutRequest struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

// CheckoutResult ответ POST /subscriptions/checkout.
type CheckoutResult struct {
	Message   string `json:"message"`
	PaymentID int64  `json:"payment_id"`
}

// SubscriptionResult ответ POST /subscriptions/create.
type SubscriptionResult struct {
	Plan   string `json:"plan_name,omitempty"`
	Status string `json:"status,omitempty"`
}

// Plan тарифный план.
type Plan struct {
	ID            int      `json:"id"`
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	PriceCents    int      `json:"price_cents"`
	Currency      string   `json:"currency"`
	Period        string   `json:"period,omitempty"`
	MessagesLimit *int     `json:"messages_limit,omitempty"`
	Active        bool     `json:"active,omitempty"`
	Features      []string `json:"features,omitempty"`
}

// Free сообщает, что план бесплатный.
func (p Plan) Free() bool {
	return p.Code == PlanFree
}
