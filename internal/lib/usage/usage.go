// Package usage считает расход сообщений для страницы аккаунта.
package usage

import (
	"math"
	"strconv"

	"github.com/magabrotheeeer/bookchat/internal/models"
)

const (
	// DefaultLimit лимит, который показывается при отсутствии подписки.
	DefaultLimit = 5
	// NearLimitPercent порог предупреждения о скором исчерпании.
	NearLimitPercent = 80.0
	// UnlimitedLabel подпись лимита безлимитного плана.
	UnlimitedLabel = "unlimited"
)

// Stats расход сообщений.
type Stats struct {
	Used      int     `json:"used"`
	Limit     int     `json:"limit"`
	Unlimited bool    `json:"unlimited"`
	Percent   float64 `json:"percent"`
	NearLimit bool    `json:"near_limit"`
}

// FromOverview считает Stats по обзору подписки. Никогда не делит на ноль:
// безлимитный план показывается как 100%, лимит <= 0 как исчерпанный.
func FromOverview(o *models.Overview) Stats {
	if o == nil || o.Subscription == nil {
		return Stats{Limit: DefaultLimit}
	}
	sub := o.Subscription
	used := max(sub.MessagesUsed, 0)

	if sub.Unlimited() {
		return Stats{Used: used, Unlimited: true, Percent: 100}
	}

	limit := *sub.MessagesLimit
	percent := 100.0
	if limit > 0 {
		percent = math.Min(float64(used)/float64(limit)*100, 100)
	}
	return Stats{
		Used:      used,
		Limit:     limit,
		Percent:   percent,
		NearLimit: percent >= NearLimitPercent,
	}
}

// LimitLabel подпись лимита.
func (s Stats) LimitLabel() string {
	if s.Unlimited {
		return UnlimitedLabel
	}
	return strconv.Itoa(s.Limit)
}
