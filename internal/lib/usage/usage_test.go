package usage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/bookchat/internal/models"
)

func intPtr(v int) *int { return &v }

func TestFromOverview(t *testing.T) {
	tests := []struct {
		name     string
		overview *models.Overview
		want     Stats
		label    string
	}{
		{"nil overview", nil, Stats{Limit: 5}, "5"},
		{"no subscription", &models.Overview{}, Stats{Limit: 5}, "5"},
		{
			"unlimited",
			&models.Overview{Subscription: &models.Subscription{Plan: "PREMIUM", MessagesUsed: 42}},
			Stats{Used: 42, Unlimited: true, Percent: 100},
			"unlimited",
		},
		{
			"half used",
			&models.Overview{Subscription: &models.Subscription{MessagesUsed: 50, MessagesLimit: intPtr(100)}},
			Stats{Used: 50, Limit: 100, Percent: 50},
			"100",
		},
		{
			"near limit",
			&models.Overview{Subscription: &models.Subscription{MessagesUsed: 4, MessagesLimit: intPtr(5)}},
			Stats{Used: 4, Limit: 5, Percent: 80, NearLimit: true},
			"5",
		},
		{
			"over limit clamps",
			&models.Overview{Subscription: &models.Subscription{MessagesUsed: 9, MessagesLimit: intPtr(5)}},
			Stats{Used: 9, Limit: 5, Percent: 100, NearLimit: true},
			"5",
		},
		{
			"zero limit is exhausted",
			&models.Overview{Subscription: &models.Subscription{MessagesLimit: intPtr(0)}},
			Stats{Percent: 100, NearLimit: true},
			"0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromOverview(tt.overview)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.label, got.LimitLabel())
			assert.False(t, math.IsNaN(got.Percent))
			assert.False(t, math.IsInf(got.Percent, 0))
		})
	}
}
