package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", `"2025-03-01T10:00:00Z"`, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"naive iso", `"2025-03-01T10:00:00.123456"`, time.Date(2025, 3, 1, 10, 0, 0, 123456000, time.UTC)},
		{"space separated", `"2025-03-01 10:00:00"`, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"null", `null`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, tt.want.Equal(ts.Time))
		})
	}
}

func TestTimestamp_UnmarshalJSON_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestOverview_NullLimitIsUnlimited(t *testing.T) {
	body := `{"subscription":{"plan":"PREMIUM","status":"active","messages_used":12,"messages_limit":null,"current_period_end":"2025-04-01T00:00:00"}}`

	var o Overview
	require.NoError(t, json.Unmarshal([]byte(body), &o))
	require.NotNil(t, o.Subscription)
	assert.True(t, o.Subscription.Unlimited())
	assert.Equal(t, 12, o.Subscription.MessagesUsed)
	assert.Nil(t, o.Usage)
}
