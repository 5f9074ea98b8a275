package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type card struct {
	Number string `json:"card_number" validate:"required,numeric,len=16"`
	Expiry string `json:"expiry" validate:"required,expiry"`
	Email  string `json:"email" validate:"omitempty,email"`
}

func TestValidate_Messages(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		in   card
		want string
	}{
		{"valid", card{Number: "4242424242424242", Expiry: "12/30"}, ""},
		{"missing number", card{Expiry: "12/30"}, "field card_number is a required field"},
		{"short number", card{Number: "4242", Expiry: "12/30"}, "field card_number must be exactly 16 characters long"},
		{"bad expiry", card{Number: "4242424242424242", Expiry: "13/30"}, "field expiry must be in format MM/YY"},
		{
			"several errors", card{Number: "abcdabcdabcdabcd", Expiry: "1/3", Email: "nope"},
			"field card_number can contain only numbers, field expiry must be in format MM/YY, field email must be a valid email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestNotExpired(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, NotExpired("03/26", now))
	assert.True(t, NotExpired("01/27", now))
	assert.False(t, NotExpired("02/26", now))
	assert.False(t, NotExpired("garbage", now))
}
