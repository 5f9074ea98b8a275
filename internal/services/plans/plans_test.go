package plans

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/bookchat/internal/apiclient"
	"github.com/magabrotheeeer/bookchat/internal/config"
	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/fakeapi"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/session"
	"github.com/magabrotheeeer/bookchat/internal/storage"
)

const (
	routeCreate   = "POST /subscriptions/create"
	routeCheckout = "POST /subscriptions/checkout"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T) (*fakeapi.Server, *session.Store, *Service) {
	t.Helper()
	api := fakeapi.New()
	t.Cleanup(api.Close)
	api.AddUser("reader@example.com", "password1", models.RoleUser)

	creds := storage.NewCredentials(storage.NewMemory())
	client := apiclient.New(config.API{BaseURL: api.URL, Timeout: 5 * time.Second}, creds, newNoopLogger())
	sess := session.New(client, creds, navigation.New(navigation.PathLogin), newNoopLogger())
	client.OnUnauthorized(sess.HandleUnauthorized)

	_, err := sess.Login(context.Background(), "reader@example.com", "password1")
	require.NoError(t, err)

	return api, sess, New(client, sess, newNoopLogger())
}

var validCard = PaymentForm{CardNumber: "4242 4242 4242 4242", Expiry: "12/30", CVV: "123"}

func TestFind(t *testing.T) {
	p, ok := Find("standard")
	require.True(t, ok)
	assert.Equal(t, 499, p.PriceCents)

	_, ok = Find("GOLD")
	assert.False(t, ok)
}

func TestService_SelectFreeActivatesWithoutPayment(t *testing.T) {
	api, sess, svc := setup(t)

	res, err := svc.Select(context.Background(), models.PlanFree)

	require.NoError(t, err)
	assert.True(t, res.Activated)
	assert.False(t, res.PaymentRequired)
	assert.Equal(t, 1, api.Hits(routeCreate))
	assert.Zero(t, api.Hits(routeCheckout))
	assert.Empty(t, api.Payments())

	st := sess.Snapshot()
	require.NotNil(t, st.Overview)
	assert.Equal(t, models.PlanFree, st.Plan())
	assert.Equal(t, "active", st.Overview.Subscription.Status)
}

func TestService_SelectPaidRequiresPayment(t *testing.T) {
	api, _, svc := setup(t)
	before := api.TotalHits()

	res, err := svc.Select(context.Background(), models.PlanPremium)

	require.NoError(t, err)
	assert.True(t, res.PaymentRequired)
	assert.False(t, res.Activated)
	assert.Equal(t, models.PlanPremium, res.Plan.Code)
	assert.Equal(t, before, api.TotalHits())
}

func TestService_SelectUnknownPlan(t *testing.T) {
	_, _, svc := setup(t)

	_, err := svc.Select(context.Background(), "GOLD")

	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestService_Pay(t *testing.T) {
	api, sess, svc := setup(t)

	res, err := svc.Pay(context.Background(), models.PlanStandard, validCard)

	require.NoError(t, err)
	assert.True(t, res.Activated)
	assert.Equal(t, []models.CheckoutRequest{{Amount: 499, Currency: "EUR"}}, api.Payments())
	assert.Equal(t, models.PlanStandard, sess.Snapshot().Plan())
}

func TestService_PayValidatesCard(t *testing.T) {
	tests := []struct {
		name string
		form PaymentForm
		want string
	}{
		{"short number", PaymentForm{CardNumber: "4242", Expiry: "12/30", CVV: "123"}, "card_number"},
		{"letters in number", PaymentForm{CardNumber: "4242abcd42424242", Expiry: "12/30", CVV: "123"}, "card_number"},
		{"bad expiry", PaymentForm{CardNumber: "4242424242424242", Expiry: "2030-12", CVV: "123"}, "expiry"},
		{"bad cvv", PaymentForm{CardNumber: "4242424242424242", Expiry: "12/30", CVV: "12"}, "cvv"},
		{"empty form", PaymentForm{}, "card_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _, svc := setup(t)
			before := api.TotalHits()

			_, err := svc.Pay(context.Background(), models.PlanPremium, tt.form)

			require.Error(t, err)
			assert.True(t, errors.Is(err, apierr.ErrValidation))
			assert.Contains(t, apierr.Message(err, ""), tt.want)
			assert.Equal(t, before, api.TotalHits())
		})
	}
}

func TestService_PayFreePlanRejected(t *testing.T) {
	_, _, svc := setup(t)

	_, err := svc.Pay(context.Background(), models.PlanFree, validCard)

	assert.ErrorIs(t, err, ErrFreePlan)
}

func TestService_PayCheckoutFailureSkipsActivation(t *testing.T) {
	api, sess, svc := setup(t)
	api.Fail(routeCheckout, http.StatusBadRequest, "Card declined")

	_, err := svc.Pay(context.Background(), models.PlanPremium, validCard)

	require.Error(t, err)
	assert.Equal(t, "Card declined", apierr.Message(err, ""))
	assert.Zero(t, api.Hits(routeCreate))
	assert.Equal(t, models.PlanFree, sess.Snapshot().Plan())
}
