package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/expense-tracker/internal/domain"
)

func webhookBody(event, customerID string, currentEnd int64) []byte {
	end := "null"
	if currentEnd > 0 {
		end = fmt.Sprint(currentEnd)
	}
	return []byte(fmt.Sprintf(`{"entity":"event","event":%q,"payload":{"subscription":{"entity":{"id":"sub_1","customer_id":%q,"current_end":%s}}}}`,
		event, customerID, end))
}

func TestParseEvent_Variants(t *testing.T) {
	tests := []struct {
		event string
		want  string
	}{
		{"subscription.charged", "charged"},
		{"subscription.cancelled", "cancelled"},
		{"payment.failed", "payment_failed"},
		{"subscription.activated", "ignored"},
		{"", "ignored"},
	}
	for _, tt := range tests {
		ev, err := ParseEvent(webhookBody(tt.event, "cust_1", 0))
		require.NoError(t, err)
		assert.Equal(t, tt.want, ev.Kind(), tt.event)
	}
}

func TestParseEvent_ChargedPeriodEnd(t *testing.T) {
	ev, err := ParseEvent(webhookBody("subscription.charged", "cust_1", 1767225600))
	require.NoError(t, err)

	ch, ok := ev.(ChargedEvent)
	require.True(t, ok)
	require.NotNil(t, ch.PeriodEnd)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), *ch.PeriodEnd)
	assert.Equal(t, "cust_1", ch.CustomerID)
}

func TestParseEvent_MalformedJSON(t *testing.T) {
	_, err := ParseEvent([]byte(`{"event":`))
	assert.True(t, domain.Is(err, "invalid_json"))
}

func TestHandleWebhook_Charged_ActivatesWithExpiry(t *testing.T) {
	users := newFakeUsers(domain.User{ID: "u1", CustomerID: "cust_1"})
	svc, _ := newTestService(users, &fakeProvider{}, testConfig())

	body := webhookBody("subscription.charged", "cust_1", 1767225600)
	ev, err := svc.HandleWebhook(context.Background(), body, sign("hook-secret", body))
	require.NoError(t, err)
	assert.Equal(t, "charged", ev.Kind())

	u := users.get("u1")
	assert.True(t, u.IsPremium)
	require.NotNil(t, u.PremiumExpiresAt)
	assert.Equal(t, int64(1767225600), u.PremiumExpiresAt.Unix())
}

func TestHandleWebhook_Replay_IsIdempotent(t *testing.T) {
	users := newFakeUsers(domain.User{ID: "u1", CustomerID: "cust_1"})
	svc, _ := newTestService(users, &fakeProvider{}, testConfig())

	body := webhookBody("subscription.charged", "cust_1", 1767225600)
	sig := sign("hook-secret", body)

	_, err := svc.HandleWebhook(context.Background(), body, sig)
	require.NoError(t, err)
	first := users.get("u1")

	_, err = svc.HandleWebhook(context.Background(), body, sig)
	require.NoError(t, err)
	second := users.get("u1")

	assert.Equal(t, first.IsPremium, second.IsPremium)
	assert.True(t, first.PremiumExpiresAt.Equal(*second.PremiumExpiresAt))
}

func TestHandleWebhook_Cancelled_Deactivates(t *testing.T) {
	exp := fixedNow.Add(24 * time.Hour)
	users := newFakeUsers(domain.User{ID: "u1", CustomerID: "cust_1", IsPremium: true, PremiumExpiresAt: &exp, SubscriptionID: "sub_1"})
	svc, _ := newTestService(users, &fakeProvider{}, testConfig())

	body := webhookBody("subscription.cancelled", "cust_1", 0)
	_, err := svc.HandleWebhook(context.Background(), body, sign("hook-secret", body))
	require.NoError(t, err)

	u := users.get("u1")
	assert.False(t, u.IsPremium)
	assert.Nil(t, u.PremiumExpiresAt)
	assert.Empty(t, u.SubscriptionID)
	assert.False(t, domain.IsActive(u, fixedNow))
}

func TestHandleWebhook_UnmatchedCustomer_NoOp(t *testing.T) {
	users := newFakeUsers(domain.User{ID: "u1", CustomerID: "cust_1"})
	svc, actions := newTestService(users, &fakeProvider{}, testConfig())

	body := webhookBody("subscription.charged", "cust_unknown", 0)
	_, err := svc.HandleWebhook(context.Background(), body, sign("hook-secret", body))
	require.NoError(t, err)
	assert.Equal(t, 0, users.saves)
	assert.Contains(t, *actions, "webhook_unmatched_customer")
}

func TestHandleWebhook_PaymentFailedAndOther_NoOp(t *testing.T) {
	users := newFakeUsers(domain.User{ID: "u1", CustomerID: "cust_1", IsPremium: true})
	svc, _ := newTestService(users, &fakeProvider{}, testConfig())

	for _, name := range []string{"payment.failed", "subscription.paused", "refund.created"} {
		body := webhookBody(name, "cust_1", 0)
		_, err := svc.HandleWebhook(context.Background(), body, sign("hook-secret", body))
		require.NoError(t, err, name)
	}
	assert.Equal(t, 0, users.saves)
	assert.True(t, users.get("u1").IsPremium)
}

func TestHandleWebhook_TamperedBody_Rejected(t *testing.T) {
	users := newFakeUsers(domain.User{ID: "u1", CustomerID: "cust_1"})
	svc, _ := newTestService(users, &fakeProvider{}, testConfig())

	body := webhookBody("subscription.charged", "cust_1", 1767225600)
	sig := sign("hook-secret", body)

	for i := range body {
		mut := append([]byte(nil), body...)
		mut[i] ^= 0x01
		_, err := svc.HandleWebhook(context.Background(), mut, sig)
		require.Error(t, err)
		require.True(t, domain.Is(err, "invalid_signature"), "byte %d", i)
	}
	assert.Equal(t, 0, users.saves)
	assert.False(t, users.get("u1").IsPremium)
}

func TestHandleWebhook_NoSecret_Strict(t *testing.T) {
	cfg := testConfig()
	cfg.WebhookSecret = ""
	users := newFakeUsers(domain.User{ID: "u1", CustomerID: "cust_1"})
	svc, _ := newTestService(users, &fakeProvider{}, cfg)

	_, err := svc.HandleWebhook(context.Background(), webhookBody("subscription.charged", "cust_1", 0), "")
	assert.True(t, domain.Is(err, "not_configured"))
	assert.Equal(t, 0, users.saves)
}

func TestHandleWebhook_NoSecret_Lenient(t *testing.T) {
	cfg := testConfig()
	cfg.WebhookSecret = ""
	cfg.RequireWebhookSignature = false
	users := newFakeUsers(domain.User{ID: "u1", CustomerID: "cust_1"})
	svc, actions := newTestService(users, &fakeProvider{}, cfg)

	_, err := svc.HandleWebhook(context.Background(), webhookBody("subscription.charged", "cust_1", 0), "")
	require.NoError(t, err)
	assert.True(t, users.get("u1").IsPremium)
	assert.Contains(t, *actions, "webhook_unsigned")
}

func TestHandleWebhook_SaveFails_Propagates(t *testing.T) {
	users := newFakeUsers(domain.User{ID: "u1", CustomerID: "cust_1"})
	users.saveErr = domain.ErrDBUnavailable(errBoom)
	svc, _ := newTestService(users, &fakeProvider{}, testConfig())

	body := webhookBody("subscription.charged", "cust_1", 0)
	_, err := svc.HandleWebhook(context.Background(), body, sign("hook-secret", body))
	assert.True(t, domain.Is(err, "db_unavailable"))
}
