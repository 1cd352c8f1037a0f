package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/expense-tracker/internal/application/auth"
	"github.com/baechuer/expense-tracker/internal/application/billing"
	"github.com/baechuer/expense-tracker/internal/infrastructure/memory"
	"github.com/baechuer/expense-tracker/internal/infrastructure/security"
	"github.com/baechuer/expense-tracker/internal/transport/http/middleware"
	"github.com/baechuer/expense-tracker/internal/transport/http/response"
)

const (
	testKeySecret     = "key-secret"
	testWebhookSecret = "whsec"
)

type captureNotifier struct {
	mu   sync.Mutex
	last auth.ResetCodeMessage
	err  error
}

func (n *captureNotifier) SendResetCode(_ context.Context, msg auth.ResetCodeMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = msg
	return n.err
}

func (n *captureNotifier) code() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last.Code
}

type stubProvider struct {
	err error
}

func (p stubProvider) CreateCustomer(_ context.Context, _, _ string) (string, error) {
	return "cust_1", p.err
}

func (p stubProvider) CreateSubscription(_ context.Context, _, _ string) (billing.Subscription, error) {
	return billing.Subscription{ID: "sub_1", Status: "created"}, p.err
}

type testEnv struct {
	mux      http.Handler
	users    *memory.UserRepo
	notifier *captureNotifier
	signer   *security.JWTSigner
	hmac     security.HMACVerifier
}

// newTestEnv mounts the handlers on a bare chi mux with real in-memory
// adapters so each test exercises service, dto and response together.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserRepo()
	notifier := &captureNotifier{}
	signer := security.NewJWTSigner("test-secret", "test")
	hm := security.NewHMACVerifier()

	authSvc := auth.NewService(users, security.NewBcryptHasher(4), signer, memory.NewChallengeStore(),
		notifier, security.NewOTPGenerator(), auth.Config{})
	billSvc := billing.NewService(users, stubProvider{}, hm, billing.Config{
		KeyID: "rzp_test", KeySecret: testKeySecret, PlanID: "plan_1",
		WebhookSecret: testWebhookSecret, RequireWebhookSignature: true,
	})

	ah := NewAuthHandler(authSvc)
	sh := NewSubscriptionHandler(billSvc)
	ph := NewPremiumHandler()
	authMW := middleware.Auth(signer, response.WriteError)
	gate := middleware.RequirePremium(users, time.Now, response.WriteError)

	r := chi.NewRouter()
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.With(authMW).Get("/auth/me", ah.Me)
	r.Post("/auth/send-otp", ah.SendOTP)
	r.Post("/auth/reset-password", ah.ResetPassword)
	r.With(authMW).Post("/subscription/create-checkout-session", sh.CreateCheckout)
	r.With(authMW).Post("/subscription/verify", sh.Verify)
	r.With(authMW).Get("/subscription/status", sh.Status)
	r.Post("/subscription/webhook", sh.Webhook)
	r.With(authMW, gate).Get("/premium/features", ph.Features)

	return &testEnv{mux: r, users: users, notifier: notifier, signer: signer, hmac: hm}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

// register creates an account and returns its id and token.
func (e *testEnv) register(t *testing.T, email, password string) (string, string) {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/auth/register",
		mustJSONBody(t, map[string]string{"fullName": "Test User", "email": email, "password": password}), "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rr.Code, rr.Body.String())
	}
	var out struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	mustReadJSON(t, rr.Body, &out)
	return out.ID, out.Token
}

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode json failed; body=%s err=%v", string(raw), err)
	}
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body response.ErrorBody
	mustReadJSON(t, bytes.NewReader(rr.Body.Bytes()), &body)
	return body.Error.Code
}

func requireStatusCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d body=%s", status, rr.Code, rr.Body.String())
	}
	if code != "" {
		if got := errorCode(t, rr); got != code {
			t.Fatalf("expected code %s, got %s", code, got)
		}
	}
}
