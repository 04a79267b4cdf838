package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/handler"
	"github.com/missionmarket/mission-market-go/internal/infra/cache"
	"github.com/missionmarket/mission-market-go/internal/infra/observability"
	"github.com/missionmarket/mission-market-go/internal/service"
	"github.com/missionmarket/mission-market-go/internal/store"

	"go.uber.org/zap"
)

type memKV struct {
	data map[string]string
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// sandboxGateway always answers in sandbox mode, like an unconfigured
// Stripe client.
type sandboxGateway struct{}

func (sandboxGateway) CreateCheckoutSession(_ context.Context, _ *domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	return &domain.CheckoutSession{Sandbox: true, Message: domain.SandboxPrefix + ": no key"}, nil
}

func (sandboxGateway) CreateIdentitySession(_ context.Context, _ *domain.IdentityRequest) (*domain.IdentitySession, error) {
	return &domain.IdentitySession{Sandbox: true, Message: domain.SandboxPrefix + ": no key"}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	st := store.New(&memKV{data: make(map[string]string)}, metrics, logger)
	st.Load(context.Background())

	sessionSvc := service.NewSessionService(st, "test-secret", time.Hour, logger)
	paymentSvc := service.NewPaymentService(st, sandboxGateway{}, metrics, 2, logger)
	feed := cache.New[[]domain.Mission](time.Minute)

	return handler.NewRouter(st, sessionSvc, paymentSvc, metrics, feed, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", domain.RegisterRequest{
		Name:     "Tester",
		Email:    email,
		Password: "s3cret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.SessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return resp.AccessToken
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/ping", "/metrics"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/missions", "", domain.CreateMissionRequest{Title: "x", Reward: 10})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/me", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with malformed header, got %d", rec.Code)
	}
}

func TestMe_StaleTokenAfterSessionChange(t *testing.T) {
	router := newTestRouter(t)
	oldToken := register(t, router, "maria@example.com")
	newToken := register(t, router, "joao@example.com")

	// The first token is still validly signed, but its subject no longer
	// owns the session.
	rec := doJSON(t, router, http.MethodGet, "/v1/me", oldToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("stale token: expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/me", newToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("current token: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var profile domain.UserProfile
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Email != "joao@example.com" {
		t.Errorf("profile email = %q, want joao@example.com", profile.Email)
	}
}

func TestMissionLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "maria@example.com")

	rec := doJSON(t, router, http.MethodPost, "/v1/missions", token, domain.CreateMissionRequest{
		Title:  "Entrega de Encomenda",
		Reward: 100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var mission domain.Mission
	if err := json.NewDecoder(rec.Body).Decode(&mission); err != nil {
		t.Fatalf("decode mission: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/missions/%s/accept", mission.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/missions/%s/complete", mission.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/balance", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance: expected 200, got %d", rec.Code)
	}
	var bal domain.BalanceResponse
	if err := json.NewDecoder(rec.Body).Decode(&bal); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if bal.Balance != -15 {
		t.Errorf("balance = %v, want -15", bal.Balance)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/me", token, nil)
	var profile domain.UserProfile
	if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.XP != 100 || profile.Level != 2 {
		t.Errorf("profile = xp %d level %d, want 100/2", profile.XP, profile.Level)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/history", token, nil)
	var hist []domain.WorkHistory
	if err := json.NewDecoder(rec.Body).Decode(&hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist) != 1 {
		t.Errorf("history = %d entries, want 1", len(hist))
	}
}

func TestMissionFeedCaching(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "maria@example.com")

	rec := doJSON(t, router, http.MethodPost, "/v1/dev/seed", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed: expected 200, got %d", rec.Code)
	}

	countFeed := func() int {
		rec := doJSON(t, router, http.MethodGet, "/v1/missions?status=available", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("feed: expected 200, got %d", rec.Code)
		}
		var feed []domain.Mission
		if err := json.NewDecoder(rec.Body).Decode(&feed); err != nil {
			t.Fatalf("decode feed: %v", err)
		}
		return len(feed)
	}

	if got := countFeed(); got != 5 {
		t.Fatalf("feed = %d missions, want 5", got)
	}
	// Second read hits the cache and returns the same view.
	if got := countFeed(); got != 5 {
		t.Fatalf("cached feed = %d missions, want 5", got)
	}

	// A mutation flushes the cache; the new mission shows up.
	rec = doJSON(t, router, http.MethodPost, "/v1/missions", token, domain.CreateMissionRequest{Title: "Nova", Reward: 10})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	if got := countFeed(); got != 6 {
		t.Errorf("feed after create = %d missions, want 6", got)
	}
}

func TestAcceptMission_LevelGateOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "novato@example.com")

	if rec := doJSON(t, router, http.MethodPost, "/v1/dev/seed", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("seed: expected 200, got %d", rec.Code)
	}

	// Mission 4 needs level 3.
	rec := doJSON(t, router, http.MethodPost, "/v1/missions/4/accept", token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/notifications?unread=true", "", nil)
	var notifs []domain.Notification
	if err := json.NewDecoder(rec.Body).Decode(&notifs); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(notifs) == 0 || notifs[0].Type != domain.NotifWarning {
		t.Errorf("expected warning notification at the head, got %+v", notifs)
	}
}

func TestCheckoutSandboxOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/checkout", "", domain.CheckoutRequest{
		Title:  "Missão",
		Amount: 25,
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 in sandbox, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "Stripe not configured" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.Message == "" {
		t.Error("expected sandbox message")
	}
}

func TestSocialOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "ana@example.com")

	rec := doJSON(t, router, http.MethodPost, "/v1/friends", token, domain.Friend{ID: "f1", Name: "Bob", Email: "bob@example.com"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add friend: expected 201, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/v1/friends", token, domain.Friend{ID: "f1", Name: "Bob"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate friend: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/messages/bob@example.com", token, domain.SendMessageRequest{Content: "oi"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send message: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodGet, "/v1/messages/bob@example.com", token, nil)
	var conv []domain.Message
	if err := json.NewDecoder(rec.Body).Decode(&conv); err != nil {
		t.Fatalf("decode conversation: %v", err)
	}
	if len(conv) != 1 || conv[0].Content != "oi" {
		t.Errorf("conversation = %+v", conv)
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/friends/f1", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("remove friend: expected 200, got %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "maria@example.com")

	rec := doJSON(t, router, http.MethodPost, "/v1/missions", token, domain.CreateMissionRequest{Title: "x", Reward: 10})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rec.Code)
	}
	var stats domain.MarketStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.MissionsCreated != 1 {
		t.Errorf("missionsCreated = %d, want 1", stats.MissionsCreated)
	}
}
