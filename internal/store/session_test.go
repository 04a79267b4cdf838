package store

import (
	"context"
	"errors"
	"testing"

	"github.com/missionmarket/mission-market-go/internal/domain"
)

func TestLogin_LegacyFallback(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	u, err := s.Login(ctx, "ana.silva@example.com", "whatever")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Name != "ana.silva" {
		t.Errorf("name = %q, want local part of the address", u.Name)
	}
	if u.Level != 1 || u.XP != 0 {
		t.Errorf("fresh user = level %d xp %d, want 1/0", u.Level, u.XP)
	}
	if u.Verified {
		t.Error("legacy session user must not be verified")
	}
	if u.Rating != 5.0 {
		t.Errorf("rating = %v, want 5.0", u.Rating)
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	u, err := s.Register(ctx, &domain.RegisterRequest{
		Name:     "Maria Souza",
		Email:    "maria@example.com",
		Password: "s3cret",
		CPF:      "123.456.789-00",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !u.Verified {
		t.Error("registered user must be verified")
	}
	if u.Level != 1 {
		t.Errorf("level = %d, want 1", u.Level)
	}

	notifs := s.Notifications(false)
	if len(notifs) != 1 || notifs[0].Title != "Bem-vindo!" {
		t.Fatalf("expected welcome notification, got %+v", notifs)
	}
}

func TestRegister_RequiresEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	_, err := s.Register(ctx, &domain.RegisterRequest{Name: "Sem Email"})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	if _, err := s.Register(ctx, &domain.RegisterRequest{Name: "Maria", Email: "maria@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := s.Login(ctx, "maria@example.com", "errada")
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLogoutThenLoginRestoresUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	if _, err := s.Register(ctx, &domain.RegisterRequest{Name: "Maria", Email: "maria@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	m, err := s.AddMission(ctx, &domain.CreateMissionRequest{Title: "Entrega", Reward: 100})
	if err != nil {
		t.Fatalf("AddMission: %v", err)
	}
	if _, err := s.AcceptMission(ctx, m.ID); err != nil {
		t.Fatalf("AcceptMission: %v", err)
	}
	if _, err := s.CompleteMission(ctx, m.ID); err != nil {
		t.Fatalf("CompleteMission: %v", err)
	}

	before := s.CurrentUser()
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if s.CurrentUser() != nil {
		t.Fatal("expected anonymous session after logout")
	}

	after, err := s.Login(ctx, "maria@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if after.XP != before.XP || after.Level != before.Level || after.Name != before.Name {
		t.Errorf("restored user %+v differs from %+v", after, before)
	}
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	if _, err := s.Register(ctx, &domain.RegisterRequest{Name: "Maria", Email: "maria@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	u, err := s.Login(ctx, "Maria@Example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Name != "Maria" {
		t.Errorf("expected registered account restored, got %+v", u)
	}
}

func TestNotifications_ReadState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	if _, err := s.Register(ctx, &domain.RegisterRequest{Name: "Maria", Email: "maria@example.com"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := s.AddMission(ctx, &domain.CreateMissionRequest{Title: "Entrega", Reward: 10}); err != nil {
		t.Fatalf("AddMission: %v", err)
	}

	unread := s.Notifications(true)
	if len(unread) != 2 {
		t.Fatalf("unread = %d, want 2", len(unread))
	}

	if err := s.MarkNotificationRead(ctx, unread[0].ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if got := len(s.Notifications(true)); got != 1 {
		t.Errorf("unread after one mark = %d, want 1", got)
	}

	flipped, err := s.MarkAllNotificationsRead(ctx)
	if err != nil {
		t.Fatalf("MarkAllNotificationsRead: %v", err)
	}
	if flipped != 1 {
		t.Errorf("flipped = %d, want 1", flipped)
	}
	if got := len(s.Notifications(true)); got != 0 {
		t.Errorf("unread after mark all = %d, want 0", got)
	}
	if got := len(s.Notifications(false)); got != 2 {
		t.Errorf("total notifications = %d, want 2", got)
	}

	err = s.MarkNotificationRead(ctx, "missing")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
