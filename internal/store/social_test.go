package store

import (
	"context"
	"errors"
	"testing"

	"github.com/missionmarket/mission-market-go/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func TestAddFriend_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	f := domain.Friend{ID: "f1", Name: "Ana", Email: "ana@example.com", Rating: 4.8, Level: 3}
	if err := s.AddFriend(ctx, f); err != nil {
		t.Fatalf("AddFriend: %v", err)
	}

	err := s.AddFriend(ctx, f)
	var dup *domain.ErrDuplicate
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if got := len(s.Friends()); got != 1 {
		t.Errorf("friends = %d, want 1", got)
	}

	// The duplicate attempt leaves a warning notification.
	notifs := s.Notifications(false)
	if len(notifs) != 2 {
		t.Fatalf("notifications = %d, want 2", len(notifs))
	}
	if notifs[0].Type != domain.NotifWarning {
		t.Errorf("head notification type = %q, want warning", notifs[0].Type)
	}
}

func TestAddFriend_RequiresID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	err := s.AddFriend(ctx, domain.Friend{Name: "Sem ID"})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRemoveFriend(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	if err := s.AddFriend(ctx, domain.Friend{ID: "f1", Name: "Ana"}); err != nil {
		t.Fatalf("AddFriend: %v", err)
	}
	if err := s.RemoveFriend(ctx, "f1"); err != nil {
		t.Fatalf("RemoveFriend: %v", err)
	}
	if got := len(s.Friends()); got != 0 {
		t.Errorf("friends = %d, want 0", got)
	}

	err := s.RemoveFriend(ctx, "f1")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound on second removal, got %v", err)
	}

	notifs := s.Notifications(false)
	if notifs[0].Title != "Amigo Removido" {
		t.Errorf("head notification = %q", notifs[0].Title)
	}
}

func TestSendMessage_RequiresSessionAndContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	_, err := s.SendMessage(ctx, "bob@example.com", "oi")
	var noSess *domain.ErrNoSession
	if !errors.As(err, &noSess) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	if _, err := s.Login(ctx, "ana@example.com", ""); err != nil {
		t.Fatalf("Login: %v", err)
	}
	_, err = s.SendMessage(ctx, "bob@example.com", "   ")
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected ErrValidation for blank content, got %v", err)
	}
}

func TestGetConversation_FiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())
	if _, err := s.Login(ctx, "ana@example.com", ""); err != nil {
		t.Fatalf("Login: %v", err)
	}

	m1, err := s.SendMessage(ctx, "bob@example.com", "oi Bob")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := s.SendMessage(ctx, "carla@example.com", "oi Carla"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	m3, err := s.SendMessage(ctx, "bob@example.com", "tudo bem?")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	got := s.GetConversation(ctx, "bob@example.com")
	want := []domain.Message{*m1, *m3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("conversation mismatch (-want +got):\n%s", diff)
	}

	// Anonymous sessions see nothing.
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got := s.GetConversation(ctx, "bob@example.com"); len(got) != 0 {
		t.Errorf("anonymous conversation = %d messages, want 0", len(got))
	}
}

func TestMarkMessagesAsRead_OnlyInbound(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	s := newTestStore(t, kv)

	// Bob writes to Ana while Bob's session is active.
	if _, err := s.Login(ctx, "bob@example.com", ""); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.SendMessage(ctx, "ana@example.com", "oi Ana"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := s.SendMessage(ctx, "ana@example.com", "você viu a missão?"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	// Ana takes over the session and answers once.
	if _, err := s.Login(ctx, "ana@example.com", ""); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.SendMessage(ctx, "bob@example.com", "vi sim"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	flipped, err := s.MarkMessagesAsRead(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("MarkMessagesAsRead: %v", err)
	}
	if flipped != 2 {
		t.Errorf("flipped = %d, want 2", flipped)
	}

	// Ana's own outbound message must stay unread for Bob.
	conv := s.GetConversation(ctx, "bob@example.com")
	for _, m := range conv {
		inbound := m.SenderID == "bob@example.com"
		if inbound && !m.Read {
			t.Errorf("inbound message %q still unread", m.Content)
		}
		if !inbound && m.Read {
			t.Errorf("outbound message %q was flipped", m.Content)
		}
	}

	// Second pass finds nothing left to flip.
	flipped, err = s.MarkMessagesAsRead(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("MarkMessagesAsRead: %v", err)
	}
	if flipped != 0 {
		t.Errorf("second pass flipped = %d, want 0", flipped)
	}
}

func TestConversations_Summaries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newFakeKV())

	if err := s.AddFriend(ctx, domain.Friend{ID: "bob@example.com", Name: "Bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("AddFriend: %v", err)
	}

	if _, err := s.Login(ctx, "bob@example.com", ""); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.SendMessage(ctx, "ana@example.com", "oi Ana"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if _, err := s.Login(ctx, "ana@example.com", ""); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := s.SendMessage(ctx, "carla@example.com", "oi Carla"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	convs := s.Conversations(ctx)
	if len(convs) != 2 {
		t.Fatalf("conversations = %d, want 2", len(convs))
	}
	// Most recent activity first: the Carla thread.
	if convs[0].PartnerID != "carla@example.com" {
		t.Errorf("head partner = %q, want carla@example.com", convs[0].PartnerID)
	}
	for _, c := range convs {
		if c.PartnerID == "bob@example.com" {
			if c.Unread != 1 {
				t.Errorf("bob thread unread = %d, want 1", c.Unread)
			}
			if c.PartnerName != "Bob" {
				t.Errorf("partner name = %q, want Bob", c.PartnerName)
			}
			if c.LastMessage != "oi Ana" {
				t.Errorf("last message = %q", c.LastMessage)
			}
		}
	}
}
