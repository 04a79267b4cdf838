package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/missionmarket/mission-market-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AddFriend appends a friend to the list. Uniqueness is enforced by id:
// a duplicate performs no insert, emits the warning notification and
// returns ErrDuplicate.
func (s *Store) AddFriend(ctx context.Context, friend domain.Friend) error {
	ctx, span := tracer.Start(ctx, "Store.AddFriend")
	defer span.End()
	span.SetAttributes(attribute.String("friend.id", friend.ID))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return err
	}
	if strings.TrimSpace(friend.ID) == "" {
		return &domain.ErrValidation{Field: "id", Message: "friend id is required"}
	}

	for _, f := range s.friends {
		if f.ID == friend.ID {
			s.emit(friendDuplicateEvent{})
			s.persist(ctx)
			return &domain.ErrDuplicate{Resource: "friend", ID: friend.ID}
		}
	}

	s.friends = append(s.friends, friend)
	s.emit(friendAddedEvent{name: friend.Name})
	s.persist(ctx)

	s.logger.Info("friend added", zap.String("friend_id", friend.ID))
	return nil
}

// RemoveFriend removes a friend by id and emits an info notification
// naming them.
func (s *Store) RemoveFriend(ctx context.Context, friendID string) error {
	ctx, span := tracer.Start(ctx, "Store.RemoveFriend")
	defer span.End()
	span.SetAttributes(attribute.String("friend.id", friendID))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return err
	}

	for i, f := range s.friends {
		if f.ID == friendID {
			s.friends = append(s.friends[:i], s.friends[i+1:]...)
			s.emit(friendRemovedEvent{name: f.Name})
			s.persist(ctx)
			s.logger.Info("friend removed", zap.String("friend_id", friendID))
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "friend", ID: friendID}
}

// Friends returns a copy of the friends list.
func (s *Store) Friends() []domain.Friend {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Friend, len(s.friends))
	copy(out, s.friends)
	return out
}

// SendMessage appends a message from the active user to receiverID.
// Content must not be blank; messages are chronological by construction.
func (s *Store) SendMessage(ctx context.Context, receiverID, content string) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "Store.SendMessage")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return nil, err
	}
	if s.user == nil {
		return nil, &domain.ErrNoSession{Operation: "sendMessage"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &domain.ErrValidation{Field: "content", Message: "message content must not be blank"}
	}

	msg := domain.Message{
		ID:         uuid.New().String(),
		SenderID:   s.user.Email,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UTC(),
		Read:       false,
	}
	s.messages = append(s.messages, msg)
	s.persist(ctx)

	out := msg
	return &out, nil
}

// MarkMessagesAsRead flips the read flag on every unread message sent by
// userID to the active user. Messages in the opposite direction are
// never touched. Returns the number of messages flipped.
func (s *Store) MarkMessagesAsRead(ctx context.Context, userID string) (int, error) {
	ctx, span := tracer.Start(ctx, "Store.MarkMessagesAsRead")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return 0, err
	}
	if s.user == nil {
		return 0, &domain.ErrNoSession{Operation: "markMessagesAsRead"}
	}

	flipped := 0
	for i := range s.messages {
		m := &s.messages[i]
		if m.SenderID == userID && m.ReceiverID == s.user.Email && !m.Read {
			m.Read = true
			flipped++
		}
	}
	if flipped > 0 {
		s.persist(ctx)
	}
	return flipped, nil
}

// GetConversation returns all messages between the active user and
// userID, either direction, ascending by timestamp. Empty for an
// anonymous session. Pure derivation, no mutation.
func (s *Store) GetConversation(ctx context.Context, userID string) []domain.Message {
	_, span := tracer.Start(ctx, "Store.GetConversation")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return []domain.Message{}
	}
	me := s.user.Email

	out := make([]domain.Message, 0)
	for _, m := range s.messages {
		if (m.SenderID == me && m.ReceiverID == userID) ||
			(m.SenderID == userID && m.ReceiverID == me) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Conversations summarizes every thread involving the active user:
// partner, last message, unread count. Sorted by most recent activity.
func (s *Store) Conversations(ctx context.Context) []domain.Conversation {
	_, span := tracer.Start(ctx, "Store.Conversations")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return []domain.Conversation{}
	}
	me := s.user.Email

	byPartner := make(map[string]*domain.Conversation)
	for _, m := range s.messages {
		var partner string
		switch {
		case m.SenderID == me:
			partner = m.ReceiverID
		case m.ReceiverID == me:
			partner = m.SenderID
		default:
			continue
		}

		c, ok := byPartner[partner]
		if !ok {
			c = &domain.Conversation{
				PartnerID:   partner,
				PartnerName: s.friendName(partner),
			}
			byPartner[partner] = c
		}
		if !m.Timestamp.Before(c.LastAt) {
			c.LastAt = m.Timestamp
			c.LastMessage = m.Content
		}
		if m.SenderID == partner && !m.Read {
			c.Unread++
		}
	}

	out := make([]domain.Conversation, 0, len(byPartner))
	for _, c := range byPartner {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAt.After(out[j].LastAt)
	})
	return out
}

// friendName resolves a participant key against the friends list.
// Callers must hold the store lock.
func (s *Store) friendName(id string) string {
	for _, f := range s.friends {
		if f.ID == id || strings.EqualFold(f.Email, id) {
			return f.Name
		}
	}
	return ""
}
