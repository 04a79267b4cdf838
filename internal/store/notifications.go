package store

import (
	"context"

	"github.com/missionmarket/mission-market-go/internal/domain"
)

// Notifications returns notifications newest-first. With unreadOnly set,
// read ones are filtered out.
func (s *Store) Notifications(unreadOnly bool) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out
}

// MarkNotificationRead flips one notification to read.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return err
	}

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			if !s.notifications[i].Read {
				s.notifications[i].Read = true
				s.persist(ctx)
			}
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "notification", ID: id}
}

// MarkAllNotificationsRead flips every notification to read and returns
// how many changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return 0, err
	}

	flipped := 0
	for i := range s.notifications {
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			flipped++
		}
	}
	if flipped > 0 {
		s.persist(ctx)
	}
	return flipped, nil
}
