// Package store implements the marketplace domain store: the single
// source of truth for missions, the active user, balance, friends,
// messages, notifications and work history. Every mutating operation
// applies the business rules, derives its side effects and persists the
// full state to the local key-value store.
package store

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/infra/observability"
	"github.com/missionmarket/mission-market-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("store")

// Namespace prefixes every persisted key, matching the web client's
// localStorage layout.
const Namespace = "mission-market:"

const (
	keyMissions      = Namespace + "missions"
	keyBalance       = Namespace + "balance"
	keyUser          = Namespace + "user"
	keyNotifications = Namespace + "notifications"
	keyFriends       = Namespace + "friends"
	keyMessages      = Namespace + "messages"
	keyWorkHistory   = Namespace + "workHistory"
)

// Store owns all marketplace state. Operations are safe for concurrent
// use; each one runs to completion under the store lock, so there is no
// interleaving of two operations.
type Store struct {
	mu      sync.RWMutex
	kv      port.KV
	metrics *observability.Metrics
	logger  *zap.Logger

	ready bool

	missions      []domain.Mission
	balance       float64
	user          *domain.User
	account       *domain.User // last known registered user, survives logout
	notifications []domain.Notification
	friends       []domain.Friend
	messages      []domain.Message
	history       []domain.WorkHistory
}

// New creates a store bound to a key-value backend. Call Load before
// invoking any operation.
func New(kv port.KV, metrics *observability.Metrics, logger *zap.Logger) *Store {
	return &Store{
		kv:      kv,
		metrics: metrics,
		logger:  logger,
	}
}

// Ready reports whether the initial load has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Load rehydrates state from the key-value store. A missing key yields
// an empty collection or default scalar; a parse failure on one key is
// logged and treated as absent for that key only — it never aborts the
// load of the others.
func (s *Store) Load(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "Store.Load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	loadJSON(ctx, s.kv, keyMissions, &s.missions, s.logger)
	loadJSON(ctx, s.kv, keyNotifications, &s.notifications, s.logger)
	loadJSON(ctx, s.kv, keyFriends, &s.friends, s.logger)
	loadJSON(ctx, s.kv, keyMessages, &s.messages, s.logger)
	loadJSON(ctx, s.kv, keyWorkHistory, &s.history, s.logger)

	if raw, ok, err := s.kv.Get(ctx, keyBalance); err == nil && ok {
		if b, perr := strconv.ParseFloat(raw, 64); perr == nil {
			s.balance = b
		} else {
			s.logger.Warn("store: invalid balance value, using default",
				zap.String("value", raw),
				zap.Error(perr),
			)
		}
	} else if err != nil {
		s.logger.Warn("store: balance read failed, using default", zap.Error(err))
	}

	var user domain.User
	if loadJSON(ctx, s.kv, keyUser, &user, s.logger) && user.Email != "" {
		s.user = &user
		s.account = &user
	}

	s.ready = true
	s.logger.Info("store loaded",
		zap.Int("missions", len(s.missions)),
		zap.Int("notifications", len(s.notifications)),
		zap.Int("friends", len(s.friends)),
		zap.Int("messages", len(s.messages)),
		zap.Int("work_history", len(s.history)),
		zap.Float64("balance", s.balance),
		zap.Bool("session", s.user != nil),
	)
}

// loadJSON fills dst from one key. Reports whether a value was decoded.
// Decoding goes through a scratch value: on a type mismatch encoding/json
// returns an error after partially filling the destination, and a
// half-decoded collection must never replace the default.
func loadJSON[T any](ctx context.Context, kv port.KV, key string, dst *T, logger *zap.Logger) bool {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		logger.Warn("store: read failed, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	var decoded T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		logger.Warn("store: corrupt value, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	*dst = decoded
	return true
}

// persist writes back every collection and scalar the store owns.
// A write failure is logged but never rolls back the in-memory mutation.
// Callers must hold the store lock.
func (s *Store) persist(ctx context.Context) {
	s.persistJSON(ctx, keyMissions, s.missions)
	s.persistJSON(ctx, keyNotifications, s.notifications)
	s.persistJSON(ctx, keyFriends, s.friends)
	s.persistJSON(ctx, keyMessages, s.messages)
	s.persistJSON(ctx, keyWorkHistory, s.history)

	if err := s.kv.Set(ctx, keyBalance, strconv.FormatFloat(s.balance, 'f', -1, 64)); err != nil {
		s.logger.Error("store: persist balance failed", zap.Error(err))
	}

	// The user key is deleted, not nulled, when the session ends.
	if s.user == nil {
		if err := s.kv.Delete(ctx, keyUser); err != nil {
			s.logger.Error("store: delete user key failed", zap.Error(err))
		}
		return
	}
	s.persistJSON(ctx, keyUser, s.user)
}

func (s *Store) persistJSON(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("store: marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		s.logger.Error("store: persist failed", zap.String("key", key), zap.Error(err))
	}
}

// notReady returns the typed error used to gate operations before Load.
// Callers must hold the store lock.
func (s *Store) notReady() error {
	if !s.ready {
		return &domain.ErrStoreNotReady{}
	}
	return nil
}

// Balance returns the session balance. It may be negative: fees owed to
// the platform, not an error.
func (s *Store) Balance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// History returns the work history, newest first.
func (s *Store) History() []domain.WorkHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.WorkHistory, len(s.history))
	copy(out, s.history)
	return out
}
