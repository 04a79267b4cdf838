package store

import (
	"context"
	"strings"

	"github.com/missionmarket/mission-market-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Login activates a session for email. A previously registered user with
// a matching email is restored unchanged; a wrong password on such an
// account fails with ErrUnauthorized. An unknown email takes the legacy
// fallback path: a minimal level-1 user synthesized from the address.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Store.Login")
	defer span.End()
	span.SetAttributes(attribute.String("user.email", email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return nil, err
	}

	if acc := s.lookupAccount(ctx, email); acc != nil {
		if acc.PasswordHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
				s.logger.Warn("login: wrong password", zap.String("email", email))
				return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
			}
		}
		s.user = acc
		s.account = acc
		s.persist(ctx)
		s.logger.Info("session restored", zap.String("email", email), zap.Int("level", acc.Level))
		u := *acc
		return &u, nil
	}

	// Legacy flow: no prior registration for this email. Create a basic
	// session user named after the address's local part.
	name := email
	if i := strings.Index(email, "@"); i > 0 {
		name = email[:i]
	}
	user := &domain.User{
		Name:     name,
		Email:    email,
		Level:    1,
		XP:       0,
		Rating:   5.0,
		Verified: false,
	}
	s.user = user
	s.account = user
	s.persist(ctx)
	s.logger.Info("legacy session created", zap.String("email", email))
	u := *user
	return &u, nil
}

// lookupAccount finds a registered user by email: the retained in-memory
// account first, then the persisted key (covers a restart while logged
// out never happening in the web model, but cheap to read). Callers must
// hold the store lock.
func (s *Store) lookupAccount(ctx context.Context, email string) *domain.User {
	if s.account != nil && strings.EqualFold(s.account.Email, email) {
		return s.account
	}
	var stored domain.User
	if loadJSON(ctx, s.kv, keyUser, &stored, s.logger) && strings.EqualFold(stored.Email, email) {
		return &stored
	}
	return nil
}

// Register creates a new verified user and activates it as the session.
// It does not check for an existing account with the same email: a
// duplicate registration overwrites the session identity. Known gap,
// kept for parity with the web client and logged when it happens.
func (s *Store) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Store.Register")
	defer span.End()
	span.SetAttributes(attribute.String("user.email", req.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email é obrigatório"}
	}

	if s.account != nil && !strings.EqualFold(s.account.Email, req.Email) {
		s.logger.Warn("register: overwriting existing session identity",
			zap.String("previous", s.account.Email),
			zap.String("new", req.Email),
		)
	}

	user := &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		CPF:      req.CPF,
		Level:    1,
		XP:       0,
		Rating:   5.0,
		Verified: true, // passed the full registration flow
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	s.user = user
	s.account = user
	s.emit(welcomeEvent{})
	s.persist(ctx)

	s.logger.Info("user registered", zap.String("email", user.Email))
	u := *user
	return &u, nil
}

// Logout clears the active session and deletes the persisted user key.
// Missions, messages, friends and history are left untouched: state is
// not scoped per user.
func (s *Store) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Store.Logout")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return err
	}

	if s.user != nil {
		s.logger.Info("session ended", zap.String("email", s.user.Email))
	}
	s.user = nil
	s.persist(ctx)
	return nil
}

// CurrentUser returns a copy of the active user, or nil for an anonymous
// session.
func (s *Store) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}
