// Package service holds the thin orchestration layer between the HTTP
// handlers and the domain store: session tokens and the payment gateway.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var sessionTracer = otel.Tracer("service/session")

// SessionService wraps the store's session operations and issues the
// JWT access tokens the API authenticates with.
type SessionService struct {
	store     *store.Store
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(st *store.Store, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:     st,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *SessionService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.SessionResponse, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("user.email", req.Email))

	if req.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email é obrigatório"}
	}

	user, err := s.store.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.sessionResponse(user)
}

// ============================================================
// Register — POST /v1/auth/register
// ============================================================

func (s *SessionService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.SessionResponse, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Register")
	defer span.End()

	user, err := s.store.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.sessionResponse(user)
}

// ============================================================
// Logout — POST /v1/auth/logout
// ============================================================

func (s *SessionService) Logout(ctx context.Context) error {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Logout")
	defer span.End()
	return s.store.Logout(ctx)
}

func (s *SessionService) sessionResponse(user *domain.User) (*domain.SessionResponse, error) {
	token, err := s.signAccessToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &domain.SessionResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		User:        user.Profile(),
	}, nil
}

// ============================================================
// ValidateToken — used by middleware
// ============================================================

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func (s *SessionService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}

	return claims, nil
}

// ============================================================
// Internal JWT helpers
// ============================================================

func (s *SessionService) signAccessToken(email string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:  email,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "mission-market-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
