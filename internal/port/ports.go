// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/store
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/missionmarket/mission-market-go/internal/domain"
)

// KV is the local key-value store backing the domain store, one key per
// entity kind. Get reports ok=false for a missing key; Delete on a
// missing key is a no-op.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// PaymentGateway is the external payment/identity collaborator. When the
// provider is not configured, implementations return a session with the
// Sandbox flag set instead of an error.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req *domain.CheckoutRequest) (*domain.CheckoutSession, error)
	CreateIdentitySession(ctx context.Context, req *domain.IdentityRequest) (*domain.IdentitySession, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Flush()
}
