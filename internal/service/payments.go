package service

import (
	"context"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/infra/observability"
	"github.com/missionmarket/mission-market-go/internal/port"
	"github.com/missionmarket/mission-market-go/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var paymentTracer = otel.Tracer("service/payments")

// PaymentService fronts the payment gateway: checkout sessions for
// mission payments and identity verification sessions.
type PaymentService struct {
	store          *store.Store
	gateway        port.PaymentGateway
	metrics        *observability.Metrics
	logger         *zap.Logger
	maxConcurrency int
}

// NewPaymentService creates a new payment service.
func NewPaymentService(st *store.Store, gateway port.PaymentGateway, metrics *observability.Metrics, maxConcurrency int, logger *zap.Logger) *PaymentService {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &PaymentService{
		store:          st,
		gateway:        gateway,
		metrics:        metrics,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// ============================================================
// Checkout — POST /v1/checkout
// ============================================================

// Checkout creates a payment session for one mission. When the request
// names a mission id, title and amount are resolved from the store so a
// client cannot check out with a forged amount.
func (s *PaymentService) Checkout(ctx context.Context, req *domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.Checkout")
	defer span.End()
	span.SetAttributes(attribute.String("mission.id", req.MissionID))

	if req.MissionID != "" {
		mission, err := s.store.Mission(req.MissionID)
		if err != nil {
			return nil, err
		}
		req.Title = mission.Title
		req.Amount = mission.Reward
	}
	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount must be positive"}
	}
	if req.Title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "title is required"}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("stripe")
		return nil, err
	}
	if session.Sandbox {
		s.logger.Info("checkout in sandbox mode", zap.String("mission_id", req.MissionID))
	}
	return session, nil
}

// CheckoutAccepted creates checkout sessions for every accepted mission,
// fanned out with a bounded worker group. Results keep the feed order.
// One failing mission fails the batch.
func (s *PaymentService) CheckoutAccepted(ctx context.Context) ([]*domain.CheckoutSession, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.CheckoutAccepted")
	defer span.End()

	missions := make([]domain.Mission, 0)
	for _, m := range s.store.AcceptedMissions() {
		if m.Status == domain.MissionAccepted {
			missions = append(missions, m)
		}
	}

	sessions := make([]*domain.CheckoutSession, len(missions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i, m := range missions {
		i, m := i, m
		g.Go(func() error {
			sess, err := s.gateway.CreateCheckoutSession(gctx, &domain.CheckoutRequest{
				MissionID: m.ID,
				Title:     m.Title,
				Amount:    m.Reward,
			})
			if err != nil {
				s.metrics.IncrExternalError("stripe")
				return err
			}
			sessions[i] = sess
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ============================================================
// Identity — POST /v1/identity
// ============================================================

func (s *PaymentService) Identity(ctx context.Context, req *domain.IdentityRequest) (*domain.IdentitySession, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.Identity")
	defer span.End()

	if req.Email == "" {
		if u := s.store.CurrentUser(); u != nil {
			req.Email = u.Email
		}
	}
	if req.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email is required"}
	}

	session, err := s.gateway.CreateIdentitySession(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("stripe")
		return nil, err
	}
	return session, nil
}
