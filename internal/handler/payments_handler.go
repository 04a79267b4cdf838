package handler

import (
	"encoding/json"
	"net/http"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Payment Handlers (Stripe)
// ============================================================

// Sandbox sessions answer 503 with the structured sandbox message so the
// client can tell "provider down" apart from "provider not configured".

func checkoutHandler(paymentSvc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/checkout")
		defer span.End()

		var req domain.CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("mission.id", req.MissionID))

		session, err := paymentSvc.Checkout(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if session.Sandbox {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{
				Error:   "Stripe not configured",
				Message: session.Message,
			})
			return
		}

		writeJSON(w, http.StatusOK, session)
	}
}

func checkoutAcceptedHandler(paymentSvc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/checkout/accepted")
		defer span.End()

		sessions, err := paymentSvc.CheckoutAccepted(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, sessions)
	}
}

func identityHandler(paymentSvc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/identity")
		defer span.End()

		var req domain.IdentityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		session, err := paymentSvc.Identity(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if session.Sandbox {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{
				Error:   "Stripe not configured",
				Message: session.Message,
			})
			return
		}

		writeJSON(w, http.StatusOK, session)
	}
}
