package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/service"
	"github.com/missionmarket/mission-market-go/internal/store"

	"go.uber.org/zap"
)

// ============================================================
// Auth Handlers
// ============================================================

func authRegisterHandler(sessionSvc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/register")
		defer span.End()

		var req domain.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := sessionSvc.Register(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

func authLoginHandler(sessionSvc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := sessionSvc.Login(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func authLogoutHandler(sessionSvc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		if err := sessionSvc.Logout(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "sessão encerrada"})
	}
}

func meHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/me")
		defer span.End()

		user := st.CurrentUser()
		if user == nil {
			handleServiceError(w, &domain.ErrNoSession{Operation: "me"}, logger)
			return
		}

		// A token outlives the session it was minted for. Only answer
		// when its subject is still the active user.
		if email := UserEmailFromContext(r.Context()); !strings.EqualFold(email, user.Email) {
			handleServiceError(w, &domain.ErrUnauthorized{Message: "Sessão não corresponde ao token"}, logger)
			return
		}

		writeJSON(w, http.StatusOK, user.Profile())
	}
}

func balanceHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/balance")
		defer span.End()

		writeJSON(w, http.StatusOK, domain.BalanceResponse{Balance: st.Balance()})
	}
}

func historyHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/history")
		defer span.End()

		writeJSON(w, http.StatusOK, st.History())
	}
}
