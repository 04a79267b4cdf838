package handler

import (
	"encoding/json"
	"net/http"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/store"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Friends Handlers
// ============================================================

func listFriendsHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/friends")
		defer span.End()

		writeJSON(w, http.StatusOK, st.Friends())
	}
}

func addFriendHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/friends")
		defer span.End()

		var friend domain.Friend
		if err := json.NewDecoder(r.Body).Decode(&friend); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := st.AddFriend(ctx, friend); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, friend)
	}
}

func removeFriendHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/friends/{friendId}")
		defer span.End()

		friendID := chi.URLParam(r, "friendId")
		span.SetAttributes(attribute.String("friend.id", friendID))

		if err := st.RemoveFriend(ctx, friendID); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "amigo removido", ID: friendID})
	}
}

// ============================================================
// Messaging Handlers
// ============================================================

func listConversationsHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/conversations")
		defer span.End()

		writeJSON(w, http.StatusOK, st.Conversations(ctx))
	}
}

func getConversationHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/messages/{userId}")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		span.SetAttributes(attribute.String("partner.id", userID))

		writeJSON(w, http.StatusOK, st.GetConversation(ctx, userID))
	}
}

func sendMessageHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/messages/{userId}")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		span.SetAttributes(attribute.String("partner.id", userID))

		var req domain.SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		msg, err := st.SendMessage(ctx, userID, req.Content)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, msg)
	}
}

func markMessagesReadHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/messages/{userId}/read")
		defer span.End()

		userID := chi.URLParam(r, "userId")
		span.SetAttributes(attribute.String("partner.id", userID))

		count, err := st.MarkMessagesAsRead(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{"marked": count})
	}
}
