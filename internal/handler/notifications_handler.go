package handler

import (
	"net/http"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/store"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Notifications Handlers
// ============================================================

func listNotificationsHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/notifications")
		defer span.End()

		unreadOnly := r.URL.Query().Get("unread") == "true"
		span.SetAttributes(attribute.Bool("filter.unread", unreadOnly))

		writeJSON(w, http.StatusOK, st.Notifications(unreadOnly))
	}
}

func markNotificationReadHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/notifications/{notifId}/read")
		defer span.End()

		notifID := chi.URLParam(r, "notifId")
		span.SetAttributes(attribute.String("notification.id", notifID))

		if err := st.MarkNotificationRead(ctx, notifID); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "notificação lida", ID: notifID})
	}
}

func markAllNotificationsReadHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/notifications/read-all")
		defer span.End()

		count, err := st.MarkAllNotificationsRead(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{"marked": count})
	}
}
