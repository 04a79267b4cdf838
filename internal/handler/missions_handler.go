package handler

import (
	"encoding/json"
	"net/http"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/infra/observability"
	"github.com/missionmarket/mission-market-go/internal/store"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Mission Handlers
// ============================================================

func listMissionsHandler(st *store.Store, metrics *observability.Metrics, feed FeedCache, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/missions")
		defer span.End()

		status := r.URL.Query().Get("status")
		span.SetAttributes(attribute.String("filter.status", status))

		cacheKey := "feed:" + status
		if cached, ok := feed.Get(cacheKey); ok {
			metrics.IncrCacheHit("feed")
			writeJSON(w, http.StatusOK, cached)
			return
		}
		metrics.IncrCacheMiss("feed")

		missions := st.Missions(status)
		feed.Set(cacheKey, missions)
		writeJSON(w, http.StatusOK, missions)
	}
}

func getMissionHandler(st *store.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/missions/{missionId}")
		defer span.End()

		missionID := chi.URLParam(r, "missionId")
		span.SetAttributes(attribute.String("mission.id", missionID))

		mission, err := st.Mission(missionID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, mission)
	}
}

func createMissionHandler(st *store.Store, feed FeedCache, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/missions")
		defer span.End()

		var req domain.CreateMissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		mission, err := st.AddMission(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Flush()

		writeJSON(w, http.StatusCreated, mission)
	}
}

func acceptMissionHandler(st *store.Store, feed FeedCache, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/missions/{missionId}/accept")
		defer span.End()

		missionID := chi.URLParam(r, "missionId")
		span.SetAttributes(attribute.String("mission.id", missionID))

		mission, err := st.AcceptMission(ctx, missionID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Flush()

		writeJSON(w, http.StatusOK, mission)
	}
}

func completeMissionHandler(st *store.Store, feed FeedCache, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/missions/{missionId}/complete")
		defer span.End()

		missionID := chi.URLParam(r, "missionId")
		span.SetAttributes(attribute.String("mission.id", missionID))

		mission, err := st.CompleteMission(ctx, missionID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Flush()

		writeJSON(w, http.StatusOK, mission)
	}
}
