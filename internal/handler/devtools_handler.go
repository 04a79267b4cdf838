package handler

import (
	"net/http"

	"github.com/missionmarket/mission-market-go/internal/infra/observability"
	"github.com/missionmarket/mission-market-go/internal/store"

	"go.uber.org/zap"
)

// ============================================================
// Stats & Dev Tools Handlers
// ============================================================

func statsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/stats")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetMarketSnapshot())
	}
}

func devSeedHandler(st *store.Store, feed FeedCache, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dev/seed")
		defer span.End()

		added, err := st.Seed(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		feed.Flush()

		writeJSON(w, http.StatusOK, map[string]int{"added": added})
	}
}
