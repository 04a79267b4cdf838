// Package handler wires the marketplace API: chi router, middleware,
// JSON endpoints over the domain store and services.
package handler

import (
	"net/http"
	"time"

	"github.com/missionmarket/mission-market-go/internal/domain"
	"github.com/missionmarket/mission-market-go/internal/infra/observability"
	"github.com/missionmarket/mission-market-go/internal/port"
	"github.com/missionmarket/mission-market-go/internal/service"
	"github.com/missionmarket/mission-market-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// FeedCache caches the rendered mission feed per status filter. The
// handlers only see the port; the concrete TTL cache is injected in main.
type FeedCache = port.Cache[[]domain.Mission]

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract the web client expects.
func NewRouter(st *store.Store, sessionSvc *service.SessionService, paymentSvc *service.PaymentService, metrics *observability.Metrics, feed FeedCache, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(st, paymentSvc))
	r.Get("/readyz", readyzHandler(st))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. 🔐 Autenticação
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(sessionSvc, logger))
			r.Post("/login", authLoginHandler(sessionSvc, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(sessionSvc, logger))
				r.Post("/logout", authLogoutHandler(sessionSvc, logger))
			})
		})

		// =============================================
		// 2. 👤 Sessão ativa
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(sessionSvc, logger))
			r.Get("/me", meHandler(st, logger))
			r.Get("/balance", balanceHandler(st, logger))
			r.Get("/history", historyHandler(st, logger))
		})

		// =============================================
		// 3. 📋 Missões
		// =============================================
		r.Get("/missions", listMissionsHandler(st, metrics, feed, logger))
		r.Get("/missions/{missionId}", getMissionHandler(st, logger))
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(sessionSvc, logger))
			r.Post("/missions", createMissionHandler(st, feed, logger))
			r.Post("/missions/{missionId}/accept", acceptMissionHandler(st, feed, logger))
			r.Post("/missions/{missionId}/complete", completeMissionHandler(st, feed, logger))
		})

		// =============================================
		// 4. 🔔 Notificações
		// =============================================
		r.Get("/notifications", listNotificationsHandler(st, logger))
		r.Post("/notifications/{notifId}/read", markNotificationReadHandler(st, logger))
		r.Post("/notifications/read-all", markAllNotificationsReadHandler(st, logger))

		// =============================================
		// 5. 👥 Amigos & Mensagens
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(sessionSvc, logger))
			r.Get("/friends", listFriendsHandler(st, logger))
			r.Post("/friends", addFriendHandler(st, logger))
			r.Delete("/friends/{friendId}", removeFriendHandler(st, logger))
			r.Get("/conversations", listConversationsHandler(st, logger))
			r.Get("/messages/{userId}", getConversationHandler(st, logger))
			r.Post("/messages/{userId}", sendMessageHandler(st, logger))
			r.Post("/messages/{userId}/read", markMessagesReadHandler(st, logger))
		})

		// =============================================
		// 6. 💳 Pagamentos (Stripe)
		// =============================================
		r.Post("/checkout", checkoutHandler(paymentSvc, logger))
		r.Post("/identity", identityHandler(paymentSvc, logger))
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(sessionSvc, logger))
			r.Post("/checkout/accepted", checkoutAcceptedHandler(paymentSvc, logger))
		})

		// =============================================
		// 7. 📊 Estatísticas do marketplace
		// =============================================
		r.Get("/stats", statsHandler(metrics, logger))

		// =============================================
		// 🛠 Dev Tools (testing helpers)
		// =============================================
		r.Post("/dev/seed", devSeedHandler(st, feed, logger))
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(st *store.Store, paymentSvc *service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		storeStatus := "healthy"
		if !st.Ready() {
			storeStatus = "degraded"
		}
		services := []domain.ServiceHealth{
			{Name: "market-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
			{Name: "store", Status: storeStatus, LatencyMs: 0, LastChecked: now},
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		status := http.StatusOK
		if overall != "healthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !st.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
