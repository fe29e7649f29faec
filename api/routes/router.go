package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jviciana84/dealerops-backend/api/controllers"
	"github.com/jviciana84/dealerops-backend/api/middleware"
	"github.com/jviciana84/dealerops-backend/internal/custody"
	"github.com/jviciana84/dealerops-backend/internal/extornos"
	"github.com/jviciana84/dealerops-backend/internal/incentives"
	"github.com/jviciana84/dealerops-backend/pkg/config"
	"github.com/jviciana84/dealerops-backend/pkg/logger"
	"github.com/jviciana84/dealerops-backend/pkg/metrics"
	pkgredis "github.com/jviciana84/dealerops-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP, redisP controllers.Pinger,
	idemStore pkgredis.IdempotencyStore,
	httpMetrics *metrics.HTTPMetrics,
	incentiveService incentives.Service,
	custodyService custody.Service,
	extornoService extornos.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Confirmation links land here from the payments mailbox, so the
	// endpoint cannot require a bearer token. The single-use token in
	// the query string is the credential.
	r.Get("/api/v1/extornos/confirm", controllers.ExtornoConfirm(extornoService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/incentives", func(r chi.Router) {
			r.Post("/", controllers.IncentiveCreate(incentiveService, logg))
			r.Get("/", controllers.IncentiveList(incentiveService, logg))
			r.Get("/facets", controllers.IncentiveFacets(incentiveService, logg))
			r.Patch("/{id}", controllers.IncentiveUpdate(incentiveService, logg))
			r.Get("/config", controllers.IncentiveConfigGet(incentiveService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireBackoffice(logg))
				r.Put("/config", controllers.IncentiveConfigPut(incentiveService, logg))
				r.Post("/costs/import", controllers.IncentiveImportCosts(incentiveService, logg))
			})
		})

		r.Route("/custody", func(r chi.Router) {
			r.Post("/movements", controllers.CustodyMovementCreate(custodyService, logg))
			r.Post("/movements/{id}/confirm", controllers.CustodyMovementConfirm(custodyService, logg))
			r.Post("/movements/{id}/reject", controllers.CustodyMovementReject(custodyService, logg))
			r.Get("/movements/pending", controllers.CustodyPending(custodyService, logg))
			r.Get("/vehicles/{plate}/movements", controllers.CustodyVehicleHistory(custodyService, logg))
		})

		r.Route("/extornos", func(r chi.Router) {
			r.Post("/", controllers.ExtornoCreate(extornoService, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireBackoffice(logg))
				r.Post("/{id}/tramitar", controllers.ExtornoTramitar(extornoService, logg))
				r.Post("/{id}/reject", controllers.ExtornoReject(extornoService, logg))
			})
		})
	})

	return r
}
