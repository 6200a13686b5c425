package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vnkt045/LekhyaAI-sub003/api/controllers"
	"github.com/vnkt045/LekhyaAI-sub003/api/middleware"
	"github.com/vnkt045/LekhyaAI-sub003/internal/accounts"
	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/internal/inventory"
	"github.com/vnkt045/LekhyaAI-sub003/internal/reports"
	"github.com/vnkt045/LekhyaAI-sub003/internal/tax"
	"github.com/vnkt045/LekhyaAI-sub003/internal/vouchers"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/config"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsGatherer prometheus.Gatherer,
	accountsService accounts.Service,
	vouchersService vouchers.Service,
	inventoryService inventory.Service,
	reportsService reports.Service,
	taxService tax.Service,
	auditService audit.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	reportPolicy := middleware.NewRateLimitPolicy(
		"report_export",
		cfg.RateLimit.ReportWindow,
		cfg.RateLimit.ReportTenantLimit,
		cfg.RateLimit.ReportIPLimit,
	)

	// Interface params stay untyped-nil when redis is absent so the
	// middleware pass-through checks keep working.
	reportLimiter := middleware.RateLimit(reportPolicy, nil, logg)
	idempotency := middleware.Idempotency(nil, logg)
	ready := controllers.HealthReady(logg, dbP, nil)
	if redisClient != nil {
		reportLimiter = middleware.RateLimit(reportPolicy, redisClient, logg)
		idempotency = middleware.Idempotency(redisClient, logg)
		ready = controllers.HealthReady(logg, dbP, redisClient)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", ready)
	})

	if metricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.TenantContext(logg))
		r.Use(idempotency)

		r.Get("/ping", controllers.TenantPing())

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", controllers.AccountCreate(accountsService, logg))
			r.Get("/", controllers.AccountList(accountsService, logg))
			r.Get("/{accountId}", controllers.AccountDetail(accountsService, logg))
			r.Delete("/{accountId}", controllers.AccountDeactivate(accountsService, logg))
		})

		r.Route("/vouchers", func(r chi.Router) {
			r.Post("/", controllers.VoucherCreate(vouchersService, logg))
			r.Get("/", controllers.VoucherList(vouchersService, logg))
			r.Get("/{voucherId}", controllers.VoucherDetail(vouchersService, logg))
			r.Post("/{voucherId}/regularize", controllers.VoucherRegularize(vouchersService, logg))
		})

		r.Route("/inventory/items", func(r chi.Router) {
			r.Post("/", controllers.ItemCreate(inventoryService, logg))
			r.Get("/", controllers.ItemList(inventoryService, logg))
			r.Get("/{itemId}", controllers.ItemDetail(inventoryService, logg))
			r.Post("/{itemId}/movements", controllers.MovementRecord(inventoryService, logg))
			r.Get("/{itemId}/movements", controllers.MovementList(inventoryService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(reportLimiter)
			r.Get("/trial-balance", controllers.ReportTrialBalance(reportsService, logg))
			r.Get("/balance-sheet", controllers.ReportBalanceSheet(reportsService, logg))
			r.Get("/profit-loss", controllers.ReportProfitAndLoss(reportsService, logg))
			r.Get("/day-book", controllers.ReportDayBook(reportsService, logg))
			r.Get("/stock-summary", controllers.ReportStockSummary(reportsService, logg))
			r.Get("/stock-aging", controllers.ReportStockAging(reportsService, logg))
			r.Get("/gst", controllers.ReportGST(taxService, logg))
			r.Get("/tds", controllers.ReportTDS(taxService, logg))
			r.Get("/tcs", controllers.ReportTCS(taxService, logg))
		})

		r.Get("/audit-logs", controllers.AuditLogList(auditService, logg))
	})

	return r
}
