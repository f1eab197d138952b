package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "rental-cloud/internal/api/http"
	"rental-cloud/internal/audit"
	"rental-cloud/internal/auth"
	insightsapp "rental-cloud/internal/insights/application"
	insightsrepo "rental-cloud/internal/insights/infrastructure/postgres"
	insightshttp "rental-cloud/internal/insights/interfaces/http"
	leaseapp "rental-cloud/internal/leasing/application"
	leasing "rental-cloud/internal/leasing/domain"
	leaserepo "rental-cloud/internal/leasing/infrastructure/postgres"
	leasehttp "rental-cloud/internal/leasing/interfaces/http"
	maintenancerepo "rental-cloud/internal/maintenance/infrastructure/postgres"
	"rental-cloud/internal/notify"
	"rental-cloud/internal/observability/metrics"
	reminderapp "rental-cloud/internal/reminders/application"
	reminderrepo "rental-cloud/internal/reminders/infrastructure/postgres"
	reminderhttp "rental-cloud/internal/reminders/interfaces/http"
	settleapp "rental-cloud/internal/settlement/application"
	settlerepo "rental-cloud/internal/settlement/infrastructure/postgres"
	settlehttp "rental-cloud/internal/settlement/interfaces/http"

	ledgerrepo "rental-cloud/internal/ledger/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	calendar, err := leasing.NewLocationCalendar(cfg.Timezone)
	if err != nil {
		logger.Fatalf("calendar error: %v", err)
	}

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewMultiNotifier(notify.NewWebhookNotifier(cfg.NotifyWebhookURL), notifier)
	}

	leaseRepo := leaserepo.NewLeaseRepository(db)
	paymentRepo := leaserepo.NewPaymentRepository(db)
	leaseService, err := leaseapp.NewLeaseService(leaseRepo, paymentRepo, calendar,
		leaseapp.WithNotifier(notifier),
		leaseapp.WithLogger(logger))
	if err != nil {
		logger.Fatalf("lease service error: %v", err)
	}
	leaseHandler, err := leasehttp.NewHandler(leaseService, auditRepo)
	if err != nil {
		logger.Fatalf("lease handler error: %v", err)
	}

	settlementRepo := settlerepo.NewSettlementRepository(db)
	settlementService, err := settleapp.NewSettlementService(paymentRepo, leaseRepo, settlementRepo,
		settleapp.WithNotifier(notifier),
		settleapp.WithLogger(logger))
	if err != nil {
		logger.Fatalf("settlement service error: %v", err)
	}
	settlementHandler, err := settlehttp.NewHandler(settlementService, auditRepo)
	if err != nil {
		logger.Fatalf("settlement handler error: %v", err)
	}

	behaviorRepo := insightsrepo.NewBehaviorRepository(db)
	maintenanceRepo := maintenancerepo.NewRequestRepository(db)
	behaviorService, err := insightsapp.NewBehaviorService(leaseRepo, behaviorRepo, maintenanceRepo, logger)
	if err != nil {
		logger.Fatalf("behavior service error: %v", err)
	}
	behaviorHandler, err := insightshttp.NewHandler(behaviorService, leaseRepo)
	if err != nil {
		logger.Fatalf("behavior handler error: %v", err)
	}

	reminderCfg, err := reminderapp.LoadConfig()
	if err != nil {
		logger.Fatalf("reminder config error: %v", err)
	}
	reminderBatch, err := reminderapp.NewBatch(reminderrepo.NewReminderRepository(db), notifier, logger)
	if err != nil {
		logger.Fatalf("reminder batch error: %v", err)
	}
	reminderRunHandler, err := reminderhttp.NewRunHandler(reminderBatch, calendar, auditRepo)
	if err != nil {
		logger.Fatalf("reminder handler error: %v", err)
	}
	loc, err := time.LoadLocation(reminderCfg.Timezone)
	if err != nil {
		logger.Fatalf("reminder timezone error: %v", err)
	}
	reminderScheduler := reminderapp.NewScheduler(reminderBatch, loc, reminderCfg.DailyAt, logger)
	go reminderScheduler.Start(context.Background())

	// Daily expiry sweep, piggybacked on the same cadence as the reminder run.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if completed, err := leaseService.CompleteExpired(context.Background()); err != nil {
				logger.Printf("lease expiry sweep error: %v", err)
			} else if completed > 0 {
				logger.Printf("lease expiry sweep completed %d leases", completed)
			}
		}
	}()

	incomeRepo := ledgerrepo.NewIncomeRepository(db)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/leases/", leaseHandler)
	mux.Handle("/api/v1/payments/", settlementHandler)
	mux.Handle("/api/v1/tenants/", behaviorHandler)
	mux.Handle("/api/v1/reminders/run", reminderRunHandler)
	mux.Handle("/api/v1/dashboard/payments", apihttp.NewDashboardHandler(db, calendar))
	mux.Handle("/api/v1/income/monthly", apihttp.NewMonthlyIncomeHandler(incomeRepo))
	mux.Handle("/api/v1/exports/income.csv", apihttp.NewIncomeExportHandler(incomeRepo, "csv"))
	mux.Handle("/api/v1/exports/income.xlsx", apihttp.NewIncomeExportHandler(incomeRepo, "xlsx"))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL      string
	HTTPAddr         string
	Timezone         string
	NotifyWebhookURL string
	JWTSecret        string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:      getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:         getenvDefault("HTTP_ADDR", ":8080"),
		Timezone:         getenvDefault("CIVIL_TIMEZONE", leasing.DefaultTimezone),
		NotifyWebhookURL: getenvDefault("NOTIFY_WEBHOOK_URL", ""),
		JWTSecret:        getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
