package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"repair-backend/internal/auth"
	"repair-backend/internal/backup"
	"repair-backend/internal/cache"
	"repair-backend/internal/config"
	"repair-backend/internal/database"
	"repair-backend/internal/db"
	"repair-backend/internal/handlers"
	"repair-backend/internal/health"
	h "repair-backend/internal/http"
	"repair-backend/internal/middleware"
	"repair-backend/internal/monitoring"
	"repair-backend/internal/repositories"
	"repair-backend/internal/services"
	"repair-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional, login falls back to bcrypt-only when absent
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (continuing without cache)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)

	go monitoring.NewServer(pool, cfg.Server.MonitoringPort).Start()

	jwtManager := auth.NewJWTManager(cfg)

	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	materialRepo := repositories.NewMaterialRepository(pool)
	orderRepo := repositories.NewRepairOrderRepository(pool)
	cashTxnRepo := repositories.NewCashTransactionRepository(pool)
	auditRepo := repositories.NewAuditLogRepository(pool)
	settingRepo := repositories.NewSystemSettingRepository(pool)
	onlineTxnRepo := repositories.NewOnlineTransactionRepository(pool)

	auditService := services.NewAuditService(auditRepo, settingRepo)
	userService := services.NewUserService(userRepo, jwtManager, auditService)
	customerService := services.NewCustomerService(customerRepo, auditService)
	materialService := services.NewMaterialService(materialRepo, settingRepo, auditService)
	orderService := services.NewRepairOrderService(orderRepo, materialRepo, customerRepo, cashTxnRepo, auditService)
	quoteService := services.NewQuoteService(orderRepo, materialRepo, settingRepo, auditService)
	reportService := services.NewReportService(orderRepo, cashTxnRepo, materialRepo, settingRepo, auditService)
	settingService := services.NewSystemSettingService(settingRepo, auditService)
	totpService := services.NewTOTPService(userRepo, jwtManager, auditService)
	razorpayService := services.NewRazorpayService(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, onlineTxnRepo, cashTxnRepo, orderRepo, settingRepo, auditService)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	authHandler := handlers.NewAuthHandler(userService, totpService)
	userHandler := handlers.NewUserHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	materialHandler := handlers.NewMaterialHandler(materialService)
	orderHandler := handlers.NewRepairOrderHandler(orderService)
	quoteHandler := handlers.NewQuoteHandler(quoteService)
	cashTxnHandler := handlers.NewCashTransactionHandler(cashTxnRepo, auditService)
	auditHandler := handlers.NewAuditLogHandler(auditService)
	reportHandler := handlers.NewReportHandler(reportService)
	settingHandler := handlers.NewSystemSettingHandler(settingService)
	totpHandler := handlers.NewTOTPHandler(totpService, userService)
	razorpayHandler := handlers.NewRazorpayHandler(razorpayService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	if cfg.Backup.Enabled {
		scheduler := backup.NewScheduler(pool, cfg.Backup)
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Purge expired audit logs daily per the retention setting
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			purgeCtx, purgeCancel := context.WithTimeout(context.Background(), time.Minute)
			if n, err := auditService.ClearOldLogs(purgeCtx); err != nil {
				log.Println("[Audit] Retention purge failed:", err)
			} else if n > 0 {
				log.Printf("[Audit] Retention purge removed %d logs", n)
			}
			purgeCancel()
		}
	}()

	router := h.NewRouter(
		authHandler,
		userHandler,
		customerHandler,
		materialHandler,
		orderHandler,
		quoteHandler,
		cashTxnHandler,
		auditHandler,
		reportHandler,
		settingHandler,
		totpHandler,
		razorpayHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
