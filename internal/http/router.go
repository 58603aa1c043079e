package http

import (
	"net/http"

	"repair-backend/internal/handlers"
	"repair-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	materialHandler *handlers.MaterialHandler,
	orderHandler *handlers.RepairOrderHandler,
	quoteHandler *handlers.QuoteHandler,
	cashTxnHandler *handlers.CashTransactionHandler,
	auditHandler *handlers.AuditLogHandler,
	reportHandler *handlers.ReportHandler,
	settingHandler *handlers.SystemSettingHandler,
	totpHandler *handlers.TOTPHandler,
	razorpayHandler *handlers.RazorpayHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Health and metrics stay unauthenticated for probes and scrapers
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/login/2fa", authHandler.Verify2FA).Methods("POST")

	admin := authMiddleware.RequireRole("admin")
	staff := authMiddleware.RequireRole("admin", "technician", "cashier")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")

	// 2FA self-service
	api.HandleFunc("/2fa/setup", totpHandler.Setup).Methods("POST")
	api.HandleFunc("/2fa/enable", totpHandler.Enable).Methods("POST")
	api.HandleFunc("/2fa/disable", totpHandler.Disable).Methods("POST")
	api.HandleFunc("/2fa/status", totpHandler.Status).Methods("GET")

	// Users (admin only)
	api.Handle("/users", admin(http.HandlerFunc(userHandler.List))).Methods("GET")
	api.Handle("/users", admin(http.HandlerFunc(userHandler.Create))).Methods("POST")
	api.Handle("/users/{id}", admin(http.HandlerFunc(userHandler.Get))).Methods("GET")
	api.Handle("/users/{id}", admin(http.HandlerFunc(userHandler.Update))).Methods("PUT")
	api.Handle("/users/{id}", admin(http.HandlerFunc(userHandler.Delete))).Methods("DELETE")
	api.Handle("/users/{id}/active", admin(http.HandlerFunc(userHandler.SetActive))).Methods("PATCH")

	// Customers
	api.Handle("/customers", staff(http.HandlerFunc(customerHandler.List))).Methods("GET")
	api.Handle("/customers", staff(http.HandlerFunc(customerHandler.Create))).Methods("POST")
	api.Handle("/customers/{id}", staff(http.HandlerFunc(customerHandler.Get))).Methods("GET")
	api.Handle("/customers/{id}", staff(http.HandlerFunc(customerHandler.Update))).Methods("PUT")
	api.Handle("/customers/{id}", admin(http.HandlerFunc(customerHandler.Delete))).Methods("DELETE")

	// Materials catalog
	api.Handle("/materials", staff(http.HandlerFunc(materialHandler.List))).Methods("GET")
	api.Handle("/materials", staff(http.HandlerFunc(materialHandler.Create))).Methods("POST")
	api.Handle("/materials/low-stock", staff(http.HandlerFunc(materialHandler.ListLowStock))).Methods("GET")
	api.Handle("/materials/{id}", staff(http.HandlerFunc(materialHandler.Get))).Methods("GET")
	api.Handle("/materials/{id}", staff(http.HandlerFunc(materialHandler.Update))).Methods("PUT")
	api.Handle("/materials/{id}/stock", staff(http.HandlerFunc(materialHandler.AdjustStock))).Methods("PATCH")
	api.Handle("/materials/{id}", admin(http.HandlerFunc(materialHandler.Delete))).Methods("DELETE")

	// Repair orders
	api.Handle("/repair-orders", staff(http.HandlerFunc(orderHandler.List))).Methods("GET")
	api.Handle("/repair-orders", staff(http.HandlerFunc(orderHandler.Save))).Methods("POST")
	api.Handle("/repair-orders/{id}", staff(http.HandlerFunc(orderHandler.Get))).Methods("GET")
	api.Handle("/repair-orders/{id}/materials", staff(http.HandlerFunc(orderHandler.AddMaterial))).Methods("POST")
	api.Handle("/repair-orders/{id}/materials/{index}", staff(http.HandlerFunc(orderHandler.RemoveMaterial))).Methods("DELETE")
	api.Handle("/repair-orders/{id}/outsourcing", staff(http.HandlerFunc(orderHandler.AddOutsourcing))).Methods("POST")
	api.Handle("/repair-orders/{id}/outsourcing/{index}", staff(http.HandlerFunc(orderHandler.RemoveOutsourcing))).Methods("DELETE")
	api.Handle("/repair-orders/{id}/shortages", staff(http.HandlerFunc(orderHandler.Shortages))).Methods("GET")
	api.Handle("/repair-orders/{id}/summary", staff(http.HandlerFunc(orderHandler.Summary))).Methods("GET")
	api.Handle("/repair-orders/{id}/cancel", staff(http.HandlerFunc(orderHandler.Cancel))).Methods("POST")
	api.Handle("/repair-orders/{id}/quote", staff(http.HandlerFunc(quoteHandler.Download))).Methods("GET")
	api.Handle("/repair-orders/{id}/payments", staff(http.HandlerFunc(cashTxnHandler.ListByOrder))).Methods("GET")
	api.Handle("/repair-orders/{id}", admin(http.HandlerFunc(orderHandler.Delete))).Methods("DELETE")

	// Cash ledger
	api.Handle("/cash-transactions", staff(http.HandlerFunc(cashTxnHandler.List))).Methods("GET")
	api.Handle("/cash-transactions", admin(http.HandlerFunc(cashTxnHandler.Create))).Methods("POST")

	// Audit log (admin only)
	api.Handle("/audit-logs", admin(http.HandlerFunc(auditHandler.List))).Methods("GET")
	api.Handle("/audit-logs/recent", admin(http.HandlerFunc(auditHandler.RecentActivity))).Methods("GET")
	api.Handle("/audit-logs/statistics", admin(http.HandlerFunc(auditHandler.Statistics))).Methods("GET")
	api.Handle("/audit-logs/export", admin(http.HandlerFunc(auditHandler.Export))).Methods("GET")
	api.Handle("/audit-logs/purge", admin(http.HandlerFunc(auditHandler.ClearOld))).Methods("POST")
	api.Handle("/audit-logs/user/{user_id}", admin(http.HandlerFunc(auditHandler.UserActivity))).Methods("GET")
	api.Handle("/audit-logs/{entity}/{entity_id}", admin(http.HandlerFunc(auditHandler.ListByEntity))).Methods("GET")

	// Reports (admin only)
	api.Handle("/reports/revenue", admin(http.HandlerFunc(reportHandler.Revenue))).Methods("GET")
	api.Handle("/reports/revenue/pdf", admin(http.HandlerFunc(reportHandler.RevenuePDF))).Methods("GET")
	api.Handle("/reports/revenue/csv", admin(http.HandlerFunc(reportHandler.RevenueCSV))).Methods("GET")
	api.Handle("/reports/daybook/csv", admin(http.HandlerFunc(reportHandler.DayBookCSV))).Methods("GET")

	// System settings (admin only)
	api.Handle("/settings", admin(http.HandlerFunc(settingHandler.List))).Methods("GET")
	api.Handle("/settings/{key}", admin(http.HandlerFunc(settingHandler.Get))).Methods("GET")
	api.Handle("/settings/{key}", admin(http.HandlerFunc(settingHandler.Set))).Methods("PUT")

	// Online payments
	api.Handle("/payments/status", staff(http.HandlerFunc(razorpayHandler.Status))).Methods("GET")
	api.Handle("/payments/orders", staff(http.HandlerFunc(razorpayHandler.CreateOrder))).Methods("POST")
	api.Handle("/payments/verify", staff(http.HandlerFunc(razorpayHandler.VerifyPayment))).Methods("POST")

	return r
}
