package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repair_http_requests_total",
		Help: "Total HTTP requests by method, path and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "repair_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	RepairOrdersSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repair_orders_saved_total",
		Help: "Repair orders saved, by status",
	}, []string{"status"})

	StockDeductions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repair_stock_deductions_total",
		Help: "Completed inventory deductions on order finalization",
	})

	AuditLogsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repair_audit_logs_total",
		Help: "Audit log entries written, by action",
	}, []string{"action"})
)
