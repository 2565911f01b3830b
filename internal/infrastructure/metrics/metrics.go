package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsCreated *prometheus.CounterVec
	TransactionsDeleted prometheus.Counter
	TransactionAmount   prometheus.Histogram
	LedgerErrors        *prometheus.CounterVec

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Portfolio metrics
	StockOperations   *prometheus.CounterVec
	PriceRefreshes    *prometheus.CounterVec
	PriceRefreshTime  prometheus.Histogram
	AdviceRequests    *prometheus.CounterVec
	AdviceDuration    prometheus.Histogram
	DemoLedgersSeeded prometheus.Counter

	// Cache metrics
	CacheRequests *prometheus.CounterVec

	// Change feed metrics
	EventsPublished  prometheus.Counter
	StreamClients    prometheus.Gauge
	OutboxPublishErr prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all Prometheus metrics and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		TransactionsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_transactions_created_total",
				Help: "Total number of income/expense transactions created",
			},
			[]string{"type"},
		),
		TransactionsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "smartwealth_transactions_deleted_total",
			Help: "Total number of transactions deleted",
		}),
		TransactionAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartwealth_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),
		LedgerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_ledger_errors_total",
				Help: "Total ledger write errors by operation",
			},
			[]string{"operation"},
		),

		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "smartwealth_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		StockOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_stock_operations_total",
				Help: "Total stock position operations by type",
			},
			[]string{"operation"},
		),
		PriceRefreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_price_refreshes_total",
				Help: "Total price refresh runs by trigger",
			},
			[]string{"trigger"},
		),
		PriceRefreshTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartwealth_price_refresh_duration_seconds",
			Help:    "Duration of price refresh runs",
			Buckets: prometheus.DefBuckets,
		}),
		AdviceRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_advice_requests_total",
				Help: "Total advice requests by outcome",
			},
			[]string{"outcome"},
		),
		AdviceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartwealth_advice_duration_seconds",
			Help:    "Duration of advice generation",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30},
		}),
		DemoLedgersSeeded: f.NewCounter(prometheus.CounterOpts{
			Name: "smartwealth_demo_ledgers_seeded_total",
			Help: "Total number of demo ledgers written",
		}),

		CacheRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_cache_requests_total",
				Help: "Read-through cache lookups by result",
			},
			[]string{"kind", "result"},
		),

		EventsPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "smartwealth_change_events_published_total",
			Help: "Total change events published to the feed",
		}),
		StreamClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "smartwealth_stream_clients",
			Help: "Current number of connected change stream clients",
		}),
		OutboxPublishErr: f.NewCounter(prometheus.CounterOpts{
			Name: "smartwealth_outbox_publish_errors_total",
			Help: "Total outbox events that failed to publish",
		}),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartwealth_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		AuthAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartwealth_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
