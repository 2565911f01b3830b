package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultCacheTTL bounds how long a cached record set may be served.
	DefaultCacheTTL = 5 * time.Minute

	// AdviceTransactionLimit is the number of most recent transactions sent to the advisor.
	AdviceTransactionLimit = 50

	// DefaultTrendMonths is the trend window used by reports.
	DefaultTrendMonths = 6
)
