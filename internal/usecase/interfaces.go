package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// AccountRepository defines data access for accounts. Every call is scoped to one user.
type AccountRepository interface {
	Create(ctx context.Context, tx Tx, account *domain.Account) error
	GetByID(ctx context.Context, userID, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Tx, userID, id string) (*domain.Account, error)
	List(ctx context.Context, userID string) ([]*domain.Account, error)
	Replace(ctx context.Context, tx Tx, account *domain.Account) error
	UpdateBalance(ctx context.Context, tx Tx, userID, id string, balance decimal.Decimal, updatedAt time.Time) error
	Delete(ctx context.Context, tx Tx, userID, id string) error
}

// TransactionRepository defines data access for income/expense records.
type TransactionRepository interface {
	Create(ctx context.Context, tx Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, userID, id string) (*domain.Transaction, error)
	// List returns the user's transactions ordered by date, newest first.
	List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	// Delete removes the record and returns it as it was stored.
	Delete(ctx context.Context, tx Tx, userID, id string) (*domain.Transaction, error)
}

// StockRepository defines data access for stock positions.
type StockRepository interface {
	Create(ctx context.Context, tx Tx, s *domain.StockPosition) error
	GetByID(ctx context.Context, userID, id string) (*domain.StockPosition, error)
	List(ctx context.Context, userID string) ([]*domain.StockPosition, error)
	Replace(ctx context.Context, tx Tx, s *domain.StockPosition) error
	UpdatePrice(ctx context.Context, tx Tx, userID, id string, price decimal.Decimal, updatedAt time.Time) error
	Delete(ctx context.Context, tx Tx, userID, id string) error
	// ListOwners returns the ids of users holding at least one position.
	ListOwners(ctx context.Context) ([]string, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// MarkSeeded flags the user as seeded. It reports false when the flag was
	// already set.
	MarkSeeded(ctx context.Context, tx Tx, id string, at time.Time) (bool, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Tx, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Tx represents a database transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Incr atomically increments the integer counter at key, starting from zero.
	Incr(ctx context.Context, key string) (int64, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops the key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// AdviceOutcome tells how an advice text came about.
type AdviceOutcome string

const (
	AdviceGenerated     AdviceOutcome = "generated"
	AdviceNotConfigured AdviceOutcome = "not_configured"
	AdviceFailed        AdviceOutcome = "failed"
	AdviceEmpty         AdviceOutcome = "empty"
)

// Advisor produces free-form financial advice. It never fails; problems are
// reported through a fallback text and a non-generated outcome.
type Advisor interface {
	Advise(ctx context.Context, req AdviceRequest) (string, AdviceOutcome)
}

// PriceSimulator estimates current prices keyed by symbol.
type PriceSimulator interface {
	SimulatePrices(ctx context.Context, stocks []*domain.StockPosition) map[string]decimal.Decimal
}

// ChangeFeed delivers committed change events to subscribers.
type ChangeFeed interface {
	Publish(ctx context.Context, event domain.ChangeEvent) error
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Subscription is a live change feed for one user.
type Subscription interface {
	Events() <-chan domain.ChangeEvent
	Close() error
}
