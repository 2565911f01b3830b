package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/metrics"
)

// TransactionUseCase records income and expenses and keeps account balances
// in step with them.
type TransactionUseCase struct {
	store   Store
	cache   *RecordCache
	metrics *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(store Store, cache *RecordCache, m *metrics.Metrics) *TransactionUseCase {
	return &TransactionUseCase{
		store:   store,
		cache:   cache,
		metrics: m,
	}
}

// CreateTransactionInput represents input for recording a transaction.
type CreateTransactionInput struct {
	AccountID   string
	Date        time.Time
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Category    string
	Description string
}

// TransactionView is a transaction together with the display name of its
// account, or the placeholder name when the account no longer exists.
type TransactionView struct {
	Transaction *domain.Transaction
	AccountName string
}

// CreateTransaction stores the transaction and applies it to the account
// balance in the same database transaction. The account row is locked for
// the read-modify-write.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, userID string, input CreateTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultCategory(input.Type)
	}

	t := &domain.Transaction{
		ID:          uc.store.IDGen.Generate(),
		UserID:      userID,
		AccountID:   input.AccountID,
		Date:        input.Date,
		Amount:      input.Amount,
		Type:        input.Type,
		Category:    category,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	err := uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		account, err := uc.store.Accounts.GetByIDForUpdate(ctx, tx, userID, t.AccountID)
		if err != nil {
			return err
		}

		if err := uc.store.Transactions.Create(ctx, tx, t); err != nil {
			return err
		}

		if err := uc.applyToAccount(ctx, tx, account, t, now); err != nil {
			return err
		}

		return uc.store.emit(ctx, tx, userID, domain.KindTransactions, domain.EventTypeTransactionCreated, t.ID, now)
	})
	if err != nil {
		uc.countError("create")
		return nil, err
	}

	uc.cache.invalidate(ctx, userID, domain.KindTransactions, domain.KindAccounts)
	if uc.metrics != nil {
		uc.metrics.TransactionsCreated.WithLabelValues(string(t.Type)).Inc()
		uc.metrics.TransactionAmount.Observe(t.Amount.InexactFloat64())
	}

	return t, nil
}

// DeleteTransaction removes the transaction and reverses its effect on the
// account balance. Transactions whose account was deleted are removed
// without touching any balance.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, userID, id string) error {
	err := uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		now := time.Now().UTC()

		deleted, err := uc.store.Transactions.Delete(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		account, err := uc.store.Accounts.GetByIDForUpdate(ctx, tx, userID, deleted.AccountID)
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
		case err != nil:
			return err
		default:
			if err := uc.applyToAccount(ctx, tx, account, deleted.Inverse(), now); err != nil {
				return err
			}
		}

		return uc.store.emit(ctx, tx, userID, domain.KindTransactions, domain.EventTypeTransactionDeleted, id, now)
	})
	if err != nil {
		uc.countError("delete")
		return err
	}

	uc.cache.invalidate(ctx, userID, domain.KindTransactions, domain.KindAccounts)
	if uc.metrics != nil {
		uc.metrics.TransactionsDeleted.Inc()
	}

	return nil
}

func (uc *TransactionUseCase) applyToAccount(ctx context.Context, tx Tx, account *domain.Account, t *domain.Transaction, now time.Time) error {
	updated := domain.ApplyTransaction([]*domain.Account{account}, t)[0]
	if err := uc.store.Accounts.UpdateBalance(ctx, tx, account.UserID, account.ID, updated.Balance, now); err != nil {
		return err
	}
	return uc.store.emit(ctx, tx, account.UserID, domain.KindAccounts, domain.EventTypeBalanceChanged, account.ID, now)
}

// GetTransaction retrieves a transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	return uc.store.Transactions.GetByID(ctx, userID, id)
}

// ListTransactions returns the user's transactions, newest first, optionally
// restricted to one type.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	all, err := uc.allTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	if filter.Type == nil {
		return all, nil
	}

	filtered := make([]*domain.Transaction, 0, len(all))
	for _, t := range all {
		if t.Type == *filter.Type {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// ListTransactionViews is ListTransactions with account names resolved.
func (uc *TransactionUseCase) ListTransactionViews(ctx context.Context, userID string, filter domain.TransactionFilter) ([]TransactionView, error) {
	txs, err := uc.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	accounts, err := readThrough(ctx, uc.cache, userID, domain.KindAccounts, func() ([]*domain.Account, error) {
		return uc.store.Accounts.List(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	views := make([]TransactionView, len(txs))
	for i, t := range txs {
		views[i] = TransactionView{Transaction: t, AccountName: domain.AccountName(accounts, t.AccountID)}
	}
	return views, nil
}

func (uc *TransactionUseCase) allTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	return readThrough(ctx, uc.cache, userID, domain.KindTransactions, func() ([]*domain.Transaction, error) {
		return uc.store.Transactions.List(ctx, userID, domain.TransactionFilter{})
	})
}

func (uc *TransactionUseCase) countError(op string) {
	if uc.metrics != nil {
		uc.metrics.LedgerErrors.WithLabelValues(op).Inc()
	}
}
