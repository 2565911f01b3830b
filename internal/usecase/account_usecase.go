package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/metrics"
)

// DefaultCurrency is assigned to accounts and positions created without one.
const DefaultCurrency = "TWD"

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	store   Store
	cache   *RecordCache
	metrics *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(store Store, cache *RecordCache, m *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		store:   store,
		cache:   cache,
		metrics: m,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name     string
	Type     domain.AccountType
	Currency string
	Balance  decimal.Decimal
}

// ReplaceAccountInput carries the full new state of an account.
type ReplaceAccountInput struct {
	Name     string
	Type     domain.AccountType
	Currency string
	Balance  decimal.Decimal
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

// CreateAccount creates a new account. The initial balance becomes the
// opening balance used by reconciliation.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, userID string, input CreateAccountInput) (*domain.Account, error) {
	now := time.Now().UTC()

	account := &domain.Account{
		ID:             uc.store.IDGen.Generate(),
		UserID:         userID,
		Name:           strings.TrimSpace(input.Name),
		Type:           input.Type,
		Currency:       normalizeCurrency(input.Currency),
		Balance:        input.Balance,
		OpeningBalance: input.Balance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	err := uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := uc.store.Accounts.Create(ctx, tx, account); err != nil {
			return err
		}
		return uc.store.emit(ctx, tx, userID, domain.KindAccounts, domain.EventTypeAccountCreated, account.ID, now)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.invalidate(ctx, userID, domain.KindAccounts)
	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, userID, id string) (*domain.Account, error) {
	return uc.store.Accounts.GetByID(ctx, userID, id)
}

// ListAccounts returns every account of the user.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	return readThrough(ctx, uc.cache, userID, domain.KindAccounts, func() ([]*domain.Account, error) {
		return uc.store.Accounts.List(ctx, userID)
	})
}

// ReplaceAccount overwrites the account's editable fields. Balance edits made
// here are not backed by transactions and show up as reconciliation drift.
func (uc *AccountUseCase) ReplaceAccount(ctx context.Context, userID, id string, input ReplaceAccountInput) (*domain.Account, error) {
	var updated *domain.Account

	err := uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		current, err := uc.store.Accounts.GetByIDForUpdate(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		next := *current
		next.Name = strings.TrimSpace(input.Name)
		next.Type = input.Type
		next.Currency = normalizeCurrency(input.Currency)
		next.Balance = input.Balance
		next.UpdatedAt = now

		if err := next.Validate(); err != nil {
			return err
		}

		if err := uc.store.Accounts.Replace(ctx, tx, &next); err != nil {
			return err
		}

		if err := uc.store.emit(ctx, tx, userID, domain.KindAccounts, domain.EventTypeAccountReplaced, id, now); err != nil {
			return err
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.invalidate(ctx, userID, domain.KindAccounts)
	uc.countOperation("replace")

	return updated, nil
}

// DeleteAccount removes the account. Its transactions are kept and resolve to
// the placeholder account name from then on.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, userID, id string) error {
	err := uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := uc.store.Accounts.Delete(ctx, tx, userID, id); err != nil {
			return err
		}
		return uc.store.emit(ctx, tx, userID, domain.KindAccounts, domain.EventTypeAccountDeleted, id, time.Now().UTC())
	})
	if err != nil {
		return err
	}

	uc.cache.invalidate(ctx, userID, domain.KindAccounts)
	uc.countOperation("delete")

	return nil
}

func (uc *AccountUseCase) countOperation(op string) {
	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues(op).Inc()
	}
}
