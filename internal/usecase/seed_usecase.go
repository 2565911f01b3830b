package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/metrics"
)

var errAlreadySeeded = errors.New("ledger already seeded")

// SeedUseCase writes the demo ledger for users who have never had data.
type SeedUseCase struct {
	store   Store
	cache   *RecordCache
	enabled bool
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewSeedUseCase creates a new SeedUseCase. When enabled is false
// SeedIfNeeded never writes anything.
func NewSeedUseCase(store Store, cache *RecordCache, enabled bool, m *metrics.Metrics, logger zerolog.Logger) *SeedUseCase {
	return &SeedUseCase{
		store:   store,
		cache:   cache,
		enabled: enabled,
		metrics: m,
		logger:  logger,
	}
}

// SeedIfNeeded writes the demo ledger when the user has not been seeded and
// owns no accounts. Accounts, transactions, positions and the seeded flag
// are written in one database transaction. It reports whether data was
// written.
func (uc *SeedUseCase) SeedIfNeeded(ctx context.Context, userID string) (bool, error) {
	if !uc.enabled {
		return false, nil
	}

	user, err := uc.store.Users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.Seeded {
		return false, nil
	}

	accounts, err := uc.store.Accounts.List(ctx, userID)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	seed := domain.DemoLedger()
	if len(accounts) > 0 {
		seed = domain.SeedLedger{}
	}

	err = uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		marked, err := uc.store.Users.MarkSeeded(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if !marked {
			return errAlreadySeeded
		}
		return uc.write(ctx, tx, userID, seed, now)
	})
	if errors.Is(err, errAlreadySeeded) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if len(seed.Accounts) == 0 {
		return false, nil
	}

	uc.cache.invalidate(ctx, userID, domain.KindAccounts, domain.KindTransactions, domain.KindStocks)
	if uc.metrics != nil {
		uc.metrics.DemoLedgersSeeded.Inc()
	}
	uc.logger.Info().Str("user_id", userID).Msg("demo ledger seeded")

	return true, nil
}

func (uc *SeedUseCase) write(ctx context.Context, tx Tx, userID string, seed domain.SeedLedger, now time.Time) error {
	if len(seed.Accounts) == 0 {
		return nil
	}

	// Seed balances already include the seed transactions, so the opening
	// balance is what remains once they are taken out.
	ids := make(map[string]string, len(seed.Accounts))
	for _, a := range seed.Accounts {
		seedID := a.ID
		ids[seedID] = uc.store.IDGen.Generate()

		opening := a.Balance
		for _, t := range seed.Transactions {
			if t.AccountID == seedID {
				opening = opening.Sub(t.SignedAmount())
			}
		}

		a.ID = ids[seedID]
		a.UserID = userID
		a.OpeningBalance = opening
		a.CreatedAt = now
		a.UpdatedAt = now
		if err := uc.store.Accounts.Create(ctx, tx, a); err != nil {
			return err
		}
	}

	for _, t := range seed.Transactions {
		t.ID = uc.store.IDGen.Generate()
		t.UserID = userID
		t.AccountID = ids[t.AccountID]
		t.CreatedAt = now
		if err := uc.store.Transactions.Create(ctx, tx, t); err != nil {
			return err
		}
	}

	for _, s := range seed.Stocks {
		s.ID = uc.store.IDGen.Generate()
		s.UserID = userID
		s.CreatedAt = now
		s.UpdatedAt = now
		if err := uc.store.Stocks.Create(ctx, tx, s); err != nil {
			return err
		}
	}

	for _, kind := range []domain.EntityKind{domain.KindAccounts, domain.KindTransactions, domain.KindStocks} {
		if err := uc.store.emit(ctx, tx, userID, kind, domain.EventTypeLedgerSeeded, userID, now); err != nil {
			return err
		}
	}

	return nil
}
