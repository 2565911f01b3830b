package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/metrics"
)

// Price refresh triggers, used as metric labels.
const (
	RefreshTriggerManual    = "manual"
	RefreshTriggerScheduled = "scheduled"
)

// StockUseCase manages stock positions and their market prices.
type StockUseCase struct {
	store     Store
	cache     *RecordCache
	simulator PriceSimulator
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewStockUseCase creates a new StockUseCase.
func NewStockUseCase(store Store, cache *RecordCache, simulator PriceSimulator, m *metrics.Metrics, logger zerolog.Logger) *StockUseCase {
	return &StockUseCase{
		store:     store,
		cache:     cache,
		simulator: simulator,
		metrics:   m,
		logger:    logger,
	}
}

// CreateStockInput represents input for adding a position.
type CreateStockInput struct {
	Symbol      string
	Name        string
	Shares      decimal.Decimal
	AverageCost decimal.Decimal
	Currency    string
}

// ReplaceStockInput carries the full new state of a position.
type ReplaceStockInput struct {
	Symbol       string
	Name         string
	Shares       decimal.Decimal
	AverageCost  decimal.Decimal
	CurrentPrice decimal.Decimal
	Currency     string
}

// CreateStock adds a position. Its current price starts at the average cost.
func (uc *StockUseCase) CreateStock(ctx context.Context, userID string, input CreateStockInput) (*domain.StockPosition, error) {
	now := time.Now().UTC()

	s := &domain.StockPosition{
		ID:           uc.store.IDGen.Generate(),
		UserID:       userID,
		Symbol:       domain.NormalizeSymbol(input.Symbol),
		Name:         strings.TrimSpace(input.Name),
		Shares:       input.Shares,
		AverageCost:  input.AverageCost,
		CurrentPrice: input.AverageCost,
		Currency:     normalizeCurrency(input.Currency),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.Name == "" {
		s.Name = s.Symbol
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	err := uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := uc.store.Stocks.Create(ctx, tx, s); err != nil {
			return err
		}
		return uc.store.emit(ctx, tx, userID, domain.KindStocks, domain.EventTypeStockCreated, s.ID, now)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.invalidate(ctx, userID, domain.KindStocks)
	uc.countOperation("create")

	return s, nil
}

// GetStock retrieves a position by ID.
func (uc *StockUseCase) GetStock(ctx context.Context, userID, id string) (*domain.StockPosition, error) {
	return uc.store.Stocks.GetByID(ctx, userID, id)
}

// ListStocks returns every position of the user.
func (uc *StockUseCase) ListStocks(ctx context.Context, userID string) ([]*domain.StockPosition, error) {
	return readThrough(ctx, uc.cache, userID, domain.KindStocks, func() ([]*domain.StockPosition, error) {
		return uc.store.Stocks.List(ctx, userID)
	})
}

// ReplaceStock overwrites the position's editable fields.
func (uc *StockUseCase) ReplaceStock(ctx context.Context, userID, id string, input ReplaceStockInput) (*domain.StockPosition, error) {
	current, err := uc.store.Stocks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	next := *current
	next.Symbol = domain.NormalizeSymbol(input.Symbol)
	next.Name = strings.TrimSpace(input.Name)
	next.Shares = input.Shares
	next.AverageCost = input.AverageCost
	next.CurrentPrice = input.CurrentPrice
	next.Currency = normalizeCurrency(input.Currency)
	next.UpdatedAt = now
	if next.Name == "" {
		next.Name = next.Symbol
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}

	err = uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := uc.store.Stocks.Replace(ctx, tx, &next); err != nil {
			return err
		}
		return uc.store.emit(ctx, tx, userID, domain.KindStocks, domain.EventTypeStockReplaced, id, now)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.invalidate(ctx, userID, domain.KindStocks)
	uc.countOperation("replace")

	return &next, nil
}

// UpdateStockPrice sets the current price of one position.
func (uc *StockUseCase) UpdateStockPrice(ctx context.Context, userID, id string, price decimal.Decimal) (*domain.StockPosition, error) {
	if err := domain.ValidatePrice(price); err != nil {
		return nil, err
	}

	current, err := uc.store.Stocks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := uc.store.Stocks.UpdatePrice(ctx, tx, userID, id, price, now); err != nil {
			return err
		}
		return uc.store.emit(ctx, tx, userID, domain.KindStocks, domain.EventTypeStockPriceChanged, id, now)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.invalidate(ctx, userID, domain.KindStocks)
	uc.countOperation("price")

	updated := *current
	updated.CurrentPrice = price
	updated.UpdatedAt = now
	return &updated, nil
}

// DeleteStock removes a position.
func (uc *StockUseCase) DeleteStock(ctx context.Context, userID, id string) error {
	err := uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := uc.store.Stocks.Delete(ctx, tx, userID, id); err != nil {
			return err
		}
		return uc.store.emit(ctx, tx, userID, domain.KindStocks, domain.EventTypeStockDeleted, id, time.Now().UTC())
	})
	if err != nil {
		return err
	}

	uc.cache.invalidate(ctx, userID, domain.KindStocks)
	uc.countOperation("delete")

	return nil
}

// RefreshPrices asks the price simulator for new prices and writes every
// changed position in one database transaction. It returns the full,
// updated position list.
func (uc *StockUseCase) RefreshPrices(ctx context.Context, userID, trigger string) ([]*domain.StockPosition, error) {
	start := time.Now()

	stocks, err := uc.store.Stocks.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(stocks) == 0 {
		return stocks, nil
	}

	updates := uc.simulator.SimulatePrices(ctx, stocks)
	refreshed := domain.ReconcileStockPrices(stocks, updates)

	now := time.Now().UTC()
	err = uc.store.inTx(ctx, func(ctx context.Context, tx Tx) error {
		for i, s := range refreshed {
			if s == stocks[i] {
				continue
			}
			if err := domain.ValidatePrice(s.CurrentPrice); err != nil {
				return err
			}
			if err := uc.store.Stocks.UpdatePrice(ctx, tx, userID, s.ID, s.CurrentPrice, now); err != nil {
				return err
			}
			if err := uc.store.emit(ctx, tx, userID, domain.KindStocks, domain.EventTypeStockPriceChanged, s.ID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.invalidate(ctx, userID, domain.KindStocks)
	if uc.metrics != nil {
		uc.metrics.PriceRefreshes.WithLabelValues(trigger).Inc()
		uc.metrics.PriceRefreshTime.Observe(time.Since(start).Seconds())
	}

	for i, s := range refreshed {
		if s != stocks[i] {
			s.UpdatedAt = now
		}
	}

	return refreshed, nil
}

// RefreshAllPrices refreshes the positions of every user holding stocks.
// A failure for one user is logged and does not stop the others.
func (uc *StockUseCase) RefreshAllPrices(ctx context.Context) error {
	owners, err := uc.store.Stocks.ListOwners(ctx)
	if err != nil {
		return err
	}

	for _, userID := range owners {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := uc.RefreshPrices(ctx, userID, RefreshTriggerScheduled); err != nil {
			uc.logger.Error().Err(err).Str("user_id", userID).Msg("price refresh failed")
			continue
		}
	}

	uc.logger.Info().Int("users", len(owners)).Msg("scheduled price refresh complete")
	return nil
}

func (uc *StockUseCase) countOperation(op string) {
	if uc.metrics != nil {
		uc.metrics.StockOperations.WithLabelValues(op).Inc()
	}
}
