package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/metrics"
)

// DashboardUseCase derives the read-only views of a ledger: the summary,
// the category/trend report and advisor output.
type DashboardUseCase struct {
	store       Store
	cache       *RecordCache
	advisor     Advisor
	metrics     *metrics.Metrics
	trendMonths int
	now         func() time.Time
}

// NewDashboardUseCase creates a new DashboardUseCase. A non-positive
// trendMonths selects DefaultTrendMonths.
func NewDashboardUseCase(store Store, cache *RecordCache, advisor Advisor, m *metrics.Metrics, trendMonths int) *DashboardUseCase {
	if trendMonths <= 0 {
		trendMonths = DefaultTrendMonths
	}
	return &DashboardUseCase{
		store:       store,
		cache:       cache,
		advisor:     advisor,
		metrics:     m,
		trendMonths: trendMonths,
		now:         time.Now,
	}
}

// PositionSummary is a stock position with its unrealized gain. GainPercent
// is nil when the position has no cost basis.
type PositionSummary struct {
	Stock       *domain.StockPosition
	MarketValue decimal.Decimal
	Gain        decimal.Decimal
	GainPercent *decimal.Decimal
}

// Summary is the dashboard headline.
type Summary struct {
	NetWorth             decimal.Decimal
	CashTotal            decimal.Decimal
	Portfolio            domain.PortfolioPL
	PortfolioGainPercent decimal.Decimal
	Year                 int
	Month                time.Month
	Monthly              domain.MonthlyTotals
	Positions            []PositionSummary
}

// CategoryShare is a category total with its share of the type's total.
type CategoryShare struct {
	Category string
	Total    decimal.Decimal
	Percent  decimal.Decimal
}

// Report is the category breakdown of one transaction type plus the
// income/expense trend of the most recent months.
type Report struct {
	Type       domain.TransactionType
	Total      decimal.Decimal
	Categories []CategoryShare
	Trend      []domain.TrendPoint
}

// AdviceRequest is the ledger context handed to the advisor.
type AdviceRequest struct {
	Transactions []*domain.Transaction
	Stocks       []*domain.StockPosition
	Portfolio    domain.PortfolioPL
	NetWorth     decimal.Decimal
}

func (uc *DashboardUseCase) load(ctx context.Context, userID string) ([]*domain.Account, []*domain.Transaction, []*domain.StockPosition, error) {
	accounts, err := readThrough(ctx, uc.cache, userID, domain.KindAccounts, func() ([]*domain.Account, error) {
		return uc.store.Accounts.List(ctx, userID)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	txs, err := readThrough(ctx, uc.cache, userID, domain.KindTransactions, func() ([]*domain.Transaction, error) {
		return uc.store.Transactions.List(ctx, userID, domain.TransactionFilter{})
	})
	if err != nil {
		return nil, nil, nil, err
	}

	stocks, err := readThrough(ctx, uc.cache, userID, domain.KindStocks, func() ([]*domain.StockPosition, error) {
		return uc.store.Stocks.List(ctx, userID)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return accounts, txs, stocks, nil
}

// Summary computes net worth, portfolio P&L and the totals of the given
// month. A zero year selects the current month.
func (uc *DashboardUseCase) Summary(ctx context.Context, userID string, year int, month time.Month) (*Summary, error) {
	if year == 0 || month < time.January || month > time.December {
		now := uc.now()
		year, month = now.Year(), now.Month()
	}

	accounts, txs, stocks, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	pl := domain.UnrealizedPL(stocks)
	summary := &Summary{
		NetWorth:             domain.NetWorth(accounts, stocks),
		CashTotal:            domain.CashTotal(accounts),
		Portfolio:            pl,
		PortfolioGainPercent: pl.GainPercent(),
		Year:                 year,
		Month:                month,
		Monthly:              domain.MonthlyTotalsFor(txs, year, month),
		Positions:            make([]PositionSummary, 0, len(stocks)),
	}

	for _, s := range stocks {
		p := PositionSummary{Stock: s, MarketValue: s.MarketValue(), Gain: s.Gain()}
		if pct, err := s.GainPercent(); err == nil {
			p.GainPercent = &pct
		}
		summary.Positions = append(summary.Positions, p)
	}

	return summary, nil
}

// Report builds the category breakdown for typ and the trend over the last
// months buckets. A non-positive months selects the configured window.
func (uc *DashboardUseCase) Report(ctx context.Context, userID string, typ domain.TransactionType, months int) (*Report, error) {
	if !typ.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if months <= 0 {
		months = uc.trendMonths
	}

	_, txs, _, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	breakdown := domain.CategoryBreakdown(txs, typ)
	total := decimal.Zero
	for _, c := range breakdown {
		total = total.Add(c.Total)
	}

	report := &Report{
		Type:       typ,
		Total:      total,
		Categories: make([]CategoryShare, 0, len(breakdown)),
		Trend:      domain.TrendSeries(txs, months),
	}

	hundred := decimal.NewFromInt(100)
	for _, c := range breakdown {
		share := CategoryShare{Category: c.Category, Total: c.Total, Percent: decimal.Zero}
		if !total.IsZero() {
			share.Percent = c.Total.Div(total).Mul(hundred).Round(2)
		}
		report.Categories = append(report.Categories, share)
	}

	return report, nil
}

// Advice asks the advisor about the most recent transactions and the
// portfolio. It always returns text; advisor failures become fallback text.
func (uc *DashboardUseCase) Advice(ctx context.Context, userID string) (string, error) {
	start := time.Now()

	accounts, txs, stocks, err := uc.load(ctx, userID)
	if err != nil {
		return "", err
	}

	recent := txs
	if len(recent) > AdviceTransactionLimit {
		recent = recent[:AdviceTransactionLimit]
	}

	advice, outcome := uc.advisor.Advise(ctx, AdviceRequest{
		Transactions: recent,
		Stocks:       stocks,
		Portfolio:    domain.UnrealizedPL(stocks),
		NetWorth:     domain.NetWorth(accounts, stocks),
	})

	if uc.metrics != nil {
		uc.metrics.AdviceRequests.WithLabelValues(string(outcome)).Inc()
		uc.metrics.AdviceDuration.Observe(time.Since(start).Seconds())
	}

	return advice, nil
}
