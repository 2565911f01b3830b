package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger aggregation. Every function here is pure: inputs are never mutated and
// results depend only on the arguments. Amounts in different currencies are
// summed nominally; no conversion is performed.

// NetWorth returns the sum of all account balances plus the market value of
// all stock positions.
func NetWorth(accounts []*Account, stocks []*StockPosition) decimal.Decimal {
	total := CashTotal(accounts)
	for _, s := range stocks {
		total = total.Add(s.MarketValue())
	}
	return total
}

// CashTotal returns the sum of all account balances.
func CashTotal(accounts []*Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// PortfolioPL is the unrealized profit and loss of a set of positions.
type PortfolioPL struct {
	MarketValue decimal.Decimal
	CostBasis   decimal.Decimal
	Gain        decimal.Decimal
}

// GainPercent returns Gain / CostBasis × 100, or zero when there is no cost.
func (p PortfolioPL) GainPercent() decimal.Decimal {
	if p.CostBasis.IsZero() {
		return decimal.Zero
	}
	return p.Gain.Div(p.CostBasis).Mul(hundred)
}

// UnrealizedPL sums market value and cost basis over stocks.
func UnrealizedPL(stocks []*StockPosition) PortfolioPL {
	pl := PortfolioPL{MarketValue: decimal.Zero, CostBasis: decimal.Zero}
	for _, s := range stocks {
		pl.MarketValue = pl.MarketValue.Add(s.MarketValue())
		pl.CostBasis = pl.CostBasis.Add(s.CostBasis())
	}
	pl.Gain = pl.MarketValue.Sub(pl.CostBasis)
	return pl
}

// MonthlyTotals holds income and expense sums for a period.
type MonthlyTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense.
func (m MonthlyTotals) Net() decimal.Decimal {
	return m.Income.Sub(m.Expense)
}

// MonthlyTotalsFor sums transactions dated in the given calendar month.
func MonthlyTotalsFor(txs []*Transaction, year int, month time.Month) MonthlyTotals {
	totals := MonthlyTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range txs {
		if t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		switch t.Type {
		case TransactionTypeIncome:
			totals.Income = totals.Income.Add(t.Amount)
		case TransactionTypeExpense:
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	return totals
}

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// CategoryBreakdown groups transactions of type typ by category. Categories
// appear in order of first occurrence.
func CategoryBreakdown(txs []*Transaction, typ TransactionType) []CategoryTotal {
	index := make(map[string]int)
	result := make([]CategoryTotal, 0)

	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(result)
			index[t.Category] = i
			result = append(result, CategoryTotal{Category: t.Category, Total: decimal.Zero})
		}
		result[i].Total = result[i].Total.Add(t.Amount)
	}

	return result
}

// TrendPoint is one year-month bucket of a trend series.
type TrendPoint struct {
	Period  string // "YYYY/M"
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (p TrendPoint) sortKey() int {
	return p.Year*12 + int(p.Month) - 1
}

// TrendSeries buckets transactions by year and month, orders buckets
// chronologically and returns the last bucketCount of them. A non-positive
// bucketCount returns every bucket.
func TrendSeries(txs []*Transaction, bucketCount int) []TrendPoint {
	buckets := make(map[int]*TrendPoint)

	for _, t := range txs {
		p := TrendPoint{Year: t.Date.Year(), Month: t.Date.Month()}
		b, ok := buckets[p.sortKey()]
		if !ok {
			p.Period = fmt.Sprintf("%d/%d", p.Year, int(p.Month))
			p.Income = decimal.Zero
			p.Expense = decimal.Zero
			b = &p
			buckets[p.sortKey()] = b
		}
		switch t.Type {
		case TransactionTypeIncome:
			b.Income = b.Income.Add(t.Amount)
		case TransactionTypeExpense:
			b.Expense = b.Expense.Add(t.Amount)
		}
	}

	series := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].sortKey() < series[j].sortKey()
	})

	if bucketCount > 0 && len(series) > bucketCount {
		series = series[len(series)-bucketCount:]
	}
	return series
}

// ApplyTransaction returns accounts with tx applied to the referenced account:
// income adds the amount, expense subtracts it. The changed account is a copy;
// all others pass through unchanged. If no account matches, the result holds
// the same accounts and balances.
func ApplyTransaction(accounts []*Account, tx *Transaction) []*Account {
	result := make([]*Account, len(accounts))
	for i, a := range accounts {
		if a.ID != tx.AccountID {
			result[i] = a
			continue
		}
		updated := *a
		if tx.Type == TransactionTypeIncome {
			updated.Balance = a.ApplyCredit(tx.Amount)
		} else {
			updated.Balance = a.ApplyDebit(tx.Amount)
		}
		result[i] = &updated
	}
	return result
}

// ReconcileStockPrices replaces the current price of every position whose
// symbol appears in updates. Updates for symbols not held are ignored.
func ReconcileStockPrices(stocks []*StockPosition, updates map[string]decimal.Decimal) []*StockPosition {
	result := make([]*StockPosition, len(stocks))
	for i, s := range stocks {
		price, ok := updates[s.Symbol]
		if !ok {
			result[i] = s
			continue
		}
		updated := *s
		updated.CurrentPrice = price
		result[i] = &updated
	}
	return result
}

// ExpectedBalance returns the balance account would have if every change since
// its creation went through ApplyTransaction: opening balance plus the signed
// amounts of its transactions.
func ExpectedBalance(account *Account, txs []*Transaction) decimal.Decimal {
	balance := account.OpeningBalance
	for _, t := range txs {
		if t.AccountID == account.ID {
			balance = balance.Add(t.SignedAmount())
		}
	}
	return balance
}
