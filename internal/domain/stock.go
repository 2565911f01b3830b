package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// StockPosition is a held quantity of a ticker symbol.
// AverageCost and CurrentPrice are per-share prices.
type StockPosition struct {
	ID           string
	UserID       string
	Symbol       string
	Name         string
	Shares       decimal.Decimal
	AverageCost  decimal.Decimal
	CurrentPrice decimal.Decimal
	Currency     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MarketValue returns shares × current price.
func (s *StockPosition) MarketValue() decimal.Decimal {
	return s.Shares.Mul(s.CurrentPrice)
}

// CostBasis returns shares × average cost.
func (s *StockPosition) CostBasis() decimal.Decimal {
	return s.Shares.Mul(s.AverageCost)
}

// Gain returns the unrealized gain of the position.
func (s *StockPosition) Gain() decimal.Decimal {
	return s.MarketValue().Sub(s.CostBasis())
}

// GainPercent returns (currentPrice − averageCost) / averageCost × 100.
// It returns ErrUndefinedPercentage when the average cost is zero.
func (s *StockPosition) GainPercent() (decimal.Decimal, error) {
	if s.AverageCost.IsZero() {
		return decimal.Zero, ErrUndefinedPercentage
	}
	return s.CurrentPrice.Sub(s.AverageCost).Div(s.AverageCost).Mul(hundred), nil
}
