package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeedLedger is the demo data written for a new user. Transactions reference
// accounts by their position-independent seed IDs ("1", "2", "3"); callers remap
// them to the generated IDs before persisting.
type SeedLedger struct {
	Accounts     []*Account
	Transactions []*Transaction
	Stocks       []*StockPosition
}

func seedDate(day int) time.Time {
	return time.Date(2023, time.October, day, 0, 0, 0, 0, time.UTC)
}

// DemoLedger returns a fresh copy of the demo ledger.
func DemoLedger() SeedLedger {
	return SeedLedger{
		Accounts: []*Account{
			{ID: "1", Name: "中國信託 - 薪轉", Type: AccountTypeChecking, Balance: decimal.NewFromInt(150000), Currency: "TWD"},
			{ID: "2", Name: "玉山銀行 - 儲蓄", Type: AccountTypeSavings, Balance: decimal.NewFromInt(500000), Currency: "TWD"},
			{ID: "3", Name: "錢包現金", Type: AccountTypeCash, Balance: decimal.NewFromInt(3500), Currency: "TWD"},
		},
		Transactions: []*Transaction{
			{AccountID: "1", Date: seedDate(1), Amount: decimal.NewFromInt(50000), Type: TransactionTypeIncome, Category: "薪資", Description: "十月薪水"},
			{AccountID: "3", Date: seedDate(2), Amount: decimal.NewFromInt(120), Type: TransactionTypeExpense, Category: "飲食", Description: "午餐"},
			{AccountID: "1", Date: seedDate(5), Amount: decimal.NewFromInt(15000), Type: TransactionTypeExpense, Category: "居住", Description: "房租"},
			{AccountID: "1", Date: seedDate(10), Amount: decimal.NewFromInt(3000), Type: TransactionTypeExpense, Category: "交通", Description: "高鐵票"},
		},
		Stocks: []*StockPosition{
			{Symbol: "2330.TW", Name: "台積電", Shares: decimal.NewFromInt(1000), AverageCost: decimal.NewFromInt(550), CurrentPrice: decimal.NewFromInt(580), Currency: "TWD"},
			{Symbol: "0050.TW", Name: "元大台灣50", Shares: decimal.NewFromInt(2000), AverageCost: decimal.NewFromInt(120), CurrentPrice: decimal.NewFromInt(135), Currency: "TWD"},
		},
	}
}
