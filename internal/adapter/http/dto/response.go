package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

// Amounts are rendered as decimal strings so no precision is lost in transit.

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Currency       string    `json:"currency"`
	Balance        string    `json:"balance"`
	OpeningBalance string    `json:"opening_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		Currency:       a.Currency,
		Balance:        a.Balance.String(),
		OpeningBalance: a.OpeningBalance.String(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	AccountName string    `json:"account_name,omitempty"`
	Date        string    `json:"date"`
	Amount      string    `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Date:        t.Date.Format(domain.DateLayout),
		Amount:      t.Amount.String(),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

// TransactionsFromViews converts transaction views to responses.
func TransactionsFromViews(views []usecase.TransactionView) []*TransactionResponse {
	result := make([]*TransactionResponse, len(views))
	for i, v := range views {
		resp := TransactionFromDomain(v.Transaction)
		resp.AccountName = v.AccountName
		result[i] = resp
	}
	return result
}

// ListTransactionsResponse represents a list of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// StockResponse represents a stock position in API responses.
type StockResponse struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Shares       string    `json:"shares"`
	AverageCost  string    `json:"average_cost"`
	CurrentPrice string    `json:"current_price"`
	Currency     string    `json:"currency"`
	MarketValue  string    `json:"market_value"`
	Gain         string    `json:"gain"`
	GainPercent  *string   `json:"gain_percent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StockFromDomain converts a domain position to response. GainPercent is
// null when the average cost is zero.
func StockFromDomain(s *domain.StockPosition) *StockResponse {
	resp := &StockResponse{
		ID:           s.ID,
		Symbol:       s.Symbol,
		Name:         s.Name,
		Shares:       s.Shares.String(),
		AverageCost:  s.AverageCost.String(),
		CurrentPrice: s.CurrentPrice.String(),
		Currency:     s.Currency,
		MarketValue:  s.MarketValue().String(),
		Gain:         s.Gain().String(),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if pct, err := s.GainPercent(); err == nil {
		resp.GainPercent = percentString(&pct)
	}
	return resp
}

// StocksFromDomain converts domain positions to responses.
func StocksFromDomain(stocks []*domain.StockPosition) []*StockResponse {
	result := make([]*StockResponse, len(stocks))
	for i, s := range stocks {
		result[i] = StockFromDomain(s)
	}
	return result
}

// ListStocksResponse represents a list of stock positions.
type ListStocksResponse struct {
	Stocks []*StockResponse `json:"stocks"`
	Total  int64            `json:"total"`
}

func percentString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

// PositionResponse is one line of the portfolio table.
type PositionResponse struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Shares       string  `json:"shares"`
	CurrentPrice string  `json:"current_price"`
	MarketValue  string  `json:"market_value"`
	Gain         string  `json:"gain"`
	GainPercent  *string `json:"gain_percent"`
}

// SummaryResponse is the dashboard headline.
type SummaryResponse struct {
	NetWorth             string              `json:"net_worth"`
	CashTotal            string              `json:"cash_total"`
	StockValue           string              `json:"stock_value"`
	StockCost            string              `json:"stock_cost"`
	StockGain            string              `json:"stock_gain"`
	PortfolioGainPercent string              `json:"portfolio_gain_percent"`
	Year                 int                 `json:"year"`
	Month                int                 `json:"month"`
	MonthlyIncome        string              `json:"monthly_income"`
	MonthlyExpense       string              `json:"monthly_expense"`
	MonthlyNet           string              `json:"monthly_net"`
	Positions            []*PositionResponse `json:"positions"`
}

// SummaryFromUseCase converts a dashboard summary to response.
func SummaryFromUseCase(s *usecase.Summary) *SummaryResponse {
	positions := make([]*PositionResponse, len(s.Positions))
	for i, p := range s.Positions {
		positions[i] = &PositionResponse{
			ID:           p.Stock.ID,
			Symbol:       p.Stock.Symbol,
			Name:         p.Stock.Name,
			Shares:       p.Stock.Shares.String(),
			CurrentPrice: p.Stock.CurrentPrice.String(),
			MarketValue:  p.MarketValue.String(),
			Gain:         p.Gain.String(),
			GainPercent:  percentString(p.GainPercent),
		}
	}

	return &SummaryResponse{
		NetWorth:             s.NetWorth.String(),
		CashTotal:            s.CashTotal.String(),
		StockValue:           s.Portfolio.MarketValue.String(),
		StockCost:            s.Portfolio.CostBasis.String(),
		StockGain:            s.Portfolio.Gain.String(),
		PortfolioGainPercent: s.PortfolioGainPercent.StringFixed(2),
		Year:                 s.Year,
		Month:                int(s.Month),
		MonthlyIncome:        s.Monthly.Income.String(),
		MonthlyExpense:       s.Monthly.Expense.String(),
		MonthlyNet:           s.Monthly.Net().String(),
		Positions:            positions,
	}
}

// CategoryShareResponse is one slice of the category breakdown.
type CategoryShareResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Percent  string `json:"percent"`
}

// TrendPointResponse is one month of the income/expense trend.
type TrendPointResponse struct {
	Period  string `json:"period"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

// ReportResponse represents the category report.
type ReportResponse struct {
	Type       string                   `json:"type"`
	Total      string                   `json:"total"`
	Categories []*CategoryShareResponse `json:"categories"`
	Trend      []*TrendPointResponse    `json:"trend"`
}

// ReportFromUseCase converts a report to response.
func ReportFromUseCase(r *usecase.Report) *ReportResponse {
	categories := make([]*CategoryShareResponse, len(r.Categories))
	for i, c := range r.Categories {
		categories[i] = &CategoryShareResponse{
			Category: c.Category,
			Total:    c.Total.String(),
			Percent:  c.Percent.StringFixed(1),
		}
	}

	trend := make([]*TrendPointResponse, len(r.Trend))
	for i, p := range r.Trend {
		trend[i] = &TrendPointResponse{
			Period:  p.Period,
			Income:  p.Income.String(),
			Expense: p.Expense.String(),
		}
	}

	return &ReportResponse{
		Type:       string(r.Type),
		Total:      r.Total.String(),
		Categories: categories,
		Trend:      trend,
	}
}

// AdviceResponse carries advisory text.
type AdviceResponse struct {
	Advice string `json:"advice"`
}

// CategoriesResponse lists the suggested category vocabulary.
type CategoriesResponse struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

// ReconciliationResultResponse is the check of one account.
type ReconciliationResultResponse struct {
	AccountID         string `json:"account_id"`
	AccountName       string `json:"account_name"`
	OpeningBalance    string `json:"opening_balance"`
	RecordedBalance   string `json:"recorded_balance"`
	CalculatedBalance string `json:"calculated_balance"`
	Difference        string `json:"difference"`
	TransactionCount  int    `json:"transaction_count"`
	IsReconciled      bool   `json:"is_reconciled"`
}

// ReconciliationResultFromUseCase converts one account check to response.
func ReconciliationResultFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResultResponse {
	return &ReconciliationResultResponse{
		AccountID:         r.AccountID,
		AccountName:       r.AccountName,
		OpeningBalance:    r.OpeningBalance.String(),
		RecordedBalance:   r.RecordedBalance.String(),
		CalculatedBalance: r.CalculatedBalance.String(),
		Difference:        r.Difference.String(),
		TransactionCount:  r.TransactionCount,
		IsReconciled:      r.IsReconciled,
	}
}

// ReconciliationReportResponse represents the reconciliation report.
type ReconciliationReportResponse struct {
	TotalAccounts      int                             `json:"total_accounts"`
	ReconciledAccounts int                             `json:"reconciled_accounts"`
	OrphanTransactions int                             `json:"orphan_transactions"`
	Results            []*ReconciliationResultResponse `json:"results"`
	CheckedAt          time.Time                       `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	results := make([]*ReconciliationResultResponse, len(r.Results))
	for i, res := range r.Results {
		results[i] = ReconciliationResultFromUseCase(res)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		OrphanTransactions: r.OrphanTransactions,
		Results:            results,
		CheckedAt:          r.CheckedAt,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
	Seeded    bool          `json:"seeded,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
