package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
)

// ReconciliationUseCase compares recorded account balances with the balance
// implied by their transactions.
type ReconciliationUseCase struct {
	store Store
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(store Store) *ReconciliationUseCase {
	return &ReconciliationUseCase{store: store}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	AccountName       string
	OpeningBalance    decimal.Decimal
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	TransactionCount  int
	IsReconciled      bool
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	Results            []*ReconciliationResult
	OrphanTransactions int
	CheckedAt          time.Time
}

// ReconcileAccount checks one account against its transactions.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, userID, accountID string) (*ReconciliationResult, error) {
	account, err := uc.store.Accounts.GetByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	txs, err := uc.store.Transactions.List(ctx, userID, domain.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	return reconcile(account, txs), nil
}

// GenerateReconciliationReport checks every account of the user. Drift comes
// from balance edits that bypassed transactions.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context, userID string) (*ReconciliationReport, error) {
	accounts, err := uc.store.Accounts.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	txs, err := uc.store.Transactions.List(ctx, userID, domain.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts: len(accounts),
		Discrepancies: make([]*ReconciliationResult, 0),
		Results:       make([]*ReconciliationResult, 0, len(accounts)),
		CheckedAt:     time.Now().UTC(),
	}

	for _, t := range txs {
		if domain.AccountName(accounts, t.AccountID) == domain.UnknownAccountName {
			report.OrphanTransactions++
		}
	}

	for _, account := range accounts {
		result := reconcile(account, txs)
		report.Results = append(report.Results, result)
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}

func reconcile(account *domain.Account, txs []*domain.Transaction) *ReconciliationResult {
	count := 0
	for _, t := range txs {
		if t.AccountID == account.ID {
			count++
		}
	}

	expected := domain.ExpectedBalance(account, txs)
	diff := account.Balance.Sub(expected)

	return &ReconciliationResult{
		AccountID:         account.ID,
		AccountName:       account.Name,
		OpeningBalance:    account.OpeningBalance,
		RecordedBalance:   account.Balance,
		CalculatedBalance: expected,
		Difference:        diff,
		TransactionCount:  count,
		IsReconciled:      diff.IsZero(),
	}
}
