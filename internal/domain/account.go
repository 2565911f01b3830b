package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies where money is held.
type AccountType string

const (
	AccountTypeChecking   AccountType = "Checking"
	AccountTypeSavings    AccountType = "Savings"
	AccountTypeCredit     AccountType = "Credit"
	AccountTypeCash       AccountType = "Cash"
	AccountTypeInvestment AccountType = "Investment"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeChecking:   true,
	AccountTypeSavings:    true,
	AccountTypeCredit:     true,
	AccountTypeCash:       true,
	AccountTypeInvestment: true,
}

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// UnknownAccountName is shown for transactions whose account no longer exists.
const UnknownAccountName = "Unknown"

// Account represents a named store of money owned by a single user.
//
// Balance is the source of truth. OpeningBalance records the balance the account
// was created with and is only used to report drift from the transaction log.
type Account struct {
	ID             string
	UserID         string
	Name           string
	Type           AccountType
	Currency       string
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// AccountName resolves the display name of accountID, falling back to
// UnknownAccountName for orphaned references.
func AccountName(accounts []*Account, accountID string) string {
	for _, a := range accounts {
		if a.ID == accountID {
			return a.Name
		}
	}
	return UnknownAccountName
}
