package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid reports whether t is income or expense.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Opposite returns the other transaction type.
func (t TransactionType) Opposite() TransactionType {
	if t == TransactionTypeIncome {
		return TransactionTypeExpense
	}
	return TransactionTypeIncome
}

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

// Transaction is a dated, categorized income or expense event linked to one account.
//
// Date is a naive calendar date stored at UTC midnight.
type Transaction struct {
	ID          string
	UserID      string
	AccountID   string
	Date        time.Time
	Amount      decimal.Decimal
	Type        TransactionType
	Category    string
	Description string
	CreatedAt   time.Time
}

// SignedAmount returns the amount as it affects the account balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Inverse returns a copy with the opposite type, undoing t when applied.
func (t *Transaction) Inverse() *Transaction {
	inv := *t
	inv.Type = t.Type.Opposite()
	return &inv
}

// Suggested category vocabulary per transaction type. Categories are free-form;
// these only seed forms and defaults.
var (
	IncomeCategories  = []string{"薪資", "獎金", "投資收益", "兼職", "其他"}
	ExpenseCategories = []string{"飲食", "交通", "居住", "娛樂", "購物", "醫療", "教育", "保險", "稅務", "其他"}
)

// SuggestedCategories returns the suggested vocabulary for t.
func SuggestedCategories(t TransactionType) []string {
	if t == TransactionTypeIncome {
		return IncomeCategories
	}
	return ExpenseCategories
}

// DefaultCategory returns the first suggested category for t.
func DefaultCategory(t TransactionType) string {
	return SuggestedCategories(t)[0]
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	Type *TransactionType
}
