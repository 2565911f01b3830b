package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrAccountNameRequired = errors.New("account name is required")

	// Transaction errors
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("transaction type must be income or expense")
	ErrInvalidDate            = errors.New("invalid transaction date")

	// Stock errors
	ErrStockNotFound       = errors.New("stock position not found")
	ErrInvalidShares       = errors.New("shares must not be negative")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrInvalidSymbol       = errors.New("invalid ticker symbol")
	ErrUndefinedPercentage = errors.New("percentage undefined for zero cost")
)
