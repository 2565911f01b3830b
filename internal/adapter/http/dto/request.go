package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

// ErrInvalidDecimal is returned when a numeric field cannot be parsed.
var ErrInvalidDecimal = errors.New("invalid decimal value")

// parseDecimal parses a decimal field. An empty value is zero unless the
// field is required.
func parseDecimal(field, value string, required bool) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return decimal.Zero, fmt.Errorf("%s: %w", field, ErrInvalidDecimal)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, ErrInvalidDecimal)
	}
	return d, nil
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() (usecase.CreateAccountInput, error) {
	balance, err := parseDecimal("balance", r.Balance, false)
	if err != nil {
		return usecase.CreateAccountInput{}, err
	}

	return usecase.CreateAccountInput{
		Name:     r.Name,
		Type:     domain.AccountType(r.Type),
		Currency: r.Currency,
		Balance:  balance,
	}, nil
}

// ReplaceAccountRequest carries the full new state of an account.
type ReplaceAccountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

// ToUseCaseInput converts to use case input.
func (r *ReplaceAccountRequest) ToUseCaseInput() (usecase.ReplaceAccountInput, error) {
	balance, err := parseDecimal("balance", r.Balance, true)
	if err != nil {
		return usecase.ReplaceAccountInput{}, err
	}

	return usecase.ReplaceAccountInput{
		Name:     r.Name,
		Type:     domain.AccountType(r.Type),
		Currency: r.Currency,
		Balance:  balance,
	}, nil
}

// CreateTransactionRequest represents a request to record income or expense.
// Date uses the YYYY-MM-DD layout.
type CreateTransactionRequest struct {
	AccountID   string `json:"account_id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput() (usecase.CreateTransactionInput, error) {
	date, err := time.Parse(domain.DateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return usecase.CreateTransactionInput{}, fmt.Errorf("date: %w", domain.ErrInvalidDate)
	}

	amount, err := parseDecimal("amount", r.Amount, true)
	if err != nil {
		return usecase.CreateTransactionInput{}, err
	}

	return usecase.CreateTransactionInput{
		AccountID:   r.AccountID,
		Date:        date,
		Amount:      amount,
		Type:        domain.TransactionType(r.Type),
		Category:    r.Category,
		Description: r.Description,
	}, nil
}

// CreateStockRequest represents a request to add a stock position.
type CreateStockRequest struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Shares      string `json:"shares"`
	AverageCost string `json:"average_cost"`
	Currency    string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateStockRequest) ToUseCaseInput() (usecase.CreateStockInput, error) {
	shares, err := parseDecimal("shares", r.Shares, true)
	if err != nil {
		return usecase.CreateStockInput{}, err
	}
	cost, err := parseDecimal("average_cost", r.AverageCost, true)
	if err != nil {
		return usecase.CreateStockInput{}, err
	}

	return usecase.CreateStockInput{
		Symbol:      r.Symbol,
		Name:        r.Name,
		Shares:      shares,
		AverageCost: cost,
		Currency:    r.Currency,
	}, nil
}

// ReplaceStockRequest carries the full new state of a stock position.
type ReplaceStockRequest struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Shares       string `json:"shares"`
	AverageCost  string `json:"average_cost"`
	CurrentPrice string `json:"current_price"`
	Currency     string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *ReplaceStockRequest) ToUseCaseInput() (usecase.ReplaceStockInput, error) {
	shares, err := parseDecimal("shares", r.Shares, true)
	if err != nil {
		return usecase.ReplaceStockInput{}, err
	}
	cost, err := parseDecimal("average_cost", r.AverageCost, true)
	if err != nil {
		return usecase.ReplaceStockInput{}, err
	}
	price, err := parseDecimal("current_price", r.CurrentPrice, true)
	if err != nil {
		return usecase.ReplaceStockInput{}, err
	}

	return usecase.ReplaceStockInput{
		Symbol:       r.Symbol,
		Name:         r.Name,
		Shares:       shares,
		AverageCost:  cost,
		CurrentPrice: price,
		Currency:     r.Currency,
	}, nil
}

// UpdatePriceRequest sets the current price of one position.
type UpdatePriceRequest struct {
	Price string `json:"price"`
}

// ParsePrice returns the requested price.
func (r *UpdatePriceRequest) ParsePrice() (decimal.Decimal, error) {
	return parseDecimal("price", r.Price, true)
}

// RegisterRequest represents a sign-up request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{
		Email:    r.Email,
		Password: r.Password,
	}
}
