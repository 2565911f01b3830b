package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
)

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccountRequest{
		Name:     "Main",
		Type:     "Savings",
		Currency: "TWD",
		Balance:  "-12.50",
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Name != "Main" || got.Type != domain.AccountTypeSavings || got.Currency != "TWD" {
		t.Fatalf("ToUseCaseInput() = %+v", got)
	}
	if !got.Balance.Equal(decimal.RequireFromString("-12.5")) {
		t.Fatalf("expected balance -12.5, got %s", got.Balance)
	}

	req.Balance = ""
	got, err = req.ToUseCaseInput()
	if err != nil || !got.Balance.IsZero() {
		t.Fatalf("expected empty balance to default to zero, got %s, %v", got.Balance, err)
	}
}

func TestReplaceAccountRequest_RequiresBalance(t *testing.T) {
	req := &ReplaceAccountRequest{Name: "Main", Type: "Cash"}

	if _, err := req.ToUseCaseInput(); !errors.Is(err, ErrInvalidDecimal) {
		t.Fatalf("expected ErrInvalidDecimal, got %v", err)
	}
}

func TestCreateTransactionRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name    string
		request *CreateTransactionRequest
		wantErr error
	}{
		{
			name: "valid",
			request: &CreateTransactionRequest{
				AccountID: "acc-1", Date: "2023-10-05", Amount: "15000", Type: "expense", Category: "居住",
			},
		},
		{
			name:    "invalid date",
			request: &CreateTransactionRequest{Date: "10/05/2023", Amount: "1"},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name:    "invalid amount",
			request: &CreateTransactionRequest{Date: "2023-10-05", Amount: "lots"},
			wantErr: ErrInvalidDecimal,
		},
		{
			name:    "missing amount",
			request: &CreateTransactionRequest{Date: "2023-10-05"},
			wantErr: ErrInvalidDecimal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantDate := time.Date(2023, time.October, 5, 0, 0, 0, 0, time.UTC)
			if !got.Date.Equal(wantDate) {
				t.Fatalf("expected date %v, got %v", wantDate, got.Date)
			}
			if got.Type != domain.TransactionTypeExpense || !got.Amount.Equal(decimal.NewFromInt(15000)) {
				t.Fatalf("ToUseCaseInput() = %+v", got)
			}
		})
	}
}

func TestStockRequests_ToUseCaseInput(t *testing.T) {
	create := &CreateStockRequest{Symbol: "2330.TW", Name: "台積電", Shares: "1000", AverageCost: "550", Currency: "TWD"}
	in, err := create.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in.Shares.Equal(decimal.NewFromInt(1000)) || !in.AverageCost.Equal(decimal.NewFromInt(550)) {
		t.Fatalf("ToUseCaseInput() = %+v", in)
	}

	create.AverageCost = "x"
	if _, err := create.ToUseCaseInput(); !errors.Is(err, ErrInvalidDecimal) {
		t.Fatalf("expected ErrInvalidDecimal, got %v", err)
	}

	replace := &ReplaceStockRequest{Symbol: "AAPL", Shares: "10", AverageCost: "150", CurrentPrice: "175.5"}
	rin, err := replace.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rin.CurrentPrice.Equal(decimal.RequireFromString("175.5")) {
		t.Fatalf("expected current price 175.5, got %s", rin.CurrentPrice)
	}

	price, err := (&UpdatePriceRequest{Price: " 580 "}).ParsePrice()
	if err != nil || !price.Equal(decimal.NewFromInt(580)) {
		t.Fatalf("ParsePrice() = %s, %v", price, err)
	}
}
