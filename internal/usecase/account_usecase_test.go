package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
	"github.com/iho/smartwealth/internal/usecase/mocks"
)

const testUser = "user-1"

func TestAccountUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateAccountInput
		setupMocks  func(*mocks.Repositories)
		expectError error
	}{
		{
			name: "successful account creation",
			input: usecase.CreateAccountInput{
				Name:     "中國信託 - 薪轉",
				Type:     domain.AccountTypeChecking,
				Currency: "twd",
				Balance:  decimal.NewFromInt(150000),
			},
			setupMocks: func(*mocks.Repositories) {},
		},
		{
			name: "invalid account type",
			input: usecase.CreateAccountInput{
				Name: "wallet",
				Type: "Crypto",
			},
			setupMocks:  func(*mocks.Repositories) {},
			expectError: domain.ErrInvalidAccountType,
		},
		{
			name: "create with repository error",
			input: usecase.CreateAccountInput{
				Name: "錢包現金",
				Type: domain.AccountTypeCash,
			},
			setupMocks: func(r *mocks.Repositories) {
				r.Accounts.CreateFunc = func(context.Context, usecase.Tx, *domain.Account) error {
					return errors.New("db down")
				}
			},
			expectError: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, repos := mocks.NewStore()
			tt.setupMocks(repos)

			uc := usecase.NewAccountUseCase(store, nil, nil)
			account, err := uc.CreateAccount(context.Background(), testUser, tt.input)

			if tt.expectError != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if errors.Is(tt.expectError, domain.ErrInvalidAccountType) && !errors.Is(err, domain.ErrInvalidAccountType) {
					t.Fatalf("expected ErrInvalidAccountType, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.Currency != "TWD" {
				t.Errorf("expected currency TWD, got %q", account.Currency)
			}
			if !account.OpeningBalance.Equal(tt.input.Balance) {
				t.Errorf("expected opening balance %s, got %s", tt.input.Balance, account.OpeningBalance)
			}
			if account.UserID != testUser {
				t.Errorf("expected owner %q, got %q", testUser, account.UserID)
			}

			events := repos.Outbox.Events()
			if len(events) != 1 || events[0].EventType != domain.EventTypeAccountCreated {
				t.Errorf("expected one account.created event, got %+v", events)
			}
		})
	}
}

func TestAccountUseCase_DefaultCurrency(t *testing.T) {
	store, _ := mocks.NewStore()
	uc := usecase.NewAccountUseCase(store, nil, nil)

	account, err := uc.CreateAccount(context.Background(), testUser, usecase.CreateAccountInput{
		Name: "錢包現金",
		Type: domain.AccountTypeCash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Currency != usecase.DefaultCurrency {
		t.Fatalf("expected %s, got %s", usecase.DefaultCurrency, account.Currency)
	}
}

func TestAccountUseCase_GetAccount(t *testing.T) {
	store, repos := mocks.NewStore()
	repos.Accounts.Put(&domain.Account{ID: "acc-1", UserID: testUser, Name: "test"})
	repos.Accounts.Put(&domain.Account{ID: "acc-2", UserID: "someone-else", Name: "other"})

	uc := usecase.NewAccountUseCase(store, nil, nil)

	if _, err := uc.GetAccount(context.Background(), testUser, "acc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uc.GetAccount(context.Background(), testUser, "acc-2"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected accounts of other users to be invisible, got %v", err)
	}
}

func TestAccountUseCase_ReplaceAccountKeepsOpeningBalance(t *testing.T) {
	store, repos := mocks.NewStore()
	repos.Accounts.Put(&domain.Account{
		ID:             "acc-1",
		UserID:         testUser,
		Name:           "old",
		Type:           domain.AccountTypeSavings,
		Currency:       "TWD",
		Balance:        decimal.NewFromInt(100),
		OpeningBalance: decimal.NewFromInt(100),
	})

	uc := usecase.NewAccountUseCase(store, nil, nil)
	updated, err := uc.ReplaceAccount(context.Background(), testUser, "acc-1", usecase.ReplaceAccountInput{
		Name:     "玉山銀行 - 儲蓄",
		Type:     domain.AccountTypeSavings,
		Currency: "TWD",
		Balance:  decimal.NewFromInt(250),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !updated.Balance.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected balance 250, got %s", updated.Balance)
	}
	if !updated.OpeningBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected opening balance to stay 100, got %s", updated.OpeningBalance)
	}

	stored, _ := repos.Accounts.GetByID(context.Background(), testUser, "acc-1")
	if stored.Name != "玉山銀行 - 儲蓄" {
		t.Errorf("expected stored name to change, got %q", stored.Name)
	}
}

func TestAccountUseCase_ReplaceMissingAccount(t *testing.T) {
	store, _ := mocks.NewStore()
	uc := usecase.NewAccountUseCase(store, nil, nil)

	_, err := uc.ReplaceAccount(context.Background(), testUser, "missing", usecase.ReplaceAccountInput{
		Name: "x",
		Type: domain.AccountTypeCash,
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountUseCase_DeleteAccount(t *testing.T) {
	store, repos := mocks.NewStore()
	repos.Accounts.Put(&domain.Account{ID: "acc-1", UserID: testUser, Name: "test"})

	uc := usecase.NewAccountUseCase(store, nil, nil)

	if err := uc.DeleteAccount(context.Background(), testUser, "acc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accounts, err := uc.ListAccounts(context.Background(), testUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected no accounts, got %d", len(accounts))
	}

	if err := uc.DeleteAccount(context.Background(), testUser, "acc-1"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound on second delete, got %v", err)
	}
}
