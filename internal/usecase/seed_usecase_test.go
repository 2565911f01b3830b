package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
	"github.com/iho/smartwealth/internal/usecase/mocks"
)

func newSeedFixture(t *testing.T, enabled bool) (*usecase.SeedUseCase, *mocks.Repositories, usecase.Store) {
	t.Helper()
	store, repos := mocks.NewStore()
	require.NoError(t, repos.Users.Create(context.Background(), &domain.User{ID: testUser, Email: "demo@example.com", Active: true}))
	return usecase.NewSeedUseCase(store, nil, enabled, nil, zerolog.Nop()), repos, store
}

func TestSeedUseCase_SeedsOnce(t *testing.T) {
	uc, repos, _ := newSeedFixture(t, true)
	ctx := context.Background()

	seeded, err := uc.SeedIfNeeded(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, seeded)

	accounts, _ := repos.Accounts.List(ctx, testUser)
	txs, _ := repos.Transactions.List(ctx, testUser, domain.TransactionFilter{})
	stocks, _ := repos.Stocks.List(ctx, testUser)
	assert.Len(t, accounts, 3)
	assert.Len(t, txs, 4)
	assert.Len(t, stocks, 2)

	for _, tx := range txs {
		assert.NotEqual(t, domain.UnknownAccountName, domain.AccountName(accounts, tx.AccountID), "seed transactions reference seeded accounts")
	}

	user, err := repos.Users.GetByID(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, user.Seeded)

	again, err := uc.SeedIfNeeded(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, again)

	accounts, _ = repos.Accounts.List(ctx, testUser)
	assert.Len(t, accounts, 3)
}

func TestSeedUseCase_SeededLedgerReconciles(t *testing.T) {
	uc, _, store := newSeedFixture(t, true)
	ctx := context.Background()

	_, err := uc.SeedIfNeeded(ctx, testUser)
	require.NoError(t, err)

	report, err := usecase.NewReconciliationUseCase(store).GenerateReconciliationReport(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 3, report.ReconciledAccounts)
	assert.Empty(t, report.Discrepancies)
}

func TestSeedUseCase_SkipsUsersWithData(t *testing.T) {
	uc, repos, _ := newSeedFixture(t, true)
	ctx := context.Background()
	repos.Accounts.Put(&domain.Account{ID: "mine", UserID: testUser, Name: "mine", Balance: decimal.NewFromInt(1)})

	seeded, err := uc.SeedIfNeeded(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, seeded)

	accounts, _ := repos.Accounts.List(ctx, testUser)
	assert.Len(t, accounts, 1)

	user, _ := repos.Users.GetByID(ctx, testUser)
	assert.True(t, user.Seeded, "users with data are flagged so the check is not repeated")
}

func TestSeedUseCase_Disabled(t *testing.T) {
	uc, repos, _ := newSeedFixture(t, false)

	seeded, err := uc.SeedIfNeeded(context.Background(), testUser)
	require.NoError(t, err)
	assert.False(t, seeded)

	accounts, _ := repos.Accounts.List(context.Background(), testUser)
	assert.Empty(t, accounts)
}

func TestSeedUseCase_UnknownUser(t *testing.T) {
	uc, _, _ := newSeedFixture(t, true)

	_, err := uc.SeedIfNeeded(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
