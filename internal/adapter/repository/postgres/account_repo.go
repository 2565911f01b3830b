package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

const accountColumns = `id, user_id, name, type, currency, balance, opening_balance, created_at, updated_at`

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := conn(r.db, tx).Exec(ctx, query,
		account.ID,
		account.UserID,
		account.Name,
		string(account.Type),
		account.Currency,
		decimalToNumeric(account.Balance),
		decimalToNumeric(account.OpeningBalance),
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

// GetByID retrieves an account owned by userID.
func (r *AccountRepository) GetByID(ctx context.Context, userID, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND id = $2`
	return scanAccount(r.db.QueryRow(ctx, query, userID, id))
}

// GetByIDForUpdate retrieves an account and locks its row until tx ends.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, userID, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND id = $2 FOR UPDATE`
	return scanAccount(conn(r.db, tx).QueryRow(ctx, query, userID, id))
}

// List returns all accounts of userID in creation order.
func (r *AccountRepository) List(ctx context.Context, userID string) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// Replace overwrites the editable fields of an account.
func (r *AccountRepository) Replace(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $3, type = $4, currency = $5, balance = $6, updated_at = $7
		WHERE user_id = $1 AND id = $2
	`

	tag, err := conn(r.db, tx).Exec(ctx, query,
		account.UserID,
		account.ID,
		account.Name,
		string(account.Type),
		account.Currency,
		decimalToNumeric(account.Balance),
		account.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// UpdateBalance sets the balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, userID, id string, balance decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE accounts SET balance = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`

	tag, err := conn(r.db, tx).Exec(ctx, query, userID, id, decimalToNumeric(balance), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Delete removes an account. Its transactions are left in place.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Tx, userID, id string) error {
	tag, err := conn(r.db, tx).Exec(ctx, `DELETE FROM accounts WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account                 domain.Account
		accountType             string
		balance, openingBalance pgtype.Numeric
	)

	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&accountType,
		&account.Currency,
		&balance,
		&openingBalance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	account.Type = domain.AccountType(accountType)
	account.Balance = numericToDecimal(balance)
	account.OpeningBalance = numericToDecimal(openingBalance)

	return &account, nil
}
