package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/usecase"
)

const transactionColumns = `id, user_id, account_id, date, amount, type, category, description, created_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction. account_id carries no foreign key so records
// outlive the account they were booked against.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := conn(r.db, tx).Exec(ctx, query,
		t.ID,
		t.UserID,
		t.AccountID,
		dateToPgDate(t.Date),
		decimalToNumeric(t.Amount),
		string(t.Type),
		t.Category,
		t.Description,
		t.CreatedAt,
	)

	return err
}

// GetByID retrieves a transaction owned by userID.
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 AND id = $2`
	return scanTransaction(r.db.QueryRow(ctx, query, userID, id))
}

// List returns the user's transactions, newest first.
func (r *TransactionRepository) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if filter.Type != nil {
		query += ` AND type = $2`
		args = append(args, string(*filter.Type))
	}
	query += ` ORDER BY date DESC, created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []*domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}

	return txs, rows.Err()
}

// Delete removes a transaction and returns the deleted row.
func (r *TransactionRepository) Delete(ctx context.Context, tx usecase.Tx, userID, id string) (*domain.Transaction, error) {
	query := `DELETE FROM transactions WHERE user_id = $1 AND id = $2 RETURNING ` + transactionColumns
	return scanTransaction(conn(r.db, tx).QueryRow(ctx, query, userID, id))
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t      domain.Transaction
		date   pgtype.Date
		amount pgtype.Numeric
		typ    string
	)

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.AccountID,
		&date,
		&amount,
		&typ,
		&t.Category,
		&t.Description,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	t.Date = pgDateToTime(date)
	t.Amount = numericToDecimal(amount)
	t.Type = domain.TransactionType(typ)

	return &t, nil
}
