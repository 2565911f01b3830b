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

const stockColumns = `id, user_id, symbol, name, shares, average_cost, current_price, currency, created_at, updated_at`

// StockRepository implements usecase.StockRepository.
type StockRepository struct {
	db DB
}

// NewStockRepository creates a new StockRepository.
func NewStockRepository(db DB) *StockRepository {
	return &StockRepository{db: db}
}

// Create inserts a stock position.
func (r *StockRepository) Create(ctx context.Context, tx usecase.Tx, s *domain.StockPosition) error {
	query := `
		INSERT INTO stocks (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := conn(r.db, tx).Exec(ctx, query,
		s.ID,
		s.UserID,
		s.Symbol,
		s.Name,
		decimalToNumeric(s.Shares),
		decimalToNumeric(s.AverageCost),
		decimalToNumeric(s.CurrentPrice),
		s.Currency,
		s.CreatedAt,
		s.UpdatedAt,
	)

	return err
}

// GetByID retrieves a position owned by userID.
func (r *StockRepository) GetByID(ctx context.Context, userID, id string) (*domain.StockPosition, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE user_id = $1 AND id = $2`
	return scanStock(r.db.QueryRow(ctx, query, userID, id))
}

// List returns all positions of userID in creation order.
func (r *StockRepository) List(ctx context.Context, userID string) ([]*domain.StockPosition, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stocks := []*domain.StockPosition{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}

	return stocks, rows.Err()
}

// Replace overwrites the editable fields of a position.
func (r *StockRepository) Replace(ctx context.Context, tx usecase.Tx, s *domain.StockPosition) error {
	query := `
		UPDATE stocks
		SET symbol = $3, name = $4, shares = $5, average_cost = $6, current_price = $7, currency = $8, updated_at = $9
		WHERE user_id = $1 AND id = $2
	`

	tag, err := conn(r.db, tx).Exec(ctx, query,
		s.UserID,
		s.ID,
		s.Symbol,
		s.Name,
		decimalToNumeric(s.Shares),
		decimalToNumeric(s.AverageCost),
		decimalToNumeric(s.CurrentPrice),
		s.Currency,
		s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStockNotFound
	}

	return nil
}

// UpdatePrice sets the current price of a position.
func (r *StockRepository) UpdatePrice(ctx context.Context, tx usecase.Tx, userID, id string, price decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE stocks SET current_price = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`

	tag, err := conn(r.db, tx).Exec(ctx, query, userID, id, decimalToNumeric(price), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStockNotFound
	}

	return nil
}

// Delete removes a position.
func (r *StockRepository) Delete(ctx context.Context, tx usecase.Tx, userID, id string) error {
	tag, err := conn(r.db, tx).Exec(ctx, `DELETE FROM stocks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStockNotFound
	}

	return nil
}

// ListOwners returns the ids of users that hold at least one position.
func (r *StockRepository) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT user_id FROM stocks ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owners = append(owners, id)
	}

	return owners, rows.Err()
}

func scanStock(row pgx.Row) (*domain.StockPosition, error) {
	var (
		s                         domain.StockPosition
		shares, avgCost, curPrice pgtype.Numeric
	)

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Symbol,
		&s.Name,
		&shares,
		&avgCost,
		&curPrice,
		&s.Currency,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStockNotFound
	}
	if err != nil {
		return nil, err
	}

	s.Shares = numericToDecimal(shares)
	s.AverageCost = numericToDecimal(avgCost)
	s.CurrentPrice = numericToDecimal(curPrice)

	return &s, nil
}
