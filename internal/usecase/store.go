package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/smartwealth/internal/domain"
)

// Store bundles the persistence collaborators shared by the ledger use cases.
type Store struct {
	TxManager    TransactionManager
	Accounts     AccountRepository
	Transactions TransactionRepository
	Stocks       StockRepository
	Users        UserRepository
	Outbox       OutboxRepository
	IDGen        IDGenerator
	Retrier      Retrier
}

// inTx runs fn inside a database transaction and commits it. The whole
// attempt is repeated when the retrier classifies the failure as transient.
func (s Store) inTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	attempt := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := s.TxManager.Begin(txCtx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if s.Retrier == nil {
		return attempt()
	}
	return s.Retrier.Retry(ctx, attempt)
}

// emit records a change event in the outbox within tx.
func (s Store) emit(ctx context.Context, tx Tx, userID string, kind domain.EntityKind, eventType, recordID string, at time.Time) error {
	if s.Outbox == nil {
		return nil
	}
	event := domain.NewOutboxEvent(s.IDGen.Generate(), userID, kind, eventType, recordID, at)
	if err := s.Outbox.Create(ctx, tx, event); err != nil {
		return fmt.Errorf("write outbox event: %w", err)
	}
	return nil
}
