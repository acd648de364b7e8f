package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekit/checkout-engine/internal/checkout/domain"
)

type TransactionRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewTransactionRepository(log *slog.Logger, pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{log: log, pool: pool}
}

func (r *TransactionRepository) SaveWithOutbox(ctx context.Context, t domain.Transaction, eventType string, payload []byte, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (id, product_id, customer_id, quantity, amount, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.ProductID, t.CustomerID, t.Quantity, t.Amount, t.Status, t.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		 VALUES ('transaction',$1,$2,$3,$4,'pending')`,
		t.ID, eventType, payload, traceparent)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (domain.Transaction, error) {
	var t domain.Transaction
	err := r.pool.QueryRow(ctx,
		`SELECT id, product_id, customer_id, quantity, amount, status, created_at
		 FROM transactions WHERE id=$1`, id).
		Scan(&t.ID, &t.ProductID, &t.CustomerID, &t.Quantity, &t.Amount, &t.Status, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, &domain.TransactionNotFoundError{TransactionID: id}
	}
	if err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}

func (r *TransactionRepository) FindPendingByCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, customer_id, quantity, amount, status, created_at
		 FROM transactions
		 WHERE customer_id=$1 AND status=$2
		 ORDER BY created_at ASC`, customerID, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.ProductID, &t.CustomerID, &t.Quantity, &t.Amount, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TransitionWithOutbox performs the terminal status change conditionally on
// the current status, so a raced double transition loses cleanly: the UPDATE
// matching zero rows rolls back the outbox insert and reports false.
func (r *TransactionRepository) TransitionWithOutbox(ctx context.Context, id string, from, to domain.TransactionStatus, eventType string, payload []byte, traceparent string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx,
		`UPDATE transactions SET status=$3 WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		 VALUES ('transaction',$1,$2,$3,$4,'pending')`,
		id, eventType, payload, traceparent)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
