package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekit/checkout-engine/internal/delivery/domain"
)

type DeliveryRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewDeliveryRepository(log *slog.Logger, pool *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{log: log, pool: pool}
}

func (r *DeliveryRepository) SaveWithOutbox(ctx context.Context, d domain.Delivery, eventType string, payload []byte, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO deliveries
			(id, transaction_id, address_line1, address_line2, city, state, postal_code, country, status, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.TransactionID, d.Address.Line1, d.Address.Line2, d.Address.City,
		d.Address.State, d.Address.PostalCode, d.Address.Country, d.Status, d.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		 VALUES ('delivery',$1,$2,$3,$4,'pending')`,
		d.ID, eventType, payload, traceparent)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (domain.Delivery, error) {
	var d domain.Delivery
	err := r.pool.QueryRow(ctx,
		`SELECT id, transaction_id, address_line1, address_line2, city, state, postal_code, country, status, updated_at
		 FROM deliveries WHERE id=$1`, id).
		Scan(&d.ID, &d.TransactionID, &d.Address.Line1, &d.Address.Line2, &d.Address.City,
			&d.Address.State, &d.Address.PostalCode, &d.Address.Country, &d.Status, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Delivery{}, &domain.DeliveryNotFoundError{DeliveryID: id}
	}
	if err != nil {
		return domain.Delivery{}, err
	}
	return d, nil
}

func (r *DeliveryRepository) MarkDispatched(ctx context.Context, id string) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE deliveries SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`,
		id, domain.StatusPending, domain.StatusDispatched)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
