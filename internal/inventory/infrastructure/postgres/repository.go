package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekit/checkout-engine/internal/inventory/domain"
)

type StockRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewStockRepository(log *slog.Logger, pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{log: log, pool: pool}
}

func (r *StockRepository) GetByProductID(ctx context.Context, productID string) (domain.Stock, error) {
	var s domain.Stock
	err := r.pool.QueryRow(ctx,
		`SELECT id, product_id, quantity, reserved FROM stocks WHERE product_id=$1`, productID).
		Scan(&s.ID, &s.ProductID, &s.Quantity, &s.Reserved)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Stock{}, &domain.StockNotFoundError{ProductID: productID}
	}
	if err != nil {
		return domain.Stock{}, err
	}
	return s, nil
}

// ApplyReservedDelta runs `reserved = reserved + delta` as one UPDATE so
// concurrent callers for the same product never lose an increment. The new
// value is returned from the same statement. The result is not clamped.
func (r *StockRepository) ApplyReservedDelta(ctx context.Context, productID string, delta int) (int, error) {
	if delta == 0 {
		s, err := r.GetByProductID(ctx, productID)
		if err != nil {
			return 0, err
		}
		return s.Reserved, nil
	}

	var reserved int
	err := r.pool.QueryRow(ctx,
		`UPDATE stocks SET reserved = reserved + $2, updated_at = now()
		 WHERE product_id = $1
		 RETURNING reserved`, productID, delta).
		Scan(&reserved)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &domain.StockNotFoundError{ProductID: productID}
	}
	if err != nil {
		return 0, err
	}
	return reserved, nil
}

func (r *StockRepository) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		quantity = 0
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE stocks SET quantity=$2, updated_at=now() WHERE product_id=$1`, productID, quantity)
	return err
}

func (r *StockRepository) SetReserved(ctx context.Context, productID string, reserved int) error {
	if reserved < 0 {
		reserved = 0
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE stocks SET reserved=$2, updated_at=now() WHERE product_id=$1`, productID, reserved)
	return err
}

type ReservationRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewReservationRepository(log *slog.Logger, pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{log: log, pool: pool}
}

func (r *ReservationRepository) Create(ctx context.Context, productID, customerID string, quantity int) (domain.Reservation, error) {
	res := domain.Reservation{
		ID:         uuid.NewString(),
		ProductID:  productID,
		CustomerID: customerID,
		Quantity:   quantity,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reservations (id, product_id, customer_id, quantity, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		res.ID, res.ProductID, res.CustomerID, res.Quantity, res.CreatedAt)
	if err != nil {
		return domain.Reservation{}, err
	}
	return res, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id string) (domain.Reservation, error) {
	var res domain.Reservation
	err := r.pool.QueryRow(ctx,
		`SELECT id, product_id, customer_id, quantity, created_at FROM reservations WHERE id=$1`, id).
		Scan(&res.ID, &res.ProductID, &res.CustomerID, &res.Quantity, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Reservation{}, &domain.ReservationNotFoundError{ReservationID: id}
	}
	if err != nil {
		return domain.Reservation{}, err
	}
	return res, nil
}

func (r *ReservationRepository) FindByCustomerAndProduct(ctx context.Context, customerID, productID string) ([]domain.Reservation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, customer_id, quantity, created_at
		 FROM reservations
		 WHERE customer_id=$1 AND product_id=$2
		 ORDER BY created_at ASC`, customerID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *ReservationRepository) FindByCustomer(ctx context.Context, customerID string) ([]domain.Reservation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, customer_id, quantity, created_at
		 FROM reservations
		 WHERE customer_id=$1
		 ORDER BY created_at ASC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *ReservationRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE reservations SET quantity=$2 WHERE id=$1`, id, quantity)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &domain.ReservationNotFoundError{ReservationID: id}
	}
	return nil
}

func (r *ReservationRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE id = ANY($1)`, ids)
	return err
}

func scanReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.ProductID, &res.CustomerID, &res.Quantity, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
