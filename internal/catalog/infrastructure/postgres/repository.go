package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekit/checkout-engine/internal/catalog/domain"
)

type ProductRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewProductRepository(log *slog.Logger, pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{log: log, pool: pool}
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, price FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepository) ListAvailable(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.description, p.price, s.quantity - s.reserved
		FROM products p
		JOIN stocks s ON s.product_id = p.id
		WHERE s.quantity - s.reserved > 0
		ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Price, &l.Available); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

type CustomerRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewCustomerRepository(log *slog.Logger, pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{log: log, pool: pool}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone FROM customers WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, &domain.CustomerNotFoundError{CustomerID: id}
	}
	if err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

func (r *CustomerRepository) FindOrCreateByEmail(ctx context.Context, email, name, phone string) (domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone FROM customers WHERE email=$1`, email).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, err
	}

	c = domain.Customer{ID: uuid.NewString(), Name: name, Email: email, Phone: phone}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO customers (id, name, email, phone) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (email) DO NOTHING`,
		c.ID, c.Name, c.Email, c.Phone)
	if err != nil {
		return domain.Customer{}, err
	}
	// A concurrent insert may have won the conflict; read back the winner.
	err = r.pool.QueryRow(ctx,
		`SELECT id, name, email, phone FROM customers WHERE email=$1`, email).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}
