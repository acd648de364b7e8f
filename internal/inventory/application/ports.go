package application

import (
	"context"

	"github.com/storekit/checkout-engine/internal/inventory/domain"
)

type StockRepository interface {
	// GetByProductID returns the stock row, or *domain.StockNotFoundError.
	GetByProductID(ctx context.Context, productID string) (domain.Stock, error)
	// ApplyReservedDelta adds delta to the reserved counter as a single
	// read-modify-write at the storage layer and returns the new value.
	// A zero delta reads without writing. The result is not clamped.
	ApplyReservedDelta(ctx context.Context, productID string, delta int) (int, error)
	// SetQuantity and SetReserved are absolute overwrites for administrative
	// correction, never used on the reservation hot path.
	SetQuantity(ctx context.Context, productID string, quantity int) error
	SetReserved(ctx context.Context, productID string, reserved int) error
}

type ReservationRepository interface {
	Create(ctx context.Context, productID, customerID string, quantity int) (domain.Reservation, error)
	FindByID(ctx context.Context, id string) (domain.Reservation, error)
	// FindByCustomerAndProduct returns records ordered by creation time
	// ascending, oldest first.
	FindByCustomerAndProduct(ctx context.Context, customerID, productID string) ([]domain.Reservation, error)
	FindByCustomer(ctx context.Context, customerID string) ([]domain.Reservation, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	DeleteByIDs(ctx context.Context, ids []string) error
}
