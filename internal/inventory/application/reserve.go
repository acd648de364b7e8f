package application

import (
	"context"
	"log/slog"

	"github.com/storekit/checkout-engine/internal/inventory/domain"
)

// Service owns stock reservation and cart reconciliation for one product at
// a time. The only concurrency-safe primitive underneath is the atomic
// reserved-delta on the stock row; the check-then-increment sequence in
// Reserve is deliberately not serialized, so two concurrent callers can both
// pass the availability check before either increments. Callers that need
// strict accounting must serialize per product themselves.
type Service struct {
	log          *slog.Logger
	stocks       StockRepository
	reservations ReservationRepository
}

func NewService(log *slog.Logger, stocks StockRepository, reservations ReservationRepository) *Service {
	return &Service{log: log, stocks: stocks, reservations: reservations}
}

// Reserve holds quantity additional units of a product for a customer.
// On success it returns the stock row with the freshly incremented reserved
// count. If the reservation record cannot be written after the counter was
// bumped, the increment is reversed best-effort; a crash between the two
// writes leaves reserved inflated until corrected administratively.
func (s *Service) Reserve(ctx context.Context, productID, customerID string, quantity int) (domain.Stock, error) {
	stock, err := s.stocks.GetByProductID(ctx, productID)
	if err != nil {
		if _, ok := err.(*domain.StockNotFoundError); ok {
			return domain.Stock{}, &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: 0}
		}
		return domain.Stock{}, err
	}

	available := stock.Available()
	if quantity > available {
		return domain.Stock{}, &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
	}

	newReserved, err := s.stocks.ApplyReservedDelta(ctx, productID, quantity)
	if err != nil {
		return domain.Stock{}, err
	}

	if _, err := s.reservations.Create(ctx, productID, customerID, quantity); err != nil {
		// Give the units back. If this reverse delta also fails the counter
		// stays inflated; that gap is logged, not hidden.
		if _, rbErr := s.stocks.ApplyReservedDelta(ctx, productID, -quantity); rbErr != nil {
			s.log.Error("reservation rollback failed, reserved counter inflated",
				"product_id", productID, "quantity", quantity, "err", rbErr)
		}
		return domain.Stock{}, &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
	}

	updated, err := s.stocks.GetByProductID(ctx, productID)
	if err != nil {
		return domain.Stock{}, err
	}
	updated.Reserved = newReserved

	s.log.Info("stock reserved", "product_id", productID, "customer_id", customerID,
		"quantity", quantity, "reserved", newReserved)
	return updated, nil
}

// ReleaseForProduct subtracts quantity from the reserved counter, flooring
// the result at zero. Used by the payment compensation path, where reserved
// may already have been reduced by other actors.
func (s *Service) ReleaseForProduct(ctx context.Context, productID string, quantity int) error {
	stock, err := s.stocks.GetByProductID(ctx, productID)
	if err != nil {
		if _, ok := err.(*domain.StockNotFoundError); ok {
			return nil
		}
		return err
	}
	released := stock.Reserved - quantity
	if released < 0 {
		released = 0
	}
	return s.stocks.SetReserved(ctx, productID, released)
}
