package application

import (
	"context"

	"github.com/storekit/checkout-engine/internal/inventory/domain"
)

// ListReservations returns every outstanding reservation for a customer.
func (s *Service) ListReservations(ctx context.Context, customerID string) ([]domain.Reservation, error) {
	return s.reservations.FindByCustomer(ctx, customerID)
}

// UpdateReservation sets one record to an absolute quantity, adjusting the
// reserved counter by the difference.
func (s *Service) UpdateReservation(ctx context.Context, id string, quantity int) (domain.Reservation, error) {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if delta := quantity - r.Quantity; delta != 0 {
		if _, err := s.stocks.ApplyReservedDelta(ctx, r.ProductID, delta); err != nil {
			return domain.Reservation{}, err
		}
	}
	if err := s.reservations.UpdateQuantity(ctx, id, quantity); err != nil {
		return domain.Reservation{}, err
	}
	r.Quantity = quantity
	return r, nil
}

// DeleteReservation releases one record's units and removes it.
func (s *Service) DeleteReservation(ctx context.Context, id string) error {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.stocks.ApplyReservedDelta(ctx, r.ProductID, -r.Quantity); err != nil {
		return err
	}
	return s.reservations.DeleteByIDs(ctx, []string{r.ID})
}
