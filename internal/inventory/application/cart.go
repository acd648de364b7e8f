package application

import (
	"context"

	"github.com/storekit/checkout-engine/internal/inventory/domain"
)

// CartLine is the reconciled state of one (customer, product) pair.
type CartLine struct {
	ProductID    string
	CustomerID   string
	Quantity     int
	Reservations []domain.Reservation
}

// SetQuantity reconciles the reservations for a (customer, product) pair to
// the declared target total. It computes the minimal delta against what is
// already reserved: growth goes through Reserve, shrinkage consumes records
// oldest-first, and any surviving duplicates are consolidated into one
// record. Re-running with the same target is a no-op, which makes client
// retries converge instead of double-charging.
func (s *Service) SetQuantity(ctx context.Context, productID, customerID string, target int) (CartLine, error) {
	existing, err := s.reservations.FindByCustomerAndProduct(ctx, customerID, productID)
	if err != nil {
		return CartLine{}, err
	}
	current := domain.TotalQuantity(existing)

	delta := target - current
	if delta == 0 {
		if len(existing) > 1 {
			if err := s.consolidate(ctx, existing, current); err != nil {
				return CartLine{}, err
			}
			return s.cartLine(ctx, productID, customerID)
		}
		return CartLine{ProductID: productID, CustomerID: customerID, Quantity: current, Reservations: existing}, nil
	}

	if delta > 0 {
		if _, err := s.Reserve(ctx, productID, customerID, delta); err != nil {
			return CartLine{}, err
		}
	} else {
		if err := s.shrink(ctx, productID, existing, -delta); err != nil {
			return CartLine{}, err
		}
	}

	after, err := s.reservations.FindByCustomerAndProduct(ctx, customerID, productID)
	if err != nil {
		return CartLine{}, err
	}
	if len(after) > 1 {
		if err := s.consolidate(ctx, after, domain.TotalQuantity(after)); err != nil {
			return CartLine{}, err
		}
	}
	return s.cartLine(ctx, productID, customerID)
}

// RemoveLine releases everything held for the pair and deletes the records.
// It returns how many units were released.
func (s *Service) RemoveLine(ctx context.Context, productID, customerID string) (int, error) {
	existing, err := s.reservations.FindByCustomerAndProduct(ctx, customerID, productID)
	if err != nil {
		return 0, err
	}
	if len(existing) == 0 {
		return 0, nil
	}
	total := domain.TotalQuantity(existing)
	if _, err := s.stocks.ApplyReservedDelta(ctx, productID, -total); err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(existing))
	for _, r := range existing {
		ids = append(ids, r.ID)
	}
	if err := s.reservations.DeleteByIDs(ctx, ids); err != nil {
		return 0, err
	}
	s.log.Info("cart line removed", "product_id", productID, "customer_id", customerID, "released", total)
	return total, nil
}

// shrink consumes records oldest-first until toRemove units are released.
// Whole records are deleted; the record that straddles the boundary is
// decremented and consumption stops there.
func (s *Service) shrink(ctx context.Context, productID string, existing []domain.Reservation, toRemove int) error {
	for _, r := range existing {
		if toRemove <= 0 {
			break
		}
		if r.Quantity <= toRemove {
			if _, err := s.stocks.ApplyReservedDelta(ctx, productID, -r.Quantity); err != nil {
				return err
			}
			if err := s.reservations.DeleteByIDs(ctx, []string{r.ID}); err != nil {
				return err
			}
			toRemove -= r.Quantity
		} else {
			if _, err := s.stocks.ApplyReservedDelta(ctx, productID, -toRemove); err != nil {
				return err
			}
			if err := s.reservations.UpdateQuantity(ctx, r.ID, r.Quantity-toRemove); err != nil {
				return err
			}
			toRemove = 0
		}
	}
	return nil
}

// consolidate folds multiple records for a pair into the first one. Pure
// record cleanup: the reserved counter is untouched.
func (s *Service) consolidate(ctx context.Context, rs []domain.Reservation, total int) error {
	if err := s.reservations.UpdateQuantity(ctx, rs[0].ID, total); err != nil {
		return err
	}
	rest := make([]string, 0, len(rs)-1)
	for _, r := range rs[1:] {
		rest = append(rest, r.ID)
	}
	return s.reservations.DeleteByIDs(ctx, rest)
}

func (s *Service) cartLine(ctx context.Context, productID, customerID string) (CartLine, error) {
	rs, err := s.reservations.FindByCustomerAndProduct(ctx, customerID, productID)
	if err != nil {
		return CartLine{}, err
	}
	return CartLine{
		ProductID:    productID,
		CustomerID:   customerID,
		Quantity:     domain.TotalQuantity(rs),
		Reservations: rs,
	}, nil
}
