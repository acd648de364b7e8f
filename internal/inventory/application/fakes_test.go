package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/storekit/checkout-engine/internal/inventory/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeStocks struct {
	stocks     map[string]*domain.Stock
	deltaCalls int
}

func newFakeStocks() *fakeStocks {
	return &fakeStocks{stocks: make(map[string]*domain.Stock)}
}

func (f *fakeStocks) seed(productID string, quantity, reserved int) {
	f.stocks[productID] = &domain.Stock{
		ID:        "stock-" + productID,
		ProductID: productID,
		Quantity:  quantity,
		Reserved:  reserved,
	}
}

func (f *fakeStocks) GetByProductID(_ context.Context, productID string) (domain.Stock, error) {
	s, ok := f.stocks[productID]
	if !ok {
		return domain.Stock{}, &domain.StockNotFoundError{ProductID: productID}
	}
	return *s, nil
}

func (f *fakeStocks) ApplyReservedDelta(_ context.Context, productID string, delta int) (int, error) {
	s, ok := f.stocks[productID]
	if !ok {
		return 0, &domain.StockNotFoundError{ProductID: productID}
	}
	if delta == 0 {
		return s.Reserved, nil
	}
	f.deltaCalls++
	s.Reserved += delta
	return s.Reserved, nil
}

func (f *fakeStocks) SetQuantity(_ context.Context, productID string, quantity int) error {
	if s, ok := f.stocks[productID]; ok {
		s.Quantity = quantity
	}
	return nil
}

func (f *fakeStocks) SetReserved(_ context.Context, productID string, reserved int) error {
	if s, ok := f.stocks[productID]; ok {
		s.Reserved = reserved
	}
	return nil
}

type fakeReservations struct {
	byID       map[string]*domain.Reservation
	order      []string
	seq        int
	failCreate bool
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{byID: make(map[string]*domain.Reservation)}
}

func (f *fakeReservations) Create(_ context.Context, productID, customerID string, quantity int) (domain.Reservation, error) {
	if f.failCreate {
		return domain.Reservation{}, errors.New("storage write failed")
	}
	f.seq++
	r := domain.Reservation{
		ID:         fmt.Sprintf("res-%d", f.seq),
		ProductID:  productID,
		CustomerID: customerID,
		Quantity:   quantity,
		CreatedAt:  time.Unix(int64(f.seq), 0).UTC(),
	}
	f.byID[r.ID] = &r
	f.order = append(f.order, r.ID)
	return r, nil
}

func (f *fakeReservations) FindByID(_ context.Context, id string) (domain.Reservation, error) {
	r, ok := f.byID[id]
	if !ok {
		return domain.Reservation{}, &domain.ReservationNotFoundError{ReservationID: id}
	}
	return *r, nil
}

func (f *fakeReservations) FindByCustomerAndProduct(_ context.Context, customerID, productID string) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, id := range f.order {
		r, ok := f.byID[id]
		if ok && r.CustomerID == customerID && r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservations) FindByCustomer(_ context.Context, customerID string) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, id := range f.order {
		r, ok := f.byID[id]
		if ok && r.CustomerID == customerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservations) UpdateQuantity(_ context.Context, id string, quantity int) error {
	r, ok := f.byID[id]
	if !ok {
		return &domain.ReservationNotFoundError{ReservationID: id}
	}
	r.Quantity = quantity
	return nil
}

func (f *fakeReservations) DeleteByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(f.byID, id)
	}
	return nil
}

func (f *fakeReservations) count() int {
	return len(f.byID)
}
