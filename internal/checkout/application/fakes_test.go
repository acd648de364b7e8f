package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/storekit/checkout-engine/internal/catalog/domain"
	"github.com/storekit/checkout-engine/internal/checkout/domain"
	inventorydomain "github.com/storekit/checkout-engine/internal/inventory/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeProducts struct {
	products map[string]catalogdomain.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{products: make(map[string]catalogdomain.Product)}
}

func (f *fakeProducts) seed(id, name, price string) {
	f.products[id] = catalogdomain.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (catalogdomain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalogdomain.Product{}, &catalogdomain.ProductNotFoundError{ProductID: id}
	}
	return p, nil
}

type fakeCustomers struct {
	customers map[string]catalogdomain.Customer
}

func newFakeCustomers(ids ...string) *fakeCustomers {
	f := &fakeCustomers{customers: make(map[string]catalogdomain.Customer)}
	for _, id := range ids {
		f.customers[id] = catalogdomain.Customer{ID: id, Name: "Customer " + id}
	}
	return f
}

func (f *fakeCustomers) FindByID(_ context.Context, id string) (catalogdomain.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return catalogdomain.Customer{}, &catalogdomain.CustomerNotFoundError{CustomerID: id}
	}
	return c, nil
}

type outboxRecord struct {
	eventType string
	payload   []byte
}

type fakeTransactions struct {
	byID   map[string]*domain.Transaction
	order  []string
	events []outboxRecord
}

func newFakeTransactions() *fakeTransactions {
	return &fakeTransactions{byID: make(map[string]*domain.Transaction)}
}

func (f *fakeTransactions) SaveWithOutbox(_ context.Context, t domain.Transaction, eventType string, payload []byte, _ string) error {
	stored := t
	f.byID[t.ID] = &stored
	f.order = append(f.order, t.ID)
	f.events = append(f.events, outboxRecord{eventType: eventType, payload: payload})
	return nil
}

func (f *fakeTransactions) FindByID(_ context.Context, id string) (domain.Transaction, error) {
	t, ok := f.byID[id]
	if !ok {
		return domain.Transaction{}, &domain.TransactionNotFoundError{TransactionID: id}
	}
	return *t, nil
}

func (f *fakeTransactions) FindPendingByCustomer(_ context.Context, customerID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, id := range f.order {
		t := f.byID[id]
		if t.CustomerID == customerID && t.Status == domain.StatusPending {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTransactions) TransitionWithOutbox(_ context.Context, id string, from, to domain.TransactionStatus, eventType string, payload []byte, _ string) (bool, error) {
	t, ok := f.byID[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	f.events = append(f.events, outboxRecord{eventType: eventType, payload: payload})
	return true, nil
}

func (f *fakeTransactions) lastEventType() string {
	if len(f.events) == 0 {
		return ""
	}
	return f.events[len(f.events)-1].eventType
}

// fakeReservationStore backs both the inventory service used as stock
// releaser in flow tests and the checkout-side reservation consumer.
type fakeReservationStore struct {
	byID  map[string]*inventorydomain.Reservation
	order []string
	seq   int
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{byID: make(map[string]*inventorydomain.Reservation)}
}

func (f *fakeReservationStore) Create(_ context.Context, productID, customerID string, quantity int) (inventorydomain.Reservation, error) {
	f.seq++
	r := inventorydomain.Reservation{
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

func (f *fakeReservationStore) FindByID(_ context.Context, id string) (inventorydomain.Reservation, error) {
	r, ok := f.byID[id]
	if !ok {
		return inventorydomain.Reservation{}, &inventorydomain.ReservationNotFoundError{ReservationID: id}
	}
	return *r, nil
}

func (f *fakeReservationStore) FindByCustomerAndProduct(_ context.Context, customerID, productID string) ([]inventorydomain.Reservation, error) {
	var out []inventorydomain.Reservation
	for _, id := range f.order {
		r, ok := f.byID[id]
		if ok && r.CustomerID == customerID && r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) FindByCustomer(_ context.Context, customerID string) ([]inventorydomain.Reservation, error) {
	var out []inventorydomain.Reservation
	for _, id := range f.order {
		r, ok := f.byID[id]
		if ok && r.CustomerID == customerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) UpdateQuantity(_ context.Context, id string, quantity int) error {
	r, ok := f.byID[id]
	if !ok {
		return &inventorydomain.ReservationNotFoundError{ReservationID: id}
	}
	r.Quantity = quantity
	return nil
}

func (f *fakeReservationStore) DeleteByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(f.byID, id)
	}
	return nil
}

type fakeStockStore struct {
	stocks map[string]*inventorydomain.Stock
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{stocks: make(map[string]*inventorydomain.Stock)}
}

func (f *fakeStockStore) seed(productID string, quantity, reserved int) {
	f.stocks[productID] = &inventorydomain.Stock{
		ID:        "stock-" + productID,
		ProductID: productID,
		Quantity:  quantity,
		Reserved:  reserved,
	}
}

func (f *fakeStockStore) GetByProductID(_ context.Context, productID string) (inventorydomain.Stock, error) {
	s, ok := f.stocks[productID]
	if !ok {
		return inventorydomain.Stock{}, &inventorydomain.StockNotFoundError{ProductID: productID}
	}
	return *s, nil
}

func (f *fakeStockStore) ApplyReservedDelta(_ context.Context, productID string, delta int) (int, error) {
	s, ok := f.stocks[productID]
	if !ok {
		return 0, &inventorydomain.StockNotFoundError{ProductID: productID}
	}
	s.Reserved += delta
	return s.Reserved, nil
}

func (f *fakeStockStore) SetQuantity(_ context.Context, productID string, quantity int) error {
	if s, ok := f.stocks[productID]; ok {
		s.Quantity = quantity
	}
	return nil
}

func (f *fakeStockStore) SetReserved(_ context.Context, productID string, reserved int) error {
	if s, ok := f.stocks[productID]; ok {
		s.Reserved = reserved
	}
	return nil
}

type fakeGateway struct {
	approve   bool
	reason    string
	paymentID string
	calls     int
}

func (f *fakeGateway) Charge(_ context.Context, req ChargeRequest) (string, error) {
	f.calls++
	if !f.approve {
		return "", &domain.PaymentRejectedError{TransactionID: req.TransactionID, Reason: f.reason}
	}
	return f.paymentID, nil
}

type recordingReleaser struct {
	stocks *fakeStockStore
	calls  int
}

func (r *recordingReleaser) ReleaseForProduct(_ context.Context, productID string, quantity int) error {
	r.calls++
	s, ok := r.stocks.stocks[productID]
	if !ok {
		return nil
	}
	s.Reserved -= quantity
	if s.Reserved < 0 {
		s.Reserved = 0
	}
	return nil
}
