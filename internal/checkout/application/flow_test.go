package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/storekit/checkout-engine/internal/checkout/domain"
	deliveryapp "github.com/storekit/checkout-engine/internal/delivery/application"
	deliverydomain "github.com/storekit/checkout-engine/internal/delivery/domain"
	inventoryapp "github.com/storekit/checkout-engine/internal/inventory/application"
)

type flowDeliveries struct {
	byID map[string]*deliverydomain.Delivery
}

func (f *flowDeliveries) SaveWithOutbox(_ context.Context, d deliverydomain.Delivery, _ string, _ []byte, _ string) error {
	stored := d
	f.byID[d.ID] = &stored
	return nil
}

func (f *flowDeliveries) FindByID(_ context.Context, id string) (deliverydomain.Delivery, error) {
	d, ok := f.byID[id]
	if !ok {
		return deliverydomain.Delivery{}, &deliverydomain.DeliveryNotFoundError{DeliveryID: id}
	}
	return *d, nil
}

func (f *flowDeliveries) MarkDispatched(_ context.Context, id string) (bool, error) {
	d, ok := f.byID[id]
	if !ok || d.Status != deliverydomain.StatusPending {
		return false, nil
	}
	d.Status = deliverydomain.StatusDispatched
	return true, nil
}

// CheckoutFlowSuite walks the whole purchase path with real application
// services over in-memory stores: reserve stock, check out the cart line,
// charge the card, and ship (or compensate).
type CheckoutFlowSuite struct {
	suite.Suite

	stocks       *fakeStockStore
	reservations *fakeReservationStore
	transactions *fakeTransactions
	deliveries   *flowDeliveries
	gateway      *fakeGateway

	inventory *inventoryapp.Service
	checkout  *Service
	delivery  *deliveryapp.Service
}

func (s *CheckoutFlowSuite) SetupTest() {
	log := testLogger()

	products := newFakeProducts()
	products.seed("p1", "Basic Tee", "100")

	s.stocks = newFakeStockStore()
	s.stocks.seed("p1", 10, 0)
	s.reservations = newFakeReservationStore()
	s.transactions = newFakeTransactions()
	s.deliveries = &flowDeliveries{byID: make(map[string]*deliverydomain.Delivery)}
	s.gateway = &fakeGateway{paymentID: "pay_1"}

	s.inventory = inventoryapp.NewService(log, s.stocks, s.reservations)
	s.checkout = NewService(log, s.transactions, products, newFakeCustomers("c1"),
		s.reservations, s.inventory, s.gateway)
	s.delivery = deliveryapp.NewService(log, s.deliveries, s.transactions)
}

func (s *CheckoutFlowSuite) reserveAndCheckout(ctx context.Context) domain.Transaction {
	stock, err := s.inventory.Reserve(ctx, "p1", "c1", 2)
	s.Require().NoError(err)
	s.Equal(2, stock.Reserved)

	tx, err := s.checkout.Create(ctx, CreateTransactionInput{
		ProductID:  "p1",
		CustomerID: "c1",
		Quantity:   1, // overridden by the reservation
	})
	s.Require().NoError(err)
	s.Equal(2, tx.Quantity)
	s.Equal("200", tx.Amount.String())
	s.Equal(domain.StatusPending, tx.Status)

	remaining, err := s.reservations.FindByCustomer(ctx, "c1")
	s.Require().NoError(err)
	s.Empty(remaining, "checkout consumes the reservation records")
	return tx
}

func (s *CheckoutFlowSuite) TestApprovedPurchaseShips() {
	ctx := context.Background()
	tx := s.reserveAndCheckout(ctx)

	s.gateway.approve = true
	paymentID, err := s.checkout.ProcessPayment(ctx, ChargeRequest{TransactionID: tx.ID, CardToken: "tok"})
	s.Require().NoError(err)
	s.Equal("pay_1", paymentID)

	stored, err := s.transactions.FindByID(ctx, tx.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPaid, stored.Status)
	s.Equal(2, s.stocks.stocks["p1"].Reserved, "paid units stay reserved until fulfillment")

	d, err := s.delivery.Create(ctx, tx.ID, deliverydomain.Address{Line1: "Cra 7 # 71-21", City: "Bogota", Country: "CO"})
	s.Require().NoError(err)
	s.Equal(deliverydomain.StatusPending, d.Status)

	s.Require().NoError(s.delivery.Dispatch(ctx, d.ID))
	shipped, err := s.deliveries.FindByID(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(deliverydomain.StatusDispatched, shipped.Status)
}

func (s *CheckoutFlowSuite) TestRejectedPurchaseReleasesStock() {
	ctx := context.Background()
	tx := s.reserveAndCheckout(ctx)

	s.gateway.approve = false
	s.gateway.reason = "card declined"
	_, err := s.checkout.ProcessPayment(ctx, ChargeRequest{TransactionID: tx.ID, CardToken: "tok"})

	var rejected *domain.PaymentRejectedError
	s.Require().True(errors.As(err, &rejected))
	s.Equal("card declined", rejected.Reason)

	stored, err := s.transactions.FindByID(ctx, tx.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusFailed, stored.Status)
	s.Equal(0, s.stocks.stocks["p1"].Reserved, "rejected units go back to the ledger")

	_, err = s.delivery.Create(ctx, tx.ID, deliverydomain.Address{Line1: "Cra 7 # 71-21"})
	var invalid *domain.InvalidTransactionStateError
	s.Require().True(errors.As(err, &invalid))
	s.Equal(domain.StatusFailed, invalid.Current)
	s.Empty(s.deliveries.byID)
}

func TestCheckoutFlowSuite(t *testing.T) {
	suite.Run(t, new(CheckoutFlowSuite))
}
