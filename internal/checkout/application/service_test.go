package application

import (
	"context"
	"errors"
	"testing"

	"github.com/storekit/checkout-engine/internal/checkout/domain"

	catalogdomain "github.com/storekit/checkout-engine/internal/catalog/domain"
)

type checkoutEnv struct {
	products     *fakeProducts
	customers    *fakeCustomers
	transactions *fakeTransactions
	reservations *fakeReservationStore
	stocks       *fakeStockStore
	releaser     *recordingReleaser
	gateway      *fakeGateway
	svc          *Service
}

func newCheckoutEnv() *checkoutEnv {
	e := &checkoutEnv{
		products:     newFakeProducts(),
		customers:    newFakeCustomers("c1"),
		transactions: newFakeTransactions(),
		reservations: newFakeReservationStore(),
		stocks:       newFakeStockStore(),
		gateway:      &fakeGateway{approve: true, paymentID: "pay-1"},
	}
	e.releaser = &recordingReleaser{stocks: e.stocks}
	e.svc = NewService(testLogger(), e.transactions, e.products, e.customers,
		e.reservations, e.releaser, e.gateway)
	return e
}

func TestCreate_WithoutReservations(t *testing.T) {
	e := newCheckoutEnv()
	e.products.seed("p1", "Basic Tee", "100")

	tx, err := e.svc.Create(context.Background(), CreateTransactionInput{
		ProductID: "p1", CustomerID: "c1", Quantity: 3,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if tx.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", tx.Quantity)
	}
	if tx.Amount.String() != "300" {
		t.Errorf("expected amount 300, got %s", tx.Amount.String())
	}
	if tx.Status != domain.StatusPending {
		t.Errorf("expected PENDING, got %s", tx.Status)
	}
	if e.transactions.lastEventType() != domain.EventTransactionCreated {
		t.Errorf("expected TransactionCreated outbox event, got %q", e.transactions.lastEventType())
	}
}

func TestCreate_ReservationsOverrideRequestedQuantity(t *testing.T) {
	e := newCheckoutEnv()
	e.products.seed("p1", "Basic Tee", "100")
	ctx := context.Background()
	e.reservations.Create(ctx, "p1", "c1", 2)
	e.reservations.Create(ctx, "p1", "c1", 3)

	tx, err := e.svc.Create(ctx, CreateTransactionInput{
		ProductID: "p1", CustomerID: "c1", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if tx.Quantity != 5 {
		t.Errorf("expected reserved quantity 5 to win over requested 1, got %d", tx.Quantity)
	}
	if tx.Amount.String() != "500" {
		t.Errorf("expected amount 500, got %s", tx.Amount.String())
	}
	left, _ := e.reservations.FindByCustomerAndProduct(ctx, "c1", "p1")
	if len(left) != 0 {
		t.Errorf("expected consumed reservations deleted, %d left", len(left))
	}
}

func TestCreate_ProductNotFound(t *testing.T) {
	e := newCheckoutEnv()

	_, err := e.svc.Create(context.Background(), CreateTransactionInput{
		ProductID: "missing", CustomerID: "c1", Quantity: 1,
	})

	var notFound *catalogdomain.ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProductNotFoundError, got: %v", err)
	}
}

func TestCreate_CustomerNotFound(t *testing.T) {
	e := newCheckoutEnv()
	e.products.seed("p1", "Basic Tee", "100")

	_, err := e.svc.Create(context.Background(), CreateTransactionInput{
		ProductID: "p1", CustomerID: "nobody", Quantity: 1,
	})

	var notFound *catalogdomain.CustomerNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected CustomerNotFoundError, got: %v", err)
	}
}

func TestProcessPayment_Approval(t *testing.T) {
	e := newCheckoutEnv()
	e.products.seed("p1", "Basic Tee", "100")
	e.stocks.seed("p1", 10, 4)

	ctx := context.Background()
	tx, _ := e.svc.Create(ctx, CreateTransactionInput{ProductID: "p1", CustomerID: "c1", Quantity: 2})

	paymentID, err := e.svc.ProcessPayment(ctx, ChargeRequest{TransactionID: tx.ID, CardToken: "tok"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if paymentID != "pay-1" {
		t.Errorf("expected payment id pay-1, got %s", paymentID)
	}
	stored, _ := e.transactions.FindByID(ctx, tx.ID)
	if stored.Status != domain.StatusPaid {
		t.Errorf("expected PAID, got %s", stored.Status)
	}
	if e.releaser.calls != 0 {
		t.Errorf("approval must not release reserved stock")
	}
	if e.stocks.stocks["p1"].Reserved != 4 {
		t.Errorf("expected reserved untouched at 4, got %d", e.stocks.stocks["p1"].Reserved)
	}
	if e.transactions.lastEventType() != domain.EventPaymentCaptured {
		t.Errorf("expected PaymentCaptured outbox event, got %q", e.transactions.lastEventType())
	}
}

func TestProcessPayment_RejectionReleasesStock(t *testing.T) {
	e := newCheckoutEnv()
	e.products.seed("p1", "Basic Tee", "100")
	e.stocks.seed("p1", 10, 4)
	e.gateway.approve = false
	e.gateway.reason = "card declined"

	ctx := context.Background()
	tx, _ := e.svc.Create(ctx, CreateTransactionInput{ProductID: "p1", CustomerID: "c1", Quantity: 2})

	_, err := e.svc.ProcessPayment(ctx, ChargeRequest{TransactionID: tx.ID, CardToken: "tok"})

	var rejected *domain.PaymentRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected PaymentRejectedError, got: %v", err)
	}
	if rejected.Reason != "card declined" {
		t.Errorf("expected gateway reason to pass through, got %q", rejected.Reason)
	}
	if e.stocks.stocks["p1"].Reserved != 2 {
		t.Errorf("expected reserved 4-2=2 after release, got %d", e.stocks.stocks["p1"].Reserved)
	}
	stored, _ := e.transactions.FindByID(ctx, tx.ID)
	if stored.Status != domain.StatusFailed {
		t.Errorf("expected FAILED, got %s", stored.Status)
	}
	if e.transactions.lastEventType() != domain.EventPaymentFailed {
		t.Errorf("expected PaymentFailed outbox event, got %q", e.transactions.lastEventType())
	}
}

func TestProcessPayment_RequiresPending(t *testing.T) {
	e := newCheckoutEnv()
	e.products.seed("p1", "Basic Tee", "100")
	ctx := context.Background()
	tx, _ := e.svc.Create(ctx, CreateTransactionInput{ProductID: "p1", CustomerID: "c1", Quantity: 1})
	e.transactions.byID[tx.ID].Status = domain.StatusPaid

	_, err := e.svc.ProcessPayment(ctx, ChargeRequest{TransactionID: tx.ID, CardToken: "tok"})

	var invalid *domain.InvalidTransactionStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransactionStateError, got: %v", err)
	}
	if invalid.Current != domain.StatusPaid || invalid.Expected != domain.StatusPending {
		t.Errorf("unexpected state context: current %s expected %s", invalid.Current, invalid.Expected)
	}
	if e.gateway.calls != 0 {
		t.Errorf("gateway must not be called for a non-PENDING transaction")
	}
}

func TestProcessPayment_TransactionNotFound(t *testing.T) {
	e := newCheckoutEnv()

	_, err := e.svc.ProcessPayment(context.Background(), ChargeRequest{TransactionID: "missing", CardToken: "tok"})

	var notFound *domain.TransactionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TransactionNotFoundError, got: %v", err)
	}
}
