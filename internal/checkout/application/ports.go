package application

import (
	"context"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/storekit/checkout-engine/internal/catalog/domain"
	"github.com/storekit/checkout-engine/internal/checkout/domain"
	inventorydomain "github.com/storekit/checkout-engine/internal/inventory/domain"
)

type TransactionRepository interface {
	// SaveWithOutbox inserts the transaction and an outbox row in one
	// database transaction.
	SaveWithOutbox(ctx context.Context, tx domain.Transaction, eventType string, payload []byte, traceparent string) error
	// FindByID returns *domain.TransactionNotFoundError when the id misses.
	FindByID(ctx context.Context, id string) (domain.Transaction, error)
	FindPendingByCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error)
	// TransitionWithOutbox moves the transaction from one status to another
	// together with an outbox row, conditionally on the current status.
	// Returns false without error when the row was not in `from` anymore.
	TransitionWithOutbox(ctx context.Context, id string, from, to domain.TransactionStatus, eventType string, payload []byte, traceparent string) (bool, error)
}

type ProductFinder interface {
	FindByID(ctx context.Context, id string) (catalogdomain.Product, error)
}

type CustomerFinder interface {
	FindByID(ctx context.Context, id string) (catalogdomain.Customer, error)
}

// ReservationConsumer is the slice of the inventory store checkout needs:
// reading a pair's reservations at checkout time and deleting them once
// they are converted into a transaction.
type ReservationConsumer interface {
	FindByCustomerAndProduct(ctx context.Context, customerID, productID string) ([]inventorydomain.Reservation, error)
	FindByCustomer(ctx context.Context, customerID string) ([]inventorydomain.Reservation, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// StockReleaser gives reserved units back when a payment is rejected.
type StockReleaser interface {
	ReleaseForProduct(ctx context.Context, productID string, quantity int) error
}

type ChargeRequest struct {
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	CardToken     string
}

// PaymentGateway charges the customer. Any non-approved outcome is returned
// as *domain.PaymentRejectedError; the call is expected to be bounded by a
// network timeout.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (paymentID string, err error)
}
