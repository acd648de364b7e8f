package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	checkoutdomain "github.com/storekit/checkout-engine/internal/checkout/domain"
	"github.com/storekit/checkout-engine/internal/delivery/domain"
	"github.com/storekit/checkout-engine/pkg/tracing"
)

type DeliveryRepository interface {
	SaveWithOutbox(ctx context.Context, d domain.Delivery, eventType string, payload []byte, traceparent string) error
	FindByID(ctx context.Context, id string) (domain.Delivery, error)
	// MarkDispatched flips a PENDING delivery to DISPATCHED; false when the
	// row was missing or already dispatched.
	MarkDispatched(ctx context.Context, id string) (bool, error)
}

type TransactionFinder interface {
	FindByID(ctx context.Context, id string) (checkoutdomain.Transaction, error)
}

type Service struct {
	log          *slog.Logger
	deliveries   DeliveryRepository
	transactions TransactionFinder
}

func NewService(log *slog.Logger, deliveries DeliveryRepository, transactions TransactionFinder) *Service {
	return &Service{log: log, deliveries: deliveries, transactions: transactions}
}

// Create persists a delivery for a transaction. Only PAID transactions ship:
// a missing transaction fails with not-found, anything not PAID with an
// invalid-state error, and no delivery row is written in either case.
func (s *Service) Create(ctx context.Context, transactionID string, address domain.Address) (domain.Delivery, error) {
	tx, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if tx.Status != checkoutdomain.StatusPaid {
		return domain.Delivery{}, &checkoutdomain.InvalidTransactionStateError{
			TransactionID: transactionID,
			Current:       tx.Status,
			Expected:      checkoutdomain.StatusPaid,
		}
	}

	d := domain.Delivery{
		ID:            uuid.NewString(),
		TransactionID: transactionID,
		Address:       address,
		Status:        domain.StatusPending,
		UpdatedAt:     time.Now().UTC(),
	}
	payload, err := json.Marshal(domain.DeliveryCreated{DeliveryID: d.ID, TransactionID: transactionID})
	if err != nil {
		return domain.Delivery{}, err
	}
	if err := s.deliveries.SaveWithOutbox(ctx, d, domain.EventDeliveryCreated, payload, tracing.Traceparent(ctx)); err != nil {
		return domain.Delivery{}, err
	}

	s.log.Info("delivery created", "delivery_id", d.ID, "transaction_id", transactionID)
	return d, nil
}

// Dispatch is invoked by the fulfillment worker once the created delivery
// has been handed to the carrier. Safe to replay: an already dispatched
// delivery is left alone.
func (s *Service) Dispatch(ctx context.Context, deliveryID string) error {
	ok, err := s.deliveries.MarkDispatched(ctx, deliveryID)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("delivery already dispatched or missing", "delivery_id", deliveryID)
		return nil
	}
	s.log.Info("delivery dispatched", "delivery_id", deliveryID)
	return nil
}
