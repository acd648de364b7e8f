package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storekit/checkout-engine/internal/checkout/domain"
	"github.com/storekit/checkout-engine/pkg/tracing"
)

type Service struct {
	log          *slog.Logger
	transactions TransactionRepository
	products     ProductFinder
	customers    CustomerFinder
	reservations ReservationConsumer
	stocks       StockReleaser
	gateway      PaymentGateway
}

func NewService(
	log *slog.Logger,
	transactions TransactionRepository,
	products ProductFinder,
	customers CustomerFinder,
	reservations ReservationConsumer,
	stocks StockReleaser,
	gateway PaymentGateway,
) *Service {
	return &Service{
		log:          log,
		transactions: transactions,
		products:     products,
		customers:    customers,
		reservations: reservations,
		stocks:       stocks,
		gateway:      gateway,
	}
}

type CreateTransactionInput struct {
	ProductID  string
	CustomerID string
	Quantity   int
}

// Create builds a PENDING transaction. When the customer holds reservations
// for the product, their summed quantity overrides the requested one and the
// records are deleted as consumed: checkout buys the cart line as reserved.
func (s *Service) Create(ctx context.Context, in CreateTransactionInput) (domain.Transaction, error) {
	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if _, err := s.customers.FindByID(ctx, in.CustomerID); err != nil {
		return domain.Transaction{}, err
	}

	quantity := in.Quantity
	reserved, err := s.reservations.FindByCustomerAndProduct(ctx, in.CustomerID, in.ProductID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if len(reserved) > 0 {
		total := 0
		ids := make([]string, 0, len(reserved))
		for _, r := range reserved {
			total += r.Quantity
			ids = append(ids, r.ID)
		}
		quantity = total
		if err := s.reservations.DeleteByIDs(ctx, ids); err != nil {
			return domain.Transaction{}, err
		}
	}

	tx := domain.Transaction{
		ID:         uuid.NewString(),
		ProductID:  in.ProductID,
		CustomerID: in.CustomerID,
		Quantity:   quantity,
		Amount:     product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(domain.TransactionCreated{
		TransactionID: tx.ID,
		ProductID:     tx.ProductID,
		CustomerID:    tx.CustomerID,
		Quantity:      tx.Quantity,
		Amount:        tx.Amount.String(),
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := s.transactions.SaveWithOutbox(ctx, tx, domain.EventTransactionCreated, payload, tracing.Traceparent(ctx)); err != nil {
		return domain.Transaction{}, err
	}

	s.log.Info("transaction created", "transaction_id", tx.ID, "product_id", tx.ProductID,
		"quantity", tx.Quantity, "amount", tx.Amount.String())
	return tx, nil
}

// ProcessPayment charges a PENDING transaction through the gateway. On
// approval the transaction becomes PAID. On rejection the units consumed at
// checkout are given back to the stock ledger (floored at zero), the
// transaction becomes FAILED, and the gateway's rejection is returned.
func (s *Service) ProcessPayment(ctx context.Context, req ChargeRequest) (string, error) {
	tx, err := s.transactions.FindByID(ctx, req.TransactionID)
	if err != nil {
		return "", err
	}
	if tx.Status != domain.StatusPending {
		return "", &domain.InvalidTransactionStateError{
			TransactionID: tx.ID,
			Current:       tx.Status,
			Expected:      domain.StatusPending,
		}
	}

	paymentID, chargeErr := s.gateway.Charge(ctx, req)
	if chargeErr != nil {
		if relErr := s.stocks.ReleaseForProduct(ctx, tx.ProductID, tx.Quantity); relErr != nil {
			s.log.Error("stock release after payment rejection failed",
				"transaction_id", tx.ID, "product_id", tx.ProductID, "err", relErr)
		}
		s.failTransaction(ctx, tx, chargeErr)
		return "", chargeErr
	}

	payload, err := json.Marshal(domain.PaymentCaptured{TransactionID: tx.ID, PaymentID: paymentID})
	if err != nil {
		return "", err
	}
	ok, err := s.transactions.TransitionWithOutbox(ctx, tx.ID, domain.StatusPending, domain.StatusPaid,
		domain.EventPaymentCaptured, payload, tracing.Traceparent(ctx))
	if err != nil {
		return "", err
	}
	if !ok {
		// Lost the transition race; the charge went through regardless, so
		// surface the state conflict rather than pretend success.
		current, ferr := s.transactions.FindByID(ctx, tx.ID)
		if ferr != nil {
			return "", ferr
		}
		return "", &domain.InvalidTransactionStateError{
			TransactionID: tx.ID,
			Current:       current.Status,
			Expected:      domain.StatusPending,
		}
	}

	s.log.Info("payment captured", "transaction_id", tx.ID, "payment_id", paymentID)
	return paymentID, nil
}

func (s *Service) failTransaction(ctx context.Context, tx domain.Transaction, cause error) {
	reason := cause.Error()
	if rejected, ok := cause.(*domain.PaymentRejectedError); ok {
		reason = rejected.Reason
	}
	payload, err := json.Marshal(domain.PaymentFailed{TransactionID: tx.ID, Reason: reason})
	if err != nil {
		s.log.Error("payment failed event marshal", "transaction_id", tx.ID, "err", err)
		return
	}
	if _, err := s.transactions.TransitionWithOutbox(ctx, tx.ID, domain.StatusPending, domain.StatusFailed,
		domain.EventPaymentFailed, payload, tracing.Traceparent(ctx)); err != nil {
		s.log.Error("transaction fail transition", "transaction_id", tx.ID, "err", err)
	}
	s.log.Info("payment rejected", "transaction_id", tx.ID, "reason", reason)
}
