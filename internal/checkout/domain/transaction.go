package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusPaid    TransactionStatus = "PAID"
	StatusFailed  TransactionStatus = "FAILED"
)

// Transaction is a priced purchase of one product by one customer. Amount is
// computed once at creation and frozen. Status moves PENDING->PAID or
// PENDING->FAILED exactly once; both are terminal.
type Transaction struct {
	ID         string
	ProductID  string
	CustomerID string
	Quantity   int
	Amount     decimal.Decimal
	Status     TransactionStatus
	CreatedAt  time.Time
}

type TransactionNotFoundError struct {
	TransactionID string
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.TransactionID)
}

type InvalidTransactionStateError struct {
	TransactionID string
	Current       TransactionStatus
	Expected      TransactionStatus
}

func (e *InvalidTransactionStateError) Error() string {
	return fmt.Sprintf("transaction %s is %s, expected %s", e.TransactionID, e.Current, e.Expected)
}

type PaymentRejectedError struct {
	TransactionID string
	Reason        string
}

func (e *PaymentRejectedError) Error() string {
	return fmt.Sprintf("payment rejected for transaction %s: %s", e.TransactionID, e.Reason)
}
