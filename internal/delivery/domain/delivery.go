package domain

import (
	"fmt"
	"time"
)

type DeliveryStatus string

const (
	StatusPending    DeliveryStatus = "PENDING"
	StatusDispatched DeliveryStatus = "DISPATCHED"
)

// Delivery ships exactly one paid transaction. It is created PENDING and
// moved to DISPATCHED by the fulfillment worker.
type Delivery struct {
	ID            string
	TransactionID string
	Address       Address
	Status        DeliveryStatus
	UpdatedAt     time.Time
}

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

const EventDeliveryCreated = "DeliveryCreated"

type DeliveryCreated struct {
	DeliveryID    string `json:"delivery_id"`
	TransactionID string `json:"transaction_id"`
}

type DeliveryNotFoundError struct {
	DeliveryID string
}

func (e *DeliveryNotFoundError) Error() string {
	return fmt.Sprintf("delivery %s not found", e.DeliveryID)
}
