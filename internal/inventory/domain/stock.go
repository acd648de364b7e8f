package domain

import (
	"fmt"
	"time"
)

// Stock tracks physical units and the portion held by outstanding
// reservations for one product. Available units are Quantity - Reserved.
type Stock struct {
	ID        string
	ProductID string
	Quantity  int
	Reserved  int
}

func (s Stock) Available() int {
	return s.Quantity - s.Reserved
}

// Reservation asserts a customer has provisionally claimed units of a
// product prior to checkout. Several records may coexist for the same
// (customer, product) pair; their quantities are logically summed and the
// cart reconciler consolidates them back to one.
type Reservation struct {
	ID         string
	ProductID  string
	CustomerID string
	Quantity   int
	CreatedAt  time.Time
}

// TotalQuantity sums the live reservation quantities.
func TotalQuantity(rs []Reservation) int {
	total := 0
	for _, r := range rs {
		total += r.Quantity
	}
	return total
}

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type StockNotFoundError struct {
	ProductID string
}

func (e *StockNotFoundError) Error() string {
	return fmt.Sprintf("no stock record for product %s", e.ProductID)
}

type ReservationNotFoundError struct {
	ReservationID string
}

func (e *ReservationNotFoundError) Error() string {
	return fmt.Sprintf("reservation %s not found", e.ReservationID)
}
