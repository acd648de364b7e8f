package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is immutable once created; price changes are out of scope.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
}

type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// Listing is a product joined with how many units are still reservable.
type Listing struct {
	Product
	Available int
}

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

type CustomerNotFoundError struct {
	CustomerID string
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %s not found", e.CustomerID)
}
