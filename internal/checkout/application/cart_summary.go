package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/storekit/checkout-engine/internal/catalog/domain"
)

type CartItem struct {
	ProductID  string
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	LineAmount decimal.Decimal
}

type CartSummary struct {
	CustomerID  string
	Items       []CartItem
	TotalAmount decimal.Decimal
}

// unknownProduct is the degrade-gracefully fallback for aggregated records
// whose product no longer resolves (deleted after the transaction was made).
const unknownProduct = "Unknown product"

// CartSummary gathers the customer's PENDING transactions and outstanding
// reservations, grouped per product. Transaction amounts were frozen at
// creation and are summed as stored; reservation amounts are priced live.
// Read path only, no mutation.
func (s *Service) CartSummary(ctx context.Context, customerID string) (CartSummary, error) {
	pending, err := s.transactions.FindPendingByCustomer(ctx, customerID)
	if err != nil {
		return CartSummary{}, err
	}
	reservations, err := s.reservations.FindByCustomer(ctx, customerID)
	if err != nil {
		return CartSummary{}, err
	}

	type line struct {
		txQuantity  int
		txAmount    decimal.Decimal
		resQuantity int
	}
	byProduct := make(map[string]*line)
	order := make([]string, 0)

	get := func(productID string) *line {
		l, ok := byProduct[productID]
		if !ok {
			l = &line{txAmount: decimal.Zero}
			byProduct[productID] = l
			order = append(order, productID)
		}
		return l
	}

	for _, tx := range pending {
		l := get(tx.ProductID)
		l.txQuantity += tx.Quantity
		l.txAmount = l.txAmount.Add(tx.Amount)
	}
	for _, r := range reservations {
		l := get(r.ProductID)
		l.resQuantity += r.Quantity
	}

	summary := CartSummary{CustomerID: customerID, Items: []CartItem{}, TotalAmount: decimal.Zero}
	for _, productID := range order {
		l := byProduct[productID]

		name := unknownProduct
		unitPrice := decimal.Zero
		product, err := s.products.FindByID(ctx, productID)
		switch {
		case err == nil:
			name = product.Name
			unitPrice = product.Price
		case !isProductNotFound(err):
			return CartSummary{}, err
		}

		lineAmount := l.txAmount.Add(unitPrice.Mul(decimal.NewFromInt(int64(l.resQuantity))))
		summary.Items = append(summary.Items, CartItem{
			ProductID:  productID,
			Name:       name,
			UnitPrice:  unitPrice,
			Quantity:   l.txQuantity + l.resQuantity,
			LineAmount: lineAmount,
		})
		summary.TotalAmount = summary.TotalAmount.Add(lineAmount)
	}
	return summary, nil
}

func isProductNotFound(err error) bool {
	var notFound *catalogdomain.ProductNotFoundError
	return errors.As(err, &notFound)
}
