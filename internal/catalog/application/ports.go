package application

import (
	"context"

	"github.com/storekit/checkout-engine/internal/catalog/domain"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
	ListAvailable(ctx context.Context) ([]domain.Listing, error)
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (domain.Customer, error)
	FindOrCreateByEmail(ctx context.Context, email, name, phone string) (domain.Customer, error)
}
