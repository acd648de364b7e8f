package application

import (
	"context"
	"log/slog"

	"github.com/storekit/checkout-engine/internal/catalog/domain"
)

type Service struct {
	log       *slog.Logger
	products  ProductRepository
	customers CustomerRepository
}

func NewService(log *slog.Logger, products ProductRepository, customers CustomerRepository) *Service {
	return &Service{log: log, products: products, customers: customers}
}

// ListAvailable returns products that still have reservable units.
func (s *Service) ListAvailable(ctx context.Context) ([]domain.Listing, error) {
	return s.products.ListAvailable(ctx)
}

func (s *Service) FindProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *Service) FindCustomer(ctx context.Context, id string) (domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

// RegisterCustomer returns the existing customer for the email or creates one.
func (s *Service) RegisterCustomer(ctx context.Context, email, name, phone string) (domain.Customer, error) {
	c, err := s.customers.FindOrCreateByEmail(ctx, email, name, phone)
	if err != nil {
		return domain.Customer{}, err
	}
	s.log.Debug("customer registered", "customer_id", c.ID, "email", email)
	return c, nil
}
