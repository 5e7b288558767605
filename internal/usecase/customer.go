// internal/usecase/customer.go
package usecase

import (
	"context"

	"acmeair-service/internal/domain/entity"
	"acmeair-service/internal/domain/repository"
	"acmeair-service/pkg/logger"
)

// CustomerService reads and rewrites customer profiles
type CustomerService struct {
	da     repository.DataAccess
	logger logger.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(da repository.DataAccess, log logger.Logger) *CustomerService {
	return &CustomerService{
		da:     da,
		logger: log,
	}
}

// GetCustomer returns the customer with the given login, or nil when absent
func (s *CustomerService) GetCustomer(ctx context.Context, login string) (*entity.Customer, error) {
	var customer entity.Customer
	found, err := s.da.FindOne(ctx, s.da.Names().Customer, login, &customer)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &customer, nil
}

// UpdateCustomer replaces the full customer document. Revision handling,
// where a backend needs it, lives inside the driver.
func (s *CustomerService) UpdateCustomer(ctx context.Context, login string, customer *entity.Customer) error {
	customer.ID = login
	return s.da.Update(ctx, s.da.Names().Customer, login, customer)
}
