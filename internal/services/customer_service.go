package services

import (
	"umkmcore/internal/models"
	"umkmcore/internal/repositories"
)

// CustomerService handles business logic related to customers.
type CustomerService struct {
	repo repositories.CustomerRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(repo repositories.CustomerRepository) *CustomerService {
	return &CustomerService{
		repo: repo,
	}
}

// GetAllCustomers retrieves all customers.
func (s *CustomerService) GetAllCustomers() ([]models.Customer, error) {
	return s.repo.GetAll()
}

// GetCustomerByID retrieves a single customer by their ID.
func (s *CustomerService) GetCustomerByID(id string) (*models.Customer, error) {
	return s.repo.GetByID(id)
}

// CreateCustomer creates a new customer.
func (s *CustomerService) CreateCustomer(customer *models.Customer) error {
	return s.repo.Create(customer)
}

// UpdateCustomer updates an existing customer.
func (s *CustomerService) UpdateCustomer(customer *models.Customer) error {
	return s.repo.Update(customer)
}

// DeleteCustomer deletes a customer by their ID.
func (s *CustomerService) DeleteCustomer(id string) error {
	return s.repo.Delete(id)
}
