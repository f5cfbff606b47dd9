package repositories

import (
	"fmt"
	"sync"
	"time"
	"umkmcore/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository for
// tests. It holds a reference to a MockProductRepository so recording a sale
// can deduct stock the way the GORM implementation does.
type MockOrderRepository struct {
	orders   map[string]models.Order
	products *MockProductRepository
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
// products may be nil when the test never deducts stock.
func NewMockOrderRepository(products *MockProductRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
	}
}

// GetAll returns all recorded sales.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByID returns a sale by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found", id)
	}
	return &order, nil
}

// CreateWithStockDeduction records a sale and deducts the sold quantities
// from the attached product store. All lines are checked before any stock is
// touched, so a failing line leaves no partial deduction behind.
func (r *MockOrderRepository) CreateWithStockDeduction(order *models.Order, deductions map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]*models.Product, 0, len(deductions))
	for productID, quantity := range deductions {
		if r.products == nil {
			return fmt.Errorf("no product store attached for stock deduction")
		}
		product, err := r.products.GetByID(productID)
		if err != nil {
			return err
		}
		if product.Stock < quantity {
			return fmt.Errorf("insufficient stock for product with ID %s", productID)
		}
		product.Stock -= quantity
		updated = append(updated, product)
	}
	for _, product := range updated {
		if err := r.products.Update(product); err != nil {
			return err
		}
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus updates the status of a recorded sale.
func (r *MockOrderRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for status update", id)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
