package repositories

import (
	"umkmcore/internal/models"
)

// OrderRepository defines the interface for order data access. Recording a
// sale and deducting the sold stock happen through one call so an
// implementation can make them atomic.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	CreateWithStockDeduction(order *models.Order, deductions map[string]int) error
	UpdateStatus(id string, status string) error
	// Delete(id string) error // Deletion of orders might be complex, so we'll omit for now.
}
