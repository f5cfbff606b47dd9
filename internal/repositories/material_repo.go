package repositories

import (
	"umkmcore/internal/models"
)

// MaterialRepository defines the interface for raw material data access.
type MaterialRepository interface {
	GetAll() ([]models.Material, error)
	GetByID(id string) (*models.Material, error)
	Create(material *models.Material) error
	Update(material *models.Material) error
	Delete(id string) error
}

// BOMRepository defines the interface for bill-of-materials data access.
type BOMRepository interface {
	GetByProductID(productID string) ([]models.BOMItem, error)
	Create(item *models.BOMItem) error
	Delete(productID, materialID string) error
}
