package repositories

import (
	"fmt"
	"umkmcore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMaterialRepository is a GORM implementation of MaterialRepository.
type GORMMaterialRepository struct {
	db *gorm.DB
}

// NewGORMMaterialRepository creates a new instance of GORMMaterialRepository.
func NewGORMMaterialRepository(db *gorm.DB) *GORMMaterialRepository {
	return &GORMMaterialRepository{
		db: db,
	}
}

// GetAll retrieves all materials from the database.
func (r *GORMMaterialRepository) GetAll() ([]models.Material, error) {
	var materials []models.Material
	if err := r.db.Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to get all materials: %w", err)
	}
	return materials, nil
}

// GetByID retrieves a single material by its ID from the database.
func (r *GORMMaterialRepository) GetByID(id string) (*models.Material, error) {
	var material models.Material
	if err := r.db.First(&material, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("material with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get material by ID %s: %w", id, err)
	}
	return &material, nil
}

// Create creates a new material in the database.
func (r *GORMMaterialRepository) Create(material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.New().String()
	}
	if err := r.db.Create(material).Error; err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	return nil
}

// Update updates an existing material in the database.
func (r *GORMMaterialRepository) Update(material *models.Material) error {
	res := r.db.Save(material)
	if res.Error != nil {
		return fmt.Errorf("failed to update material: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("material with ID %s not found for update", material.ID)
	}
	return nil
}

// Delete deletes a material by its ID from the database.
func (r *GORMMaterialRepository) Delete(id string) error {
	res := r.db.Delete(&models.Material{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete material: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("material with ID %s not found for deletion", id)
	}
	return nil
}

// GORMBOMRepository is a GORM implementation of BOMRepository.
type GORMBOMRepository struct {
	db *gorm.DB
}

// NewGORMBOMRepository creates a new instance of GORMBOMRepository.
func NewGORMBOMRepository(db *gorm.DB) *GORMBOMRepository {
	return &GORMBOMRepository{
		db: db,
	}
}

// GetByProductID retrieves the bill of materials for a product.
func (r *GORMBOMRepository) GetByProductID(productID string) ([]models.BOMItem, error) {
	var items []models.BOMItem
	if err := r.db.Find(&items, "product_id = ?", productID).Error; err != nil {
		return nil, fmt.Errorf("failed to get BOM for product %s: %w", productID, err)
	}
	return items, nil
}

// Create adds a material line to a product's bill of materials.
func (r *GORMBOMRepository) Create(item *models.BOMItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create BOM item: %w", err)
	}
	return nil
}

// Delete removes one material line from a product's bill of materials.
func (r *GORMBOMRepository) Delete(productID, materialID string) error {
	res := r.db.Delete(&models.BOMItem{}, "product_id = ? AND material_id = ?", productID, materialID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete BOM item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("BOM item for product %s and material %s not found for deletion", productID, materialID)
	}
	return nil
}
