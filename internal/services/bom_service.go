package services

import (
	"fmt"

	"umkmcore/internal/models"
	"umkmcore/internal/repositories"
)

// ProductCost is the costing breakdown derived from a product's bill of
// materials.
type ProductCost struct {
	ProductID    string  `json:"product_id"`
	MaterialCost float64 `json:"material_cost"`
	SellingPrice float64 `json:"selling_price"`
	ProfitMargin float64 `json:"profit_margin"` // selling price minus material cost
}

// BOMService handles the bill of materials: which materials, and how much of
// each, a product consumes.
type BOMService struct {
	bomRepo      repositories.BOMRepository
	productRepo  repositories.ProductRepository
	materialRepo repositories.MaterialRepository
}

// NewBOMService creates a new BOMService.
func NewBOMService(bomRepo repositories.BOMRepository, productRepo repositories.ProductRepository, materialRepo repositories.MaterialRepository) *BOMService {
	return &BOMService{
		bomRepo:      bomRepo,
		productRepo:  productRepo,
		materialRepo: materialRepo,
	}
}

// GetProductBOM retrieves the bill of materials for a product.
func (s *BOMService) GetProductBOM(productID string) ([]models.BOMItem, error) {
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return nil, err
	}
	return s.bomRepo.GetByProductID(productID)
}

// AddBOMItem adds a material line to a product's bill of materials. Both the
// product and the material must exist.
func (s *BOMService) AddBOMItem(item *models.BOMItem) error {
	if _, err := s.productRepo.GetByID(item.ProductID); err != nil {
		return fmt.Errorf("cannot add BOM item: %w", err)
	}
	if _, err := s.materialRepo.GetByID(item.MaterialID); err != nil {
		return fmt.Errorf("cannot add BOM item: %w", err)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("BOM item quantity must be greater than zero")
	}
	return s.bomRepo.Create(item)
}

// RemoveBOMItem removes one material line from a product's bill of materials.
func (s *BOMService) RemoveBOMItem(productID, materialID string) error {
	return s.bomRepo.Delete(productID, materialID)
}

// ProductCost rolls up the material cost for one unit of the product and
// derives the profit margin against its selling price.
func (s *BOMService) ProductCost(productID string) (*ProductCost, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	items, err := s.bomRepo.GetByProductID(productID)
	if err != nil {
		return nil, err
	}

	var materialCost float64
	for _, item := range items {
		material, err := s.materialRepo.GetByID(item.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("BOM references unknown material: %w", err)
		}
		materialCost += material.UnitPrice * item.Quantity
	}

	return &ProductCost{
		ProductID:    productID,
		MaterialCost: materialCost,
		SellingPrice: product.SellingPrice,
		ProfitMargin: product.SellingPrice - materialCost,
	}, nil
}
