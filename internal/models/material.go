package models

import "gorm.io/gorm"

// Material represents a raw material consumed to produce products.
type Material struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string  `json:"name" validate:"required,min=3,max=100"`
	Unit       string  `json:"unit" validate:"required,max=20"` // e.g. "kg", "pcs", "liter"
	UnitPrice  float64 `json:"unit_price" validate:"required,gt=0"`
	Stock      float64 `json:"stock" validate:"gte=0"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// BOMItem maps a product to one material and the quantity consumed per unit produced.
type BOMItem struct {
	ID         uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID  string  `json:"product_id" gorm:"index;type:varchar(36)" validate:"required"`
	MaterialID string  `json:"material_id" gorm:"index;type:varchar(36)" validate:"required"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0"`
}
