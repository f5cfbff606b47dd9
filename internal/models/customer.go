package models

import "gorm.io/gorm"

// Customer represents a known customer a sale can be attributed to.
// Sales with no customer reference are recorded as anonymous.
type Customer struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
