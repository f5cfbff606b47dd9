package models

import "time"

// OrderItem represents a single line within a recorded sale.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string  `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"` // Price at the time of sale
}

// Order represents a completed (or failed) sale submitted from the POS.
type Order struct {
	ID            string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string      `json:"user_id" gorm:"type:varchar(36)"`
	CustomerID    string      `json:"customer_id,omitempty" gorm:"type:varchar(36)"` // empty for anonymous sales
	Items         []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount   float64     `json:"total_amount"`
	TaxAmount     float64     `json:"tax_amount"`
	PaymentMethod string      `json:"payment_method"` // "cash", "credit_card", "digital_wallet"
	Status        string      `json:"status"`         // e.g. "completed", "cancelled"
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
