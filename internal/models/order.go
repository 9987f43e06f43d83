package models

import "gorm.io/gorm"

const (
	OrderTypePickup   = "pickup"
	OrderTypeDelivery = "delivery"

	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

type Order struct {
	gorm.Model

	UserID  uint    `gorm:"not null;index"`
	GroupID *uint   `gorm:"index"`
	Type    string  `gorm:"not null"` // "pickup", "delivery"
	Status  string  `gorm:"not null;default:pending"`
	Total   float64 `gorm:"not null"`

	// Relationships
	User  User        `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type OrderItem struct {
	gorm.Model

	OrderID   uint    `gorm:"not null;index"`
	ProductID uint    `gorm:"not null;index"`
	Quantity  int     `gorm:"not null"`
	Price     float64 `gorm:"not null"` // unit price at order time

	// Relationships
	Product Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
