package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model

	SellerID    uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string
	Price       float64 `gorm:"not null"`

	// Relationships
	Seller User `gorm:"foreignKey:SellerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
