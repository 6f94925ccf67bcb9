package models

import "time"

// ProductModel represents the database model for Product
type ProductModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false"`
	UserID      int64     `gorm:"not null;index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text;not null"`
	Price       float64   `gorm:"type:numeric(12,2);not null"`
	Image       string    `gorm:"type:varchar(500);not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (ProductModel) TableName() string {
	return "products"
}
