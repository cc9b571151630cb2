package model

import "time"

// ProductModel mirrors the 'products' table. CategoryID references categories.id.
type ProductModel struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"type:varchar(255);not null;index"`
	Description *string `gorm:"type:text"`
	Price       float64 `gorm:"type:double precision;not null"`
	CategoryID  uint    `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *CategoryModel `gorm:"foreignKey:CategoryID"`
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
