package models

import (
	"time"

	"github.com/google/uuid"
)

// MaterialModel represents the database model for the material catalog.
type MaterialModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code      string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Unit      *string   `gorm:"type:varchar(50)"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (MaterialModel) TableName() string {
	return "materials"
}

// SupplierModel represents the database model for the supplier catalog.
type SupplierModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code      string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (SupplierModel) TableName() string {
	return "suppliers"
}
