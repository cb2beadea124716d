package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryType classifies what kind of thing a category groups.
type CategoryType string

const (
	CategoryTypePhysical CategoryType = "fisico"
	CategoryTypeHuman    CategoryType = "humano"
	CategoryTypeSoftware CategoryType = "software"
)

// IsValid reports whether t is one of the three recognized category types.
func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryTypePhysical, CategoryTypeHuman, CategoryTypeSoftware:
		return true
	}
	return false
}

// Category groups bookable resources under a tenant, e.g. "Meeting Rooms"
// or "Consultants".
type Category struct {
	ID               string           `gorm:"type:uuid;primary_key" json:"id"`
	TenantID         string           `gorm:"type:uuid;not null;index:idx_category_tenant" json:"tenant_id"`
	Name             string           `gorm:"type:varchar(255);not null" json:"name"`
	Description      *string          `gorm:"type:text" json:"description,omitempty"`
	Type             CategoryType     `gorm:"type:varchar(20);not null" json:"type"`
	Icon             *string          `gorm:"type:varchar(255)" json:"icon,omitempty"`
	Color            *string          `gorm:"type:varchar(32)" json:"color,omitempty"`
	IsActive         bool             `gorm:"not null;default:true" json:"is_active"`
	CategoryMetadata CategoryMetadata `gorm:"type:jsonb" json:"category_metadata"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate sets a UUID primary key.
func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// TableName explicitly sets the table name.
func (Category) TableName() string {
	return "categories"
}
