package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationSettings is the per-tenant scheduling policy, embedded directly
// on Tenant rather than stored in its own table.
type OrganizationSettings struct {
	BusinessType       string       `gorm:"type:varchar(100)" json:"businessType"`
	Timezone           string       `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`
	WorkingHoursStart  string       `gorm:"type:varchar(5);not null;default:'09:00'" json:"workingHoursStart"`
	WorkingHoursEnd    string       `gorm:"type:varchar(5);not null;default:'18:00'" json:"workingHoursEnd"`
	BookingInterval    int          `gorm:"not null;default:30" json:"bookingInterval"`
	AdvanceBookingDays int          `gorm:"not null;default:30" json:"advanceBookingDays"`
	CancellationHours  int          `gorm:"not null;default:24" json:"cancellationHours"`
	CustomLabels       CustomLabels `gorm:"type:jsonb" json:"customLabels"`
}

// Tenant represents a customer organization owning users, resources and bookings.
type Tenant struct {
	ID                string               `gorm:"type:uuid;primary_key;" json:"id"`
	Name              string               `gorm:"type:varchar(255);not null" json:"name"`
	Domain            string               `gorm:"type:varchar(255);uniqueIndex;not null" json:"domain"`
	LogoURL           *string              `gorm:"type:varchar(512)" json:"logoUrl,omitempty"`
	ThemePrimaryColor *string              `gorm:"type:varchar(32)" json:"themePrimaryColor,omitempty"`
	Plan              string               `gorm:"type:varchar(32);not null;default:'basico'" json:"plan"`
	IsActive          bool                 `gorm:"not null;default:true" json:"isActive"`
	Settings          OrganizationSettings `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate sets a UUID primary key.
func (t *Tenant) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

// TableName explicitly sets the table name.
func (Tenant) TableName() string {
	return "tenants"
}
