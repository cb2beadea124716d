package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceStatus is a bookable resource's availability state.
type ResourceStatus string

const (
	ResourceStatusAvailable   ResourceStatus = "disponivel"
	ResourceStatusMaintenance ResourceStatus = "manutencao"
	ResourceStatusUnavailable ResourceStatus = "indisponivel"
)

// IsValid reports whether s is one of the three recognized resource statuses.
func (s ResourceStatus) IsValid() bool {
	switch s {
	case ResourceStatusAvailable, ResourceStatusMaintenance, ResourceStatusUnavailable:
		return true
	}
	return false
}

// Resource is a bookable thing: a room, a piece of equipment, a person,
// a software seat. Its AvailabilitySchedule is the per-weekday set of
// local-time windows the availability projection intersects with the
// tenant's working hours.
type Resource struct {
	ID                   string               `gorm:"type:uuid;primary_key" json:"id"`
	TenantID             string               `gorm:"type:uuid;not null;index:idx_resource_tenant" json:"tenant_id"`
	CategoryID           string               `gorm:"type:uuid;not null;index:idx_resource_category" json:"category_id"`
	Name                 string               `gorm:"type:varchar(255);not null" json:"name"`
	Description          *string              `gorm:"type:text" json:"description,omitempty"`
	Status               ResourceStatus       `gorm:"type:varchar(20);not null;default:'disponivel'" json:"status"`
	Capacity             *int                 `json:"capacity,omitempty"`
	Location             *string              `gorm:"type:varchar(255)" json:"location,omitempty"`
	Attributes           Attributes           `gorm:"type:jsonb" json:"attributes"`
	AvailabilitySchedule AvailabilitySchedule `gorm:"type:jsonb" json:"availability_schedule"`
	ImageURL             *string              `gorm:"type:varchar(512)" json:"image_url,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate sets a UUID primary key.
func (r *Resource) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// TableName explicitly sets the table name.
func (Resource) TableName() string {
	return "resources"
}
