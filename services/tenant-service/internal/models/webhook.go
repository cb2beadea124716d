package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Webhook is a tenant-scoped delivery target for domain events.
type Webhook struct {
	ID       string         `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID string         `gorm:"type:uuid;not null;index" json:"tenantId"`
	URL      string         `gorm:"type:varchar(2048);not null" json:"url"`
	Events   pq.StringArray `gorm:"type:text[];not null" json:"events"`
	Secret   *string        `gorm:"type:varchar(255)" json:"-"`
	IsActive bool           `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate sets a UUID primary key.
func (w *Webhook) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return
}

// TableName explicitly sets the table name.
func (Webhook) TableName() string {
	return "webhooks"
}

// Matches reports whether this webhook is registered for the given event kind.
func (w *Webhook) Matches(eventType string) bool {
	if !w.IsActive {
		return false
	}
	for _, e := range w.Events {
		if e == eventType {
			return true
		}
	}
	return false
}
