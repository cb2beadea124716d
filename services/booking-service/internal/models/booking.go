package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// BookingStatus is a booking's position in its three-state lifecycle.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pendente"
	BookingStatusConfirmed BookingStatus = "confirmado"
	BookingStatusCancelled BookingStatus = "cancelado"
)

// IsValid reports whether s is one of the three recognized booking statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal state
// transition under spec.md §4.4's state machine. Cascade handlers bypass
// this and force `* -> cancelado` unconditionally, since the triggering
// entity no longer exists.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	default:
		return false
	}
}

// RecurrenceFrequency is the unit a RecurringPattern repeats on.
type RecurrenceFrequency string

const (
	RecurrenceDaily   RecurrenceFrequency = "daily"
	RecurrenceWeekly  RecurrenceFrequency = "weekly"
	RecurrenceMonthly RecurrenceFrequency = "monthly"
)

// IsValid reports whether f is one of the three recognized frequencies.
func (f RecurrenceFrequency) IsValid() bool {
	switch f {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// maxRecurrenceOccurrences is the 365-occurrence expansion cap. Nothing
// references it: the service's expandOccurrences applies its own local
// constant of the same value, whether or not the pattern has an end_date.
const maxRecurrenceOccurrences = 365

// RecurringPattern describes how a recurring booking's occurrences are
// generated. Embedded on Booking; fields are only meaningful when
// Booking.RecurringEnabled is true.
type RecurringPattern struct {
	Frequency  RecurrenceFrequency `gorm:"column:recurrence_frequency;type:varchar(20)" json:"frequency,omitempty"`
	Interval   int                 `gorm:"column:recurrence_interval" json:"interval,omitempty"`
	EndDate    *time.Time          `gorm:"column:recurrence_end_date" json:"end_date,omitempty"`
	DaysOfWeek pq.Int64Array       `gorm:"column:recurrence_days_of_week;type:integer[]" json:"days_of_week,omitempty"`
}

// Booking is a reservation of a resource by a user for a time interval.
// Its invariants (I1-I6 of spec.md §3) are enforced by the admission
// engine in internal/service, not by the model itself.
type Booking struct {
	ID                string           `gorm:"type:uuid;primary_key" json:"id"`
	TenantID          string           `gorm:"type:uuid;not null;index:idx_booking_tenant" json:"tenant_id"`
	ResourceID        string           `gorm:"type:uuid;not null;index:idx_booking_resource" json:"resource_id"`
	UserID            string           `gorm:"type:uuid;not null;index:idx_booking_user" json:"user_id"`
	ClientID          string           `gorm:"type:varchar(255)" json:"client_id,omitempty"`
	StartTime         time.Time        `gorm:"not null;index:idx_booking_resource_window" json:"start_time"`
	EndTime           time.Time        `gorm:"not null" json:"end_time"`
	Status            BookingStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes             *string          `gorm:"type:text" json:"notes,omitempty"`
	RecurringEnabled  bool             `gorm:"not null;default:false" json:"recurring_enabled"`
	RecurringPattern  RecurringPattern `gorm:"embedded" json:"recurring_pattern,omitempty"`
	RecurrenceGroupID *string          `gorm:"type:uuid;index" json:"recurrence_group_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate sets a UUID primary key.
func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

// TableName explicitly sets the table name.
func (Booking) TableName() string {
	return "bookings"
}
