package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserType distinguishes tenant administrators from ordinary users, per
// spec.md §3.
type UserType string

const (
	UserTypeAdmin UserType = "admin"
	UserTypeUser  UserType = "user"
)

// IsValid reports whether t is one of the known user types.
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeAdmin, UserTypeUser:
		return true
	default:
		return false
	}
}

// Permissions is the embedded capability set spec.md §3 attaches to every user.
type Permissions struct {
	CanBook             bool `gorm:"not null;default:true" json:"can_book"`
	CanManageResources  bool `gorm:"not null;default:false" json:"can_manage_resources"`
	CanManageUsers      bool `gorm:"not null;default:false" json:"can_manage_users"`
	CanViewAllBookings  bool `gorm:"not null;default:false" json:"can_view_all_bookings"`
}

// User is a tenant-scoped account. Email is unique only within its
// tenant (I7) — the uniqueness constraint is therefore a composite index
// on (tenant_id, email), not a standalone unique column.
type User struct {
	ID           string      `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID     string      `gorm:"type:uuid;not null;index:idx_users_tenant_email,unique" json:"tenant_id"`
	Name         string      `gorm:"type:varchar(255);not null" json:"name"`
	Email        string      `gorm:"type:varchar(255);not null;index:idx_users_tenant_email,unique" json:"email"`
	Phone        *string     `gorm:"type:varchar(32)" json:"phone,omitempty"`
	UserType     UserType    `gorm:"type:varchar(16);not null;default:'user'" json:"user_type"`
	Department   *string     `gorm:"type:varchar(255)" json:"department,omitempty"`
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`
	Permissions  Permissions `gorm:"embedded;embeddedPrefix:perm_" json:"permissions"`
	PasswordHash string      `gorm:"not null" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate sets a UUID primary key.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// TableName explicitly sets the table name.
func (User) TableName() string {
	return "users"
}

// CanLogin reports whether the account is allowed to authenticate.
func (u *User) CanLogin() bool {
	return u.IsActive
}

// IsAdmin reports whether the user is a tenant administrator.
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}
