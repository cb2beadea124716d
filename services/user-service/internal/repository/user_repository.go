package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/slotwise/user-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations. Every
// query except GetByID and Delete is scoped by tenant_id, since email is
// only unique within a tenant (I7).
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByTenantAndID(tenantID, id string) (*models.User, error)
	GetByTenantAndEmail(tenantID, email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id string) error
	DeleteByTenant(tenantID string) (int64, error)
	List(tenantID string, limit, offset int) ([]*models.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByTenantAndID(tenantID, id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByTenantAndEmail(tenantID, email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("tenant_id = ? AND email = ?", tenantID, email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// DeleteByTenant hard-deletes every user owned by tenantID, for the
// tenant.deleted cascade. Unscoped bypasses the soft-delete hook since a
// cascaded tenant removal must not leave recoverable rows behind.
func (r *userRepository) DeleteByTenant(tenantID string) (int64, error) {
	result := r.db.Unscoped().Where("tenant_id = ?", tenantID).Delete(&models.User{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete users for tenant: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *userRepository) List(tenantID string, limit, offset int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.Model(&models.User{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at desc").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)
