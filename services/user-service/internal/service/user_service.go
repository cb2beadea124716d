package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/slotwise/user-service/internal/models"
	"github.com/slotwise/user-service/internal/repository"
	"github.com/slotwise/user-service/pkg/events"
	"github.com/slotwise/user-service/pkg/jwt"
	"github.com/slotwise/user-service/pkg/logger"
	"github.com/slotwise/user-service/pkg/password"
)

// TenantClient validates that a tenant_id refers to a tenant tenant-service
// knows about. internal/client.TenantClient implements this over HTTP.
type TenantClient interface {
	Exists(ctx context.Context, tenantID string) (bool, error)
}

// RegisterRequest is the public signup payload.
type RegisterRequest struct {
	TenantID   string
	Name       string
	Email      string
	Password   string
	Phone      *string
	Department *string
}

// LoginResult is what Login returns on success: a signed token and its
// type, per spec.md §6's `{access_token, token_type}`.
type LoginResult struct {
	AccessToken string
	TokenType   string
}

// UserService implements the user-management and authentication
// operations spec.md §4.2 assigns user-service.
type UserService struct {
	repo         repository.UserRepository
	tenantClient TenantClient
	passwordMgr  *password.Manager
	jwtMgr       *jwt.Manager
	publisher    events.Publisher
	logger       logger.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	repo repository.UserRepository,
	tenantClient TenantClient,
	jwtMgr *jwt.Manager,
	publisher events.Publisher,
	logger logger.Logger,
) *UserService {
	return &UserService{
		repo:         repo,
		tenantClient: tenantClient,
		passwordMgr:  password.NewManager(nil),
		jwtMgr:       jwtMgr,
		publisher:    publisher,
		logger:       logger,
	}
}

// Register validates that tenant_id refers to an existing tenant, then
// creates the user with default permissions for a non-admin account.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	exists, err := s.tenantClient.Exists(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate tenant: %w", err)
	}
	if !exists {
		return nil, ErrTenantNotFound
	}

	if _, err := s.repo.GetByTenantAndEmail(req.TenantID, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := s.passwordMgr.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		TenantID:     req.TenantID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Department:   req.Department,
		UserType:     models.UserTypeUser,
		IsActive:     true,
		PasswordHash: passwordHash,
		Permissions:  models.Permissions{CanBook: true},
	}

	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and mints an access token.
func (s *UserService) Login(tenantID, email, plainPassword string) (*LoginResult, error) {
	user, err := s.repo.GetByTenantAndEmail(tenantID, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	valid, err := s.passwordMgr.Verify(plainPassword, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}
	if !user.CanLogin() {
		return nil, ErrAccountDisabled
	}

	token, _, err := s.jwtMgr.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{AccessToken: token, TokenType: "bearer"}, nil
}

// Me returns the caller's own account.
func (s *UserService) Me(id string) (*models.User, error) {
	return s.repo.GetByID(id)
}

// List returns users for a tenant, paginated.
func (s *UserService) List(tenantID string, limit, offset int) ([]*models.User, int64, error) {
	return s.repo.List(tenantID, limit, offset)
}

// GetByTenantAndID returns a single user scoped to a tenant.
func (s *UserService) GetByTenantAndID(tenantID, id string) (*models.User, error) {
	return s.repo.GetByTenantAndID(tenantID, id)
}

// UpdateRequest carries the mutable fields of Update.
type UpdateRequest struct {
	Name        *string
	Phone       *string
	Department  *string
	IsActive    *bool
	Permissions *models.Permissions
	UserType    *models.UserType
}

// Update applies a partial update to a user.
func (s *UserService) Update(tenantID, id string, req UpdateRequest) (*models.User, error) {
	user, err := s.repo.GetByTenantAndID(tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Permissions != nil {
		user.Permissions = *req.Permissions
	}
	if req.UserType != nil && req.UserType.IsValid() {
		user.UserType = *req.UserType
	}

	if err := s.repo.Update(user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Delete removes a user, scoped to the caller's tenant.
func (s *UserService) Delete(tenantID, id string) error {
	user, err := s.repo.GetByTenantAndID(tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(user.ID); err != nil {
		return err
	}
	if err := s.publisher.Publish(events.UserDeleted, tenantID, userEventPayload(user)); err != nil {
		s.logger.Error("failed to publish user deleted event", "error", err, "user_id", user.ID)
	}
	return nil
}

// HandleTenantDeleted hard-deletes every user of a tenant, the
// user-service side of the tenant.deleted cascade.
func (s *UserService) HandleTenantDeleted(ctx context.Context, tenantID string) error {
	count, err := s.repo.DeleteByTenant(tenantID)
	if err != nil {
		return err
	}
	s.logger.Info("deleted users for cascaded tenant", "tenant_id", tenantID, "count", count)
	return nil
}

func userEventPayload(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"user_id":   user.ID,
		"tenant_id": user.TenantID,
		"email":     user.Email,
	}
}

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrEmailTaken         = errors.New("email already registered for this tenant")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)
