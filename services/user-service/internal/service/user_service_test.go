package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/slotwise/user-service/internal/config"
	"github.com/slotwise/user-service/internal/models"
	"github.com/slotwise/user-service/internal/repository"
	"github.com/slotwise/user-service/internal/service"
	"github.com/slotwise/user-service/pkg/jwt"
	"github.com/slotwise/user-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockPublisher records every published event for assertions.
type mockPublisher struct {
	published []struct {
		EventType string
		TenantID  string
		Payload   interface{}
	}
}

func (m *mockPublisher) Publish(eventType, tenantID string, payload interface{}) error {
	m.published = append(m.published, struct {
		EventType string
		TenantID  string
		Payload   interface{}
	}{eventType, tenantID, payload})
	return nil
}

func (m *mockPublisher) Close() {}

func (m *mockPublisher) Reset() { m.published = nil }

// fakeTenantClient stands in for the HTTP call to tenant-service, keyed on
// a fixed set of known tenant ids rather than a real network probe.
type fakeTenantClient struct {
	knownTenants map[string]bool
}

func (f *fakeTenantClient) Exists(ctx context.Context, tenantID string) (bool, error) {
	return f.knownTenants[tenantID], nil
}

const testTenantID = "11111111-1111-1111-1111-111111111111"

type UserServiceTestSuite struct {
	suite.Suite
	DB      *gorm.DB
	Service *service.UserService
	Repo    repository.UserRepository
	Mock    *mockPublisher
}

func (s *UserServiceTestSuite) SetupSuite() {
	dsn := "host=localhost user=postgres password=postgres dbname=slotwise_users_test port=5432 sslmode=disable"
	if envURL := os.Getenv("TEST_DATABASE_URL"); envURL != "" {
		dsn = envURL
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to postgres: %v", err)
	}
	s.DB = db
	assert.NoError(s.T(), db.AutoMigrate(&models.User{}))

	testLogger := logger.New("debug")
	s.Repo = repository.NewUserRepository(db)
	s.Mock = &mockPublisher{}

	jwtMgr := jwt.NewManager(config.JWT{Secret: "test-secret", AccessTokenTTL: time.Hour})
	tenantClient := &fakeTenantClient{knownTenants: map[string]bool{testTenantID: true}}

	s.Service = service.NewUserService(s.Repo, tenantClient, jwtMgr, s.Mock, testLogger)
}

func (s *UserServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.DB.DB()
	sqlDB.Close()
}

func (s *UserServiceTestSuite) SetupTest() {
	s.Mock.Reset()
	s.DB.Exec("DELETE FROM users")
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) TestRegisterRejectsUnknownTenant() {
	s.Service = service.NewUserService(s.Repo, &fakeTenantClient{knownTenants: map[string]bool{}},
		jwt.NewManager(config.JWT{Secret: "test-secret", AccessTokenTTL: time.Hour}), s.Mock, logger.New("debug"))

	_, err := s.Service.Register(context.Background(), service.RegisterRequest{
		TenantID: "unknown-tenant",
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "Supersecret1!",
	})

	s.ErrorIs(err, service.ErrTenantNotFound)
}

func (s *UserServiceTestSuite) TestRegisterAndLogin() {
	s.Service = service.NewUserService(s.Repo, &fakeTenantClient{knownTenants: map[string]bool{testTenantID: true}},
		jwt.NewManager(config.JWT{Secret: "test-secret", AccessTokenTTL: time.Hour}), s.Mock, logger.New("debug"))

	user, err := s.Service.Register(context.Background(), service.RegisterRequest{
		TenantID: testTenantID,
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "Supersecret1!",
	})
	s.Require().NoError(err)
	s.NotEmpty(user.ID)
	s.Equal(models.UserTypeUser, user.UserType)
	s.True(user.Permissions.CanBook)

	result, err := s.Service.Login(testTenantID, "jane@example.com", "Supersecret1!")
	s.Require().NoError(err)
	s.Equal("bearer", result.TokenType)
	s.NotEmpty(result.AccessToken)
}

func (s *UserServiceTestSuite) TestRegisterRejectsDuplicateEmailWithinTenant() {
	svc := service.NewUserService(s.Repo, &fakeTenantClient{knownTenants: map[string]bool{testTenantID: true}},
		jwt.NewManager(config.JWT{Secret: "test-secret", AccessTokenTTL: time.Hour}), s.Mock, logger.New("debug"))

	_, err := svc.Register(context.Background(), service.RegisterRequest{
		TenantID: testTenantID, Name: "Jane", Email: "dup@example.com", Password: "Supersecret1!",
	})
	s.Require().NoError(err)

	_, err = svc.Register(context.Background(), service.RegisterRequest{
		TenantID: testTenantID, Name: "Jane Two", Email: "dup@example.com", Password: "Supersecret1!",
	})
	s.ErrorIs(err, service.ErrEmailTaken)
}

func (s *UserServiceTestSuite) TestLoginRejectsWrongPassword() {
	svc := service.NewUserService(s.Repo, &fakeTenantClient{knownTenants: map[string]bool{testTenantID: true}},
		jwt.NewManager(config.JWT{Secret: "test-secret", AccessTokenTTL: time.Hour}), s.Mock, logger.New("debug"))

	_, err := svc.Register(context.Background(), service.RegisterRequest{
		TenantID: testTenantID, Name: "Jane", Email: "wrongpw@example.com", Password: "Supersecret1!",
	})
	s.Require().NoError(err)

	_, err = svc.Login(testTenantID, "wrongpw@example.com", "notthepassword")
	s.ErrorIs(err, service.ErrInvalidCredentials)
}

func (s *UserServiceTestSuite) TestDeletePublishesUserDeleted() {
	svc := service.NewUserService(s.Repo, &fakeTenantClient{knownTenants: map[string]bool{testTenantID: true}},
		jwt.NewManager(config.JWT{Secret: "test-secret", AccessTokenTTL: time.Hour}), s.Mock, logger.New("debug"))

	user, err := svc.Register(context.Background(), service.RegisterRequest{
		TenantID: testTenantID, Name: "Jane", Email: "delete@example.com", Password: "Supersecret1!",
	})
	s.Require().NoError(err)

	err = svc.Delete(testTenantID, user.ID)
	s.Require().NoError(err)

	s.Require().Len(s.Mock.published, 1)
	s.Equal("user.deleted", s.Mock.published[0].EventType)

	_, err = svc.GetByTenantAndID(testTenantID, user.ID)
	s.ErrorIs(err, repository.ErrUserNotFound)
}

func (s *UserServiceTestSuite) TestHandleTenantDeletedRemovesAllUsers() {
	svc := service.NewUserService(s.Repo, &fakeTenantClient{knownTenants: map[string]bool{testTenantID: true}},
		jwt.NewManager(config.JWT{Secret: "test-secret", AccessTokenTTL: time.Hour}), s.Mock, logger.New("debug"))

	_, err := svc.Register(context.Background(), service.RegisterRequest{
		TenantID: testTenantID, Name: "Jane", Email: "cascade1@example.com", Password: "Supersecret1!",
	})
	s.Require().NoError(err)
	_, err = svc.Register(context.Background(), service.RegisterRequest{
		TenantID: testTenantID, Name: "Jack", Email: "cascade2@example.com", Password: "Supersecret1!",
	})
	s.Require().NoError(err)

	err = svc.HandleTenantDeleted(context.Background(), testTenantID)
	s.Require().NoError(err)

	users, total, err := svc.List(testTenantID, 50, 0)
	s.Require().NoError(err)
	s.Equal(int64(0), total)
	s.Empty(users)
}
