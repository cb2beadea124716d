package service_test

import (
	"context"
	"os"
	"testing"

	"github.com/slotwise/tenant-service/internal/models"
	"github.com/slotwise/tenant-service/internal/repository"
	"github.com/slotwise/tenant-service/internal/service"
	"github.com/slotwise/tenant-service/pkg/logger"
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

type TenantServiceTestSuite struct {
	suite.Suite
	DB      *gorm.DB
	Service *service.TenantService
	Repo    repository.TenantRepository
	Mock    *mockPublisher
}

func (s *TenantServiceTestSuite) SetupSuite() {
	dsn := "host=localhost user=postgres password=postgres dbname=slotwise_tenants_test port=5432 sslmode=disable"
	if envURL := os.Getenv("TEST_DATABASE_URL"); envURL != "" {
		dsn = envURL
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to postgres: %v", err)
	}
	s.DB = db
	assert.NoError(s.T(), db.AutoMigrate(&models.Tenant{}, &models.Webhook{}))

	testLogger := logger.New("debug")
	s.Repo = repository.NewTenantRepository(db, testLogger)
	s.Mock = &mockPublisher{}
	cache := repository.NewSettingsCache(nil, 0, testLogger)
	s.Service = service.NewTenantService(s.Repo, cache, s.Mock, testLogger)
}

func (s *TenantServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.DB.DB()
	sqlDB.Close()
}

func (s *TenantServiceTestSuite) SetupTest() {
	s.Mock.Reset()
	s.DB.Exec("DELETE FROM webhooks")
	s.DB.Exec("DELETE FROM tenants")
}

func TestTenantServiceSuite(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}

func (s *TenantServiceTestSuite) TestCreateAppliesDefaultsAndPlan() {
	tenant := &models.Tenant{Name: "Acme", Domain: "acme.example.com"}
	err := s.Service.Create(tenant)

	s.NoError(err)
	s.NotEmpty(tenant.ID)
	s.Equal("basico", tenant.Plan)
	s.True(tenant.IsActive)
	s.Equal("UTC", tenant.Settings.Timezone)
	s.Equal(30, tenant.Settings.BookingInterval)
}

func (s *TenantServiceTestSuite) TestCreateRejectsDuplicateDomain() {
	first := &models.Tenant{Name: "Acme", Domain: "dup.example.com"}
	s.Require().NoError(s.Service.Create(first))

	second := &models.Tenant{Name: "Other", Domain: "dup.example.com"}
	err := s.Service.Create(second)

	s.ErrorIs(err, service.ErrDomainTaken)
}

func (s *TenantServiceTestSuite) TestDeletePublishesTenantDeleted() {
	tenant := &models.Tenant{Name: "Acme", Domain: "delete.example.com"}
	s.Require().NoError(s.Service.Create(tenant))

	err := s.Service.Delete(context.Background(), tenant.ID)
	s.NoError(err)

	s.Require().Len(s.Mock.published, 1)
	s.Equal("tenant.deleted", s.Mock.published[0].EventType)
	s.Equal(tenant.ID, s.Mock.published[0].TenantID)

	_, err = s.Service.GetByID(tenant.ID)
	s.ErrorIs(err, service.ErrTenantNotFound)
}

func (s *TenantServiceTestSuite) TestUpdateSettingsInvalidatesCache() {
	tenant := &models.Tenant{Name: "Acme", Domain: "settings.example.com"}
	s.Require().NoError(s.Service.Create(tenant))

	newSettings := tenant.Settings
	newSettings.WorkingHoursStart = "08:00"
	newSettings.WorkingHoursEnd = "20:00"

	updated, err := s.Service.UpdateSettings(context.Background(), tenant.ID, newSettings)
	s.NoError(err)
	s.Equal("08:00", updated.WorkingHoursStart)
	s.Equal("20:00", updated.WorkingHoursEnd)

	fetched, err := s.Service.GetSettings(context.Background(), tenant.ID)
	s.NoError(err)
	s.Equal("08:00", fetched.WorkingHoursStart)
}
