package service_test

import (
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

type WebhookServiceTestSuite struct {
	suite.Suite
	DB      *gorm.DB
	Service *service.WebhookService
	TenantA string
}

func (s *WebhookServiceTestSuite) SetupSuite() {
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
	repo := repository.NewWebhookRepository(db, testLogger)
	s.Service = service.NewWebhookService(repo, testLogger)
	s.TenantA = "11111111-1111-1111-1111-111111111111"
}

func (s *WebhookServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.DB.DB()
	sqlDB.Close()
}

func (s *WebhookServiceTestSuite) SetupTest() {
	s.DB.Exec("DELETE FROM webhooks")
}

func TestWebhookServiceSuite(t *testing.T) {
	suite.Run(t, new(WebhookServiceTestSuite))
}

func (s *WebhookServiceTestSuite) TestCreateRejectsDisallowedScheme() {
	webhook := &models.Webhook{TenantID: s.TenantA, URL: "ftp://example.com/hook", Events: []string{"booking.created"}}
	err := s.Service.Create(webhook)
	s.ErrorIs(err, service.ErrInvalidWebhookURL)
}

func (s *WebhookServiceTestSuite) TestCreateAllowsHTTPSAndLocalhost() {
	https := &models.Webhook{TenantID: s.TenantA, URL: "https://example.com/hook", Events: []string{"booking.created"}}
	s.NoError(s.Service.Create(https))

	local := &models.Webhook{TenantID: s.TenantA, URL: "http://localhost:4000/hook", Events: []string{"tenant.deleted"}}
	s.NoError(s.Service.Create(local))
}

func (s *WebhookServiceTestSuite) TestListByTenantScopesCorrectly() {
	tenantB := "22222222-2222-2222-2222-222222222222"
	s.Require().NoError(s.Service.Create(&models.Webhook{TenantID: s.TenantA, URL: "https://a.example.com", Events: []string{"booking.created"}}))
	s.Require().NoError(s.Service.Create(&models.Webhook{TenantID: tenantB, URL: "https://b.example.com", Events: []string{"booking.created"}}))

	webhooks, err := s.Service.ListByTenant(s.TenantA)
	s.NoError(err)
	s.Len(webhooks, 1)
	s.Equal("https://a.example.com", webhooks[0].URL)
}
