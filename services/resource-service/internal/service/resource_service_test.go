package service_test

import (
	"testing"
	"time"

	"github.com/slotwise/resource-service/internal/config"
	"github.com/slotwise/resource-service/internal/models"
	"github.com/slotwise/resource-service/internal/repository"
	"github.com/slotwise/resource-service/internal/service"
	"github.com/slotwise/resource-service/pkg/events"
	"github.com/slotwise/resource-service/pkg/logger"
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

type ResourceServiceTestSuite struct {
	suite.Suite
	DB             *gorm.DB
	CategoryRepo   repository.CategoryRepository
	ResourceRepo   repository.ResourceRepository
	Service        *service.ResourceService
	Mock           *mockPublisher
	testCategoryID string
}

func (s *ResourceServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(config.NewTestConfig().GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to postgres: %v", err)
	}
	s.DB = db
	assert.NoError(s.T(), db.AutoMigrate(&models.Category{}, &models.Resource{}))

	s.CategoryRepo = repository.NewCategoryRepository(db)
	s.ResourceRepo = repository.NewResourceRepository(db)
}

func (s *ResourceServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.DB.DB()
	sqlDB.Close()
}

func (s *ResourceServiceTestSuite) SetupTest() {
	s.DB.Exec("DELETE FROM resources")
	s.DB.Exec("DELETE FROM categories")

	category := &models.Category{TenantID: testTenantID, Name: "Rooms", Type: models.CategoryTypePhysical, IsActive: true}
	s.Require().NoError(s.CategoryRepo.Create(category))
	s.testCategoryID = category.ID

	s.Mock = &mockPublisher{}
	availCache := repository.NewAvailabilityCache(nil, time.Minute, logger.New("debug"))
	s.Service = service.NewResourceService(s.ResourceRepo, s.CategoryRepo, availCache, s.Mock, logger.New("debug"))
}

func TestResourceServiceSuite(t *testing.T) {
	suite.Run(t, new(ResourceServiceTestSuite))
}

func (s *ResourceServiceTestSuite) TestCreateRejectsCategoryFromAnotherTenant() {
	other := &models.Category{TenantID: otherTenantID, Name: "Foreign", Type: models.CategoryTypePhysical, IsActive: true}
	s.Require().NoError(s.CategoryRepo.Create(other))

	_, err := s.Service.Create(service.CreateResourceRequest{
		TenantID:   testTenantID,
		CategoryID: other.ID,
		Name:       "Room A",
	})
	s.Error(err)
}

func (s *ResourceServiceTestSuite) TestCreateDefaultsToAvailable() {
	resource, err := s.Service.Create(service.CreateResourceRequest{
		TenantID:   testTenantID,
		CategoryID: s.testCategoryID,
		Name:       "Room A",
	})
	s.Require().NoError(err)
	s.Equal(models.ResourceStatusAvailable, resource.Status)
}

func (s *ResourceServiceTestSuite) TestUpdateRejectsInvalidStatus() {
	resource, err := s.Service.Create(service.CreateResourceRequest{
		TenantID:   testTenantID,
		CategoryID: s.testCategoryID,
		Name:       "Room A",
	})
	s.Require().NoError(err)

	badStatus := models.ResourceStatus("quebrado")
	_, err = s.Service.Update(testTenantID, resource.ID, service.UpdateResourceRequest{Status: &badStatus})
	s.ErrorIs(err, service.ErrInvalidResourceStatus)
}

func (s *ResourceServiceTestSuite) TestUpdateAppliesPartialChanges() {
	resource, err := s.Service.Create(service.CreateResourceRequest{
		TenantID:   testTenantID,
		CategoryID: s.testCategoryID,
		Name:       "Room A",
	})
	s.Require().NoError(err)

	newStatus := models.ResourceStatusMaintenance
	updated, err := s.Service.Update(testTenantID, resource.ID, service.UpdateResourceRequest{Status: &newStatus})
	s.Require().NoError(err)
	s.Equal(models.ResourceStatusMaintenance, updated.Status)
	s.Equal("Room A", updated.Name)
}

func (s *ResourceServiceTestSuite) TestDeletePublishesResourceDeleted() {
	resource, err := s.Service.Create(service.CreateResourceRequest{
		TenantID:   testTenantID,
		CategoryID: s.testCategoryID,
		Name:       "Room A",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.Service.Delete(testTenantID, resource.ID))

	s.Require().Len(s.Mock.published, 1)
	s.Equal(events.ResourceDeleted, s.Mock.published[0].EventType)

	_, err = s.Service.Get(testTenantID, resource.ID)
	s.ErrorIs(err, repository.ErrResourceNotFound)
}
