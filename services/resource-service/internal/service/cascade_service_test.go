package service_test

import (
	"context"
	"encoding/json"
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

// fakeAvailabilityInvalidator records which resources had their cache
// invalidated, standing in for repository.AvailabilityCache without Redis.
type fakeAvailabilityInvalidator struct {
	invalidated []string
}

func (f *fakeAvailabilityInvalidator) InvalidateResource(ctx context.Context, resourceID string) {
	f.invalidated = append(f.invalidated, resourceID)
}

type CascadeServiceTestSuite struct {
	suite.Suite
	DB           *gorm.DB
	CategoryRepo repository.CategoryRepository
	ResourceRepo repository.ResourceRepository
	CategorySvc  *service.CategoryService
	ResourceSvc  *service.ResourceService
	Invalidator  *fakeAvailabilityInvalidator
	Cascade      *service.CascadeService
}

func (s *CascadeServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(config.NewTestConfig().GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to postgres: %v", err)
	}
	s.DB = db
	assert.NoError(s.T(), db.AutoMigrate(&models.Category{}, &models.Resource{}))

	s.CategoryRepo = repository.NewCategoryRepository(db)
	s.ResourceRepo = repository.NewResourceRepository(db)
	s.CategorySvc = service.NewCategoryService(s.CategoryRepo, logger.New("debug"))
}

func (s *CascadeServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.DB.DB()
	sqlDB.Close()
}

func (s *CascadeServiceTestSuite) SetupTest() {
	s.DB.Exec("DELETE FROM resources")
	s.DB.Exec("DELETE FROM categories")

	availCache := repository.NewAvailabilityCache(nil, time.Minute, logger.New("debug"))
	s.ResourceSvc = service.NewResourceService(s.ResourceRepo, s.CategoryRepo, availCache, &mockPublisher{}, logger.New("debug"))
	s.Invalidator = &fakeAvailabilityInvalidator{}
	s.Cascade = service.NewCascadeService(s.CategorySvc, s.ResourceSvc, s.Invalidator, logger.New("debug"))
}

func TestCascadeServiceSuite(t *testing.T) {
	suite.Run(t, new(CascadeServiceTestSuite))
}

func (s *CascadeServiceTestSuite) TestHandleTenantDeletedRemovesCategoriesAndResources() {
	category, err := s.CategorySvc.Create(service.CreateCategoryRequest{
		TenantID: testTenantID, Name: "Rooms", Type: models.CategoryTypePhysical,
	})
	s.Require().NoError(err)
	_, err = s.ResourceSvc.Create(service.CreateResourceRequest{
		TenantID: testTenantID, CategoryID: category.ID, Name: "Room A",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.Cascade.HandleTenantDeleted(context.Background(), testTenantID))

	_, total, err := s.CategorySvc.List(testTenantID, 50, 0)
	s.Require().NoError(err)
	s.Equal(int64(0), total)

	_, total, err = s.ResourceSvc.List(testTenantID, "", 50, 0)
	s.Require().NoError(err)
	s.Equal(int64(0), total)
}

func (s *CascadeServiceTestSuite) TestHandleTenantDeletedLeavesOtherTenantsAlone() {
	category, err := s.CategorySvc.Create(service.CreateCategoryRequest{
		TenantID: otherTenantID, Name: "Rooms", Type: models.CategoryTypePhysical,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.Cascade.HandleTenantDeleted(context.Background(), testTenantID))

	_, total, err := s.CategorySvc.List(otherTenantID, 50, 0)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.NotEmpty(category.ID)
}

func (s *CascadeServiceTestSuite) TestHandleResourceScopedEventInvalidatesNamedResource() {
	payload, _ := json.Marshal(map[string]string{"resource_id": "resource-123"})
	envelope := events.Envelope{EventType: events.BookingCreated, Payload: payload}

	s.Require().NoError(s.Cascade.HandleResourceScopedEvent(context.Background(), envelope))
	s.Equal([]string{"resource-123"}, s.Invalidator.invalidated)
}

func (s *CascadeServiceTestSuite) TestHandleResourceScopedEventIgnoresMalformedPayload() {
	envelope := events.Envelope{EventType: events.BookingCreated, Payload: json.RawMessage(`not-json`)}

	s.Require().NoError(s.Cascade.HandleResourceScopedEvent(context.Background(), envelope))
	s.Empty(s.Invalidator.invalidated)
}
