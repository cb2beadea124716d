package service_test

import (
	"testing"

	"github.com/slotwise/resource-service/internal/config"
	"github.com/slotwise/resource-service/internal/models"
	"github.com/slotwise/resource-service/internal/repository"
	"github.com/slotwise/resource-service/internal/service"
	"github.com/slotwise/resource-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const testTenantID = "11111111-1111-1111-1111-111111111111"
const otherTenantID = "22222222-2222-2222-2222-222222222222"

type CategoryServiceTestSuite struct {
	suite.Suite
	DB      *gorm.DB
	Service *service.CategoryService
	Repo    repository.CategoryRepository
}

func (s *CategoryServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(config.NewTestConfig().GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to postgres: %v", err)
	}
	s.DB = db
	assert.NoError(s.T(), db.AutoMigrate(&models.Category{}))

	s.Repo = repository.NewCategoryRepository(db)
	s.Service = service.NewCategoryService(s.Repo, logger.New("debug"))
}

func (s *CategoryServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.DB.DB()
	sqlDB.Close()
}

func (s *CategoryServiceTestSuite) SetupTest() {
	s.DB.Exec("DELETE FROM categories")
}

func TestCategoryServiceSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func (s *CategoryServiceTestSuite) TestCreateRejectsInvalidType() {
	_, err := s.Service.Create(service.CreateCategoryRequest{
		TenantID: testTenantID,
		Name:     "Meeting Rooms",
		Type:     models.CategoryType("invalido"),
	})
	s.ErrorIs(err, service.ErrInvalidCategoryType)
}

func (s *CategoryServiceTestSuite) TestCreateAndGet() {
	category, err := s.Service.Create(service.CreateCategoryRequest{
		TenantID: testTenantID,
		Name:     "Meeting Rooms",
		Type:     models.CategoryTypePhysical,
	})
	s.Require().NoError(err)
	s.NotEmpty(category.ID)
	s.True(category.IsActive)

	fetched, err := s.Service.Get(testTenantID, category.ID)
	s.Require().NoError(err)
	s.Equal("Meeting Rooms", fetched.Name)
}

func (s *CategoryServiceTestSuite) TestGetIsTenantScoped() {
	category, err := s.Service.Create(service.CreateCategoryRequest{
		TenantID: testTenantID,
		Name:     "Consultants",
		Type:     models.CategoryTypeHuman,
	})
	s.Require().NoError(err)

	_, err = s.Service.Get(otherTenantID, category.ID)
	s.ErrorIs(err, repository.ErrCategoryNotFound)
}

func (s *CategoryServiceTestSuite) TestUpdatePatchesOnlyProvidedFields() {
	category, err := s.Service.Create(service.CreateCategoryRequest{
		TenantID: testTenantID,
		Name:     "Software Seats",
		Type:     models.CategoryTypeSoftware,
	})
	s.Require().NoError(err)

	newName := "Renamed Seats"
	isActive := false
	updated, err := s.Service.Update(testTenantID, category.ID, service.UpdateCategoryRequest{
		Name:     &newName,
		IsActive: &isActive,
	})
	s.Require().NoError(err)
	s.Equal("Renamed Seats", updated.Name)
	s.False(updated.IsActive)
	s.Equal(models.CategoryTypeSoftware, updated.Type)
}

func (s *CategoryServiceTestSuite) TestDeleteThenGetNotFound() {
	category, err := s.Service.Create(service.CreateCategoryRequest{
		TenantID: testTenantID,
		Name:     "Temporary",
		Type:     models.CategoryTypePhysical,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.Service.Delete(testTenantID, category.ID))

	_, err = s.Service.Get(testTenantID, category.ID)
	s.ErrorIs(err, repository.ErrCategoryNotFound)
}
