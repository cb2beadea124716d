package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/slotwise/resource-service/internal/client"
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

// fakeTenantSettingsClient returns a fixed OrganizationSettings, standing in
// for an HTTP call to tenant-service.
type fakeTenantSettingsClient struct {
	settings *models.OrganizationSettings
}

func (f *fakeTenantSettingsClient) GetSettings(ctx context.Context, tenantID string) (*models.OrganizationSettings, error) {
	return f.settings, nil
}

// fakeBookingClient returns a fixed set of active bookings, standing in for
// an HTTP call to booking-service.
type fakeBookingClient struct {
	windows []client.BookingWindow
}

func (f *fakeBookingClient) GetActiveBookings(ctx context.Context, resourceID string, from, to time.Time) ([]client.BookingWindow, error) {
	return f.windows, nil
}

type AvailabilityServiceTestSuite struct {
	suite.Suite
	DB           *gorm.DB
	ResourceRepo repository.ResourceRepository
	CategoryRepo repository.CategoryRepository
}

func (s *AvailabilityServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(config.NewTestConfig().GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to postgres: %v", err)
	}
	s.DB = db
	assert.NoError(s.T(), db.AutoMigrate(&models.Category{}, &models.Resource{}))

	s.CategoryRepo = repository.NewCategoryRepository(db)
	s.ResourceRepo = repository.NewResourceRepository(db)
}

func (s *AvailabilityServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.DB.DB()
	sqlDB.Close()
}

func (s *AvailabilityServiceTestSuite) SetupTest() {
	s.DB.Exec("DELETE FROM resources")
	s.DB.Exec("DELETE FROM categories")
}

func TestAvailabilityServiceSuite(t *testing.T) {
	suite.Run(t, new(AvailabilityServiceTestSuite))
}

func (s *AvailabilityServiceTestSuite) buildAvailabilityService(settings *models.OrganizationSettings, bookings []client.BookingWindow) (*service.AvailabilityService, *models.Resource) {
	category := &models.Category{TenantID: testTenantID, Name: "Rooms", Type: models.CategoryTypePhysical, IsActive: true}
	s.Require().NoError(s.CategoryRepo.Create(category))

	resource := &models.Resource{
		TenantID:   testTenantID,
		CategoryID: category.ID,
		Name:       "Room A",
		Status:     models.ResourceStatusAvailable,
		AvailabilitySchedule: models.AvailabilitySchedule{
			"Thursday": []models.TimeRange{{Start: "09:00", End: "12:00"}},
		},
	}
	s.Require().NoError(s.ResourceRepo.Create(resource))

	testLogger := logger.New("debug")
	resourceSvc := service.NewResourceService(s.ResourceRepo, s.CategoryRepo, repository.NewAvailabilityCache(nil, time.Minute, testLogger), &mockPublisher{}, testLogger)
	settingsSvc := service.NewSettingsService(repository.NewSettingsCache(nil, time.Minute, testLogger), &fakeTenantSettingsClient{settings: settings}, testLogger)
	availCache := repository.NewAvailabilityCache(nil, time.Minute, testLogger)

	return service.NewAvailabilityService(resourceSvc, settingsSvc, &fakeBookingClient{windows: bookings}, availCache, testLogger), resource
}

func (s *AvailabilityServiceTestSuite) TestGetAvailabilityProjectsSlotsWithinWorkingHours() {
	settings := &models.OrganizationSettings{
		Timezone:          "America/Sao_Paulo",
		WorkingHoursStart: "08:00",
		WorkingHoursEnd:   "18:00",
		BookingInterval:   60,
	}
	svc, resource := s.buildAvailabilityService(settings, nil)

	// 2026-07-30 is a Thursday.
	availability, err := svc.GetAvailability(context.Background(), testTenantID, resource.ID, "2026-07-30")
	s.Require().NoError(err)
	s.Equal("America/Sao_Paulo", availability.Timezone)
	s.Len(availability.Slots, 3)
}

func (s *AvailabilityServiceTestSuite) TestGetAvailabilityEmptyOnClosedDay() {
	settings := &models.OrganizationSettings{
		Timezone:          "America/Sao_Paulo",
		WorkingHoursStart: "08:00",
		WorkingHoursEnd:   "18:00",
		BookingInterval:   60,
	}
	svc, resource := s.buildAvailabilityService(settings, nil)

	// 2026-07-31 is a Friday, not in the schedule.
	availability, err := svc.GetAvailability(context.Background(), testTenantID, resource.ID, "2026-07-31")
	s.Require().NoError(err)
	s.Empty(availability.Slots)
}

func (s *AvailabilityServiceTestSuite) TestGetAvailabilitySubtractsOverlappingBookings() {
	settings := &models.OrganizationSettings{
		Timezone:          "America/Sao_Paulo",
		WorkingHoursStart: "08:00",
		WorkingHoursEnd:   "18:00",
		BookingInterval:   60,
	}
	loc, err := time.LoadLocation(settings.Timezone)
	s.Require().NoError(err)
	booked := time.Date(2026, 7, 30, 10, 0, 0, 0, loc)

	svc, resource := s.buildAvailabilityService(settings, []client.BookingWindow{
		{StartTime: booked.UTC(), EndTime: booked.Add(time.Hour).UTC()},
	})

	availability, err := svc.GetAvailability(context.Background(), testTenantID, resource.ID, "2026-07-30")
	s.Require().NoError(err)
	s.Len(availability.Slots, 2)
}
