package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/slotwise/booking-service/internal/config"
	"github.com/slotwise/booking-service/internal/models"
	"github.com/slotwise/booking-service/internal/repository"
	"github.com/slotwise/booking-service/internal/service"
	"github.com/slotwise/booking-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	testTenantID   = "11111111-1111-1111-1111-111111111111"
	otherTenantID  = "22222222-2222-2222-2222-222222222222"
	testResourceID = "33333333-3333-3333-3333-333333333333"
	testUserID     = "44444444-4444-4444-4444-444444444444"
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
func (m *mockPublisher) Close()     {}
func (m *mockPublisher) Reset()     { m.published = nil }
func (m *mockPublisher) count() int { return len(m.published) }

// fakeTenantSettingsClient returns a fixed OrganizationSettings, standing in
// for an HTTP call to tenant-service.
type fakeTenantSettingsClient struct {
	settings *models.OrganizationSettings
}

func (f *fakeTenantSettingsClient) GetSettings(ctx context.Context, tenantID string) (*models.OrganizationSettings, error) {
	return f.settings, nil
}

// fakeResourceClient returns a fixed ResourceView, standing in for an HTTP
// call to resource-service's internal lookup.
type fakeResourceClient struct {
	view *models.ResourceView
}

func (f *fakeResourceClient) GetResource(ctx context.Context, resourceID string) (*models.ResourceView, error) {
	return f.view, nil
}

type BookingServiceTestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Repo repository.BookingRepository
}

func (s *BookingServiceTestSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(config.NewTestConfig().GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to postgres: %v", err)
	}
	s.DB = db
	assert.NoError(s.T(), db.AutoMigrate(&models.Booking{}))

	s.Repo = repository.NewBookingRepository(db)
}

func (s *BookingServiceTestSuite) TearDownSuite() {
	sqlDB, _ := s.DB.DB()
	sqlDB.Close()
}

func (s *BookingServiceTestSuite) SetupTest() {
	s.DB.Exec("DELETE FROM bookings")
}

func TestBookingServiceSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceTestSuite))
}

func (s *BookingServiceTestSuite) buildService(settings *models.OrganizationSettings, resourceSchedule models.AvailabilitySchedule) (*service.BookingService, *mockPublisher) {
	testLogger := logger.New("debug")
	settingsSvc := service.NewSettingsService(repository.NewSettingsCache(nil, time.Minute, testLogger), &fakeTenantSettingsClient{settings: settings}, testLogger)
	resourceClient := &fakeResourceClient{view: &models.ResourceView{
		ID:                   testResourceID,
		TenantID:             testTenantID,
		Status:               "disponivel",
		AvailabilitySchedule: resourceSchedule,
	}}
	pub := &mockPublisher{}
	return service.NewBookingService(s.Repo, settingsSvc, resourceClient, pub, testLogger), pub
}

func defaultSettings() *models.OrganizationSettings {
	return &models.OrganizationSettings{
		Timezone:           "America/Sao_Paulo",
		WorkingHoursStart:  "08:00",
		WorkingHoursEnd:    "18:00",
		BookingInterval:    60,
		AdvanceBookingDays: 30,
		CancellationHours:  24,
	}
}

// nextWeekday returns the next occurrence of weekday at the given local
// hour, in loc, as a UTC time — a stable way to build fixtures that stay
// within the tenant's advance-booking window regardless of "now".
func nextWeekday(loc *time.Location, weekday time.Weekday, hour int) time.Time {
	now := time.Now().In(loc)
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc).AddDate(0, 0, days)
	return candidate.UTC()
}

func (s *BookingServiceTestSuite) TestCreateAdmitsBookingWithinScheduleAndWorkingHours() {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	start := nextWeekday(loc, time.Thursday, 9)
	end := start.Add(time.Hour)

	svc, pub := s.buildService(defaultSettings(), models.AvailabilitySchedule{
		"Thursday": []models.TimeRange{{Start: "09:00", End: "12:00"}},
	})

	result, err := svc.Create(context.Background(), service.CreateBookingRequest{
		TenantID:   testTenantID,
		ResourceID: testResourceID,
		UserID:     testUserID,
		StartTime:  start.Format(time.RFC3339),
		EndTime:    end.Format(time.RFC3339),
	})
	s.Require().NoError(err)
	s.Require().Len(result, 1)
	s.Equal(models.BookingStatusPending, result[0].Status)
	s.Equal(1, pub.count())
}

func (s *BookingServiceTestSuite) TestCreateRejectsIntervalOutsideAvailabilitySchedule() {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	start := nextWeekday(loc, time.Thursday, 13)
	end := start.Add(time.Hour)

	svc, _ := s.buildService(defaultSettings(), models.AvailabilitySchedule{
		"Thursday": []models.TimeRange{{Start: "09:00", End: "12:00"}},
	})

	_, err := svc.Create(context.Background(), service.CreateBookingRequest{
		TenantID:   testTenantID,
		ResourceID: testResourceID,
		UserID:     testUserID,
		StartTime:  start.Format(time.RFC3339),
		EndTime:    end.Format(time.RFC3339),
	})
	s.ErrorIs(err, service.ErrOutsideWorkingHours)
}

func (s *BookingServiceTestSuite) TestCreateRejectsDurationNotMultipleOfInterval() {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	start := nextWeekday(loc, time.Thursday, 9)
	end := start.Add(45 * time.Minute)

	svc, _ := s.buildService(defaultSettings(), models.AvailabilitySchedule{
		"Thursday": []models.TimeRange{{Start: "09:00", End: "12:00"}},
	})

	_, err := svc.Create(context.Background(), service.CreateBookingRequest{
		TenantID:   testTenantID,
		ResourceID: testResourceID,
		UserID:     testUserID,
		StartTime:  start.Format(time.RFC3339),
		EndTime:    end.Format(time.RFC3339),
	})
	s.ErrorIs(err, service.ErrBadInterval)
}

func (s *BookingServiceTestSuite) TestCreateRejectsOverlappingBookingWithConflictList() {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	start := nextWeekday(loc, time.Thursday, 9)
	end := start.Add(time.Hour)

	schedule := models.AvailabilitySchedule{"Thursday": []models.TimeRange{{Start: "09:00", End: "12:00"}}}
	svc, _ := s.buildService(defaultSettings(), schedule)

	_, err := svc.Create(context.Background(), service.CreateBookingRequest{
		TenantID: testTenantID, ResourceID: testResourceID, UserID: testUserID, StartTime: start.Format(time.RFC3339), EndTime: end.Format(time.RFC3339),
	})
	s.Require().NoError(err)

	_, err = svc.Create(context.Background(), service.CreateBookingRequest{
		TenantID: testTenantID, ResourceID: testResourceID, UserID: testUserID, StartTime: start.Format(time.RFC3339), EndTime: end.Format(time.RFC3339),
	})
	var conflictErr *service.ErrConflict
	s.Require().ErrorAs(err, &conflictErr)
	s.Len(conflictErr.Conflicts, 1)
}

func (s *BookingServiceTestSuite) TestCreateRecurringSetIsAtomicOnInternalOverlap() {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	start := nextWeekday(loc, time.Thursday, 9)
	end := start.Add(time.Hour)

	schedule := models.AvailabilitySchedule{"Thursday": []models.TimeRange{{Start: "09:00", End: "12:00"}}}
	svc, _ := s.buildService(defaultSettings(), schedule)

	// The end date limits the set to this week's two identical Thursday
	// occurrences, so every gate passes and only the sibling overlap fails.
	_, err := svc.Create(context.Background(), service.CreateBookingRequest{
		TenantID:         testTenantID,
		ResourceID:       testResourceID,
		UserID:           testUserID,
		StartTime:        start.Format(time.RFC3339),
		EndTime:          end.Format(time.RFC3339),
		RecurringEnabled: true,
		RecurringPattern: &service.RecurringPatternRequest{
			Frequency:  models.RecurrenceWeekly,
			Interval:   1,
			DaysOfWeek: []int{int(time.Thursday), int(time.Thursday)},
			EndDate:    &end,
		},
	})
	var conflictErr *service.ErrConflict
	s.Require().ErrorAs(err, &conflictErr)

	_, total, err := svc.List(testTenantID, testResourceID, "", 50, 0)
	s.Require().NoError(err)
	s.Equal(int64(0), total)
}

func (s *BookingServiceTestSuite) TestCancelRejectsInsideCancellationWindow() {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	start := time.Now().In(loc).Add(time.Hour)
	end := start.Add(time.Hour)

	settings := defaultSettings()
	svc, _ := s.buildService(settings, models.AvailabilitySchedule{
		start.Weekday().String(): []models.TimeRange{{Start: "00:00", End: "23:59"}},
	})

	booking := &models.Booking{
		TenantID:   testTenantID,
		ResourceID: testResourceID,
		UserID:     testUserID,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		Status:     models.BookingStatusPending,
	}
	s.Require().NoError(s.DB.Create(booking).Error)

	_, err := svc.Cancel(testTenantID, booking.ID, "changed my mind", testUserID)
	s.ErrorIs(err, service.ErrTooLateToCancel)
}

func (s *BookingServiceTestSuite) TestCrossTenantResourceIsRejected() {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	start := nextWeekday(loc, time.Thursday, 9)
	end := start.Add(time.Hour)

	testLogger := logger.New("debug")
	settingsSvc := service.NewSettingsService(repository.NewSettingsCache(nil, time.Minute, testLogger), &fakeTenantSettingsClient{settings: defaultSettings()}, testLogger)
	resourceClient := &fakeResourceClient{view: &models.ResourceView{
		ID:       testResourceID,
		TenantID: otherTenantID,
		Status:   "disponivel",
		AvailabilitySchedule: models.AvailabilitySchedule{
			"Thursday": []models.TimeRange{{Start: "09:00", End: "12:00"}},
		},
	}}
	svc := service.NewBookingService(s.Repo, settingsSvc, resourceClient, &mockPublisher{}, testLogger)

	_, err := svc.Create(context.Background(), service.CreateBookingRequest{
		TenantID: testTenantID, ResourceID: testResourceID, UserID: testUserID, StartTime: start.Format(time.RFC3339), EndTime: end.Format(time.RFC3339),
	})
	s.ErrorIs(err, service.ErrCrossTenant)
}

// TestCreateAcceptsNaiveTimestampNormalizedInTenantTimezone covers spec.md
// §4.4 step 1: a literal with no offset is interpreted in the tenant's
// timezone rather than rejected by JSON binding.
func (s *BookingServiceTestSuite) TestCreateAcceptsNaiveTimestampNormalizedInTenantTimezone() {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	start := nextWeekday(loc, time.Thursday, 9)
	end := start.Add(time.Hour)

	svc, _ := s.buildService(defaultSettings(), models.AvailabilitySchedule{
		"Thursday": []models.TimeRange{{Start: "09:00", End: "12:00"}},
	})

	naiveLayout := "2006-01-02T15:04:05"
	result, err := svc.Create(context.Background(), service.CreateBookingRequest{
		TenantID:   testTenantID,
		ResourceID: testResourceID,
		UserID:     testUserID,
		StartTime:  start.In(loc).Format(naiveLayout),
		EndTime:    end.In(loc).Format(naiveLayout),
	})
	s.Require().NoError(err)
	s.Require().Len(result, 1)
	s.True(start.Equal(result[0].StartTime), "expected %s, got %s", start, result[0].StartTime)
}

// TestCreateRejectsNaiveTimestampInDaylightSavingGap covers the other half
// of spec.md §4.4 step 1 / SPEC_FULL.md's DST-disambiguation rule: a naive
// literal that names a wall-clock time skipped by a spring-forward
// transition has no valid interpretation and must be rejected, not silently
// shifted forward the way Go's time.Date would otherwise resolve it.
func (s *BookingServiceTestSuite) TestCreateRejectsNaiveTimestampInDaylightSavingGap() {
	settings := defaultSettings()
	settings.Timezone = "America/New_York"
	svc, _ := s.buildService(settings, models.AvailabilitySchedule{
		"Sunday": []models.TimeRange{{Start: "00:00", End: "23:59"}},
	})

	// 2024-03-10 is the US spring-forward date; 02:00-03:00 local never occurs.
	_, err := svc.Create(context.Background(), service.CreateBookingRequest{
		TenantID:   testTenantID,
		ResourceID: testResourceID,
		UserID:     testUserID,
		StartTime:  "2024-03-10T02:30:00",
		EndTime:    "2024-03-10T03:30:00",
	})
	s.ErrorIs(err, service.ErrInvalidTimestamp)
}
