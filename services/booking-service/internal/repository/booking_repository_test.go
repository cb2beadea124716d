package repository_test

import (
	"testing"
	"time"

	"github.com/slotwise/booking-service/internal/config"
	"github.com/slotwise/booking-service/internal/models"
	"github.com/slotwise/booking-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	testTenantID   = "11111111-1111-1111-1111-111111111111"
	testResourceID = "33333333-3333-3333-3333-333333333333"
	testUserID     = "44444444-4444-4444-4444-444444444444"
)

type BookingRepositoryTestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Repo repository.BookingRepository
}

func (s *BookingRepositoryTestSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(config.NewTestConfig().GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to postgres: %v", err)
	}
	s.DB = db
	assert.NoError(s.T(), db.AutoMigrate(&models.Booking{}))
	s.Repo = repository.NewBookingRepository(db)
}

func (s *BookingRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.DB.DB()
	sqlDB.Close()
}

func (s *BookingRepositoryTestSuite) SetupTest() {
	s.DB.Exec("DELETE FROM bookings")
}

func TestBookingRepositorySuite(t *testing.T) {
	suite.Run(t, new(BookingRepositoryTestSuite))
}

func newBooking(resourceID string, start, end time.Time) *models.Booking {
	return &models.Booking{
		TenantID:   testTenantID,
		ResourceID: resourceID,
		UserID:     testUserID,
		StartTime:  start,
		EndTime:    end,
		Status:     models.BookingStatusPending,
	}
}

func (s *BookingRepositoryTestSuite) TestCreateWithConflictCheckPersistsWhenNoOverlap() {
	start := time.Now().Add(time.Hour).UTC()
	end := start.Add(time.Hour)

	conflicts, err := s.Repo.CreateWithConflictCheck([]*models.Booking{newBooking(testResourceID, start, end)}, "")
	s.Require().NoError(err)
	s.Empty(conflicts)

	var count int64
	s.DB.Model(&models.Booking{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *BookingRepositoryTestSuite) TestCreateWithConflictCheckDetectsOverlapAndPersistsNothing() {
	start := time.Now().Add(time.Hour).UTC()
	end := start.Add(time.Hour)

	existing := newBooking(testResourceID, start, end)
	s.Require().NoError(s.DB.Create(existing).Error)

	overlap := newBooking(testResourceID, start.Add(30*time.Minute), end.Add(30*time.Minute))
	conflicts, err := s.Repo.CreateWithConflictCheck([]*models.Booking{overlap}, "")
	s.Require().NoError(err)
	s.Require().Len(conflicts, 1)
	s.Equal(existing.ID, conflicts[0].ID)

	var count int64
	s.DB.Model(&models.Booking{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *BookingRepositoryTestSuite) TestCreateWithConflictCheckBatchIsAllOrNothing() {
	start := time.Now().Add(time.Hour).UTC()

	batch := []*models.Booking{
		newBooking(testResourceID, start, start.Add(time.Hour)),
		newBooking(testResourceID, start.Add(2*time.Hour), start.Add(3*time.Hour)),
		newBooking(testResourceID, start.Add(30*time.Minute), start.Add(90*time.Minute)),
	}

	conflicts, err := s.Repo.CreateWithConflictCheck(batch, "")
	s.Require().NoError(err)
	s.NotEmpty(conflicts)

	var count int64
	s.DB.Model(&models.Booking{}).Count(&count)
	s.Equal(int64(0), count)
}

func (s *BookingRepositoryTestSuite) TestCreateWithConflictCheckExcludesGivenID() {
	start := time.Now().Add(time.Hour).UTC()
	end := start.Add(time.Hour)

	existing := newBooking(testResourceID, start, end)
	s.Require().NoError(s.DB.Create(existing).Error)

	existing.StartTime = start.Add(15 * time.Minute)
	existing.EndTime = end.Add(15 * time.Minute)
	conflicts, err := s.Repo.CreateWithConflictCheck([]*models.Booking{existing}, existing.ID)
	s.Require().NoError(err)
	s.Empty(conflicts)
}

func (s *BookingRepositoryTestSuite) TestCancelByResourceOnlyTouchesActiveBookings() {
	start := time.Now().Add(time.Hour).UTC()
	active := newBooking(testResourceID, start, start.Add(time.Hour))
	s.Require().NoError(s.DB.Create(active).Error)

	alreadyCancelled := newBooking(testResourceID, start.Add(3*time.Hour), start.Add(4*time.Hour))
	alreadyCancelled.Status = models.BookingStatusCancelled
	s.Require().NoError(s.DB.Create(alreadyCancelled).Error)

	affected, err := s.Repo.CancelByResource(testResourceID)
	s.Require().NoError(err)
	s.Require().Len(affected, 1)
	s.Equal(active.ID, affected[0].ID)
}

func (s *BookingRepositoryTestSuite) TestDeleteRemovesOnlyTheGivenTenantsBooking() {
	start := time.Now().Add(time.Hour).UTC()
	booking := newBooking(testResourceID, start, start.Add(time.Hour))
	s.Require().NoError(s.DB.Create(booking).Error)

	s.Require().NoError(s.Repo.Delete(testTenantID, booking.ID))

	var count int64
	s.DB.Model(&models.Booking{}).Where("id = ?", booking.ID).Count(&count)
	s.Equal(int64(0), count)
}

func (s *BookingRepositoryTestSuite) TestDeleteUnknownIDReturnsNotFound() {
	err := s.Repo.Delete(testTenantID, "00000000-0000-0000-0000-000000000000")
	s.ErrorIs(err, repository.ErrBookingNotFound)
}

func (s *BookingRepositoryTestSuite) TestListStalePendingFindsOnlyPastPendingBookings() {
	past := newBooking(testResourceID, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	s.Require().NoError(s.DB.Create(past).Error)

	future := newBooking(testResourceID, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	s.Require().NoError(s.DB.Create(future).Error)

	stale, err := s.Repo.ListStalePending(time.Now().UTC())
	s.Require().NoError(err)
	s.Require().Len(stale, 1)
	s.Equal(past.ID, stale[0].ID)
}
