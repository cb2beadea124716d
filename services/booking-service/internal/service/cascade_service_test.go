package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/slotwise/booking-service/internal/models"
	"github.com/slotwise/booking-service/internal/repository"
	"github.com/slotwise/booking-service/internal/service"
	"github.com/slotwise/booking-service/pkg/events"
	"github.com/slotwise/booking-service/pkg/logger"
	"github.com/stretchr/testify/suite"
)

type CascadeServiceTestSuite struct {
	BookingServiceTestSuite
	Cascade *service.CascadeService
	Pub     *mockPublisher
}

func (s *CascadeServiceTestSuite) SetupTest() {
	s.BookingServiceTestSuite.SetupTest()
	s.Pub = &mockPublisher{}
	s.Cascade = service.NewCascadeService(s.Repo, s.Pub, logger.New("debug"))
}

func TestCascadeServiceSuite(t *testing.T) {
	suite.Run(t, new(CascadeServiceTestSuite))
}

func (s *CascadeServiceTestSuite) seedBooking(resourceID, userID string, status models.BookingStatus) *models.Booking {
	booking := &models.Booking{
		TenantID:   testTenantID,
		ResourceID: resourceID,
		UserID:     userID,
		StartTime:  time.Now().Add(time.Hour),
		EndTime:    time.Now().Add(2 * time.Hour),
		Status:     status,
	}
	s.Require().NoError(s.DB.Create(booking).Error)
	return booking
}

func (s *CascadeServiceTestSuite) TestHandleResourceDeletedCancelsActiveBookings() {
	booking := s.seedBooking(testResourceID, testUserID, models.BookingStatusPending)
	other := s.seedBooking("55555555-5555-5555-5555-555555555555", testUserID, models.BookingStatusPending)

	payload, _ := json.Marshal(map[string]string{"resource_id": testResourceID, "tenant_id": testTenantID})
	envelope := events.Envelope{EventType: events.ResourceDeleted, Payload: payload}

	s.Require().NoError(s.Cascade.HandleResourceDeleted(context.Background(), envelope))

	var reloaded models.Booking
	s.Require().NoError(s.DB.First(&reloaded, "id = ?", booking.ID).Error)
	s.Equal(models.BookingStatusCancelled, reloaded.Status)

	var untouched models.Booking
	s.Require().NoError(s.DB.First(&untouched, "id = ?", other.ID).Error)
	s.Equal(models.BookingStatusPending, untouched.Status)

	s.Equal(1, s.Pub.count())
}

func (s *CascadeServiceTestSuite) TestHandleUserDeletedCancelsOnlyThatUsersBookings() {
	mine := s.seedBooking(testResourceID, testUserID, models.BookingStatusConfirmed)
	someoneElses := s.seedBooking(testResourceID, "66666666-6666-6666-6666-666666666666", models.BookingStatusConfirmed)

	payload, _ := json.Marshal(map[string]string{"user_id": testUserID, "tenant_id": testTenantID})
	envelope := events.Envelope{EventType: events.UserDeleted, Payload: payload}

	s.Require().NoError(s.Cascade.HandleUserDeleted(context.Background(), envelope))

	var reloaded models.Booking
	s.Require().NoError(s.DB.First(&reloaded, "id = ?", mine.ID).Error)
	s.Equal(models.BookingStatusCancelled, reloaded.Status)

	var untouched models.Booking
	s.Require().NoError(s.DB.First(&untouched, "id = ?", someoneElses.ID).Error)
	s.Equal(models.BookingStatusConfirmed, untouched.Status)
}

func (s *CascadeServiceTestSuite) TestHandleTenantDeletedHardDeletesWithoutEvents() {
	booking := s.seedBooking(testResourceID, testUserID, models.BookingStatusPending)

	payload, _ := json.Marshal(map[string]string{"tenant_id": testTenantID})
	envelope := events.Envelope{EventType: events.TenantDeleted, Payload: payload}

	s.Require().NoError(s.Cascade.HandleTenantDeleted(context.Background(), envelope))

	_, err := (repository.NewBookingRepository(s.DB)).GetByTenantAndID(testTenantID, booking.ID)
	s.ErrorIs(err, repository.ErrBookingNotFound)
	s.Equal(0, s.Pub.count())
}
