package models_test

import (
	"testing"

	"github.com/slotwise/resource-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAvailabilityScheduleValueAndScanRoundTrip(t *testing.T) {
	original := models.AvailabilitySchedule{
		"Monday":  []models.TimeRange{{Start: "09:00", End: "12:00"}, {Start: "13:00", End: "18:00"}},
		"Tuesday": []models.TimeRange{{Start: "09:00", End: "18:00"}},
	}

	value, err := original.Value()
	assert.NoError(t, err)

	var roundTripped models.AvailabilitySchedule
	assert.NoError(t, roundTripped.Scan(value))
	assert.Equal(t, original, roundTripped)
}

func TestAvailabilityScheduleScanHandlesNil(t *testing.T) {
	var schedule models.AvailabilitySchedule
	assert.NoError(t, schedule.Scan(nil))
	assert.Equal(t, models.AvailabilitySchedule{}, schedule)
}

func TestAttributesValueAndScanRoundTrip(t *testing.T) {
	original := models.Attributes{"color": "red", "seats": float64(4)}

	value, err := original.Value()
	assert.NoError(t, err)

	var roundTripped models.Attributes
	assert.NoError(t, roundTripped.Scan(value))
	assert.Equal(t, original, roundTripped)
}

func TestCategoryTypeIsValid(t *testing.T) {
	assert.True(t, models.CategoryTypePhysical.IsValid())
	assert.True(t, models.CategoryTypeHuman.IsValid())
	assert.True(t, models.CategoryTypeSoftware.IsValid())
	assert.False(t, models.CategoryType("invalido").IsValid())
}

func TestResourceStatusIsValid(t *testing.T) {
	assert.True(t, models.ResourceStatusAvailable.IsValid())
	assert.True(t, models.ResourceStatusMaintenance.IsValid())
	assert.True(t, models.ResourceStatusUnavailable.IsValid())
	assert.False(t, models.ResourceStatus("quebrado").IsValid())
}
