package models_test

import (
	"testing"

	"github.com/slotwise/tenant-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCustomLabelsValueAndScanRoundTrip(t *testing.T) {
	original := models.CustomLabels{
		ResourceSingular: "sala",
		ResourcePlural:   "salas",
		BookingLabel:     "reserva",
		UserLabel:        "usuario",
	}

	value, err := original.Value()
	assert.NoError(t, err)

	var roundTripped models.CustomLabels
	assert.NoError(t, roundTripped.Scan(value))
	assert.Equal(t, original, roundTripped)
}

func TestCustomLabelsScanHandlesNil(t *testing.T) {
	var labels models.CustomLabels
	assert.NoError(t, labels.Scan(nil))
	assert.Equal(t, models.CustomLabels{}, labels)
}

func TestWebhookMatchesRequiresActiveAndRegisteredEvent(t *testing.T) {
	webhook := models.Webhook{IsActive: true, Events: []string{"booking.created", "tenant.deleted"}}

	assert.True(t, webhook.Matches("booking.created"))
	assert.False(t, webhook.Matches("booking.cancelled"))

	webhook.IsActive = false
	assert.False(t, webhook.Matches("booking.created"))
}
