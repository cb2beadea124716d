package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// BookingWindow is a single booked interval as reported by booking-service.
type BookingWindow struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// BookingClient fetches the non-cancelled bookings of a resource for a
// given day, the overlap-subtraction input of the availability projection
// (spec.md §4.3 step 7).
type BookingClient struct {
	client  *resty.Client
	baseURL string
}

// NewBookingClient creates a new booking-service client.
func NewBookingClient(baseURL string, timeout time.Duration) *BookingClient {
	return &BookingClient{
		client:  resty.New().SetTimeout(timeout),
		baseURL: baseURL,
	}
}

// GetActiveBookings returns every pending or confirmed booking of
// resourceID that overlaps the UTC window [from, to).
func (c *BookingClient) GetActiveBookings(ctx context.Context, resourceID string, from, to time.Time) ([]BookingWindow, error) {
	var windows []BookingWindow
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"resource_id": resourceID,
			"from":        from.UTC().Format(time.RFC3339),
			"to":          to.UTC().Format(time.RFC3339),
		}).
		SetResult(&windows).
		Get(fmt.Sprintf("%s/internal/bookings/active", c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to reach booking-service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("booking-service returned unexpected status %d", resp.StatusCode())
	}
	return windows, nil
}
