package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/slotwise/booking-service/internal/models"
)

// ErrResourceNotFound is returned when resource-service has no record of the resource.
var ErrResourceNotFound = fmt.Errorf("resource not found")

// ResourceClient fetches a resource's status and availability schedule
// from resource-service, the input to the admission engine's I4a/I4b
// policy gates (spec.md §4.4).
type ResourceClient struct {
	client  *resty.Client
	baseURL string
}

// NewResourceClient creates a new resource-service client.
func NewResourceClient(baseURL string, timeout time.Duration) *ResourceClient {
	return &ResourceClient{
		client:  resty.New().SetTimeout(timeout),
		baseURL: baseURL,
	}
}

// GetResource fetches the current status and availability schedule of resourceID.
func (c *ResourceClient) GetResource(ctx context.Context, resourceID string) (*models.ResourceView, error) {
	var view models.ResourceView
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&view).
		Get(fmt.Sprintf("%s/internal/resources/%s", c.baseURL, resourceID))
	if err != nil {
		return nil, fmt.Errorf("failed to reach resource-service: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return &view, nil
	case http.StatusNotFound:
		return nil, ErrResourceNotFound
	default:
		return nil, fmt.Errorf("resource-service returned unexpected status %d", resp.StatusCode())
	}
}
