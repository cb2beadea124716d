package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/slotwise/resource-service/internal/models"
)

// TenantClient fetches OrganizationSettings from tenant-service, the
// fallback leg of the settings cache-with-fallback of spec.md §9.
type TenantClient struct {
	client  *resty.Client
	baseURL string
}

// NewTenantClient creates a new tenant-service client.
func NewTenantClient(baseURL string, timeout time.Duration) *TenantClient {
	return &TenantClient{
		client:  resty.New().SetTimeout(timeout),
		baseURL: baseURL,
	}
}

// ErrTenantNotFound is returned when tenant-service has no record of the tenant.
var ErrTenantNotFound = fmt.Errorf("tenant not found")

// GetSettings fetches the tenant's current OrganizationSettings.
func (c *TenantClient) GetSettings(ctx context.Context, tenantID string) (*models.OrganizationSettings, error) {
	var settings models.OrganizationSettings
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&settings).
		Get(fmt.Sprintf("%s/internal/tenants/%s/settings", c.baseURL, tenantID))
	if err != nil {
		return nil, fmt.Errorf("failed to reach tenant-service: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return &settings, nil
	case http.StatusNotFound:
		return nil, ErrTenantNotFound
	default:
		return nil, fmt.Errorf("tenant-service returned unexpected status %d", resp.StatusCode())
	}
}
