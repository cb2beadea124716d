package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// TenantClient is a synchronous client to tenant-service, used by
// Register to validate that the tenant_id in a signup request refers to
// an existing tenant.
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

// Exists reports whether tenantID refers to a tenant tenant-service
// knows about, by probing its internal settings endpoint.
func (c *TenantClient) Exists(ctx context.Context, tenantID string) (bool, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/internal/tenants/%s/settings", c.baseURL, tenantID))
	if err != nil {
		return false, fmt.Errorf("failed to reach tenant-service: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("tenant-service returned unexpected status %d", resp.StatusCode())
	}
}
