package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// userResponse mirrors the subset of user-service's internal user payload
// this client needs.
type userResponse struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	Permissions struct {
		CanManageResources bool `json:"can_manage_resources"`
	} `json:"permissions"`
}

// UserClient resolves permissions against user-service. Implements
// internal/middleware.PermissionChecker, since the JWT itself carries no
// permission claims.
type UserClient struct {
	client  *resty.Client
	baseURL string
}

// NewUserClient creates a new user-service client.
func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{
		client:  resty.New().SetTimeout(timeout),
		baseURL: baseURL,
	}
}

// CanManageResources reports whether userID currently holds the
// can_manage_resources permission.
func (c *UserClient) CanManageResources(ctx context.Context, userID string) (bool, error) {
	var user userResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&user).
		Get(fmt.Sprintf("%s/internal/users/%s", c.baseURL, userID))
	if err != nil {
		return false, fmt.Errorf("failed to reach user-service: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return false, fmt.Errorf("user-service returned unexpected status %d", resp.StatusCode())
	}
	return user.Permissions.CanManageResources, nil
}
