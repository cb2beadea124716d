package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/slotwise/tenant-service/internal/repository"
	"github.com/slotwise/tenant-service/pkg/events"
	"github.com/slotwise/tenant-service/pkg/logger"
)

// WebhookDispatcher is an extra consumer-group member on both the
// booking-events and deletion-events streams. For every event it matches
// the event kind against each active webhook's registered events for
// that tenant and delivers a signed, best-effort POST. This realizes the
// webhook-egress feature spec.md's distillation dropped but the original
// system's event model implies.
type WebhookDispatcher struct {
	repo   repository.WebhookRepository
	client *resty.Client
	logger logger.Logger
}

// NewWebhookDispatcher creates a new webhook dispatcher.
func NewWebhookDispatcher(repo repository.WebhookRepository, timeout time.Duration, logger logger.Logger) *WebhookDispatcher {
	client := resty.New().SetTimeout(timeout)
	return &WebhookDispatcher{repo: repo, client: client, logger: logger}
}

// webhookDeliveryBody is the payload POSTed to a registered webhook URL,
// per spec.md §6: {"event": "<event_type>", "data": {...payload}}.
type webhookDeliveryBody struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handle is an events.Handler matching spec.md §6's event envelope. It
// never returns an error for delivery failures — webhook egress is
// best-effort and must not block ack/redelivery of the source event.
func (d *WebhookDispatcher) Handle(ctx context.Context, envelope events.Envelope) error {
	webhooks, err := d.repo.ListActiveForEvent(envelope.EventType)
	if err != nil {
		return err
	}

	body := webhookDeliveryBody{
		Event: envelope.EventType,
		Data:  envelope.Payload,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	for _, wh := range webhooks {
		if wh.TenantID != envelope.Metadata.TenantID {
			continue
		}
		d.deliver(ctx, wh.URL, wh.Secret, data)
	}
	return nil
}

func (d *WebhookDispatcher) deliver(ctx context.Context, url string, secret *string, body []byte) {
	req := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	if secret != nil && *secret != "" {
		req.SetHeader("X-Webhook-Signature", sign(*secret, body))
	}

	resp, err := req.Post(url)
	if err != nil {
		d.logger.Warn("webhook delivery failed", "url", url, "error", err)
		return
	}
	if resp.IsError() {
		d.logger.Warn("webhook delivery rejected", "url", url, "status", resp.StatusCode())
	}
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
