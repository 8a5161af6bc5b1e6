package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/storesync/backend/internal/application/webhook"
	"github.com/storesync/backend/internal/domain/ingest"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/telemetry"
	"github.com/storesync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Maximum webhook payload size (2MB - order payloads with many line items
// can get large, but anything beyond this is not a legitimate delivery)
const maxWebhookPayloadSize = 2 << 20

// Shopify webhook headers
const (
	headerTopic      = "X-Shopify-Topic"
	headerShopDomain = "X-Shopify-Shop-Domain"
	headerHmac       = "X-Shopify-Hmac-Sha256"
	headerEventID    = "X-Shopify-Event-Id"
	headerWebhookID  = "X-Shopify-Webhook-Id"
)

// DeliveryProcessor applies a verified webhook delivery
type DeliveryProcessor interface {
	HandleDelivery(ctx context.Context, d webhook.Delivery) (ingest.ApplyResult, error)
}

// WebhookHandler receives webhook deliveries from the commerce platform.
// These endpoints are called by the platform and authenticate via HMAC
// signature instead of tenant credentials.
type WebhookHandler struct {
	BaseHandler
	processor DeliveryProcessor
	secret    string
	env       string
	metrics   *telemetry.SyncMetrics
	logger    *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler. metrics may be nil when
// telemetry is disabled.
func NewWebhookHandler(processor DeliveryProcessor, cfg *config.Config, metrics *telemetry.SyncMetrics, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		secret:    cfg.Shopify.WebhookSecret,
		env:       cfg.App.Env,
		metrics:   metrics,
		logger:    logger,
	}
}

// WebhookResponse represents the acknowledgement returned to the platform
// @name HandlerWebhookResponse
type WebhookResponse struct {
	EventID string `json:"event_id,omitempty" example:"b3f1c2d4-aaaa-bbbb-cccc-000000000001"`
	Outcome string `json:"outcome,omitempty" example:"applied"`
}

// HandleWebhook godoc
//
//	@ID				handleShopifyWebhook
//	@Summary		Receive a platform webhook
//	@Description	Verify the HMAC signature and apply the delivery to the mirrored data set
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			X-Shopify-Topic			header		string			true	"Webhook topic"
//	@Param			X-Shopify-Shop-Domain	header		string			true	"Originating shop domain"
//	@Param			X-Shopify-Hmac-Sha256	header		string			true	"Base64 HMAC-SHA256 of the raw body"
//	@Param			X-Shopify-Event-Id		header		string			false	"Unique delivery identifier"
//	@Success		200						{object}	APIResponse[WebhookResponse]	"Delivery acknowledged"
//	@Failure		400						{object}	ErrorResponse	"Missing identifying headers"
//	@Failure		401						{object}	ErrorResponse	"Signature verification failed"
//	@Failure		500						{object}	ErrorResponse	"Processing failed, platform should redeliver"
//	@Router			/webhooks/shopify [post]
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "Payload too large")
		return
	}

	// a delivery without a signature header is malformed, not forged
	provided := c.GetHeader(headerHmac)
	if h.secret != "" && provided == "" {
		h.BadRequest(c, "Missing X-Shopify-Hmac-Sha256 header")
		return
	}

	if !h.verifySignature(payload, provided) {
		if h.metrics != nil {
			h.metrics.RecordWebhook(c.Request.Context(), c.GetHeader(headerTopic), telemetry.WebhookOutcomeRejected)
		}
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidSignature, "Webhook signature verification failed")
		return
	}

	topic := c.GetHeader(headerTopic)
	shopDomain := c.GetHeader(headerShopDomain)
	if topic == "" || shopDomain == "" {
		h.BadRequest(c, "Missing X-Shopify-Topic or X-Shopify-Shop-Domain header")
		return
	}
	eventID := c.GetHeader(headerEventID)
	if eventID == "" {
		eventID = c.GetHeader(headerWebhookID)
	}
	if eventID == "" {
		h.BadRequest(c, "Missing delivery identifier header")
		return
	}

	result, err := h.processor.HandleDelivery(c.Request.Context(), webhook.Delivery{
		EventID:    eventID,
		Topic:      topic,
		ShopDomain: shopDomain,
		Payload:    payload,
	})
	if err != nil {
		h.logger.Error("Webhook processing failed",
			zap.String("event_id", eventID),
			zap.String("topic", topic),
			zap.String("shop_domain", shopDomain),
			zap.String("request_id", getRequestID(c)),
			zap.Error(err),
		)
		// 500 tells the platform to redeliver; the receipt ledger keeps the
		// redelivery idempotent
		h.InternalError(c, "Webhook processing failed")
		return
	}

	if h.metrics != nil {
		h.metrics.RecordWebhook(c.Request.Context(), topic, telemetry.WebhookOutcome(result.Outcome))
	}

	h.Success(c, WebhookResponse{
		EventID: eventID,
		Outcome: string(result.Outcome),
	})
}

// verifySignature checks the HMAC-SHA256 signature over the raw payload.
// An empty configured secret skips verification outside production so local
// setups can post test deliveries by hand.
func (h *WebhookHandler) verifySignature(payload []byte, provided string) bool {
	if h.secret == "" {
		return h.env != "production"
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(provided))
}
