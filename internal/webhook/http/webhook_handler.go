// Package http provides HTTP handlers for webhook delivery intake.
package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/fulfillment/internal/httputil"
	"github.com/allisson/fulfillment/internal/webhook/domain"
	"github.com/allisson/fulfillment/internal/webhook/http/dto"
	webhookUseCase "github.com/allisson/fulfillment/internal/webhook/usecase"
)

// maxBodyBytes bounds webhook bodies. The platform caps payloads well below
// this; anything larger is not a legitimate delivery.
const maxBodyBytes = 1 << 20

// WebhookHandler handles HTTP requests for inbound webhook deliveries.
type WebhookHandler struct {
	webhookUseCase webhookUseCase.UseCase
	logger         *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with required dependencies.
func NewWebhookHandler(useCase webhookUseCase.UseCase, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookUseCase: useCase,
		logger:         logger,
	}
}

// ReceiveHandler ingests one platform delivery.
// POST /webhooks/shopify
// The raw body is captured exactly as received: signature verification runs
// over these bytes, so no middleware may parse or rewrite them first.
func (h *WebhookHandler) ReceiveHandler(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	delivery := &domain.Delivery{
		Body:      body,
		Signature: c.GetHeader(domain.SignatureHeader),
		Topic:     c.GetHeader(domain.TopicHeader),
		WebhookID: c.GetHeader(domain.WebhookIDHeader),
	}

	result, err := h.webhookUseCase.HandleDelivery(c.Request.Context(), delivery)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResultToAckResponse(result))
}
