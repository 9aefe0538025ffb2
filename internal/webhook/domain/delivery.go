// Package domain defines the core webhook domain entities and types.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Header names used by the commerce platform on every delivery.
const (
	SignatureHeader = "X-Shopify-Hmac-Sha256"
	TopicHeader     = "X-Shopify-Topic"
	WebhookIDHeader = "X-Shopify-Webhook-Id"
)

// EventKind classifies a delivery topic into an event this service handles.
type EventKind string

const (
	EventKindOrderCreated   EventKind = "order_created"
	EventKindProductUpdated EventKind = "product_updated"
	EventKindUnhandled      EventKind = "unhandled"
)

// Delivery is one inbound webhook request: the exact raw body bytes plus the
// headers the platform signs and identifies it with. Captured once per
// request and never mutated; the signature is computed over Body as received,
// not over a re-serialized parse.
type Delivery struct {
	Body      []byte
	Signature string
	Topic     string
	WebhookID string
}

// Identity returns the stable deduplication key for the delivery: the
// platform-provided webhook id when present, otherwise a SHA-256 of topic and
// body. Two deliveries of the same logical event yield the same identity.
func (d *Delivery) Identity() string {
	if d.WebhookID != "" {
		return d.WebhookID
	}

	h := sha256.New()
	h.Write([]byte(d.Topic))
	h.Write([]byte("\n"))
	h.Write(d.Body)
	return hex.EncodeToString(h.Sum(nil))
}
