package service

import (
	"github.com/allisson/fulfillment/internal/webhook/domain"
)

// Platform topic strings this service reacts to.
const (
	TopicOrderCreated   = "orders/create"
	TopicProductUpdated = "products/update"
)

// Classify maps a topic header to a known event kind. Unknown or absent
// topics classify as Unhandled; the endpoint still acknowledges those so the
// platform does not retry-storm events this service does not care about.
func Classify(topicHeader string) domain.EventKind {
	switch topicHeader {
	case TopicOrderCreated:
		return domain.EventKindOrderCreated
	case TopicProductUpdated:
		return domain.EventKindProductUpdated
	default:
		return domain.EventKindUnhandled
	}
}
