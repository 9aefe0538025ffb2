// Package dto defines request and response types for the webhook HTTP API.
package dto

import (
	"github.com/allisson/fulfillment/internal/webhook/usecase"
)

// DeliveryAckResponse is the body returned for every acknowledged delivery.
// The platform only cares about the status code; the fields exist for humans
// replaying deliveries against the endpoint.
type DeliveryAckResponse struct {
	Status      string `json:"status"`
	EventID     string `json:"event_id,omitempty"`
	Kind        string `json:"kind"`
	Disposition string `json:"disposition"`
}

// MapResultToAckResponse converts a pipeline result to the acknowledgement body.
func MapResultToAckResponse(result *usecase.Result) DeliveryAckResponse {
	return DeliveryAckResponse{
		Status:      "ok",
		EventID:     result.EventID,
		Kind:        string(result.Kind),
		Disposition: string(result.Disposition),
	}
}
