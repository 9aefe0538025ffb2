package domain

import (
	"encoding/json"

	apperrors "github.com/allisson/fulfillment/internal/errors"
	customValidation "github.com/allisson/fulfillment/internal/validation"
	validation "github.com/jellydator/validation"
)

// LineItem is a single purchasable entry of a commerce order.
type LineItem struct {
	SKU      string `json:"sku"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// CommerceOrder is the order payload pushed by the platform on orders/create.
// Parsed from the raw delivery body after signature verification; read-only
// downstream.
type CommerceOrder struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	LineItems []LineItem `json:"line_items"`
}

// Validate checks the parsed order carries everything fulfillment needs.
func (o *CommerceOrder) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.ID, validation.Required),
		validation.Field(&o.Email, validation.Required, customValidation.Email),
		validation.Field(&o.LineItems, validation.Required, validation.Length(1, 0)),
	)
}

// Product is the payload pushed by the platform on products/update.
type Product struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Validate checks the parsed product payload.
func (p *Product) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required),
	)
}

// ParseOrder decodes and validates an orders/create body. Failures are
// permanent (ErrMalformedPayload); retrying the same bytes cannot fix them.
func ParseOrder(body []byte) (*CommerceOrder, error) {
	var order CommerceOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedPayload, err.Error())
	}
	if err := order.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedPayload, err.Error())
	}
	return &order, nil
}

// ParseProduct decodes and validates a products/update body.
func ParseProduct(body []byte) (*Product, error) {
	var product Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedPayload, err.Error())
	}
	if err := product.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMalformedPayload, err.Error())
	}
	return &product, nil
}
