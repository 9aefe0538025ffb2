package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelivery_Identity(t *testing.T) {
	t.Run("uses platform webhook id when present", func(t *testing.T) {
		d := &Delivery{
			Body:      []byte(`{"id":1}`),
			Topic:     "orders/create",
			WebhookID: "b54557e4-bdd9-4b37-8a5f-bf7d70bcd043",
		}
		assert.Equal(t, "b54557e4-bdd9-4b37-8a5f-bf7d70bcd043", d.Identity())
	})

	t.Run("falls back to topic and body hash", func(t *testing.T) {
		d1 := &Delivery{Body: []byte(`{"id":1}`), Topic: "orders/create"}
		d2 := &Delivery{Body: []byte(`{"id":1}`), Topic: "orders/create"}

		assert.Equal(t, d1.Identity(), d2.Identity())
		assert.Len(t, d1.Identity(), 64)
	})

	t.Run("same body different topic yields different identity", func(t *testing.T) {
		d1 := &Delivery{Body: []byte(`{"id":1}`), Topic: "orders/create"}
		d2 := &Delivery{Body: []byte(`{"id":1}`), Topic: "products/update"}

		assert.NotEqual(t, d1.Identity(), d2.Identity())
	})

	t.Run("different body yields different identity", func(t *testing.T) {
		d1 := &Delivery{Body: []byte(`{"id":1}`), Topic: "orders/create"}
		d2 := &Delivery{Body: []byte(`{"id":2}`), Topic: "orders/create"}

		assert.NotEqual(t, d1.Identity(), d2.Identity())
	})
}
