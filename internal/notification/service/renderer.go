package service

import (
	"fmt"
	"html/template"
	"strings"

	licenseDomain "github.com/allisson/fulfillment/internal/license/domain"
	webhookDomain "github.com/allisson/fulfillment/internal/webhook/domain"
)

// Rendering is pure: only the transmission step in the Mailer has side effects.

var orderLicensesTemplate = template.Must(template.New("order_licenses").Parse(`<html>
<body>
<p>Thank you for your order #{{.OrderID}}!</p>
<p>Your license keys:</p>
<ul>
{{- range .Items}}
<li><strong>{{.Title}}</strong> ({{.SKU}}): <code>{{.Key}}</code></li>
{{- end}}
</ul>
<p>Keep these keys safe; you will need them to activate your products.</p>
</body>
</html>
`))

var productUpdateTemplate = template.Must(template.New("product_update").Parse(`<html>
<body>
<p>Product <strong>{{.Title}}</strong> (id {{.ID}}) was updated in your store.</p>
</body>
</html>
`))

// orderLicensesData feeds the batched order email template.
type orderLicensesData struct {
	OrderID int64
	Items   []orderLicenseItem
}

type orderLicenseItem struct {
	SKU   string
	Title string
	Key   string
}

// RenderOrderLicenses renders the single batched email for an order: every
// line item with its issued key. Titles come from the order payload, keys
// from the matching license records.
func RenderOrderLicenses(
	order *webhookDomain.CommerceOrder,
	licenses []*licenseDomain.LicenseRecord,
) (subject string, htmlBody string, err error) {
	keysBySKU := make(map[string]string, len(licenses))
	for _, license := range licenses {
		keysBySKU[license.SKU] = license.Key
	}

	data := orderLicensesData{OrderID: order.ID}
	for _, item := range order.LineItems {
		key, ok := keysBySKU[item.SKU]
		if !ok {
			return "", "", fmt.Errorf("no license issued for sku %s", item.SKU)
		}
		data.Items = append(data.Items, orderLicenseItem{
			SKU:   item.SKU,
			Title: item.Title,
			Key:   key,
		})
	}

	var body strings.Builder
	if err := orderLicensesTemplate.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to render order email: %w", err)
	}

	subject = fmt.Sprintf("Your license keys for order #%d", order.ID)
	return subject, body.String(), nil
}

// RenderProductUpdate renders the merchant notification for a product update.
func RenderProductUpdate(product *webhookDomain.Product) (subject string, htmlBody string, err error) {
	var body strings.Builder
	if err := productUpdateTemplate.Execute(&body, product); err != nil {
		return "", "", fmt.Errorf("failed to render product update email: %w", err)
	}

	subject = fmt.Sprintf("Product updated: %s", product.Title)
	return subject, body.String(), nil
}
