// internal/pkg/receipt/pdf.go
package receipt

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/your-org/storefront-checkout/internal/domain/basket"
)

// RenderPDF rasterizes the receipt. It consumes the same computed Data as
// RenderText, so the two renderings always agree on every amount.
func (s *Service) RenderPDF(data Data) (*bytes.Buffer, error) {
	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data Data) (string, error) {
	tmpl := template.Must(template.New("receipt").Funcs(template.FuncMap{
		"minor": formatMinor,
		"isPostal": func(m basket.ShipmentMethod) bool {
			return m == basket.ShipmentPostal
		},
	}).Parse(receiptTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// Receipt HTML template
const receiptTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.Number}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            text-align: center;
            border-bottom: 2px solid #333;
            padding-bottom: 10px;
            margin-bottom: 20px;
        }
        .header h1 {
            margin: 0;
            font-size: 22px;
        }
        .meta, .recipient {
            margin-bottom: 20px;
        }
        .meta td, .recipient td {
            padding: 2px 8px 2px 0;
        }
        table.items {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 20px;
        }
        table.items th, table.items td {
            border-bottom: 1px solid #ddd;
            padding: 6px 8px;
            text-align: right;
        }
        table.items th:first-child, table.items td:first-child {
            text-align: left;
        }
        table.totals {
            width: 50%;
            margin-left: auto;
            border-collapse: collapse;
        }
        table.totals td {
            padding: 4px 8px;
        }
        table.totals td:last-child {
            text-align: right;
        }
        .payable {
            font-weight: bold;
            border-top: 2px solid #333;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Company.Name}}</h1>
        {{if .Company.Address}}<div>{{.Company.Address}}</div>{{end}}
        <div>{{.Company.Phone}} {{.Company.Email}}</div>
    </div>

    <table class="meta">
        <tr><td>Receipt</td><td>{{.Number}}</td></tr>
        <tr><td>Date</td><td>{{.Date}}</td></tr>
    </table>

    <table class="recipient">
        <tr><td>Recipient</td><td>{{.Recipient.Name}}</td></tr>
        {{if .Recipient.Phone}}<tr><td>Phone</td><td>{{.Recipient.Phone}}</td></tr>{{end}}
        <tr><td>Address</td><td>{{.Recipient.Province}}, {{.Recipient.City}}, {{.Recipient.Address}}</td></tr>
        <tr><td>Postal code</td><td>{{.Recipient.PostCode}}</td></tr>
        <tr><td>Shipment</td><td>{{.ShipmentMethod}}</td></tr>
    </table>

    <table class="items">
        <tr>
            <th>Item</th>
            <th>Qty</th>
            <th>Unit price</th>
            <th>Off</th>
            <th>Line total</th>
        </tr>
        {{range .Rows}}
        <tr>
            <td>{{.Title}}</td>
            <td>{{.Quantity}}</td>
            <td>{{minor .UnitPriceMinor}}</td>
            <td>{{if .DiscountPercent}}{{.DiscountPercent}}%{{end}}</td>
            <td>{{minor .LineTotalMinor}}</td>
        </tr>
        {{end}}
    </table>

    <table class="totals">
        <tr><td>Subtotal</td><td>{{minor .Totals.SubtotalMinor}}</td></tr>
        <tr><td>Discount</td><td>-{{minor .Totals.TotalDiscountMinor}}</td></tr>
        <tr><td>Total</td><td>{{minor .Totals.TotalMinor}}</td></tr>
        {{if isPostal .ShipmentMethod}}
        <tr><td>Shipping</td><td>{{minor .Totals.ShippingCostMinor}}</td></tr>
        <tr><td>Grand total</td><td>{{minor .Totals.GrandTotalMinor}}</td></tr>
        {{else}}
        <tr><td>Shipping</td><td>paid on delivery</td></tr>
        {{end}}
        {{if .AppliedPercent}}
        <tr><td>Promo {{.AppliedCode}} ({{.AppliedPercent}}%)</td><td></td></tr>
        {{end}}
        <tr class="payable"><td>Payable</td><td>{{minor .PayableMinor}}</td></tr>
    </table>
</body>
</html>
`
