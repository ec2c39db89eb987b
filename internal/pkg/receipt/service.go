// internal/pkg/receipt/service.go
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/basket"
	"github.com/your-org/storefront-checkout/internal/domain/catalog"
	"github.com/your-org/storefront-checkout/internal/domain/discount"
	"github.com/your-org/storefront-checkout/internal/domain/order"
)

// Service renders receipts. The textual and PDF renderings are both produced
// from the same computed Data so their numeric content can never diverge.
type Service struct {
	config *config.Config
}

// NewService creates a new receipt service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// Row is one rendered receipt line
type Row struct {
	Title           string `json:"title"`
	Quantity        int    `json:"quantity"`
	UnitPriceMinor  int64  `json:"unit_price_minor"`
	DiscountPercent int    `json:"discount_percent"`
	LineTotalMinor  int64  `json:"line_total_minor"`
}

// Data is the fully computed receipt content. Every rendering consumes this
// struct unchanged.
type Data struct {
	Number         string                `json:"number"`
	Date           string                `json:"date"`
	Company        config.CompanyConfig  `json:"company"`
	Recipient      order.Recipient       `json:"recipient"`
	ShipmentMethod basket.ShipmentMethod `json:"shipment_method"`
	Rows           []Row                 `json:"rows"`
	Totals         basket.OrderTotals    `json:"totals"`
	AppliedPercent int                   `json:"applied_percent"`
	AppliedCode    string                `json:"applied_code"`
	PayableMinor   int64                 `json:"payable_minor"`
}

// BuildFromAggregation computes receipt content for a live basket preview, as
// shown on the shipment stage before submission.
func (s *Service) BuildFromAggregation(agg *basket.Aggregation, recipient order.Recipient, method basket.ShipmentMethod, applied *discount.Applied, now time.Time) Data {
	percent := 0
	code := ""
	if applied != nil {
		percent = applied.Percent
		code = applied.Code
	}

	rows := make([]Row, len(agg.LineItems))
	for i, item := range agg.LineItems {
		rows[i] = Row{
			Title:           item.Product.Title,
			Quantity:        item.Quantity,
			UnitPriceMinor:  item.UnitPriceMinor,
			DiscountPercent: item.UnitDiscountPercent,
			LineTotalMinor:  item.LineSubtotalMinor - item.LineDiscountMinor,
		}
	}

	return Data{
		Number:         "PREVIEW",
		Date:           now.Format("2006-01-02"),
		Company:        s.config.Company,
		Recipient:      recipient,
		ShipmentMethod: method,
		Rows:           rows,
		Totals:         agg.Totals,
		AppliedPercent: percent,
		AppliedCode:    code,
		PayableMinor:   agg.Totals.FinalPayable(method, percent),
	}
}

// BuildFromOrder computes receipt content for a placed order. Per-line prices
// come from the captured order items; if a captured price is absent the live
// product price is used instead, so invoices built later from order records
// still show a unit price. Order-level totals are always the captured ones.
func (s *Service) BuildFromOrder(o *order.Order, products map[uint]*catalog.Product, now time.Time) Data {
	rows := make([]Row, len(o.Items))
	for i, item := range o.Items {
		row := Row{
			Title:           item.Title,
			Quantity:        item.Quantity,
			UnitPriceMinor:  item.UnitPriceMinor,
			DiscountPercent: item.DiscountPercent,
			LineTotalMinor:  item.LineTotalMinor,
		}

		if row.UnitPriceMinor == 0 {
			if product, ok := products[item.ProductID]; ok {
				if quote, err := product.CurrentQuote(now); err == nil {
					row.UnitPriceMinor = quote.UnitPriceMinor
					row.LineTotalMinor = quote.UnitPriceMinor*int64(item.Quantity) -
						quote.UnitPriceMinor*int64(row.DiscountPercent)/100*int64(item.Quantity)
				}
			}
		}

		rows[i] = row
	}

	method := basket.ShipmentMethod(o.ShipmentMethod)
	totals := o.Totals()

	return Data{
		Number:         o.OrderNumber,
		Date:           now.Format("2006-01-02"),
		Company:        s.config.Company,
		Recipient:      o.Recipient,
		ShipmentMethod: method,
		Rows:           rows,
		Totals:         totals,
		AppliedPercent: o.CouponPercent,
		AppliedCode:    o.CouponCode,
		PayableMinor:   totals.FinalPayable(method, o.CouponPercent),
	}
}

const receiptWidth = 72

// RenderText renders the receipt as fixed-width text. The output is a pure
// function of its Data: identical inputs produce identical bytes.
func (s *Service) RenderText(data Data) string {
	var b strings.Builder

	rule := strings.Repeat("=", receiptWidth)
	thin := strings.Repeat("-", receiptWidth)

	b.WriteString(rule + "\n")
	writeCentered(&b, data.Company.Name)
	if data.Company.Address != "" {
		writeCentered(&b, data.Company.Address)
	}
	if data.Company.Phone != "" || data.Company.Email != "" {
		writeCentered(&b, strings.TrimSpace(data.Company.Phone+"  "+data.Company.Email))
	}
	b.WriteString(rule + "\n")

	fmt.Fprintf(&b, "%-16s %s\n", "Receipt", data.Number)
	fmt.Fprintf(&b, "%-16s %s\n", "Date", data.Date)
	b.WriteString(thin + "\n")

	fmt.Fprintf(&b, "%-16s %s\n", "Recipient", data.Recipient.Name)
	if data.Recipient.Phone != "" {
		fmt.Fprintf(&b, "%-16s %s\n", "Phone", data.Recipient.Phone)
	}
	fmt.Fprintf(&b, "%-16s %s, %s, %s\n", "Address", data.Recipient.Province, data.Recipient.City, data.Recipient.Address)
	fmt.Fprintf(&b, "%-16s %s\n", "Postal code", data.Recipient.PostCode)
	fmt.Fprintf(&b, "%-16s %s\n", "Shipment", data.ShipmentMethod)
	b.WriteString(thin + "\n")

	fmt.Fprintf(&b, "%-30s %5s %14s %5s %14s\n", "Item", "Qty", "Unit price", "Off", "Line total")
	for _, row := range data.Rows {
		off := ""
		if row.DiscountPercent > 0 {
			off = fmt.Sprintf("%d%%", row.DiscountPercent)
		}
		fmt.Fprintf(&b, "%-30s %5d %14s %5s %14s\n",
			truncate(row.Title, 30),
			row.Quantity,
			formatMinor(row.UnitPriceMinor),
			off,
			formatMinor(row.LineTotalMinor),
		)
	}
	b.WriteString(thin + "\n")

	writeAmount(&b, "Subtotal", data.Totals.SubtotalMinor)
	writeAmount(&b, "Discount", -data.Totals.TotalDiscountMinor)
	writeAmount(&b, "Total", data.Totals.TotalMinor)
	if data.ShipmentMethod == basket.ShipmentPostal {
		writeAmount(&b, "Shipping", data.Totals.ShippingCostMinor)
		writeAmount(&b, "Grand total", data.Totals.GrandTotalMinor)
	} else {
		fmt.Fprintf(&b, "%-50s %21s\n", "Shipping", "paid on delivery")
	}
	if data.AppliedPercent > 0 {
		label := fmt.Sprintf("Promo %s (%d%%)", data.AppliedCode, data.AppliedPercent)
		writeAmount(&b, label, data.PayableMinor-data.Totals.PayableBase(data.ShipmentMethod))
	}
	b.WriteString(thin + "\n")
	writeAmount(&b, "Payable", data.PayableMinor)
	b.WriteString(rule + "\n")

	return b.String()
}

func writeCentered(b *strings.Builder, text string) {
	if text == "" {
		return
	}
	pad := (receiptWidth - len(text)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad) + text + "\n")
}

func writeAmount(b *strings.Builder, label string, amount int64) {
	fmt.Fprintf(b, "%-50s %21s\n", label, formatMinor(amount))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// formatMinor renders a minor-unit amount with thousands separators
func formatMinor(v int64) string {
	negative := v < 0
	if negative {
		v = -v
	}

	digits := fmt.Sprintf("%d", v)
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)

	out := strings.Join(parts, ",")
	if negative {
		return "-" + out
	}
	return out
}
