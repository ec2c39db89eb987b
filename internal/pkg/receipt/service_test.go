package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/basket"
	"github.com/your-org/storefront-checkout/internal/domain/catalog"
	"github.com/your-org/storefront-checkout/internal/domain/discount"
	"github.com/your-org/storefront-checkout/internal/domain/order"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testService() *Service {
	return NewService(&config.Config{
		Company: config.CompanyConfig{
			Name:    "Storefront",
			Address: "1 Market St",
			Phone:   "021-000000",
			Email:   "store@example.com",
		},
	})
}

func testRecipient() order.Recipient {
	return order.Recipient{
		Name:     "Sara Ahmadi",
		Phone:    "09120000000",
		Province: "Tehran",
		City:     "Tehran",
		Address:  "1 Example St",
		PostCode: "1234567890",
	}
}

func testAggregation() *basket.Aggregation {
	return &basket.Aggregation{
		LineItems: []basket.LineItem{{
			Product:             &catalog.Product{ID: 42, Title: "Canvas Tote Bag"},
			Quantity:            2,
			UnitPriceMinor:      100000,
			UnitDiscountPercent: 10,
			LineSubtotalMinor:   200000,
			LineDiscountMinor:   20000,
		}},
		Totals: basket.OrderTotals{
			SubtotalMinor:      200000,
			TotalDiscountMinor: 20000,
			TotalMinor:         180000,
			ShippingCostMinor:  20000,
			GrandTotalMinor:    200000,
		},
	}
}

func TestRenderTextDeterministic(t *testing.T) {
	svc := testService()
	applied := &discount.Applied{Percent: 10, Code: "SAVE10"}

	first := svc.RenderText(svc.BuildFromAggregation(testAggregation(), testRecipient(), basket.ShipmentPostal, applied, now))
	second := svc.RenderText(svc.BuildFromAggregation(testAggregation(), testRecipient(), basket.ShipmentPostal, applied, now))

	assert.Equal(t, first, second, "same inputs must render byte-identical text")
}

func TestRenderTextPostalWithPromo(t *testing.T) {
	svc := testService()
	applied := &discount.Applied{Percent: 10, Code: "SAVE10"}

	data := svc.BuildFromAggregation(testAggregation(), testRecipient(), basket.ShipmentPostal, applied, now)

	// Postal: base is the grand total including shipping, then the promo
	assert.Equal(t, int64(180000), data.PayableMinor)

	text := svc.RenderText(data)
	assert.Contains(t, text, "Canvas Tote Bag")
	assert.Contains(t, text, "2025-06-15")
	assert.Contains(t, text, "Promo SAVE10 (10%)")
	assert.Contains(t, text, "180,000")
	assert.Contains(t, text, "200,000")
}

func TestRenderTextCourierExcludesShipping(t *testing.T) {
	svc := testService()

	data := svc.BuildFromAggregation(testAggregation(), testRecipient(), basket.ShipmentCourier, nil, now)

	// Courier: shipping is paid on delivery, base is the pre-shipping total
	assert.Equal(t, int64(180000), data.PayableMinor)

	text := svc.RenderText(data)
	assert.Contains(t, text, "paid on delivery")
	assert.NotContains(t, text, "Grand total")
}

func TestPromoOnlyDiscountsOnce(t *testing.T) {
	svc := testService()
	applied := &discount.Applied{Percent: 10, Code: "SAVE10"}

	postal := svc.BuildFromAggregation(testAggregation(), testRecipient(), basket.ShipmentPostal, applied, now)
	pickup := svc.BuildFromAggregation(testAggregation(), testRecipient(), basket.ShipmentPickup, applied, now)

	assert.Equal(t, postal.Totals.FinalPayable(basket.ShipmentPostal, 10), postal.PayableMinor)
	assert.Equal(t, pickup.Totals.FinalPayable(basket.ShipmentPickup, 10), pickup.PayableMinor)
	assert.Equal(t, int64(180000), postal.PayableMinor)
	assert.Equal(t, int64(162000), pickup.PayableMinor)
}

func testOrder() *order.Order {
	return &order.Order{
		OrderNumber:        "ORD-20250615-00001",
		SubtotalMinor:      200000,
		TotalDiscountMinor: 20000,
		ShippingMinor:      20000,
		TotalMinor:         180000,
		PayableMinor:       180000,
		CouponCode:         "SAVE10",
		CouponPercent:      10,
		ShipmentMethod:     "postal",
		Recipient:          testRecipient(),
		Items: []order.OrderItem{{
			ProductID:       42,
			Title:           "Canvas Tote Bag",
			Quantity:        2,
			UnitPriceMinor:  100000,
			DiscountPercent: 10,
			LineTotalMinor:  180000,
		}},
	}
}

func TestBuildFromOrderUsesCapturedPrices(t *testing.T) {
	svc := testService()

	data := svc.BuildFromOrder(testOrder(), nil, now)

	require.Len(t, data.Rows, 1)
	assert.Equal(t, int64(100000), data.Rows[0].UnitPriceMinor)
	assert.Equal(t, int64(180000), data.Rows[0].LineTotalMinor)
	assert.Equal(t, "ORD-20250615-00001", data.Number)
	assert.Equal(t, int64(180000), data.PayableMinor, "receipt recomputes the same payable the order captured")
}

func TestBuildFromOrderFallsBackToLivePrice(t *testing.T) {
	svc := testService()

	o := testOrder()
	o.Items[0].UnitPriceMinor = 0
	o.Items[0].LineTotalMinor = 0

	products := map[uint]*catalog.Product{
		42: {
			ID:       42,
			Title:    "Canvas Tote Bag",
			IsActive: true,
			PriceHistory: []catalog.PriceEntry{
				{PriceMinor: 110000, EffectiveAt: now.AddDate(0, -1, 0)},
			},
		},
	}

	data := svc.BuildFromOrder(o, products, now)

	require.Len(t, data.Rows, 1)
	assert.Equal(t, int64(110000), data.Rows[0].UnitPriceMinor)
	assert.Equal(t, int64(198000), data.Rows[0].LineTotalMinor, "2 units at 110,000 with the captured 10 percent off")
}

func TestBuildFromOrderMissingProductKeepsZero(t *testing.T) {
	svc := testService()

	o := testOrder()
	o.Items[0].UnitPriceMinor = 0
	o.Items[0].LineTotalMinor = 0

	data := svc.BuildFromOrder(o, map[uint]*catalog.Product{}, now)

	require.Len(t, data.Rows, 1)
	assert.Zero(t, data.Rows[0].UnitPriceMinor)
}

func TestHTMLCarriesSameAmountsAsText(t *testing.T) {
	svc := testService()
	applied := &discount.Applied{Percent: 10, Code: "SAVE10"}

	data := svc.BuildFromAggregation(testAggregation(), testRecipient(), basket.ShipmentPostal, applied, now)

	html, err := svc.generateHTML(data)
	require.NoError(t, err)

	for _, amount := range []int64{data.PayableMinor, data.Totals.SubtotalMinor, data.Totals.GrandTotalMinor} {
		assert.Contains(t, html, formatMinor(amount))
	}
	assert.Contains(t, html, "PREVIEW")
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "0", formatMinor(0))
	assert.Equal(t, "999", formatMinor(999))
	assert.Equal(t, "1,000", formatMinor(1000))
	assert.Equal(t, "200,000", formatMinor(200000))
	assert.Equal(t, "1,234,567", formatMinor(1234567))
	assert.Equal(t, "-20,000", formatMinor(-20000))
}

func TestRenderTextOnlyDateVaries(t *testing.T) {
	svc := testService()

	a := svc.RenderText(svc.BuildFromAggregation(testAggregation(), testRecipient(), basket.ShipmentPostal, nil, now))
	b := svc.RenderText(svc.BuildFromAggregation(testAggregation(), testRecipient(), basket.ShipmentPostal, nil, now.AddDate(0, 0, 1)))

	aLines := strings.Split(a, "\n")
	bLines := strings.Split(b, "\n")
	require.Equal(t, len(aLines), len(bLines))

	var differing []string
	for i := range aLines {
		if aLines[i] != bLines[i] {
			differing = append(differing, aLines[i])
		}
	}
	require.Len(t, differing, 1)
	assert.Contains(t, differing[0], "Date")
}
