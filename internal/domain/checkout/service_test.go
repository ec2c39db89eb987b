package checkout

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-checkout/internal/domain/basket"
	"github.com/your-org/storefront-checkout/internal/domain/discount"
	"github.com/your-org/storefront-checkout/internal/domain/order"
)

type mockBasketSource struct {
	agg      *basket.Aggregation
	aggErr   error
	cleared  bool
	clearErr error
}

func (m *mockBasketSource) Aggregate(ctx context.Context, userID *uint, token string, now time.Time) (*basket.Aggregation, error) {
	return m.agg, m.aggErr
}

func (m *mockBasketSource) Clear(ctx context.Context, userID *uint, token string) error {
	m.cleared = true
	return m.clearErr
}

type mockDiscountSource struct {
	applied *discount.Applied
	cleared bool
}

func (m *mockDiscountSource) GetApplied(ctx context.Context, token string) (*discount.Applied, error) {
	return m.applied, nil
}

func (m *mockDiscountSource) Clear(ctx context.Context, token string) error {
	m.cleared = true
	return nil
}

type mockPaymentInitiator struct {
	url string
	err error

	gotMethod  basket.ShipmentMethod
	gotPercent int
	gotAmount  int64
	calls      int
}

func (m *mockPaymentInitiator) CreateCheckoutPayment(ctx context.Context, method basket.ShipmentMethod, discountPercent int, amountMinor int64) (string, error) {
	m.calls++
	m.gotMethod = method
	m.gotPercent = discountPercent
	m.gotAmount = amountMinor
	return m.url, m.err
}

type mockOrderCreator struct {
	order *order.Order
	err   error
	calls int
}

func (m *mockOrderCreator) CreateFromCheckout(ctx context.Context, userID uint, agg *basket.Aggregation, recipient order.Recipient, method basket.ShipmentMethod, applied *discount.Applied) (*order.Order, error) {
	m.calls++
	return m.order, m.err
}

type mockSessionBackend struct {
	session *Session
	cleared bool
	saved   *Session
}

func (m *mockSessionBackend) Get(ctx context.Context, token string) (*Session, error) {
	if m.session == nil {
		return &Session{}, nil
	}
	return m.session, nil
}

func (m *mockSessionBackend) Save(ctx context.Context, token string, session *Session) error {
	m.saved = session
	return nil
}

func (m *mockSessionBackend) Clear(ctx context.Context, token string) error {
	m.cleared = true
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func uintPtr(v uint) *uint { return &v }

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testAggregation() *basket.Aggregation {
	return &basket.Aggregation{
		LineItems: []basket.LineItem{{Quantity: 2, UnitPriceMinor: 100000, LineSubtotalMinor: 200000, LineDiscountMinor: 20000}},
		Totals: basket.OrderTotals{
			SubtotalMinor:      200000,
			TotalDiscountMinor: 20000,
			TotalMinor:         180000,
			ShippingCostMinor:  20000,
			GrandTotalMinor:    200000,
		},
	}
}

func testService(baskets *mockBasketSource, discounts *mockDiscountSource, payments *mockPaymentInitiator, orders *mockOrderCreator, sessions *mockSessionBackend) *Service {
	return NewService(baskets, discounts, payments, orders, sessions, "Tehran", testLogger())
}

func TestSubmitSuccess(t *testing.T) {
	baskets := &mockBasketSource{agg: testAggregation()}
	discounts := &mockDiscountSource{applied: &discount.Applied{Percent: 10, Code: "SAVE10"}}
	payments := &mockPaymentInitiator{url: "https://pay.example.com/p/1"}
	orders := &mockOrderCreator{order: &order.Order{OrderNumber: "ORD-20250615-00001", PayableMinor: 180000}}
	sessions := &mockSessionBackend{session: completeSession()}

	svc := testService(baskets, discounts, payments, orders, sessions)

	url, err := svc.Submit(context.Background(), uintPtr(7), "bt", "ct", testNow)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/p/1", url)

	// Postal shipping: payable base includes shipping, then the 10% promo
	assert.Equal(t, basket.ShipmentPostal, payments.gotMethod)
	assert.Equal(t, 10, payments.gotPercent)
	assert.Equal(t, int64(180000), payments.gotAmount)

	assert.Equal(t, 1, orders.calls)
	assert.True(t, baskets.cleared)
	assert.True(t, discounts.cleared)
	assert.True(t, sessions.cleared)
}

func TestSubmitCourierExcludesShipping(t *testing.T) {
	session := completeSession()
	session.Shipment = "courier"

	baskets := &mockBasketSource{agg: testAggregation()}
	payments := &mockPaymentInitiator{url: "https://pay.example.com/p/2"}
	orders := &mockOrderCreator{order: &order.Order{OrderNumber: "ORD-20250615-00002"}}
	sessions := &mockSessionBackend{session: session}

	svc := testService(baskets, &mockDiscountSource{}, payments, orders, sessions)

	_, err := svc.Submit(context.Background(), uintPtr(7), "bt", "ct", testNow)
	require.NoError(t, err)

	assert.Equal(t, basket.ShipmentCourier, payments.gotMethod)
	assert.Equal(t, 0, payments.gotPercent)
	assert.Equal(t, int64(180000), payments.gotAmount, "courier pays shipping on delivery")
}

func TestSubmitRequiresAuthentication(t *testing.T) {
	payments := &mockPaymentInitiator{}
	svc := testService(&mockBasketSource{}, &mockDiscountSource{}, payments, &mockOrderCreator{}, &mockSessionBackend{})

	_, err := svc.Submit(context.Background(), nil, "bt", "ct", testNow)
	assert.ErrorIs(t, err, discount.ErrNotAuthenticated)
	assert.Zero(t, payments.calls)
}

func TestSubmitRejectsIncompleteForm(t *testing.T) {
	session := completeSession()
	session.Address = ""

	payments := &mockPaymentInitiator{}
	svc := testService(&mockBasketSource{agg: testAggregation()}, &mockDiscountSource{}, payments, &mockOrderCreator{}, &mockSessionBackend{session: session})

	_, err := svc.Submit(context.Background(), uintPtr(7), "bt", "ct", testNow)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, payments.calls)
}

func TestSubmitRejectsEmptyBasket(t *testing.T) {
	payments := &mockPaymentInitiator{}
	svc := testService(&mockBasketSource{agg: &basket.Aggregation{}}, &mockDiscountSource{}, payments, &mockOrderCreator{}, &mockSessionBackend{session: completeSession()})

	_, err := svc.Submit(context.Background(), uintPtr(7), "bt", "ct", testNow)
	assert.Error(t, err)
	assert.Zero(t, payments.calls)
}

func TestSubmitPaymentFailureMutatesNothing(t *testing.T) {
	baskets := &mockBasketSource{agg: testAggregation()}
	discounts := &mockDiscountSource{applied: &discount.Applied{Percent: 10, Code: "SAVE10"}}
	payments := &mockPaymentInitiator{err: errors.New("gateway down")}
	orders := &mockOrderCreator{}
	sessions := &mockSessionBackend{session: completeSession()}

	svc := testService(baskets, discounts, payments, orders, sessions)

	_, err := svc.Submit(context.Background(), uintPtr(7), "bt", "ct", testNow)
	require.Error(t, err)

	assert.Zero(t, orders.calls, "no order is persisted when payment initiation fails")
	assert.False(t, baskets.cleared)
	assert.False(t, discounts.cleared)
	assert.False(t, sessions.cleared)
}

func TestSubmitClearFailuresDoNotFailSubmission(t *testing.T) {
	baskets := &mockBasketSource{agg: testAggregation(), clearErr: errors.New("redis down")}
	payments := &mockPaymentInitiator{url: "https://pay.example.com/p/3"}
	orders := &mockOrderCreator{order: &order.Order{OrderNumber: "ORD-20250615-00003"}}
	sessions := &mockSessionBackend{session: completeSession()}

	svc := testService(baskets, &mockDiscountSource{}, payments, orders, sessions)

	url, err := svc.Submit(context.Background(), uintPtr(7), "bt", "ct", testNow)
	require.NoError(t, err)
	assert.NotEmpty(t, url)
}

func TestSummarize(t *testing.T) {
	baskets := &mockBasketSource{agg: testAggregation()}
	discounts := &mockDiscountSource{applied: &discount.Applied{Percent: 10, Code: "SAVE10"}}
	sessions := &mockSessionBackend{session: completeSession()}

	svc := testService(baskets, discounts, &mockPaymentInitiator{}, &mockOrderCreator{}, sessions)

	summary, err := svc.Summarize(context.Background(), uintPtr(7), "bt", "ct", testNow)
	require.NoError(t, err)

	assert.True(t, summary.ShipmentChosen)
	assert.Equal(t, 10, summary.AppliedPercent)
	assert.Equal(t, int64(200000), summary.PayableBaseMinor)
	assert.Equal(t, int64(180000), summary.FinalPayable)
}

func TestSummarizeWithoutShipmentChoice(t *testing.T) {
	session := completeSession()
	session.Shipment = ""

	svc := testService(&mockBasketSource{agg: testAggregation()}, &mockDiscountSource{}, &mockPaymentInitiator{}, &mockOrderCreator{}, &mockSessionBackend{session: session})

	summary, err := svc.Summarize(context.Background(), uintPtr(7), "bt", "ct", testNow)
	require.NoError(t, err)

	assert.False(t, summary.ShipmentChosen)
	assert.Zero(t, summary.FinalPayable)
}

func TestNavigateLoadsPersistedSession(t *testing.T) {
	sessions := &mockSessionBackend{session: completeSession()}
	svc := testService(&mockBasketSource{}, &mockDiscountSource{}, &mockPaymentInitiator{}, &mockOrderCreator{}, sessions)

	tr, err := svc.Navigate(context.Background(), uintPtr(7), "ct", StageInfo, StageShipment)
	require.NoError(t, err)
	assert.Equal(t, StageShipment, tr.Next)
}

func TestSaveSessionRejectsCourierOutsideCity(t *testing.T) {
	session := completeSession()
	session.Shipment = "courier"
	session.City = "Shiraz"

	sessions := &mockSessionBackend{}
	svc := testService(&mockBasketSource{}, &mockDiscountSource{}, &mockPaymentInitiator{}, &mockOrderCreator{}, sessions)

	err := svc.SaveSession(context.Background(), "ct", session)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, sessions.saved)
}

func TestSaveSessionAllowsPartialForm(t *testing.T) {
	sessions := &mockSessionBackend{}
	svc := testService(&mockBasketSource{}, &mockDiscountSource{}, &mockPaymentInitiator{}, &mockOrderCreator{}, sessions)

	err := svc.SaveSession(context.Background(), "ct", &Session{Name: "Sara Ahmadi"})
	require.NoError(t, err)
	assert.NotNil(t, sessions.saved)
}
