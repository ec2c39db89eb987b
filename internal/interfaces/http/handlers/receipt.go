// internal/interfaces/http/handlers/receipt.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/basket"
	"github.com/your-org/storefront-checkout/internal/domain/catalog"
	"github.com/your-org/storefront-checkout/internal/domain/checkout"
	"github.com/your-org/storefront-checkout/internal/domain/discount"
	"github.com/your-org/storefront-checkout/internal/domain/order"
	"github.com/your-org/storefront-checkout/internal/domain/shipping"
	"github.com/your-org/storefront-checkout/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-checkout/internal/pkg/receipt"
)

// ReceiptHandler renders receipt previews and order receipts
type ReceiptHandler struct {
	receiptService *receipt.Service
	basketService  *basket.Service
	catalogService *catalog.Service
	orderService   *order.Service
	engine         *discount.Engine
	sessions       *checkout.SessionStore
	config         *config.Config
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *ReceiptHandler {
	logger := newLogger(cfg)
	catalogService := catalog.NewService(db)
	shippingService := shipping.NewService(cfg)

	return &ReceiptHandler{
		receiptService: receipt.NewService(cfg),
		basketService:  basket.NewService(db, redisClient, catalogService, shippingService, logger),
		catalogService: catalogService,
		orderService:   order.NewService(db),
		engine:         discount.NewEngine(discount.NewGormCodeSource(db), discount.NewRedisAppliedStore(redisClient), logger),
		sessions:       checkout.NewSessionStore(redisClient),
		config:         cfg,
	}
}

// Preview handles GET /checkout/receipt. It renders the shipment-stage
// preview from the live basket, the recipient form, and the applied promo.
func (h *ReceiptHandler) Preview(c *gin.Context) {
	userID := currentUserID(c)
	basketToken := getOrCreateBasketToken(c)
	checkoutToken := getOrCreateCheckoutToken(c)
	ctx := c.Request.Context()

	agg, err := h.basketService.Aggregate(ctx, userID, basketToken, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to aggregate basket",
		})
		return
	}

	session, err := h.sessions.Get(ctx, checkoutToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve checkout session",
		})
		return
	}

	method := session.ShipmentMethod()
	if !method.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "A shipment method must be chosen before a receipt can be rendered",
		})
		return
	}

	applied, err := h.engine.GetApplied(ctx, checkoutToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve applied discount",
		})
		return
	}

	recipient := order.Recipient{
		Name:     session.Name,
		Phone:    session.Phone,
		Province: session.Province,
		City:     session.City,
		Address:  session.Address,
		PostCode: session.PostCode,
	}

	data := h.receiptService.BuildFromAggregation(agg, recipient, method, applied, time.Now())
	h.render(c, data)
}

// OrderReceipt handles GET /orders/:id/receipt. Captured prices are used;
// items captured without a price fall back to the live catalog price.
func (h *ReceiptHandler) OrderReceipt(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	ctx := c.Request.Context()

	placed, err := h.orderService.GetOrder(ctx, userID, uint(orderID))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve order",
		})
		return
	}

	// Live prices are only needed for items captured without one
	var missing []uint
	for _, item := range placed.Items {
		if item.UnitPriceMinor == 0 {
			missing = append(missing, item.ProductID)
		}
	}

	products := map[uint]*catalog.Product{}
	if len(missing) > 0 {
		products, err = h.catalogService.GetProducts(ctx, missing)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to resolve product prices",
			})
			return
		}
	}

	data := h.receiptService.BuildFromOrder(placed, products, time.Now())
	h.render(c, data)
}

// render writes the receipt as text or PDF depending on the format query
func (h *ReceiptHandler) render(c *gin.Context, data receipt.Data) {
	if c.DefaultQuery("format", "text") == "pdf" {
		pdfBuffer, err := h.receiptService.RenderPDF(data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to generate PDF receipt",
			})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", data.Number))
		c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.receiptService.RenderText(data)))
}
