// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"
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
	"github.com/your-org/storefront-checkout/internal/domain/payment"
	"github.com/your-org/storefront-checkout/internal/domain/shipping"
)

// CheckoutHandler handles checkout flow endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CheckoutHandler {
	logger := newLogger(cfg)

	catalogService := catalog.NewService(db)
	shippingService := shipping.NewService(cfg)
	basketService := basket.NewService(db, redisClient, catalogService, shippingService, logger)
	discountEngine := discount.NewEngine(discount.NewGormCodeSource(db), discount.NewRedisAppliedStore(redisClient), logger)
	paymentClient := payment.NewClient(cfg, logger)
	orderService := order.NewService(db)
	sessionStore := checkout.NewSessionStore(redisClient)

	return &CheckoutHandler{
		checkoutService: checkout.NewService(
			basketService,
			discountEngine,
			paymentClient,
			orderService,
			sessionStore,
			cfg.Shipping.CourierCity,
			logger,
		),
		config: cfg,
	}
}

// Navigate handles POST /checkout/stage
func (h *CheckoutHandler) Navigate(c *gin.Context) {
	userID := currentUserID(c)
	token := getOrCreateCheckoutToken(c)

	var req struct {
		From string `json:"from" binding:"required"`
		To   string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	transition, err := h.checkoutService.Navigate(c.Request.Context(), userID, token, checkout.Stage(req.From), checkout.Stage(req.To))
	if err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Checkout form is incomplete",
				"fields": verr.Fields,
				"data":   transition,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stage transition evaluated",
		"data":    transition,
	})
}

// GetSession handles GET /checkout/session
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	token := getOrCreateCheckoutToken(c)

	session, err := h.checkoutService.GetSession(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve checkout session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout session retrieved successfully",
		"data":    session,
	})
}

// SaveSession handles PUT /checkout/session
func (h *CheckoutHandler) SaveSession(c *gin.Context) {
	token := getOrCreateCheckoutToken(c)

	var session checkout.Session
	if err := c.ShouldBindJSON(&session); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.checkoutService.SaveSession(c.Request.Context(), token, &session); err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Invalid checkout form",
				"fields": verr.Fields,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save checkout session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout session saved successfully",
		"data":    session,
	})
}

// ClearSession handles DELETE /checkout/session
func (h *CheckoutHandler) ClearSession(c *gin.Context) {
	token := getOrCreateCheckoutToken(c)

	if err := h.checkoutService.ClearSession(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear checkout session",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout session cleared successfully",
	})
}

// GetSummary handles GET /checkout/summary
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	userID := currentUserID(c)
	basketToken := getOrCreateBasketToken(c)
	checkoutToken := getOrCreateCheckoutToken(c)

	summary, err := h.checkoutService.Summarize(c.Request.Context(), userID, basketToken, checkoutToken, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build checkout summary",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data":    summary,
	})
}

// Submit handles POST /checkout/submit
func (h *CheckoutHandler) Submit(c *gin.Context) {
	userID := currentUserID(c)
	basketToken := getOrCreateBasketToken(c)
	checkoutToken := getOrCreateCheckoutToken(c)

	paymentURL, err := h.checkoutService.Submit(c.Request.Context(), userID, basketToken, checkoutToken, time.Now())
	if err != nil {
		h.submitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order placed successfully",
		"data": gin.H{
			"payment_url": paymentURL,
		},
	})
}

// submitError maps submission failures onto HTTP statuses. A payment gateway
// failure leaves the basket and session untouched, so the caller may retry.
func (h *CheckoutHandler) submitError(c *gin.Context, err error) {
	var verr *checkout.ValidationError

	switch {
	case errors.Is(err, discount.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Checkout form is incomplete",
			"fields": verr.Fields,
		})
	case errors.Is(err, payment.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Payment initiation failed, please retry",
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	}
}
