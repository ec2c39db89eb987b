// internal/interfaces/http/handlers/discount.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/discount"
)

// DiscountHandler handles promo code endpoints
type DiscountHandler struct {
	engine *discount.Engine
	config *config.Config
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *DiscountHandler {
	logger := newLogger(cfg)

	return &DiscountHandler{
		engine: discount.NewEngine(discount.NewGormCodeSource(db), discount.NewRedisAppliedStore(redisClient), logger),
		config: cfg,
	}
}

// Apply handles POST /discount/apply
func (h *DiscountHandler) Apply(c *gin.Context) {
	userID := currentUserID(c)
	token := getOrCreateCheckoutToken(c)

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	applied, err := h.engine.Apply(c.Request.Context(), userID, token, req.Code, time.Now())
	if err != nil {
		h.applyError(c, applied, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount code applied successfully",
		"data":    applied,
	})
}

// GetApplied handles GET /discount
func (h *DiscountHandler) GetApplied(c *gin.Context) {
	token := getOrCreateCheckoutToken(c)

	applied, err := h.engine.GetApplied(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve applied discount",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Applied discount retrieved successfully",
		"data":    applied,
	})
}

// Clear handles DELETE /discount
func (h *DiscountHandler) Clear(c *gin.Context) {
	token := getOrCreateCheckoutToken(c)

	if err := h.engine.Clear(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear applied discount",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Applied discount cleared successfully",
	})
}

// applyError maps promo code failures onto HTTP statuses
func (h *DiscountHandler) applyError(c *gin.Context, applied *discount.Applied, err error) {
	switch {
	case errors.Is(err, discount.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required to apply a discount code",
		})
	case errors.Is(err, discount.ErrAlreadyApplied):
		c.JSON(http.StatusConflict, gin.H{
			"error": "A discount code is already applied",
			"data":  applied,
		})
	case errors.Is(err, discount.ErrCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Discount code not found",
		})
	case errors.Is(err, discount.ErrCodeExpired):
		c.JSON(http.StatusGone, gin.H{
			"error": "Discount code has expired",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to apply discount code",
		})
	}
}
