// internal/interfaces/http/handlers/basket.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/basket"
	"github.com/your-org/storefront-checkout/internal/domain/catalog"
	"github.com/your-org/storefront-checkout/internal/domain/shipping"
)

// BasketHandler handles basket endpoints
type BasketHandler struct {
	basketService *basket.Service
	config        *config.Config
}

// NewBasketHandler creates a new basket handler
func NewBasketHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *BasketHandler {
	logger := newLogger(cfg)
	catalogService := catalog.NewService(db)
	shippingService := shipping.NewService(cfg)

	return &BasketHandler{
		basketService: basket.NewService(db, redisClient, catalogService, shippingService, logger),
		config:        cfg,
	}
}

// GetBasket handles GET /basket
func (h *BasketHandler) GetBasket(c *gin.Context) {
	userID := currentUserID(c)
	token := getOrCreateBasketToken(c)

	agg, err := h.basketService.Aggregate(c.Request.Context(), userID, token, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve basket",
		})
		return
	}

	// Pagination is display-only: totals always cover the full basket
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	c.JSON(http.StatusOK, gin.H{
		"message": "Basket retrieved successfully",
		"data": gin.H{
			"line_items": agg.Page(page, pageSize),
			"totals":     agg.Totals,
			"item_count": len(agg.LineItems),
		},
	})
}

// AddItem handles POST /basket/items
func (h *BasketHandler) AddItem(c *gin.Context) {
	userID := currentUserID(c)
	token := getOrCreateBasketToken(c)

	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Count     int  `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	result, err := h.basketService.AddItem(c.Request.Context(), userID, token, req.ProductID, req.Count)
	if err != nil {
		h.basketError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to basket successfully",
		"data":    result,
	})
}

// UpdateItem handles PUT /basket/items/:id
func (h *BasketHandler) UpdateItem(c *gin.Context) {
	userID := currentUserID(c)
	token := getOrCreateBasketToken(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req struct {
		Count int `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.basketService.SetItemCount(c.Request.Context(), userID, token, uint(productID), req.Count)
	if err != nil {
		h.basketError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Basket item updated successfully",
		"data":    result,
	})
}

// RemoveItem handles DELETE /basket/items/:id
func (h *BasketHandler) RemoveItem(c *gin.Context) {
	userID := currentUserID(c)
	token := getOrCreateBasketToken(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	if err := h.basketService.RemoveItem(c.Request.Context(), userID, token, uint(productID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove item",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from basket successfully",
	})
}

// ClearBasket handles DELETE /basket
func (h *BasketHandler) ClearBasket(c *gin.Context) {
	userID := currentUserID(c)
	token := getOrCreateBasketToken(c)

	if err := h.basketService.Clear(c.Request.Context(), userID, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear basket",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Basket cleared successfully",
	})
}

// basketError maps basket mutation failures onto HTTP statuses
func (h *BasketHandler) basketError(c *gin.Context, err error) {
	if errors.Is(err, basket.ErrProductUnavailable) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Product is unavailable",
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
	})
}
