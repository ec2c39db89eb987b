// internal/interfaces/http/handlers/common.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/interfaces/http/middleware"
)

const (
	basketTokenCookie   = "basket_token"
	checkoutTokenCookie = "checkout_token"
)

// getOrCreateBasketToken returns the caller's basket token, minting one for
// new guests. The token survives the guest basket's 30 day retention window.
func getOrCreateBasketToken(c *gin.Context) string {
	if token := c.GetHeader("X-Basket-Token"); token != "" {
		return token
	}

	token, err := c.Cookie(basketTokenCookie)
	if err != nil || token == "" {
		token = uuid.New().String()
		c.SetCookie(basketTokenCookie, token, 30*86400, "/", "", false, true)
	}

	return token
}

// getOrCreateCheckoutToken returns the caller's checkout session token
func getOrCreateCheckoutToken(c *gin.Context) string {
	if token := c.GetHeader("X-Checkout-Token"); token != "" {
		return token
	}

	token, err := c.Cookie(checkoutTokenCookie)
	if err != nil || token == "" {
		token = uuid.New().String()
		c.SetCookie(checkoutTokenCookie, token, 86400, "/", "", false, true)
	}

	return token
}

// currentUserID returns the authenticated user id, or nil for guests
func currentUserID(c *gin.Context) *uint {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return nil
	}
	return &userID
}

// newLogger builds a logrus logger from the logging configuration
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
