// internal/domain/shipping/service.go
package shipping

import (
	"github.com/your-org/storefront-checkout/internal/config"
)

// Service quotes shipping costs. The current rate is a flat amount independent
// of basket weight; aggregation still tracks order weight so a weight-based
// rate can be introduced here without touching the callers.
type Service struct {
	config *config.Config
}

// NewService creates a new shipping service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// FlatRate returns the flat postal shipping cost in the minor currency unit
func (s *Service) FlatRate() int64 {
	return s.config.Shipping.FlatRateMinor
}

// CourierCity returns the only city courier delivery is available in
func (s *Service) CourierCity() string {
	return s.config.Shipping.CourierCity
}
