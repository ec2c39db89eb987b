// internal/domain/checkout/session.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/your-org/storefront-checkout/internal/domain/basket"
)

const sessionTTL = 24 * time.Hour

// Session holds the in-progress recipient and shipment form for one checkout.
// Its JSON form is the persisted shape and must round-trip exactly; an absent
// key is equivalent to an empty string.
type Session struct {
	Phone    string `json:"phone"`
	Name     string `json:"name" validate:"required"`
	Province string `json:"state" validate:"required"`
	City     string `json:"city" validate:"required"`
	Address  string `json:"address" validate:"required"`
	PostCode string `json:"postCode" validate:"required"`
	Shipment string `json:"shipment" validate:"required"`
}

// ShipmentMethod returns the chosen shipment method
func (s *Session) ShipmentMethod() basket.ShipmentMethod {
	return basket.ShipmentMethod(s.Shipment)
}

// SessionStore persists checkout sessions as small JSON blobs keyed by a
// cookie-held checkout token
type SessionStore struct {
	redis *redis.Client
}

// NewSessionStore creates a Redis-backed session store
func NewSessionStore(redisClient *redis.Client) *SessionStore {
	return &SessionStore{redis: redisClient}
}

// Get loads the session for the token. A missing session is an empty one.
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("checkout token required")
	}

	data, err := s.redis.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return &Session{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("corrupt checkout session: %w", err)
	}
	return &session, nil
}

// Save persists the session for the token
func (s *SessionStore) Save(ctx context.Context, token string, session *Session) error {
	if token == "" {
		return fmt.Errorf("checkout token required")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, sessionKey(token), data, sessionTTL).Err()
}

// Clear discards the session. Called on successful order placement and on
// logout; idempotent.
func (s *SessionStore) Clear(ctx context.Context, token string) error {
	return s.redis.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return fmt.Sprintf("checkout:session:%s", token)
}
