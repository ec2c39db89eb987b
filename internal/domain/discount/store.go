// internal/domain/discount/store.go
package discount

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const appliedTTL = 24 * time.Hour

// GormCodeSource looks up promotional codes in the database
type GormCodeSource struct {
	db *gorm.DB
}

// NewGormCodeSource creates a database-backed code source
func NewGormCodeSource(db *gorm.DB) *GormCodeSource {
	return &GormCodeSource{db: db}
}

// FindActive returns the user's active code matching the given value, or nil
func (s *GormCodeSource) FindActive(ctx context.Context, userID uint, code string) (*Code, error) {
	var matched Code
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND status = ?", userID, code, CodeStatusActive).
		First(&matched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up discount code: %w", err)
	}
	return &matched, nil
}

// MarkUsed transitions a code to used after successful order placement
func (s *GormCodeSource) MarkUsed(ctx context.Context, userID uint, code string) error {
	return s.db.WithContext(ctx).Model(&Code{}).
		Where("user_id = ? AND code = ?", userID, code).
		Update("status", CodeStatusUsed).Error
}

// RedisAppliedStore persists the applied discount as a small JSON blob keyed
// by checkout session token
type RedisAppliedStore struct {
	redis *redis.Client
}

// NewRedisAppliedStore creates a Redis-backed applied-discount store
func NewRedisAppliedStore(redisClient *redis.Client) *RedisAppliedStore {
	return &RedisAppliedStore{redis: redisClient}
}

// Get returns the applied discount for the session, or nil
func (s *RedisAppliedStore) Get(ctx context.Context, token string) (*Applied, error) {
	data, err := s.redis.Get(ctx, appliedKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load applied discount: %w", err)
	}

	var applied Applied
	if err := json.Unmarshal([]byte(data), &applied); err != nil {
		return nil, fmt.Errorf("corrupt applied discount: %w", err)
	}
	return &applied, nil
}

// Set records the applied discount for the session
func (s *RedisAppliedStore) Set(ctx context.Context, token string, applied *Applied) error {
	data, err := json.Marshal(applied)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, appliedKey(token), data, appliedTTL).Err()
}

// Del discards the applied discount for the session
func (s *RedisAppliedStore) Del(ctx context.Context, token string) error {
	return s.redis.Del(ctx, appliedKey(token)).Err()
}

func appliedKey(token string) string {
	return fmt.Sprintf("applied_discount:%s", token)
}
