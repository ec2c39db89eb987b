// internal/domain/discount/engine.go
package discount

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotAuthenticated is returned when a promo code is applied without a
	// user session
	ErrNotAuthenticated = errors.New("authentication required to apply a discount code")

	// ErrCodeNotFound is returned when no active code matches for the user
	ErrCodeNotFound = errors.New("discount code not found")

	// ErrCodeExpired is returned when the matched code has expired by time
	ErrCodeExpired = errors.New("discount code expired")

	// ErrAlreadyApplied is returned when a code is applied while another is
	// active on the session; codes never stack
	ErrAlreadyApplied = errors.New("a discount code is already applied")
)

// CodeSource finds a user's promotional codes
type CodeSource interface {
	FindActive(ctx context.Context, userID uint, code string) (*Code, error)
}

// AppliedStore persists the applied discount for a checkout session
type AppliedStore interface {
	Get(ctx context.Context, token string) (*Applied, error)
	Set(ctx context.Context, token string, applied *Applied) error
	Del(ctx context.Context, token string) error
}

// Engine validates and applies at most one promotional code per checkout
// session. Applying is a calculation layered on top of the aggregated totals;
// it never mutates the per-product discount fields.
type Engine struct {
	codes   CodeSource
	applied AppliedStore
	logger  *logrus.Logger
}

// NewEngine creates a new discount engine
func NewEngine(codes CodeSource, applied AppliedStore, logger *logrus.Logger) *Engine {
	return &Engine{
		codes:   codes,
		applied: applied,
		logger:  logger,
	}
}

// Apply validates a code for the user and records it against the session.
// While a code is applied, further Apply calls fail with ErrAlreadyApplied
// and leave the recorded code untouched.
func (e *Engine) Apply(ctx context.Context, userID *uint, token, code string, now time.Time) (*Applied, error) {
	if userID == nil {
		return nil, ErrNotAuthenticated
	}

	current, err := e.applied.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return current, ErrAlreadyApplied
	}

	matched, err := e.codes.FindActive(ctx, *userID, code)
	if err != nil {
		return nil, err
	}
	if matched == nil {
		return nil, ErrCodeNotFound
	}

	// Status and expiry are independent checks; both must pass
	if matched.IsExpired(now) {
		return nil, ErrCodeExpired
	}

	applied := &Applied{
		Percent: matched.Percent,
		Code:    matched.Code,
	}
	if err := e.applied.Set(ctx, token, applied); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"user_id": *userID,
		"code":    matched.Code,
		"percent": matched.Percent,
	}).Info("Discount code applied")

	return applied, nil
}

// Clear discards the applied code unconditionally. Clearing an empty session
// is a no-op.
func (e *Engine) Clear(ctx context.Context, token string) error {
	return e.applied.Del(ctx, token)
}

// GetApplied returns the discount currently recorded for the session, or nil
func (e *Engine) GetApplied(ctx context.Context, token string) (*Applied, error) {
	return e.applied.Get(ctx, token)
}
