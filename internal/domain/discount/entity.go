// internal/domain/discount/entity.go
package discount

import (
	"time"

	"gorm.io/gorm"
)

// CodeStatus represents the lifecycle status of a promotional code. Status
// and expiry are independent: an active code can still be expired by time.
type CodeStatus string

const (
	CodeStatusActive  CodeStatus = "active"
	CodeStatusUsed    CodeStatus = "used"
	CodeStatusExpired CodeStatus = "expired"
)

// Code represents a promotional discount code belonging to a user
type Code struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Code      string         `gorm:"not null;size:50;index" json:"code"`
	Percent   int            `gorm:"not null" json:"percent"`
	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	Status    CodeStatus     `gorm:"not null;default:'active'" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Code) TableName() string {
	return "discount_codes"
}

// IsExpired reports whether the code has expired by time, regardless of status
func (c *Code) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// Applied is the promo discount recorded against a checkout session. It is
// layered on top of the aggregated totals at render and submit time, never
// mixed into the per-product discount sum. Its JSON form is the persisted
// shape and must round-trip exactly.
type Applied struct {
	Percent int    `json:"percent"`
	Code    string `json:"code"`
}
