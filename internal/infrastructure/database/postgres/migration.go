// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/domain/basket"
	"github.com/your-org/storefront-checkout/internal/domain/catalog"
	"github.com/your-org/storefront-checkout/internal/domain/discount"
	"github.com/your-org/storefront-checkout/internal/domain/order"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// Catalog domain - base tables
		&catalog.Product{},
		&catalog.PriceEntry{},
		&catalog.DiscountEntry{},

		// Basket domain
		&basket.BasketItem{},

		// Discount domain
		&discount.Code{},

		// Order domain - dependent tables
		&order.Order{},
		&order.OrderItem{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)",
		"CREATE INDEX IF NOT EXISTS idx_product_prices_product_effective ON product_prices(product_id, effective_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_product_discounts_product_expires ON product_discounts(product_id, expires_at DESC)",

		// Basket indexes
		"CREATE INDEX IF NOT EXISTS idx_basket_items_user_product ON basket_items(user_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_basket_items_created_at ON basket_items(created_at DESC)",

		// Discount code indexes
		"CREATE INDEX IF NOT EXISTS idx_discount_codes_user_status ON discount_codes(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_discount_codes_code ON discount_codes(code)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts sample catalog data for development
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	if err := m.seedDiscountCodes(); err != nil {
		return fmt.Errorf("failed to seed discount codes: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	products := []catalog.Product{
		{
			Title:           "Canvas Tote Bag",
			Slug:            "canvas-tote-bag",
			AvailableToShow: 20,
			Weight:          0.4,
			IsActive:        true,
			PriceHistory: []catalog.PriceEntry{
				{PriceMinor: 100000, EffectiveAt: now.AddDate(0, -1, 0)},
			},
			DiscountHistory: []catalog.DiscountEntry{
				{Percent: 10, ExpiresAt: now.AddDate(0, 1, 0)},
			},
		},
		{
			Title:           "Ceramic Mug",
			Slug:            "ceramic-mug",
			AvailableToShow: 50,
			Weight:          0.3,
			IsActive:        true,
			PriceHistory: []catalog.PriceEntry{
				{PriceMinor: 45000, EffectiveAt: now.AddDate(0, -2, 0)},
				{PriceMinor: 50000, EffectiveAt: now.AddDate(0, 0, -7)},
			},
		},
		{
			Title:           "Leather Notebook",
			Slug:            "leather-notebook",
			AvailableToShow: 0, // Out of stock
			Weight:          0.25,
			IsActive:        true,
			PriceHistory: []catalog.PriceEntry{
				{PriceMinor: 150000, EffectiveAt: now.AddDate(0, -1, 0)},
			},
		},
	}

	for i := range products {
		if err := m.db.Create(&products[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d products", len(products))
	return nil
}

func (m *Migration) seedDiscountCodes() error {
	var count int64
	if err := m.db.Model(&discount.Code{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	codes := []discount.Code{
		{Code: "SAVE10", Percent: 10, UserID: 1, Status: discount.CodeStatusActive, ExpiresAt: time.Now().AddDate(0, 1, 0)},
		{Code: "WELCOME20", Percent: 20, UserID: 1, Status: discount.CodeStatusActive, ExpiresAt: time.Now().AddDate(0, 0, 7)},
	}

	for i := range codes {
		if err := m.db.Create(&codes[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d discount codes", len(codes))
	return nil
}

// GetTableInfo logs row counts for the migrated tables
func (m *Migration) GetTableInfo() {
	tables := []string{"products", "product_prices", "product_discounts", "basket_items", "discount_codes", "orders", "order_items"}

	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			log.Printf("⚠️ Failed to count table %s: %v", table, err)
			continue
		}
		log.Printf("Table %s: %d rows", table, count)
	}
}
