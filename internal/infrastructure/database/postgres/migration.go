// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/streetr/ordering-backend/internal/domain/catalog"
	"github.com/streetr/ordering-backend/internal/domain/favorites"
	"github.com/streetr/ordering-backend/internal/domain/order"
	"github.com/streetr/ordering-backend/internal/domain/user"
	"gorm.io/gorm"
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
	log.Println("Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},
		&catalog.Seller{},
		&catalog.Item{},
		&order.Order{},
		&order.OrderItem{},
		&favorites.Favorite{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_catalog_items_seller_available ON catalog_items(seller_id, is_available)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_seller_status ON orders(seller_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// SeedInitialData seeds a demo seller and menu in development
func (m *Migration) SeedInitialData() error {
	var count int64
	if err := m.db.Model(&catalog.Seller{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check sellers: %w", err)
	}
	if count > 0 {
		return nil
	}

	seller := catalog.Seller{
		Name:     "Anna's Chaat Corner",
		Phone:    "9876543210",
		Address:  "Stall 12, MG Road",
		IsActive: true,
	}
	if err := m.db.Create(&seller).Error; err != nil {
		return fmt.Errorf("failed to seed seller: %w", err)
	}

	items := []catalog.Item{
		{Name: "Vada Pav", Description: "Classic Mumbai street snack", Price: decimal.NewFromInt(40), SellerID: seller.ID, IsAvailable: true},
		{Name: "Pav Bhaji", Description: "Spiced vegetable mash with buttered pav", Price: decimal.NewFromInt(90), SellerID: seller.ID, IsAvailable: true},
		{Name: "Masala Chai", Description: "Cutting chai", Price: decimal.NewFromInt(15), SellerID: seller.ID, IsAvailable: true},
	}
	if err := m.db.Create(&items).Error; err != nil {
		return fmt.Errorf("failed to seed items: %w", err)
	}

	log.Println("Seeded demo seller and menu")
	return nil
}
