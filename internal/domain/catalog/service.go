// internal/domain/catalog/service.go
package catalog

import (
	"fmt"

	"gorm.io/gorm"
)

// Service handles catalog lookups. The catalog is the price authority: carts
// always carry the listed price and seller of the item at the moment it was
// added, never client-supplied values.
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetItem retrieves a single available item by id
func (s *Service) GetItem(itemID uint) (*Item, error) {
	var item Item
	if err := s.db.Where("id = ? AND is_available = ?", itemID, true).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("item not found")
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// GetItems retrieves available items, optionally filtered by seller
func (s *Service) GetItems(sellerID uint) ([]Item, error) {
	var items []Item
	query := s.db.Where("is_available = ?", true)
	if sellerID != 0 {
		query = query.Where("seller_id = ?", sellerID)
	}
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// GetSeller retrieves an active seller by id
func (s *Service) GetSeller(sellerID uint) (*Seller, error) {
	var seller Seller
	if err := s.db.Where("id = ? AND is_active = ?", sellerID, true).First(&seller).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("seller not found")
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return &seller, nil
}
