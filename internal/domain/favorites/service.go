// internal/domain/favorites/service.go
package favorites

import (
	"errors"
	"fmt"

	"github.com/streetr/ordering-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// ErrItemNotFound is returned when the favorited item does not exist
var ErrItemNotFound = errors.New("item not found")

// Service handles favorites business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new favorites service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Add marks a catalog item as a favorite. Favoriting an item twice keeps a
// single row.
func (s *Service) Add(userID, itemID uint) error {
	var item catalog.Item
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to look up item: %w", err)
	}

	fav := Favorite{UserID: userID, ItemID: itemID}
	if err := s.db.Where(&Favorite{UserID: userID, ItemID: itemID}).FirstOrCreate(&fav).Error; err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

// Remove drops a favorite. Absent ids are silently ignored, matching the
// cart's delete semantics.
func (s *Service) Remove(userID, itemID uint) error {
	if err := s.db.Where("user_id = ? AND item_id = ?", userID, itemID).Delete(&Favorite{}).Error; err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// List returns the user's favorited items with their sellers, newest first
func (s *Service) List(userID uint) ([]catalog.Item, error) {
	var favs []Favorite
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&favs).Error; err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if len(favs) == 0 {
		return []catalog.Item{}, nil
	}

	ids := make([]uint, 0, len(favs))
	for _, fav := range favs {
		ids = append(ids, fav.ItemID)
	}

	var items []catalog.Item
	if err := s.db.Preload("Seller").Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load favorited items: %w", err)
	}

	byID := make(map[uint]catalog.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	ordered := make([]catalog.Item, 0, len(items))
	for _, fav := range favs {
		if item, ok := byID[fav.ItemID]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered, nil
}
