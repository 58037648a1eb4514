// internal/domain/favorites/entity.go
package favorites

import "time"

// Favorite marks a catalog item a user wants to find again
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_item" json:"user_id"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_item" json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name
func (Favorite) TableName() string {
	return "favorites"
}
