// internal/interfaces/http/handlers/favorites.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/streetr/ordering-backend/internal/domain/catalog"
	"github.com/streetr/ordering-backend/internal/domain/favorites"
	"github.com/streetr/ordering-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// favoritesManager is what the handler needs from the favorites domain
type favoritesManager interface {
	Add(userID, itemID uint) error
	Remove(userID, itemID uint) error
	List(userID uint) ([]catalog.Item, error)
}

// FavoritesHandler handles liked-items endpoints
type FavoritesHandler struct {
	favorites favoritesManager
}

// NewFavoritesHandler creates a new favorites handler
func NewFavoritesHandler(db *gorm.DB) *FavoritesHandler {
	return &FavoritesHandler{
		favorites: favorites.NewService(db),
	}
}

// AddFavorite marks an item as liked
func (h *FavoritesHandler) AddFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		ItemID uint `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.favorites.Add(userID, req.ItemID); err != nil {
		if errors.Is(err, favorites.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save favorite"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added to favorites"})
}

// RemoveFavorite unmarks a liked item
func (h *FavoritesHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || itemID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	if err := h.favorites.Remove(userID, uint(itemID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from favorites"})
}

// GetFavorites lists the caller's liked items
func (h *FavoritesHandler) GetFavorites(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	items, err := h.favorites.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"items": items,
			"count": len(items),
		},
	})
}
