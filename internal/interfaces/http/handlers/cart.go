// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/streetr/ordering-backend/internal/config"
	"github.com/streetr/ordering-backend/internal/domain/billing"
	"github.com/streetr/ordering-backend/internal/domain/cart"
	"github.com/streetr/ordering-backend/internal/domain/catalog"
	"github.com/streetr/ordering-backend/internal/domain/checkout"
	"github.com/streetr/ordering-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartStore      *cart.Store
	catalogService *catalog.Service
	calculator     *billing.Calculator
	prefs          *checkout.Preferences
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartStore:      cart.NewStore(redisClient),
		catalogService: catalog.NewService(db),
		calculator:     billing.NewCalculator(cfg.Billing),
		prefs:          checkout.NewPreferences(redisClient),
	}
}

// AddItem adds a catalog item to the cart. The listed price and seller come
// from the catalog, never from the request body.
func (h *CartHandler) AddItem(c *gin.Context) {
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

	item, err := h.catalogService.GetItem(req.ItemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.cartStore.Add(c.Request.Context(), userID, cart.LineItem{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		SellerID: item.SellerID,
		ImageURL: item.ImageURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    updated,
	})
}

// ChangeQuantity adjusts the quantity of a cart line by a signed delta
func (h *CartHandler) ChangeQuantity(c *gin.Context) {
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

	var req struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.cartStore.ChangeQuantity(c.Request.Context(), userID, uint(itemID), req.Delta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"data":    updated,
	})
}

// GetCart returns the current cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	userCart, err := h.cartStore.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": userCart})
}

// ClearCart removes every item from the cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.cartStore.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// GetBill returns the bill breakdown for the current cart. The delivery flag
// defaults to the stored preference when the query parameter is absent.
func (h *CartHandler) GetBill(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	ctx := c.Request.Context()

	isDelivery, err := h.prefs.GetDelivery(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load delivery preference"})
		return
	}
	if raw, present := c.GetQuery("delivery"); present {
		isDelivery = raw == "true" || raw == "1"
	}

	items, err := h.cartStore.Snapshot(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	bill := h.calculator.Compute(items, isDelivery).Rounded()

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"bill":        bill,
			"is_delivery": isDelivery,
		},
	})
}

// SetDeliveryPreference stores the delivery choice for later checkouts
func (h *CartHandler) SetDeliveryPreference(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		IsDelivery *bool `json:"is_delivery" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.prefs.SetDelivery(c.Request.Context(), userID, *req.IsDelivery); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store delivery preference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delivery preference saved"})
}
