// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/streetr/ordering-backend/internal/config"
	"github.com/streetr/ordering-backend/internal/domain/billing"
	"github.com/streetr/ordering-backend/internal/domain/cart"
	"github.com/streetr/ordering-backend/internal/domain/checkout"
	"github.com/streetr/ordering-backend/internal/domain/order"
	"github.com/streetr/ordering-backend/internal/domain/payment"
	"github.com/streetr/ordering-backend/internal/domain/user"
	"github.com/streetr/ordering-backend/internal/interfaces/http/middleware"
	"github.com/streetr/ordering-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// profileReader is what checkout needs from the user domain
type profileReader interface {
	GetProfile(userID uint) (*user.User, error)
}

// CheckoutHandler handles payment checkout endpoints
type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	profiles     profileReader
	emailService *email.EmailService
	log          *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) *CheckoutHandler {
	cartStore := cart.NewStore(redisClient)
	calc := billing.NewCalculator(cfg.Billing)
	settler := order.NewSettlementService(order.NewRepository(db), cartStore, calc, log)

	return &CheckoutHandler{
		orchestrator: checkout.NewOrchestrator(
			redisClient,
			cartStore,
			calc,
			payment.NewCashfreeClient(cfg.Cashfree),
			settler,
			checkout.NewPreferences(redisClient),
			log,
		),
		profiles:     user.NewService(db, cfg),
		emailService: email.NewEmailService(cfg),
		log:          log,
	}
}

// Begin starts a checkout: freezes the cart, bills it and returns the
// gateway token for the payment sheet
func (h *CheckoutHandler) Begin(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		IsDelivery bool `json:"is_delivery"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	profile, err := h.profiles.GetProfile(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	result, err := h.orchestrator.Begin(c.Request.Context(), userID, &checkout.BeginRequest{
		IsDelivery: req.IsDelivery,
		Phone:      profile.Phone,
		Email:      profile.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		case errors.Is(err, checkout.ErrAttemptInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "A checkout is already in progress"})
		default:
			// The gateway's own error text is part of the payload so the
			// customer sees why the payment could not start
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Failed to start checkout",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout started",
		"data":    result,
	})
}

// Complete handles the payment success callback
func (h *CheckoutHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		PaymentToken string `json:"payment_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	settled, err := h.orchestrator.Complete(c.Request.Context(), userID, req.PaymentToken)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoActiveAttempt):
			c.JSON(http.StatusNotFound, gin.H{"error": "No active checkout attempt"})
		case errors.Is(err, checkout.ErrAttemptClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "Checkout attempt already concluded"})
		case errors.Is(err, checkout.ErrTokenMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment token does not match active attempt"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to settle order"})
		}
		return
	}

	h.sendConfirmationEmail(c, userID, settled)

	c.JSON(http.StatusOK, gin.H{
		"message": "Order placed successfully",
		"data":    settled,
	})
}

// Fail handles the payment failure callback. The cart is preserved so the
// customer can try again.
func (h *CheckoutHandler) Fail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		ErrorText string `json:"error_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.orchestrator.Fail(c.Request.Context(), userID, req.ErrorText); err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoActiveAttempt):
			c.JSON(http.StatusNotFound, gin.H{"error": "No active checkout attempt"})
		case errors.Is(err, checkout.ErrAttemptClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "Checkout attempt already concluded"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment failure"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment failure recorded; cart preserved"})
}

// sendConfirmationEmail sends the order confirmation. Failures are logged,
// never surfaced: the order already stands.
func (h *CheckoutHandler) sendConfirmationEmail(c *gin.Context, userID uint, settled *order.Order) {
	profile, err := h.profiles.GetProfile(userID)
	if err != nil || profile.Email == "" {
		return
	}

	items := make([]email.OrderItemLine, 0, len(settled.Items))
	for _, line := range settled.Items {
		items = append(items, email.OrderItemLine{
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.Price.StringFixed(2),
		})
	}

	err = h.emailService.SendOrderConfirmationEmail(c.Request.Context(), email.OrderConfirmationData{
		UserName:    profile.GetDisplayName(),
		UserEmail:   profile.Email,
		OrderNumber: settled.OrderNumber,
		OrderTotal:  settled.GrandTotal.StringFixed(2),
		PickupCode:  settled.OTP,
		IsDelivery:  settled.IsDelivery,
		Items:       items,
	})
	if err != nil {
		h.log.WithError(err).WithField("order_number", settled.OrderNumber).
			Warn("failed to send order confirmation email")
	}
}
