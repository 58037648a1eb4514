// internal/domain/order/settlement.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streetr/ordering-backend/internal/domain/billing"
	"github.com/streetr/ordering-backend/internal/domain/cart"
)

// Settlement errors
var (
	ErrEmptySnapshot = errors.New("settlement snapshot has no items")
	ErrNoSeller      = errors.New("settlement snapshot has no seller")
)

// CartClearer removes a user's cart slot after settlement
type CartClearer interface {
	Clear(ctx context.Context, userID uint) error
}

// SettleRequest carries the frozen checkout snapshot into settlement. Items
// are the lines captured when the payment token was requested, not the live
// cart, so mid-payment cart edits cannot change what the customer is charged.
type SettleRequest struct {
	UserID       uint
	Items        []cart.LineItem
	IsDelivery   bool
	PaymentToken string
}

// SettlementService turns a successful payment callback into a persisted
// order exactly once per payment token.
type SettlementService struct {
	repo      Repository
	cartStore CartClearer
	calc      *billing.Calculator
	log       *logrus.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(repo Repository, cartStore CartClearer, calc *billing.Calculator, log *logrus.Logger) *SettlementService {
	return &SettlementService{
		repo:      repo,
		cartStore: cartStore,
		calc:      calc,
		log:       log,
	}
}

// Settle recomputes the bill from the frozen snapshot, persists the order
// with a fresh pickup code, and clears the cart. Calling it again with the
// same payment token returns the already-settled order without writing
// anything. If persistence fails the cart is left untouched so the customer
// can retry.
func (s *SettlementService) Settle(ctx context.Context, req *SettleRequest) (*Order, error) {
	if req.PaymentToken == "" {
		return nil, fmt.Errorf("payment token is required")
	}

	existing, err := s.repo.FindByPaymentToken(ctx, req.PaymentToken)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}

	newOrder, err := s.buildOrder(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, newOrder); err != nil {
		if errors.Is(err, ErrDuplicateToken) {
			// Lost a race with a concurrent callback for the same token
			return s.repo.FindByPaymentToken(ctx, req.PaymentToken)
		}
		return nil, err
	}

	// The order is durable from here on. A failed cart clear is logged and
	// retried on the next mutation path, never surfaced as a settlement error.
	if err := s.cartStore.Clear(ctx, req.UserID); err != nil {
		s.log.WithError(err).WithField("user_id", req.UserID).
			Error("settled order but failed to clear cart")
	}

	s.log.WithFields(logrus.Fields{
		"order_number": newOrder.OrderNumber,
		"user_id":      newOrder.UserID,
		"seller_id":    newOrder.SellerID,
		"grand_total":  newOrder.GrandTotal.String(),
	}).Info("order settled")

	return newOrder, nil
}

// buildOrder derives the persistable order from the frozen snapshot
func (s *SettlementService) buildOrder(req *SettleRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptySnapshot
	}

	sellerID := req.Items[0].SellerID
	if sellerID == 0 {
		return nil, ErrNoSeller
	}
	for _, item := range req.Items[1:] {
		if item.SellerID != sellerID {
			s.log.WithFields(logrus.Fields{
				"user_id":    req.UserID,
				"seller_id":  sellerID,
				"mixed_with": item.SellerID,
			}).Warn("settling cart with items from multiple sellers")
			break
		}
	}

	bill := s.calc.Compute(req.Items, req.IsDelivery).Rounded()

	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}

	items := make([]OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, OrderItem{
			ItemID:   line.ItemID,
			Name:     line.Name,
			Price:    line.Price.Round(2),
			Quantity: line.Quantity,
		})
	}

	return &Order{
		OrderNumber:  newOrderNumber(),
		UserID:       req.UserID,
		SellerID:     sellerID,
		PaymentToken: req.PaymentToken,
		IsDelivery:   req.IsDelivery,
		Subtotal:     bill.Subtotal,
		PlatformFee:  bill.PlatformFee,
		GST:          bill.GST,
		DeliveryFee:  bill.DeliveryFee,
		GrandTotal:   bill.GrandTotal,
		// The seller is paid the full item value; the platform keeps its fee
		// and the collected tax
		SellerAmount:  bill.Subtotal,
		CompanyProfit: bill.PlatformFee.Add(bill.GST),
		OTP:           otp,
		Status:        OrderStatusPaid,
		Items:         items,
	}, nil
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
