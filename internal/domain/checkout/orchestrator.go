// internal/domain/checkout/orchestrator.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/streetr/ordering-backend/internal/domain/billing"
	"github.com/streetr/ordering-backend/internal/domain/cart"
	"github.com/streetr/ordering-backend/internal/domain/order"
	"github.com/streetr/ordering-backend/internal/domain/payment"
)

// Attempt states. An attempt moves idle -> token_requested -> presented and
// then terminally to settled or failed; the first callback to land wins and
// later ones are rejected.
const (
	StateIdle           = "idle"
	StateTokenRequested = "token_requested"
	StatePresented      = "presented"
	StateSettled        = "settled"
	StateFailed         = "failed"
)

// attemptTTL bounds how long an unfinished checkout stays resumable. The
// cart itself is durable; only the payment attempt expires.
const attemptTTL = 30 * time.Minute

// Checkout errors
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNoActiveAttempt = errors.New("no active checkout attempt")
	ErrAttemptInFlight = errors.New("a checkout attempt is already in progress")
	ErrAttemptClosed   = errors.New("checkout attempt already concluded")
	ErrTokenMismatch   = errors.New("payment token does not match active attempt")
)

// Attempt is the per-user checkout record. Items are frozen at Begin so the
// amount presented to the gateway and the amount settled always agree, no
// matter what happens to the live cart in between.
type Attempt struct {
	UserID         uint            `json:"user_id"`
	State          string          `json:"state"`
	GatewayOrderID string          `json:"gateway_order_id"`
	PaymentSession string          `json:"payment_session"`
	IsDelivery     bool            `json:"is_delivery"`
	Items          []cart.LineItem `json:"items"`
	Amount         decimal.Decimal `json:"amount"`
	OrderID        uint            `json:"order_id,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BeginRequest carries the customer side of a checkout start
type BeginRequest struct {
	IsDelivery bool
	Phone      string
	Email      string
}

// BeginResult is what the client needs to present the payment sheet
type BeginResult struct {
	GatewayOrderID string          `json:"order_id"`
	PaymentSession string          `json:"order_token"`
	Amount         decimal.Decimal `json:"amount"`
}

// Settler finalizes a paid attempt into a persisted order
type Settler interface {
	Settle(ctx context.Context, req *order.SettleRequest) (*order.Order, error)
}

// Orchestrator drives the checkout state machine. One attempt per user at a
// time; while an attempt is presented, starting another checkout is rejected
// until the attempt concludes or its record expires.
type Orchestrator struct {
	redisClient *redis.Client
	cartStore   *cart.Store
	calc        *billing.Calculator
	gateway     payment.Gateway
	settler     Settler
	prefs       *Preferences
	log         *logrus.Logger
}

// NewOrchestrator creates a new checkout orchestrator
func NewOrchestrator(
	redisClient *redis.Client,
	cartStore *cart.Store,
	calc *billing.Calculator,
	gateway payment.Gateway,
	settler Settler,
	prefs *Preferences,
	log *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		redisClient: redisClient,
		cartStore:   cartStore,
		calc:        calc,
		gateway:     gateway,
		settler:     settler,
		prefs:       prefs,
		log:         log,
	}
}

// Begin freezes the cart, acquires a payment token from the gateway and
// records the presented attempt. An empty cart fails before the gateway is
// contacted. Re-entry is blocked while a presented attempt is still open;
// its payment sheet may yet call back, and overwriting the attempt would
// orphan a payment that succeeded externally. Concluded attempts (settled
// or failed) do not block a fresh checkout.
func (o *Orchestrator) Begin(ctx context.Context, userID uint, req *BeginRequest) (*BeginResult, error) {
	existing, err := o.loadAttempt(ctx, userID)
	if err != nil && !errors.Is(err, ErrNoActiveAttempt) {
		return nil, err
	}
	if existing != nil && existing.State == StatePresented {
		return nil, ErrAttemptInFlight
	}

	items, err := o.cartStore.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	bill := o.calc.Compute(items, req.IsDelivery).Rounded()

	attempt := &Attempt{
		UserID:     userID,
		State:      StateTokenRequested,
		IsDelivery: req.IsDelivery,
		Items:      items,
		Amount:     bill.GrandTotal,
		CreatedAt:  time.Now().UTC(),
	}
	if err := o.saveAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	token, err := o.gateway.CreateOrder(ctx, &payment.OrderRequest{
		Amount:        bill.GrandTotal,
		CustomerID:    userID,
		CustomerPhone: req.Phone,
		CustomerEmail: req.Email,
	})
	if err != nil {
		attempt.State = StateFailed
		attempt.FailureReason = "token acquisition failed"
		if saveErr := o.saveAttempt(ctx, attempt); saveErr != nil {
			o.log.WithError(saveErr).Warn("failed to record failed attempt")
		}
		return nil, fmt.Errorf("failed to start checkout: %w", err)
	}

	attempt.State = StatePresented
	attempt.GatewayOrderID = token.OrderID
	attempt.PaymentSession = token.PaymentSession
	if err := o.saveAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	o.log.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  bill.GrandTotal.String(),
	}).Info("checkout presented")

	return &BeginResult{
		GatewayOrderID: token.OrderID,
		PaymentSession: token.PaymentSession,
		Amount:         bill.GrandTotal,
	}, nil
}

// Complete handles the gateway success callback. The first call settles the
// frozen snapshot into an order; repeated calls with the same token return
// that same order. A callback after a recorded failure is rejected.
func (o *Orchestrator) Complete(ctx context.Context, userID uint, paymentToken string) (*order.Order, error) {
	attempt, err := o.loadAttempt(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch attempt.State {
	case StateFailed:
		return nil, ErrAttemptClosed
	case StatePresented, StateSettled:
		// settle below; Settle is idempotent per token
	default:
		return nil, ErrNoActiveAttempt
	}

	if paymentToken != attempt.GatewayOrderID {
		return nil, ErrTokenMismatch
	}

	settled, err := o.settler.Settle(ctx, &order.SettleRequest{
		UserID:       userID,
		Items:        attempt.Items,
		IsDelivery:   attempt.IsDelivery,
		PaymentToken: attempt.GatewayOrderID,
	})
	if err != nil {
		// Persistence failed: the attempt stays presented and the cart is
		// untouched, so the callback can be retried
		return nil, err
	}

	if attempt.State != StateSettled {
		attempt.State = StateSettled
		attempt.OrderID = settled.ID
		if err := o.saveAttempt(ctx, attempt); err != nil {
			o.log.WithError(err).Warn("failed to record settled attempt")
		}
		if err := o.prefs.Clear(ctx, userID); err != nil {
			o.log.WithError(err).Warn("failed to clear delivery preference")
		}
	}

	return settled, nil
}

// Fail handles the gateway failure callback. It is a no-op error once the
// attempt has already settled; success always wins over a late failure.
func (o *Orchestrator) Fail(ctx context.Context, userID uint, reason string) error {
	attempt, err := o.loadAttempt(ctx, userID)
	if err != nil {
		return err
	}

	switch attempt.State {
	case StateSettled:
		return ErrAttemptClosed
	case StateFailed:
		// Repeated failure callbacks are harmless
		return nil
	case StatePresented, StateTokenRequested:
	default:
		return ErrNoActiveAttempt
	}

	attempt.State = StateFailed
	attempt.FailureReason = reason
	if err := o.saveAttempt(ctx, attempt); err != nil {
		return err
	}

	o.log.WithFields(logrus.Fields{
		"user_id": userID,
		"reason":  reason,
	}).Info("checkout failed; cart preserved")

	return nil
}

// Attempt returns the user's current checkout attempt
func (o *Orchestrator) Attempt(ctx context.Context, userID uint) (*Attempt, error) {
	return o.loadAttempt(ctx, userID)
}

func (o *Orchestrator) loadAttempt(ctx context.Context, userID uint) (*Attempt, error) {
	data, err := o.redisClient.Get(ctx, attemptKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrNoActiveAttempt
	} else if err != nil {
		return nil, fmt.Errorf("failed to load checkout attempt: %w", err)
	}

	var attempt Attempt
	if err := json.Unmarshal([]byte(data), &attempt); err != nil {
		return nil, fmt.Errorf("failed to decode checkout attempt: %w", err)
	}
	return &attempt, nil
}

func (o *Orchestrator) saveAttempt(ctx context.Context, attempt *Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to encode checkout attempt: %w", err)
	}
	if err := o.redisClient.Set(ctx, attemptKey(attempt.UserID), data, attemptTTL).Err(); err != nil {
		return fmt.Errorf("failed to persist checkout attempt: %w", err)
	}
	return nil
}

func attemptKey(userID uint) string {
	return fmt.Sprintf("checkout:attempt:user:%d", userID)
}
