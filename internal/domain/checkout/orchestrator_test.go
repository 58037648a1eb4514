package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/streetr/ordering-backend/internal/config"
	"github.com/streetr/ordering-backend/internal/domain/billing"
	"github.com/streetr/ordering-backend/internal/domain/cart"
	"github.com/streetr/ordering-backend/internal/domain/order"
	"github.com/streetr/ordering-backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	calls   int
	failErr error
}

func (f *fakeGateway) CreateOrder(_ context.Context, req *payment.OrderRequest) (*payment.OrderToken, error) {
	f.calls++
	if f.failErr != nil {
		return nil, f.failErr
	}
	return &payment.OrderToken{
		OrderID:        fmt.Sprintf("order_%d", f.calls),
		PaymentSession: fmt.Sprintf("session_%d", f.calls),
	}, nil
}

type fakeSettler struct {
	settled    map[string]*order.Order
	settleErr  error
	settleCall int
}

func newFakeSettler() *fakeSettler {
	return &fakeSettler{settled: make(map[string]*order.Order)}
}

func (f *fakeSettler) Settle(_ context.Context, req *order.SettleRequest) (*order.Order, error) {
	f.settleCall++
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	if existing, ok := f.settled[req.PaymentToken]; ok {
		return existing, nil
	}
	o := &order.Order{
		ID:           uint(len(f.settled) + 1),
		UserID:       req.UserID,
		PaymentToken: req.PaymentToken,
		OTP:          "AB12CD",
	}
	f.settled[req.PaymentToken] = o
	return o, nil
}

type checkoutFixture struct {
	orch      *Orchestrator
	cartStore *cart.Store
	gateway   *fakeGateway
	settler   *fakeSettler
	prefs     *Preferences
	mr        *miniredis.Miniredis
}

func setupCheckout(t *testing.T) *checkoutFixture {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	dec := decimal.RequireFromString
	calc := billing.NewCalculator(config.BillingConfig{
		PlatformFee: dec("5.00"),
		GSTRate:     dec("0.10"),
		DeliveryTiers: []config.DeliveryTier{
			{UpperBound: dec("100"), Fee: dec("10")},
		},
		CeilingFee: dec("30"),
	})

	log := logrus.New()
	log.SetOutput(io.Discard)

	fixture := &checkoutFixture{
		cartStore: cart.NewStore(client),
		gateway:   &fakeGateway{},
		settler:   newFakeSettler(),
		prefs:     NewPreferences(client),
		mr:        mr,
	}
	fixture.orch = NewOrchestrator(client, fixture.cartStore, calc, fixture.gateway, fixture.settler, fixture.prefs, log)
	return fixture
}

func (f *checkoutFixture) fillCart(t *testing.T, userID uint) {
	_, err := f.cartStore.Add(context.Background(), userID, cart.LineItem{
		ItemID:   1,
		Name:     "Vada Pav",
		Price:    decimal.NewFromInt(40),
		SellerID: 7,
	})
	require.NoError(t, err)
	_, err = f.cartStore.ChangeQuantity(context.Background(), userID, 1, 1)
	require.NoError(t, err)
}

func TestBegin_EmptyCart_FailsBeforeGateway(t *testing.T) {
	f := setupCheckout(t)

	_, err := f.orch.Begin(context.Background(), 42, &BeginRequest{})

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.gateway.calls)
}

func TestBegin_PresentsTokenWithBilledAmount(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)

	res, err := f.orch.Begin(context.Background(), 42, &BeginRequest{IsDelivery: false})
	require.NoError(t, err)

	// 80 + 5
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(85)), "amount = %s", res.Amount)
	assert.Equal(t, "order_1", res.GatewayOrderID)
	assert.Equal(t, "session_1", res.PaymentSession)

	attempt, err := f.orch.Attempt(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, StatePresented, attempt.State)
	require.Len(t, attempt.Items, 1)
	assert.Equal(t, 2, attempt.Items[0].Quantity)
}

func TestBegin_WhilePresented_Rejected(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	res, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)

	_, err = f.orch.Begin(ctx, 42, &BeginRequest{})
	require.ErrorIs(t, err, ErrAttemptInFlight)
	assert.Equal(t, 1, f.gateway.calls)

	// The open payment sheet still settles against its own token
	settled, err := f.orch.Complete(ctx, 42, res.GatewayOrderID)
	require.NoError(t, err)
	assert.NotZero(t, settled.ID)
}

func TestBegin_AfterConcludedAttempt_IssuesFreshToken(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)
	require.NoError(t, f.orch.Fail(ctx, 42, "card declined"))

	res, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)
	assert.Equal(t, "order_2", res.GatewayOrderID)
}

func TestBegin_GatewayFailure_RecordsFailedAttempt(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	f.gateway.failErr = errors.New("gateway down")

	_, err := f.orch.Begin(context.Background(), 42, &BeginRequest{})
	require.Error(t, err)

	attempt, err := f.orch.Attempt(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, attempt.State)

	// The cart is untouched
	c, err := f.cartStore.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
}

func TestComplete_SettlesFrozenSnapshot(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	res, err := f.orch.Begin(ctx, 42, &BeginRequest{IsDelivery: true})
	require.NoError(t, err)

	// Mutate the live cart mid-payment; settlement must not see it
	_, err = f.cartStore.ChangeQuantity(ctx, 42, 1, 5)
	require.NoError(t, err)

	settled, err := f.orch.Complete(ctx, 42, res.GatewayOrderID)
	require.NoError(t, err)
	assert.NotZero(t, settled.ID)

	attempt, err := f.orch.Attempt(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StateSettled, attempt.State)
	assert.Equal(t, settled.ID, attempt.OrderID)
}

func TestComplete_SecondSuccess_ReturnsSameOrder(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	res, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)

	first, err := f.orch.Complete(ctx, 42, res.GatewayOrderID)
	require.NoError(t, err)
	second, err := f.orch.Complete(ctx, 42, res.GatewayOrderID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.settler.settled, 1)
}

func TestComplete_WrongToken_Rejected(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)

	_, err = f.orch.Complete(ctx, 42, "order_forged")
	require.ErrorIs(t, err, ErrTokenMismatch)
}

func TestComplete_AfterFailure_Rejected(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	res, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)
	require.NoError(t, f.orch.Fail(ctx, 42, "card declined"))

	_, err = f.orch.Complete(ctx, 42, res.GatewayOrderID)
	require.ErrorIs(t, err, ErrAttemptClosed)
}

func TestComplete_SettlementError_AttemptStaysPresented(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	res, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)

	f.settler.settleErr = errors.New("db unavailable")
	_, err = f.orch.Complete(ctx, 42, res.GatewayOrderID)
	require.Error(t, err)

	attempt, err := f.orch.Attempt(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, StatePresented, attempt.State)

	// Retry succeeds once persistence recovers
	f.settler.settleErr = nil
	settled, err := f.orch.Complete(ctx, 42, res.GatewayOrderID)
	require.NoError(t, err)
	assert.NotZero(t, settled.ID)
}

func TestFail_AfterSettled_Rejected(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	res, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)
	_, err = f.orch.Complete(ctx, 42, res.GatewayOrderID)
	require.NoError(t, err)

	err = f.orch.Fail(ctx, 42, "late failure callback")
	require.ErrorIs(t, err, ErrAttemptClosed)
}

func TestFail_PreservesCart(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)
	require.NoError(t, f.orch.Fail(ctx, 42, "network error"))

	c, err := f.cartStore.Get(ctx, 42)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestFail_Twice_IsIdempotent(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 42, &BeginRequest{})
	require.NoError(t, err)

	require.NoError(t, f.orch.Fail(ctx, 42, "first"))
	require.NoError(t, f.orch.Fail(ctx, 42, "second"))

	attempt, err := f.orch.Attempt(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "first", attempt.FailureReason)
}

func TestComplete_ClearsDeliveryPreference(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, 42)
	ctx := context.Background()

	require.NoError(t, f.prefs.SetDelivery(ctx, 42, true))

	res, err := f.orch.Begin(ctx, 42, &BeginRequest{IsDelivery: true})
	require.NoError(t, err)
	_, err = f.orch.Complete(ctx, 42, res.GatewayOrderID)
	require.NoError(t, err)

	isDelivery, err := f.prefs.GetDelivery(ctx, 42)
	require.NoError(t, err)
	assert.False(t, isDelivery)
}
