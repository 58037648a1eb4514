package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/streetr/ordering-backend/internal/config"
	"github.com/streetr/ordering-backend/internal/domain/billing"
	"github.com/streetr/ordering-backend/internal/domain/cart"
	"github.com/streetr/ordering-backend/internal/domain/checkout"
	"github.com/streetr/ordering-backend/internal/domain/order"
	"github.com/streetr/ordering-backend/internal/domain/payment"
	"github.com/streetr/ordering-backend/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfiles struct{}

func (stubProfiles) GetProfile(_ uint) (*user.User, error) {
	return &user.User{Email: "buyer@example.com", Phone: "9999999999"}, nil
}

type stubGateway struct {
	err   error
	token *payment.OrderToken
}

func (s *stubGateway) CreateOrder(context.Context, *payment.OrderRequest) (*payment.OrderToken, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

type stubSettler struct{}

func (stubSettler) Settle(context.Context, *order.SettleRequest) (*order.Order, error) {
	return &order.Order{ID: 1}, nil
}

func newTestCheckoutHandler(t *testing.T, gateway payment.Gateway) (*CheckoutHandler, *cart.Store) {
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

	cartStore := cart.NewStore(client)
	orch := checkout.NewOrchestrator(client, cartStore, calc, gateway, stubSettler{}, checkout.NewPreferences(client), log)

	return &CheckoutHandler{
		orchestrator: orch,
		profiles:     stubProfiles{},
		log:          log,
	}, cartStore
}

func beginRequest(userID uint) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBufferString(`{"is_delivery":false}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", userID)
	return c, w
}

func fillTestCart(t *testing.T, cartStore *cart.Store, userID uint) {
	_, err := cartStore.Add(context.Background(), userID, cart.LineItem{
		ItemID:   1,
		Name:     "Vada Pav",
		Price:    decimal.NewFromInt(40),
		SellerID: 7,
	})
	require.NoError(t, err)
}

func TestCheckoutBegin_GatewayError_SurfacedInPayload(t *testing.T) {
	gateway := &stubGateway{err: errors.New("API call failed with status 401: authentication failed")}
	h, cartStore := newTestCheckoutHandler(t, gateway)
	fillTestCart(t, cartStore, 42)

	c, w := beginRequest(42)
	h.Begin(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "status 401: authentication failed")
}

func TestCheckoutBegin_WhileAttemptOpen_Conflict(t *testing.T) {
	gateway := &stubGateway{token: &payment.OrderToken{OrderID: "order_1", PaymentSession: "session_1"}}
	h, cartStore := newTestCheckoutHandler(t, gateway)
	fillTestCart(t, cartStore, 42)

	c, w := beginRequest(42)
	h.Begin(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = beginRequest(42)
	h.Begin(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckoutBegin_EmptyCart_BadRequest(t *testing.T) {
	gateway := &stubGateway{token: &payment.OrderToken{OrderID: "order_1", PaymentSession: "session_1"}}
	h, _ := newTestCheckoutHandler(t, gateway)

	c, w := beginRequest(42)
	h.Begin(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
