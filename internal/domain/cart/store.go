// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// UpdatesChannel is the pub/sub channel cart change notifications are
// published on. Display collaborators subscribe to it to refresh badges and
// cart views.
const UpdatesChannel = "cart:updated"

// Store owns the durable cart slot for each user. The cart is serialized as
// a JSON document in a single Redis key and survives client reloads; only
// Clear removes it. All mutations go through Store so merge and quantity
// semantics live in one place.
type Store struct {
	redisClient *redis.Client
}

// NewStore creates a new cart store
func NewStore(redisClient *redis.Client) *Store {
	return &Store{
		redisClient: redisClient,
	}
}

// Add inserts an item into the user's cart. If a line with the same item id
// already exists its quantity is incremented by one, otherwise a new line
// with quantity 1 is appended.
func (s *Store) Add(ctx context.Context, userID uint, item LineItem) (*Cart, error) {
	userCart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range userCart.Items {
		if userCart.Items[i].ItemID == item.ItemID {
			userCart.Items[i].Quantity++
			merged = true
			break
		}
	}

	if !merged {
		item.Quantity = 1
		userCart.Items = append(userCart.Items, item)
	}

	if err := s.save(ctx, userCart); err != nil {
		return nil, err
	}
	return userCart, nil
}

// ChangeQuantity adds delta to the quantity of the matching line. A result
// of zero or less removes the line entirely. An absent item id is a silent
// no-op; repeated removals are therefore idempotent, not errors.
func (s *Store) ChangeQuantity(ctx context.Context, userID, itemID uint, delta int) (*Cart, error) {
	userCart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range userCart.Items {
		if userCart.Items[i].ItemID != itemID {
			continue
		}

		userCart.Items[i].Quantity += delta
		if userCart.Items[i].Quantity <= 0 {
			userCart.Items = append(userCart.Items[:i], userCart.Items[i+1:]...)
		}

		if err := s.save(ctx, userCart); err != nil {
			return nil, err
		}
		return userCart, nil
	}

	// Absent id: nothing to do
	return userCart, nil
}

// Clear removes the user's cart slot. Only order settlement calls this after
// a successful write.
func (s *Store) Clear(ctx context.Context, userID uint) error {
	if err := s.redisClient.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.notify(ctx, userID)
	return nil
}

// Snapshot returns a value copy of the current cart lines, safe to retain
// independently of later mutations.
func (s *Store) Snapshot(ctx context.Context, userID uint) ([]LineItem, error) {
	userCart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]LineItem, len(userCart.Items))
	copy(items, userCart.Items)
	return items, nil
}

// Get retrieves the cart for display
func (s *Store) Get(ctx context.Context, userID uint) (*Cart, error) {
	return s.load(ctx, userID)
}

func (s *Store) load(ctx context.Context, userID uint) (*Cart, error) {
	data, err := s.redisClient.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &Cart{
			UserID:    userID,
			Items:     []LineItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var userCart Cart
	if err := json.Unmarshal([]byte(data), &userCart); err != nil {
		return nil, fmt.Errorf("failed to decode persisted cart: %w", err)
	}
	if err := userCart.Validate(); err != nil {
		return nil, fmt.Errorf("persisted cart is malformed: %w", err)
	}

	return &userCart, nil
}

func (s *Store) save(ctx context.Context, userCart *Cart) error {
	userCart.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(userCart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	// The slot is durable: no expiration, cleared only by Clear
	if err := s.redisClient.Set(ctx, cartKey(userCart.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}

	s.notify(ctx, userCart.UserID)
	return nil
}

// notify emits a change notification. Delivery is best effort; a cart
// mutation never fails because nobody is listening.
func (s *Store) notify(ctx context.Context, userID uint) {
	s.redisClient.Publish(ctx, UpdatesChannel, fmt.Sprintf("%d", userID))
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:user:%d", userID)
}
