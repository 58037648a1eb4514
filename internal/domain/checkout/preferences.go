// internal/domain/checkout/preferences.go
package checkout

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Preferences holds the customer's delivery choice between page views. The
// choice only becomes binding when checkout begins; until then it is a UI
// default. It is cleared when an order settles.
type Preferences struct {
	redisClient *redis.Client
}

// NewPreferences creates a new preference store
func NewPreferences(redisClient *redis.Client) *Preferences {
	return &Preferences{redisClient: redisClient}
}

// SetDelivery records whether the user wants door delivery
func (p *Preferences) SetDelivery(ctx context.Context, userID uint, isDelivery bool) error {
	value := "0"
	if isDelivery {
		value = "1"
	}
	if err := p.redisClient.Set(ctx, prefKey(userID), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to store delivery preference: %w", err)
	}
	return nil
}

// GetDelivery returns the stored preference; absent means pickup
func (p *Preferences) GetDelivery(ctx context.Context, userID uint) (bool, error) {
	value, err := p.redisClient.Get(ctx, prefKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to load delivery preference: %w", err)
	}
	return value == "1", nil
}

// Clear removes the stored preference
func (p *Preferences) Clear(ctx context.Context, userID uint) error {
	if err := p.redisClient.Del(ctx, prefKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear delivery preference: %w", err)
	}
	return nil
}

func prefKey(userID uint) string {
	return fmt.Sprintf("delivery:user:%d", userID)
}
