// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one entry of a customer's cart. Price is the unit price frozen
// at the time the item was added; SellerID ties the line back to the vendor
// that listed it.
type LineItem struct {
	ItemID   uint            `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	SellerID uint            `json:"seller_id"`
	ImageURL string          `json:"image_url,omitempty"`
}

// Subtotal returns price * quantity for this line
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the persisted cart document for one user. Items keep insertion
// order for display; billing does not depend on it.
type Cart struct {
	UserID    uint       `json:"user_id"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate rejects malformed persisted carts before they can reach the
// billing calculator: duplicate ids, non-positive quantities and negative
// prices all fail the load.
func (c *Cart) Validate() error {
	seen := make(map[uint]struct{}, len(c.Items))
	for _, item := range c.Items {
		if item.ItemID == 0 {
			return fmt.Errorf("cart line without item id")
		}
		if _, dup := seen[item.ItemID]; dup {
			return fmt.Errorf("duplicate cart line for item %d", item.ItemID)
		}
		seen[item.ItemID] = struct{}{}

		if item.Quantity <= 0 {
			return fmt.Errorf("cart line for item %d has non-positive quantity %d", item.ItemID, item.Quantity)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("cart line for item %d has negative price", item.ItemID)
		}
	}
	return nil
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
