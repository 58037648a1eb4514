// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants
const (
	OrderStatusPaid      = "paid"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
)

// Order is the settled record of a paid checkout. All amounts are frozen at
// settlement time; later catalog price changes never touch past orders. The
// unique index on PaymentToken is what makes settlement idempotent even if
// the gateway delivers the success callback twice.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderNumber   string          `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	SellerID      uint            `gorm:"not null;index" json:"seller_id"`
	PaymentToken  string          `gorm:"uniqueIndex;not null;size:255" json:"payment_token"`
	IsDelivery    bool            `gorm:"not null" json:"is_delivery"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	PlatformFee   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"platform_fee"`
	GST           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"gst"`
	DeliveryFee   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_fee"`
	GrandTotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"grand_total"`
	SellerAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"seller_amount"`
	CompanyProfit decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"company_profit"`
	OTP           string          `gorm:"size:6;not null" json:"otp"`
	Status        string          `gorm:"size:20;not null;default:'paid'" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is a frozen cart line copied into the order at settlement
type OrderItem struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	OrderID  uint            `gorm:"not null;index" json:"order_id"`
	ItemID   uint            `gorm:"not null" json:"item_id"`
	Name     string          `gorm:"not null;size:255" json:"name"`
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity int             `gorm:"not null" json:"quantity"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }
