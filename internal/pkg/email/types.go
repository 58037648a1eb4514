// internal/pkg/email/types.go
package email

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeWelcome           EmailType = "welcome"
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// OrderItemLine is one line of the order summary in the confirmation email
type OrderItemLine struct {
	Name     string
	Quantity int
	Price    string
}

// OrderConfirmationData contains data for the order confirmation email
type OrderConfirmationData struct {
	UserName    string
	UserEmail   string
	OrderNumber string
	OrderTotal  string
	PickupCode  string
	IsDelivery  bool
	Items       []OrderItemLine
}
