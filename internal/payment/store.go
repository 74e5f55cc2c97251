package payment

import (
	"context"
	"time"

	"github.com/wichananm65/boutique-backend/internal/order"
)

// Store runs a unit of work atomically: every write made through the Tx is
// committed together or not at all.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of statements reconciliation needs. FindOrder locks the row
// it returns until the unit of work ends.
type Tx interface {
	FindOrder(ctx context.Context, providerTxID, orderID string) (OrderState, bool, error)
	CreateOrder(ctx context.Context, o NewOrder) error
	// UpdateOrderState writes the new statuses only if the order still has
	// expectedStatus, and reports whether it did.
	UpdateOrderState(ctx context.Context, id, expectedStatus, status, paymentStatus, providerTxID string) (bool, error)
	UpsertPayment(ctx context.Context, p PaymentRecord) error
	ClearCart(ctx context.Context, userID string) error
	CountItems(ctx context.Context, orderID string) (int, error)
	AddItems(ctx context.Context, orderID string, items []order.Item) error
}

type OrderState struct {
	ID            string
	UserID        string
	Status        string
	PaymentStatus string
	ProviderTxID  string
}

type NewOrder struct {
	OrderState
	TotalAmount       float64
	Shipping          order.ShippingAddress
	ShippingAddressID string
	OrderDate         time.Time
	Items             []order.Item
}

// PaymentRecord is keyed by the provider transaction id.
type PaymentRecord struct {
	OrderID       string
	TransactionID string
	Method        string
	Amount        float64
	Currency      string
	Status        string
	PaidAt        time.Time
}
