package order

import "time"

// Order lifecycle values stored in orders.status.
const (
	StatusPending       = "PENDING"
	StatusPaidSuccess   = "PAID_SUCCESS"
	StatusPaymentFailed = "PAYMENT_FAILED"
	StatusShipped       = "SHIPPED"
	StatusDelivered     = "DELIVERED"
	StatusCancelled     = "CANCELLED"
)

// Payment lifecycle values stored in orders."paymentStatus" and payments.status.
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

var allowedStatuses = map[string]bool{
	StatusPending:       true,
	StatusPaidSuccess:   true,
	StatusPaymentFailed: true,
	StatusShipped:       true,
	StatusDelivered:     true,
	StatusCancelled:     true,
}

// ValidStatus reports whether s may be stored in orders.status.
func ValidStatus(s string) bool {
	return allowedStatuses[s]
}

// ShippingAddress is the address snapshot copied onto the order.
type ShippingAddress struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Item struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	ImgURL       string  `json:"imgUrl"`
	Quantity     int     `json:"quantity"`
	PriceAtOrder float64 `json:"priceAtOrder"`
}

// Order represents a purchase made by a user.
type Order struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"userId"`
	CustomerEmail        string          `json:"customerEmail,omitempty"`
	TotalAmount          float64         `json:"totalAmount"`
	Status               string          `json:"status"`
	PaymentStatus        string          `json:"paymentStatus"`
	KakapayTransactionID *string         `json:"kakapayTransactionId,omitempty"`
	Shipping             ShippingAddress `json:"shipping"`
	ShippingAddressID    *string         `json:"shippingAddressId,omitempty"`
	OrderDate            time.Time       `json:"orderDate"`
	Items                []Item          `json:"items"`
}

// Stats feeds the admin dashboard.
type Stats struct {
	Products      int     `json:"products"`
	Orders        int     `json:"orders"`
	PendingOrders int     `json:"pendingOrders"`
	Users         int     `json:"users"`
	Revenue       float64 `json:"revenue"`
	RecentOrders  []Order `json:"recentOrders"`
}
