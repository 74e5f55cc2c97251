package payment

import (
	"encoding/json"
	"strings"

	"github.com/wichananm65/boutique-backend/internal/logger"
	"github.com/wichananm65/boutique-backend/internal/order"
	"go.uber.org/zap"
)

// OrderDraft is the checkout payload the widget sends to the provider and
// the provider echoes back after payment.
type OrderDraft struct {
	UserID          string       `json:"userId"`
	Items           []DraftItem  `json:"items"`
	ShippingAddress DraftAddress `json:"shippingAddress"`
	TotalAmount     float64      `json:"totalAmount"`
	Currency        string       `json:"currency"`
}

type DraftItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type DraftAddress struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Area     string `json:"area"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Country  string `json:"country"`
}

// DecodeDraft parses the echoed payload. A malformed payload is logged and
// decodes to an empty draft.
func DecodeDraft(data string) OrderDraft {
	var d OrderDraft
	if strings.TrimSpace(data) != "" {
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			logger.Log.Warn("malformed order draft", zap.Error(err), zap.Int("length", len(data)))
			d = OrderDraft{}
		}
	}
	if d.Currency == "" {
		d.Currency = defaultCurrency
	}
	if d.ShippingAddress.Country == "" {
		d.ShippingAddress.Country = defaultCountry
	}
	return d
}

// Shipping snapshots the draft address onto the order columns.
func (d OrderDraft) Shipping() order.ShippingAddress {
	a := d.ShippingAddress
	return order.ShippingAddress{
		Line1:   a.FullName,
		Line2:   a.Area,
		City:    a.City,
		State:   a.State,
		ZipCode: a.Pincode,
		Country: a.Country,
	}
}

func (d OrderDraft) OrderItems() []order.Item {
	items := make([]order.Item, 0, len(d.Items))
	for _, it := range d.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			continue
		}
		items = append(items, order.Item{ProductID: it.ProductID, Quantity: it.Quantity, PriceAtOrder: it.Price})
	}
	return items
}
