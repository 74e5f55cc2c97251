package cart

// CartItem is a cart line joined with the current product details.
type CartItem struct {
	ProductID  string   `json:"productId"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	OfferPrice *float64 `json:"offerPrice,omitempty"`
	ImgURL     string   `json:"imgUrl"`
	Quantity   int      `json:"quantity"`
}

// Subtotal prices the line at the offer price when one is set.
func (i CartItem) Subtotal() float64 {
	price := i.Price
	if i.OfferPrice != nil {
		price = *i.OfferPrice
	}
	return price * float64(i.Quantity)
}
