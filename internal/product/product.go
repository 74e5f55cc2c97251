package product

import "time"

// Product maps to the `products` table.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	OfferPrice  *float64  `json:"offerPrice,omitempty"`
	Stock       int       `json:"stock"`
	ImgURL      string    `json:"imgUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EffectivePrice is the offer price when one is set, the list price otherwise.
func (p Product) EffectivePrice() float64 {
	if p.OfferPrice != nil && *p.OfferPrice > 0 {
		return *p.OfferPrice
	}
	return p.Price
}
