package address

import "time"

// Address is a shipping address from a user's address book.
type Address struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber"`
	Pincode     string    `json:"pincode"`
	Area        string    `json:"area"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
}
