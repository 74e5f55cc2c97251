package order

import "errors"

var ErrNotFound = errors.New("order not found")

// Repository defines persistence operations for orders. Orders are created
// by the payment reconciliation flow, not through this package.
type Repository interface {
	// ListByUser returns the newest orders of userID, items included.
	ListByUser(userID string, limit int) ([]Order, error)
	// ListAll returns the newest orders of every user; limit <= 0 means no limit.
	ListAll(limit int) ([]Order, error)
	UpdateStatus(id, status string) error
	// Delete removes the order with its items and payments atomically.
	Delete(id string) error
	Stats(recent int) (Stats, error)
}
