package cart

import (
	"errors"
	"sort"
	"sync"

	"github.com/wichananm65/boutique-backend/internal/product"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("item not in cart")
)

// Repository provides access to cart lines. A user holds at most one line
// per product.
type Repository interface {
	GetCart(userID string) ([]CartItem, error)
	Add(userID, productID string, qty int) error
	Set(userID, productID string, qty int) error
	Remove(userID, productID string) error
	Clear(userID string) error
}

// ProductLookup resolves product details for cart lines.
type ProductLookup interface {
	GetByID(id string) (product.Product, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products ProductLookup
	lines    map[string]map[string]int // userID -> productID -> quantity
}

func NewInMemoryRepository(products ProductLookup) *InMemoryRepository {
	return &InMemoryRepository{products: products, lines: make(map[string]map[string]int)}
}

func (r *InMemoryRepository) GetCart(userID string) ([]CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CartItem, 0, len(r.lines[userID]))
	for pid, qty := range r.lines[userID] {
		p, err := r.products.GetByID(pid)
		if err != nil {
			continue
		}
		out = append(out, CartItem{ProductID: pid, Name: p.Name, Price: p.Price, OfferPrice: p.OfferPrice, ImgURL: p.ImgURL, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *InMemoryRepository) exists(productID string) error {
	if _, err := r.products.GetByID(productID); err != nil {
		if err == product.ErrNotFound {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (r *InMemoryRepository) Add(userID, productID string, qty int) error {
	if err := r.exists(productID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lines[userID] == nil {
		r.lines[userID] = make(map[string]int)
	}
	r.lines[userID][productID] += qty
	return nil
}

func (r *InMemoryRepository) Set(userID, productID string, qty int) error {
	if qty <= 0 {
		return r.Remove(userID, productID)
	}
	if err := r.exists(productID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lines[userID] == nil {
		r.lines[userID] = make(map[string]int)
	}
	r.lines[userID][productID] = qty
	return nil
}

func (r *InMemoryRepository) Remove(userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lines[userID][productID]; !ok {
		return ErrItemNotFound
	}
	delete(r.lines[userID], productID)
	return nil
}

func (r *InMemoryRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, userID)
	return nil
}
