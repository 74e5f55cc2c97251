package cart

import "errors"

var ErrInvalidQuantity = errors.New("quantity must be positive")

// Service orchestrates cart operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetCart(userID string) ([]CartItem, error) {
	return s.repo.GetCart(userID)
}

// AddToCart increments the line for productID and returns the updated cart.
func (s *Service) AddToCart(userID, productID string, qty int) ([]CartItem, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := s.repo.Add(userID, productID, qty); err != nil {
		return nil, err
	}
	return s.repo.GetCart(userID)
}

// SetQuantity replaces the line quantity; zero or less removes the line.
func (s *Service) SetQuantity(userID, productID string, qty int) ([]CartItem, error) {
	if err := s.repo.Set(userID, productID, qty); err != nil && err != ErrItemNotFound {
		return nil, err
	}
	return s.repo.GetCart(userID)
}

func (s *Service) RemoveItem(userID, productID string) ([]CartItem, error) {
	if err := s.repo.Remove(userID, productID); err != nil {
		return nil, err
	}
	return s.repo.GetCart(userID)
}

// ClearCart empties a user's cart.
func (s *Service) ClearCart(userID string) error {
	return s.repo.Clear(userID)
}
