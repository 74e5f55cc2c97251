package order

import (
	"errors"
	"strings"
)

const (
	userOrderLimit   = 10
	recentOrderLimit = 15
)

var ErrInvalidStatus = errors.New("invalid order status")

// Service provides business logic for orders.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// ListForUser returns the caller's latest orders.
func (s *Service) ListForUser(userID string) ([]Order, error) {
	return s.repo.ListByUser(userID, userOrderLimit)
}

func (s *Service) ListAll() ([]Order, error) {
	return s.repo.ListAll(0)
}

func (s *Service) UpdateStatus(id, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(id, status)
}

func (s *Service) Delete(id string) error {
	return s.repo.Delete(id)
}

func (s *Service) Stats() (Stats, error) {
	return s.repo.Stats(recentOrderLimit)
}
